package storefrontserver

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/Apurer/go-gin-storefront/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-gin-storefront/internal/domains/catalog/ports"
	ordersapp "github.com/Apurer/go-gin-storefront/internal/domains/orders/application"
	orderports "github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"
	apierrors "github.com/Apurer/go-gin-storefront/internal/shared/errors"
)

// newResponder maps the catalog and order errors onto problem responses; anything else
// becomes an opaque 500 whose cause is only logged.
func newResponder(logger *slog.Logger) *apierrors.ChainedResponder {
	return apierrors.NewChainedResponder(
		&apierrors.Responder{Logger: logger},
		mapInvalidInput,
	)
}

func mapInvalidInput(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, catalogapp.ErrInvalidInput) || errors.Is(err, ordersapp.ErrInvalidInput) {
		return apierrors.NewValidationProblem(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

// respondServiceError reports err for the resource identified by id.
func respondServiceError(c *gin.Context, responder *apierrors.ChainedResponder, resource, id string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, catalogports.ErrNotFound) || errors.Is(err, orderports.ErrNotFound) {
		responder.Respond(c, apierrors.NewNotFoundProblem(resource, id))
		return
	}
	if errors.Is(err, docstore.ErrConflict) {
		responder.Respond(c, apierrors.NewConflictProblem(resource).WithInstance(c.Request.URL.Path))
		return
	}
	responder.RespondError(c, err)
}

// respondBindError answers a body that could not be decoded.
func respondBindError(c *gin.Context, responder *apierrors.ChainedResponder, err error) {
	responder.BadRequest(c, err.Error())
}
