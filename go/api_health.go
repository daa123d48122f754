package storefrontserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// HealthAPI reports liveness. It never consults the document store.
type HealthAPI struct {
	service string
	now     func() time.Time
}

func NewHealthAPI(service string) HealthAPI {
	return HealthAPI{service: service, now: time.Now}
}

// Get /health
func (api HealthAPI) Health(c *gin.Context) {
	now := time.Now
	if api.now != nil {
		now = api.now
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "OK",
		Service:   api.service,
		Timestamp: now().UTC().Format(time.RFC3339Nano),
	})
}
