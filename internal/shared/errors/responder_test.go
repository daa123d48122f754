package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var errWidgetMissing = stderrors.New("widget missing")

func serve(t *testing.T, responder *ChainedResponder, err error) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/widgets/:id", func(c *gin.Context) {
		responder.RespondError(c, err)
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/widgets/42", nil))
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	return w, problem
}

func TestChainedResponder_UsesMappers(t *testing.T) {
	responder := NewChainedResponder(nil, func(err error) (ProblemDetail, bool) {
		if stderrors.Is(err, errWidgetMissing) {
			return NewNotFoundProblem("widget", "42"), true
		}
		return ProblemDetail{}, false
	})

	w, problem := serve(t, responder, errWidgetMissing)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, ContentTypeProblemJSON, w.Header().Get("Content-Type"))
	require.Equal(t, TypeNotFound, problem.Type)
	require.Equal(t, "/widgets/42", problem.Instance)
	require.Equal(t, "widget", problem.Extensions["resourceType"])
}

func TestChainedResponder_HidesInternalCauses(t *testing.T) {
	var logs bytes.Buffer
	responder := NewChainedResponder(&Responder{Logger: slog.New(slog.NewJSONHandler(&logs, nil))})

	w, problem := serve(t, responder, stderrors.New("pq: password authentication failed"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, InternalDetail, problem.Detail)
	require.NotContains(t, w.Body.String(), "password")
	require.Contains(t, logs.String(), "password authentication failed")
}

func TestChainedResponder_PassesProblemsThrough(t *testing.T) {
	responder := NewChainedResponder(nil)

	w, problem := serve(t, responder, NewValidationProblem("name is required"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "name is required", problem.Detail)
	require.Equal(t, http.StatusBadRequest, HTTPStatusFromError(problem))
}

func TestWithExtension_DoesNotMutateTemplate(t *testing.T) {
	_ = NewNotFoundProblem("widget", "1")
	require.Nil(t, ErrNotFound.Extensions)
}
