package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/feedback-hub/internal/auth"
	"github.com/hongminglow/feedback-hub/internal/config"
	"github.com/hongminglow/feedback-hub/internal/feedback"
	"github.com/hongminglow/feedback-hub/internal/http/handlers"
	"github.com/hongminglow/feedback-hub/internal/http/respond"
	"github.com/hongminglow/feedback-hub/internal/models"
	"github.com/hongminglow/feedback-hub/internal/observability"
)

type nopAuth struct{}

func (nopAuth) Register(context.Context, string, string) (int64, error) { return 1, nil }
func (nopAuth) Login(context.Context, string, string) (string, error)   { return "token", nil }

type nopFeedback struct{}

func (nopFeedback) Create(context.Context, feedback.CreateInput) (models.Feedback, error) {
	return models.Feedback{}, nil
}
func (nopFeedback) List(context.Context) ([]models.Feedback, error) { return []models.Feedback{}, nil }
func (nopFeedback) ListByUser(context.Context, int64) ([]models.Feedback, error) {
	return []models.Feedback{}, nil
}
func (nopFeedback) Update(context.Context, string, int64, models.FeedbackPatch) (models.Feedback, error) {
	return models.Feedback{}, nil
}
func (nopFeedback) Delete(context.Context, string, int64) error { return nil }

func testDeps(cfg config.Config) Deps {
	return Deps{
		Config:   cfg,
		Auth:     nopAuth{},
		Feedback: nopFeedback{},
		Tokens:   auth.NewTokenManager("secret", "issuer", time.Hour),
	}
}

func TestNewHandlerRequiresServices(t *testing.T) {
	_, err := NewHandler(Deps{})
	assert.Error(t, err)
}

func TestRateLimitReturnsJSON429(t *testing.T) {
	h, err := NewHandler(testDeps(config.Config{RateLimitRequests: 2, RateLimitWindow: time.Minute}))
	require.NoError(t, err)

	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/feedback", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}
	assert.Equal(t, http.StatusOK, call().Code)
	assert.Equal(t, http.StatusOK, call().Code)

	rec := call()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	var env respond.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusTooManyRequests, env.Code)
}

func TestRateLimitIgnoresForwardedHeadersByDefault(t *testing.T) {
	h, err := NewHandler(testDeps(config.Config{RateLimitRequests: 2, RateLimitWindow: time.Minute}))
	require.NoError(t, err)

	limited := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/feedback", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.0.1.%d", i))
		req.Header.Set("True-Client-IP", fmt.Sprintf("10.0.2.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 18, limited)
}

func TestRateLimitHonoursForwardedHeadersWhenTrusted(t *testing.T) {
	h, err := NewHandler(testDeps(config.Config{
		RateLimitRequests: 1,
		RateLimitWindow:   time.Minute,
		TrustProxyHeaders: true,
	}))
	require.NoError(t, err)

	for _, client := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodGet, "/feedback", nil)
		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, client)
	}
}

func TestHealthReportsFailingCheck(t *testing.T) {
	deps := testDeps(config.Config{})
	deps.HealthChecks = map[string]handlers.HealthCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("dial tcp 10.1.2.3:6379: connection refused") },
	}
	h, err := NewHandler(deps)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "ok", body.Checks["database"])
	assert.Equal(t, "unavailable", body.Checks["redis"])
	assert.NotContains(t, rec.Body.String(), "10.1.2.3")
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	deps := testDeps(config.Config{})
	deps.Metrics = observability.NewMetrics()
	h, err := NewHandler(deps)
	require.NoError(t, err)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/feedback", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `feedbackhub_http_requests_total{code="200",method="GET",route="/feedback`)
}
