package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestHandler() (*Handler, *State) {
	state := NewState("sentiment-service", "1.0.0")
	return NewHandler(state, prometheus.NewRegistry()), state
}

func doRequest(h *Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	h.ServeHTTP(w, r)
	return w
}

func TestHandler_Liveness(t *testing.T) {
	h, _ := newTestHandler()

	w := doRequest(h, "/health/live")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}

func TestHandler_ReadinessTransitions(t *testing.T) {
	h, state := newTestHandler()

	w := doRequest(h, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	state.SetModelLoaded(true)
	w = doRequest(h, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	state.SetStreamReady(true, true)
	w = doRequest(h, "/health/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Ready  bool            `json:"ready"`
		Checks map[string]bool `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Ready)
	assert.True(t, body.Checks["model_loaded"])
	assert.True(t, body.Checks["kafka_consumer"])
	assert.True(t, body.Checks["kafka_producer"])
}

func TestHandler_HealthReportsServiceInfo(t *testing.T) {
	h, state := newTestHandler()
	state.SetModelLoaded(true)

	w := doRequest(h, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "sentiment-service", body["service"])
	assert.Equal(t, "1.0.0", body["version"])
	assert.Equal(t, true, body["model_loaded"])
	assert.Equal(t, false, body["kafka_connected"])
}

func TestHandler_MetricsExposed(t *testing.T) {
	h, _ := newTestHandler()

	w := doRequest(h, "/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
}
