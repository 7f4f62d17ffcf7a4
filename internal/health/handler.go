package health

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the operational endpoints: liveness, readiness and metrics.
type Handler struct {
	state  *State
	router *gin.Engine
}

func NewHandler(state *State, registry *prometheus.Registry) *Handler {
	h := &Handler{
		state:  state,
		router: gin.Default(),
	}

	h.router.GET("/health", h.healthCheck)
	h.router.GET("/health/ready", h.readinessCheck)
	h.router.GET("/health/live", h.livenessCheck)
	h.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// healthCheck handles GET /health
func (h *Handler) healthCheck(c *gin.Context) {
	consumerReady, producerReady := h.state.StreamReady()

	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"service":         h.state.service,
		"version":         h.state.version,
		"uptime_seconds":  math.Round(h.state.Uptime().Seconds()*100) / 100,
		"model_loaded":    h.state.ModelLoaded(),
		"kafka_connected": consumerReady && producerReady,
	})
}

// readinessCheck handles GET /health/ready
func (h *Handler) readinessCheck(c *gin.Context) {
	consumerReady, producerReady := h.state.StreamReady()

	checks := gin.H{
		"model_loaded":   h.state.ModelLoaded(),
		"kafka_consumer": consumerReady,
		"kafka_producer": producerReady,
	}

	ready := h.state.ModelLoaded() && consumerReady && producerReady

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"ready":  ready,
		"checks": checks,
	})
}

// livenessCheck handles GET /health/live
func (h *Handler) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
