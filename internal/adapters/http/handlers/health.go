// Package handlers provides the gin handlers of the quotify API.
package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/quotify/internal/ports"
)

// probePrefix groups the operational endpoints.
const probePrefix = "/-"

// BuildInfo identifies the running binary. Version, Commit and BuildTime
// come from -ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{Version: version, Commit: commit, BuildTime: buildTime, GoVersion: runtime.Version()}
}

// HealthHandler serves live, ready, build and metrics under probePrefix.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
	metrics   http.Handler
}

func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo) *HealthHandler {
	return &HealthHandler{registry: registry, buildInfo: buildInfo, metrics: promhttp.Handler()}
}

type livenessResponse struct {
	Status string `json:"status"`
}

type readinessResponse struct {
	Status    string                        `json:"status"`
	CheckedAt time.Time                     `json:"checkedAt"`
	Checks    map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Register mounts the probe routes on r.
func (h *HealthHandler) Register(r gin.IRouter) {
	g := r.Group(probePrefix)
	g.GET("/live", h.live)
	g.GET("/ready", h.ready)
	g.GET("/build", h.build)
	g.GET("/metrics", gin.WrapH(h.metrics))
}

// live answers as long as the process can serve HTTP.
func (h *HealthHandler) live(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{Status: "ok"})
}

// ready is 503 only when a critical check (the cache) fails. A degraded quote
// API is still ready because the batch store falls back to static quotes.
func (h *HealthHandler) ready(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	code := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(code, readinessResponse{
		Status:    string(result.Status),
		CheckedAt: result.Timestamp,
		Checks:    result.Checks,
	})
}

func (h *HealthHandler) build(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}
