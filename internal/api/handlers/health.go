package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/database"
)

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status    string       `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Version   string       `json:"version"`
	Services  ServiceState `json:"services"`
	System    SystemStats  `json:"system"`
}

// ServiceState reports per-dependency health.
type ServiceState struct {
	Redis string `json:"redis"`
}

// SystemStats reports host resource usage.
type SystemStats struct {
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	CPUPercent        float64 `json:"cpu_percent"`
}

// HealthHandler serves liveness plus dependency and system status.
type HealthHandler struct {
	redis   *database.RedisClient
	version string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(redis *database.RedisClient, version string) *HealthHandler {
	return &HealthHandler{redis: redis, version: version}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Services:  ServiceState{Redis: "ok"},
		System:    systemStats(),
	}

	if h.redis == nil {
		response.Services.Redis = "unavailable"
		response.Status = "degraded"
	} else if err := h.redis.HealthCheck(c.Request.Context()); err != nil {
		response.Services.Redis = "error"
		response.Status = "degraded"
	}

	// The service still serves from upstream when Redis is down, so a
	// degraded cache is not a failed health check.
	c.JSON(http.StatusOK, response)
}

func systemStats() SystemStats {
	stats := SystemStats{}
	if memInfo, err := mem.VirtualMemory(); err == nil {
		stats.MemoryUsedPercent = memInfo.UsedPercent
	}
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		stats.CPUPercent = cpuPercent[0]
	}
	return stats
}
