package handler

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/cache"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/scheduler"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// HealthCheck probes one dependency
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// JobRunner lists and triggers background jobs
type JobRunner interface {
	Jobs() []scheduler.JobInfo
	RunNow(name string) error
}

// CacheStatsSource reports snapshot cache counters
type CacheStatsSource interface {
	Stats() []cache.NamedStats
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	version   string
	checks    []HealthCheck
	jobs      JobRunner
	caches    CacheStatsSource
}

// SystemOption configures a SystemHandler
type SystemOption func(*SystemHandler)

// WithHealthChecks adds dependency probes to the health endpoint
func WithHealthChecks(checks ...HealthCheck) SystemOption {
	return func(h *SystemHandler) { h.checks = append(h.checks, checks...) }
}

// WithJobRunner exposes the background scheduler
func WithJobRunner(jobs JobRunner) SystemOption {
	return func(h *SystemHandler) { h.jobs = jobs }
}

// WithCacheStats exposes snapshot cache counters
func WithCacheStats(caches CacheStatsSource) SystemOption {
	return func(h *SystemHandler) { h.caches = caches }
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(version string, opts ...SystemOption) *SystemHandler {
	h := &SystemHandler{
		startTime: time.Now(),
		version:   version,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"Mercato Marketplace API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// HealthResponse reports the state of each dependency
type HealthResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks"`
}

// CacheStatsResponse is the counters of one snapshot cache
type CacheStatsResponse struct {
	Name          string  `json:"name"`
	Hits          uint64  `json:"hits"`
	Misses        uint64  `json:"misses"`
	Loads         uint64  `json:"loads"`
	LoadErrors    uint64  `json:"load_errors"`
	Invalidations uint64  `json:"invalidations"`
	Entries       int     `json:"entries"`
	HitRatio      float64 `json:"hit_ratio"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns basic system information including version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      "Mercato Marketplace API",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Health godoc
// @ID           getSystemHealth
// @Summary      Readiness probe
// @Description  Pings every dependency; any failure answers 503
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthResponse]
// @Failure      503 {object} APIResponse[HealthResponse]
// @Router       /system/health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			resp.Status = "degraded"
			resp.Checks[check.Name] = err.Error()
			continue
		}
		resp.Checks[check.Name] = "ok"
	}
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}

// ListJobs godoc
// @ID           listSystemJobs
// @Summary      Background jobs
// @Tags         admin-system
// @Produce      json
// @Success      200 {object} APIResponse[[]scheduler.JobInfo]
// @Security     BearerAuth
// @Router       /admin/system/jobs [get]
func (h *SystemHandler) ListJobs(c *gin.Context) {
	if h.jobs == nil {
		h.Success(c, []scheduler.JobInfo{})
		return
	}
	h.Success(c, h.jobs.Jobs())
}

// RunJob godoc
// @ID           runSystemJob
// @Summary      Run a background job now
// @Tags         admin-system
// @Produce      json
// @Param        name path string true "Job name"
// @Success      202 {object} APIResponse[MessageResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/system/jobs/{name}/run [post]
func (h *SystemHandler) RunJob(c *gin.Context) {
	if h.jobs == nil {
		h.Error(c, http.StatusServiceUnavailable, "SCHEDULER_DISABLED", "Background jobs are disabled")
		return
	}
	name := c.Param("name")
	err := h.jobs.RunNow(name)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		h.Error(c, http.StatusNotFound, "JOB_NOT_FOUND", "No job named "+name)
	case errors.Is(err, scheduler.ErrSchedulerNotRunning):
		h.Error(c, http.StatusServiceUnavailable, "SCHEDULER_NOT_RUNNING", "Scheduler is not running")
	case err != nil:
		h.HandleError(c, err)
	default:
		c.JSON(http.StatusAccepted, dto.NewSuccessResponse(MessageResponse{Message: "Job " + name + " started"}))
	}
}

// CacheStats godoc
// @ID           getSystemCacheStats
// @Summary      Snapshot cache counters
// @Tags         admin-system
// @Produce      json
// @Success      200 {object} APIResponse[[]CacheStatsResponse]
// @Security     BearerAuth
// @Router       /admin/system/caches [get]
func (h *SystemHandler) CacheStats(c *gin.Context) {
	out := []CacheStatsResponse{}
	if h.caches != nil {
		for _, s := range h.caches.Stats() {
			out = append(out, CacheStatsResponse{
				Name:          s.Name,
				Hits:          s.Hits,
				Misses:        s.Misses,
				Loads:         s.Loads,
				LoadErrors:    s.LoadErrors,
				Invalidations: s.Invalidations,
				Entries:       s.Entries,
				HitRatio:      s.HitRatio(),
			})
		}
	}
	h.Success(c, out)
}
