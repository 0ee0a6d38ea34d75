package handler

import (
	"context"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/printshop/backend/internal/domain/queue"
	"github.com/printshop/backend/internal/infrastructure/logger"
	"github.com/printshop/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// HealthCheck checks one dependency
type HealthCheck func(ctx context.Context) error

// WorkItemCounter reports how many background work items sit in each status
type WorkItemCounter interface {
	CountByStatus(ctx context.Context) (map[queue.Status]int64, error)
}

// HealthHandler reports whether the service and its dependencies are usable
type HealthHandler struct {
	BaseHandler
	service string
	checks  map[string]HealthCheck
	queue   WorkItemCounter
}

// NewHealthHandler creates a HealthHandler with no dependency checks
func NewHealthHandler(service string) *HealthHandler {
	return &HealthHandler{service: service, checks: make(map[string]HealthCheck)}
}

// WithCheck adds a named dependency check
func (h *HealthHandler) WithCheck(name string, check HealthCheck) *HealthHandler {
	h.checks[name] = check
	return h
}

// WithQueue adds the work item backlog to the health payload. A failing
// count is logged but does not mark the service unhealthy.
func (h *HealthHandler) WithQueue(counter WorkItemCounter) *HealthHandler {
	h.queue = counter
	return h
}

// Health godoc
//
//	@ID				health
//
//	@Summary		Health check
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	APIResponse[HealthData]
//	@Failure		503	{object}	APIResponse[HealthData]
//	@Router			/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	data := HealthData{Status: "ok", Service: h.service}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	if len(names) > 0 {
		data.Checks = make(map[string]string, len(names))
	}
	for _, name := range names {
		if err := h.checks[name](c.Request.Context()); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.String("check", name), zap.Error(err))
			data.Checks[name] = "error"
			data.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		data.Checks[name] = "ok"
	}

	if h.queue != nil {
		counts, err := h.queue.CountByStatus(c.Request.Context())
		if err != nil {
			logger.GetGinLogger(c).Warn("Failed to count work items", zap.Error(err))
		} else {
			data.Queue = make(map[string]int64, len(counts))
			for status, n := range counts {
				data.Queue[string(status)] = n
			}
		}
	}

	resp := dto.NewSuccessResponse(data)
	resp.Success = status == http.StatusOK
	c.JSON(status, resp)
}
