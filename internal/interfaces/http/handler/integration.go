package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appintegration "github.com/prapazar/backend/internal/application/integration"
	"github.com/prapazar/backend/internal/domain/integration"
	"github.com/prapazar/backend/internal/interfaces/http/dto"
)

// IntegrationHandler exposes integration lifecycle and status endpoints.
type IntegrationHandler struct {
	BaseHandler
	registry *appintegration.AdapterRegistry
	status   *appintegration.StatusService
	logger   *zap.Logger
}

// NewIntegrationHandler creates a new IntegrationHandler.
func NewIntegrationHandler(
	registry *appintegration.AdapterRegistry,
	status *appintegration.StatusService,
	logger *zap.Logger,
) *IntegrationHandler {
	return &IntegrationHandler{
		registry: registry,
		status:   status,
		logger:   logger,
	}
}

// RegisterRoutes registers integration routes on the API group.
func (h *IntegrationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	integrations := rg.Group("/integrations")
	{
		integrations.POST("", h.Register)
		integrations.GET("", h.List)
		integrations.POST("/:id/activate", h.Activate)
		integrations.POST("/:id/deactivate", h.Deactivate)
		integrations.DELETE("/:id", h.Remove)
		integrations.GET("/:id/status", h.Status)
	}
	rg.GET("/status", h.Overview)
	rg.GET("/metrics/sync", h.Metrics)
}

// RegisterIntegrationRequest is the payload for creating an integration.
type RegisterIntegrationRequest struct {
	ChannelCode string            `json:"channel_code" binding:"required"`
	Name        string            `json:"name"`
	Credentials map[string]string `json:"credentials" binding:"required"`
	Settings    *SettingsRequest  `json:"settings"`
}

// SettingsRequest carries optional per-integration overrides. Durations are
// in seconds; zero values fall back to defaults.
type SettingsRequest struct {
	TimeoutSeconds       int `json:"timeout_seconds"`
	HealthTimeoutSeconds int `json:"health_timeout_seconds"`
	MaxRetries           int `json:"max_retries"`
	RetryBackoffMS       int `json:"retry_backoff_ms"`
	RateCeiling          int `json:"rate_ceiling"`
	RateWindowSeconds    int `json:"rate_window_seconds"`
	BreakerThreshold     int `json:"breaker_threshold"`
	BreakerCoolDownSec   int `json:"breaker_cooldown_seconds"`
	CacheTTLSeconds      int `json:"cache_ttl_seconds"`
}

func (r *SettingsRequest) toDomain() *integration.Settings {
	if r == nil {
		return nil
	}
	s := integration.Settings{
		Timeout:          time.Duration(r.TimeoutSeconds) * time.Second,
		HealthTimeout:    time.Duration(r.HealthTimeoutSeconds) * time.Second,
		MaxRetries:       r.MaxRetries,
		RetryBackoff:     time.Duration(r.RetryBackoffMS) * time.Millisecond,
		RateCeiling:      r.RateCeiling,
		RateWindow:       time.Duration(r.RateWindowSeconds) * time.Second,
		BreakerThreshold: r.BreakerThreshold,
		BreakerCoolDown:  time.Duration(r.BreakerCoolDownSec) * time.Second,
		CacheTTL:         time.Duration(r.CacheTTLSeconds) * time.Second,
	}
	return &s
}

// Register creates a new integration in the inactive state.
func (h *IntegrationHandler) Register(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req RegisterIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
		return
	}

	code := integration.ChannelCode(req.ChannelCode)
	integ, err := h.registry.Register(c.Request.Context(), userID, code, req.Name, req.Credentials, req.Settings.toDomain())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.logger.Info("integration registered",
		zap.String("user_id", userID.String()),
		zap.String("channel", code.String()),
		zap.String("integration_id", integ.ID.String()),
	)
	h.Created(c, appintegration.ToIntegrationResponse(integ))
}

// List returns the user's integrations, optionally filtered by category.
func (h *IntegrationHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var category *integration.Category
	if raw := c.Query("category"); raw != "" {
		cat := integration.Category(raw)
		if !cat.IsValid() {
			h.BadRequest(c, "Unknown category: "+raw)
			return
		}
		category = &cat
	}

	items, err := h.registry.List(c.Request.Context(), userID, category)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appintegration.ToIntegrationResponses(items))
}

// Activate connects the adapter and brings the integration live.
func (h *IntegrationHandler) Activate(c *gin.Context) {
	userID, integrationID, ok := h.userAndID(c)
	if !ok {
		return
	}

	integ, err := h.registry.Activate(c.Request.Context(), userID, integrationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appintegration.ToIntegrationResponse(integ))
}

// Deactivate takes the integration out of the live fan-out set.
func (h *IntegrationHandler) Deactivate(c *gin.Context) {
	userID, integrationID, ok := h.userAndID(c)
	if !ok {
		return
	}

	if err := h.registry.Deactivate(c.Request.Context(), userID, integrationID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Remove soft-deletes the integration and frees its channel slot.
func (h *IntegrationHandler) Remove(c *gin.Context) {
	userID, integrationID, ok := h.userAndID(c)
	if !ok {
		return
	}

	if err := h.registry.Remove(c.Request.Context(), userID, integrationID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Status returns stored plus live state for one integration.
func (h *IntegrationHandler) Status(c *gin.Context) {
	userID, integrationID, ok := h.userAndID(c)
	if !ok {
		return
	}

	status, err := h.status.Status(c.Request.Context(), userID, integrationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// Overview returns the status of every integration the user has.
func (h *IntegrationHandler) Overview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var category *integration.Category
	if raw := c.Query("category"); raw != "" {
		cat := integration.Category(raw)
		if !cat.IsValid() {
			h.BadRequest(c, "Unknown category: "+raw)
			return
		}
		category = &cat
	}

	overview, err := h.status.Overview(c.Request.Context(), userID, category)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overview)
}

// Metrics returns the global and per-channel sync metrics rollup.
func (h *IntegrationHandler) Metrics(c *gin.Context) {
	h.Success(c, h.status.Metrics())
}

// userAndID extracts the authenticated user and the :id path parameter.
func (h *IntegrationHandler) userAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid integration ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}
