package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appintegration "github.com/prapazar/backend/internal/application/integration"
	"github.com/prapazar/backend/internal/domain/integration"
	"github.com/prapazar/backend/internal/interfaces/http/dto"
)

// SyncHandler exposes the sync orchestration endpoints.
type SyncHandler struct {
	BaseHandler
	orchestrator *appintegration.SyncOrchestrator
	syncLogs     integration.SyncLogRepository
	logger       *zap.Logger
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(
	orchestrator *appintegration.SyncOrchestrator,
	syncLogs integration.SyncLogRepository,
	logger *zap.Logger,
) *SyncHandler {
	return &SyncHandler{
		orchestrator: orchestrator,
		syncLogs:     syncLogs,
		logger:       logger,
	}
}

// RegisterRoutes registers sync routes on the API group.
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/products", h.SyncProducts)
		sync.POST("/orders", h.SyncOrders)
		sync.POST("/stock", h.UpdateStock)
		sync.POST("/price", h.UpdatePrice)
		sync.GET("/logs", h.ListLogs)
		sync.GET("/logs/:id", h.GetLog)
	}
}

// SyncProductsRequest is the payload for a product listing sync.
type SyncProductsRequest struct {
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	Channels []string `json:"channels"`
}

// SyncOrdersRequest is the payload for an order sync.
type SyncOrdersRequest struct {
	Start    time.Time `json:"start" binding:"required"`
	End      time.Time `json:"end" binding:"required"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	Channels []string  `json:"channels"`
}

// UpdateStockRequest is the payload for a stock push.
type UpdateStockRequest struct {
	LocalProductID uuid.UUID `json:"local_product_id"`
	ExternalID     string    `json:"external_id"`
	Quantity       int       `json:"quantity"`
	Channels       []string  `json:"channels"`
}

// UpdatePriceRequest is the payload for a price push.
type UpdatePriceRequest struct {
	LocalProductID uuid.UUID       `json:"local_product_id"`
	ExternalID     string          `json:"external_id"`
	Price          decimal.Decimal `json:"price"`
	Channels       []string        `json:"channels"`
}

// SyncProducts runs a product listing sync across matching adapters.
func (h *SyncHandler) SyncProducts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req SyncProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
		return
	}

	channels, ok := h.parseChannels(c, req.Channels)
	if !ok {
		return
	}

	payload := appintegration.SyncPayload{
		Page:     integration.Pagination{Page: req.Page, Size: req.PageSize},
		Channels: channels,
	}
	h.run(c, userID, integration.OpSyncProducts, payload)
}

// SyncOrders runs an order sync for a date range.
func (h *SyncHandler) SyncOrders(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req SyncOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
		return
	}

	channels, ok := h.parseChannels(c, req.Channels)
	if !ok {
		return
	}

	payload := appintegration.SyncPayload{
		Page:     integration.Pagination{Page: req.Page, Size: req.PageSize},
		Dates:    integration.DateRange{Start: req.Start, End: req.End},
		Channels: channels,
	}
	h.run(c, userID, integration.OpSyncOrders, payload)
}

// UpdateStock pushes a stock quantity to matching adapters.
func (h *SyncHandler) UpdateStock(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
		return
	}

	channels, ok := h.parseChannels(c, req.Channels)
	if !ok {
		return
	}

	payload := appintegration.SyncPayload{
		LocalProductID: req.LocalProductID,
		ExternalID:     req.ExternalID,
		Quantity:       req.Quantity,
		Channels:       channels,
	}
	h.run(c, userID, integration.OpUpdateStock, payload)
}

// UpdatePrice pushes a price to matching adapters.
func (h *SyncHandler) UpdatePrice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
		return
	}

	channels, ok := h.parseChannels(c, req.Channels)
	if !ok {
		return
	}

	payload := appintegration.SyncPayload{
		LocalProductID: req.LocalProductID,
		ExternalID:     req.ExternalID,
		Price:          req.Price,
		Channels:       channels,
	}
	h.run(c, userID, integration.OpUpdatePrice, payload)
}

// ListLogs lists the user's sync cycles, newest first.
func (h *SyncHandler) ListLogs(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var list dto.ListRequest
	if err := c.ShouldBindQuery(&list); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	list.Normalize()

	filter := integration.SyncLogFilter{
		Page:     list.Page,
		PageSize: list.PageSize,
	}
	if raw := c.Query("operation"); raw != "" {
		op := integration.SyncOperation(raw)
		if !op.IsValid() {
			h.BadRequest(c, "Unknown operation: "+raw)
			return
		}
		filter.Operation = &op
	}
	if raw := c.Query("status"); raw != "" {
		status := integration.SyncStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "Invalid since timestamp, expected RFC3339")
			return
		}
		filter.Since = &since
	}

	logs, total, err := h.syncLogs.FindByUser(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, appintegration.ToSyncLogResponses(logs), total, filter.Page, filter.PageSize)
}

// GetLog returns one sync cycle by ID.
func (h *SyncHandler) GetLog(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sync log ID")
		return
	}

	log, err := h.syncLogs.FindByID(c.Request.Context(), id)
	if err != nil || log.UserID != userID {
		h.NotFound(c, "Sync log not found")
		return
	}
	h.Success(c, appintegration.ToSyncLogResponse(log))
}

// run executes the cycle and renders the folded log.
func (h *SyncHandler) run(c *gin.Context, userID uuid.UUID, op integration.SyncOperation, payload appintegration.SyncPayload) {
	log, err := h.orchestrator.RunSync(c.Request.Context(), userID, op, payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appintegration.ToSyncLogResponse(log))
}

// parseChannels validates an optional channel restriction list.
func (h *SyncHandler) parseChannels(c *gin.Context, raw []string) ([]integration.ChannelCode, bool) {
	if len(raw) == 0 {
		return nil, true
	}
	channels := make([]integration.ChannelCode, 0, len(raw))
	for _, r := range raw {
		code := integration.ChannelCode(r)
		if !code.IsValid() {
			h.BadRequest(c, "Unknown channel: "+r)
			return nil, false
		}
		channels = append(channels, code)
	}
	return channels, true
}
