package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/pantry/backend/internal/domain"
	"github.com/pantry/backend/internal/logger"
	"github.com/pantry/backend/internal/usecase"
	"go.uber.org/zap"
)

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	lookup    usecase.ProductLookup
	inventory *usecase.InventoryService
	shopping  *usecase.ShoppingListService
	health    HealthChecker
	log       *zap.SugaredLogger
}

// NewHandler creates a new HTTP handler. health may be nil.
func NewHandler(
	lookup usecase.ProductLookup,
	inventory *usecase.InventoryService,
	shopping *usecase.ShoppingListService,
	health HealthChecker,
) *Handler {
	return &Handler{
		lookup:    lookup,
		inventory: inventory,
		shopping:  shopping,
		health:    health,
		log:       logger.GetLogger().Named("handler"),
	}
}

type normalizeRequest struct {
	Raw string `json:"raw" binding:"max=256"`
}

type normalizeResponse struct {
	Barcode string `json:"barcode"`
	Valid   bool   `json:"valid"`
}

type utteranceRequest struct {
	Utterance string `json:"utterance" binding:"max=2000"`
}

type scanRequest struct {
	Barcode  string `json:"barcode" binding:"required,max=256"`
	Quantity int    `json:"quantity" binding:"min=0"`
}

type adjustRequest struct {
	Amount int `json:"amount" binding:"min=0"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.health.Ping(ctx); err != nil {
			h.log.Errorw("Health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "pantry-backend",
				"error":   "database unavailable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pantry-backend",
		"version": "1.0.0",
	})
}

// LookupProduct resolves a scanned barcode to a product descriptor.
// Unknown products still answer 200 with found=false.
func (h *Handler) LookupProduct(c *gin.Context) {
	barcode, ok := usecase.NormalizeBarcode(c.Param("barcode"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "barcode contains no digits"})
		return
	}

	c.JSON(http.StatusOK, h.lookup.Lookup(c.Request.Context(), barcode))
}

// NormalizeBarcode returns the canonical form of a raw scanner string
func (h *Handler) NormalizeBarcode(c *gin.Context) {
	var req normalizeRequest
	if !h.bind(c, &req) {
		return
	}

	barcode, ok := usecase.NormalizeBarcode(req.Raw)
	c.JSON(http.StatusOK, normalizeResponse{Barcode: barcode, Valid: ok})
}

// ParseUtterance splits a spoken request into line items without storing anything
func (h *Handler) ParseUtterance(c *gin.Context) {
	var req utteranceRequest
	if !h.bind(c, &req) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": usecase.ParseUtterance(req.Utterance)})
}

// ListItems returns the inventory
func (h *Handler) ListItems(c *gin.Context) {
	items, err := h.inventory.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetItem returns one inventory item
func (h *Handler) GetItem(c *gin.Context) {
	item, err := h.inventory.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateItem adds an inventory item or merges it into an existing one
func (h *Handler) CreateItem(c *gin.Context) {
	var req usecase.CreateInventoryItemRequest
	if !h.bind(c, &req) {
		return
	}

	item, err := h.inventory.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// ScanItem adds stock for a scanned barcode
func (h *Handler) ScanItem(c *gin.Context) {
	var req scanRequest
	if !h.bind(c, &req) {
		return
	}

	item, err := h.inventory.Scan(c.Request.Context(), req.Barcode, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateItem applies a partial update to an inventory item
func (h *Handler) UpdateItem(c *gin.Context) {
	var update domain.ItemUpdate
	if !h.bind(c, &update) {
		return
	}

	item, err := h.inventory.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem removes an inventory item
func (h *Handler) DeleteItem(c *gin.Context) {
	if err := h.inventory.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// IncrementItem raises the stock of an item by the optional amount (default 1)
func (h *Handler) IncrementItem(c *gin.Context) {
	h.adjust(c, 1)
}

// DecrementItem lowers the stock of an item by the optional amount (default 1)
func (h *Handler) DecrementItem(c *gin.Context) {
	h.adjust(c, -1)
}

func (h *Handler) adjust(c *gin.Context, sign int) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount := req.Amount
	if amount == 0 {
		amount = 1
	}

	item, err := h.inventory.AdjustQuantity(c.Request.Context(), c.Param("id"), sign*amount)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ListShoppingItems returns the shopping list
func (h *Handler) ListShoppingItems(c *gin.Context) {
	items, err := h.shopping.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// AddShoppingItem puts an entry on the shopping list
func (h *Handler) AddShoppingItem(c *gin.Context) {
	var req usecase.AddShoppingItemRequest
	if !h.bind(c, &req) {
		return
	}

	item, err := h.shopping.Add(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateShoppingItem applies a partial update to a shopping list entry
func (h *Handler) UpdateShoppingItem(c *gin.Context) {
	var update domain.ItemUpdate
	if !h.bind(c, &update) {
		return
	}

	item, err := h.shopping.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteShoppingItem removes a shopping list entry
func (h *Handler) DeleteShoppingItem(c *gin.Context) {
	if err := h.shopping.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportUtterance adds every item of a voice assistant utterance to the shopping list
func (h *Handler) ImportUtterance(c *gin.Context) {
	var req utteranceRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.shopping.ImportUtterance(c.Request.Context(), req.Utterance)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// bind decodes the JSON body into dst and answers 400 on failure
func (h *Handler) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrNegativeQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Errorw("Request failed",
			"path", c.Request.URL.Path,
			"request_id", requestid.Get(c),
			"error", err,
		)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
