package handlers

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"laluna/internal/domain/inventory"
	"laluna/internal/infrastructure/http/v1/dto"
	"laluna/internal/infrastructure/realtime"
)

// InventoryHandler handles products, branch stock and the live stock feed.
type InventoryHandler struct {
	*BaseHandler
	service  *inventory.Service
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewInventoryHandler creates a new inventory handler. allowedOrigins limits
// WebSocket upgrades; empty allows any origin.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service, hub *realtime.Hub, allowedOrigins []string) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler: base,
		service:     service,
		hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 || slices.Contains(allowed, "*") {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

// ListProducts handles GET /inventory/products
func (h *InventoryHandler) ListProducts(c *gin.Context) {
	activeOnly := c.DefaultQuery("all", "false") != "true"

	products, err := h.service.ListProducts(c.Request.Context(), activeOnly)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProducts(products))
}

// CreateProduct handles POST /inventory/products
func (h *InventoryHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.CreateProduct(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromProduct(p))
}

// UpdateProduct handles PATCH /inventory/products/:id
func (h *InventoryHandler) UpdateProduct(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.UpdateProduct(c.Request.Context(), productID, req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProduct(p))
}

// Stock handles GET /inventory/branches/:branchId/stock
func (h *InventoryHandler) Stock(c *gin.Context) {
	branchID, ok := h.ParseBranchID(c)
	if !ok {
		return
	}

	stock, err := h.service.StockForBranch(c.Request.Context(), branchID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBranchStock(stock))
}

// AdjustStock handles PATCH /inventory/branches/:branchId/stock/:productId
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	branchID, ok := h.ParseBranchID(c)
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.AdjustStock(c.Request.Context(), inventory.AdjustInput{
		BranchID:  branchID,
		ProductID: productID,
		Quantity:  req.Quantity,
		Mode:      req.Mode,
		UserID:    h.CurrentUserID(c),
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromAdjustResult(result))
}

// History handles GET /inventory/branches/:branchId/history
func (h *InventoryHandler) History(c *gin.Context) {
	branchID, ok := h.ParseBranchID(c)
	if !ok {
		return
	}
	q := dto.HistoryQuery{Limit: inventory.DefaultHistoryLimit}
	if !h.BindQuery(c, &q) {
		return
	}

	entries, err := h.service.History(c.Request.Context(), branchID, q.Limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromHistory(entries))
}

// Seed handles POST /inventory/seed
func (h *InventoryHandler) Seed(c *gin.Context) {
	result, err := h.service.SeedCatalog(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.SeedResponse{
		Inserted: result.Inserted,
		Existing: result.Existing,
		Message:  result.Message,
	})
}

// Live handles GET /inventory/branches/:branchId/live. The connection
// receives a stock.updated frame for every committed adjustment of the branch.
func (h *InventoryHandler) Live(c *gin.Context) {
	branchID, ok := h.ParseBranchID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	h.hub.Serve(branchID, conn)
}
