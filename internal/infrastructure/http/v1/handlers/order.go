package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"laluna/internal/core/id"
	"laluna/internal/domain/order"
	"laluna/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles order HTTP requests.
type OrderHandler struct {
	*BaseHandler
	service *order.Service
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, service *order.Service) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(h.CurrentUserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.PlaceOrder(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromPlaceResult(result))
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Respond(c, http.StatusOK, dto.FromPage(page))
}

// Statistics handles GET /orders/statistics
func (h *OrderHandler) Statistics(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	stats, err := h.service.Statistics(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromStatistics(stats))
}

func (h *OrderHandler) bindFilter(c *gin.Context) (order.ListFilter, bool) {
	var q dto.OrderListQuery
	if !h.BindQuery(c, &q) {
		return order.ListFilter{}, false
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return order.ListFilter{}, false
	}
	return filter, true
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	o, err := h.service.Get(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(o))
}

// WhatsAppLink handles GET /orders/:id/whatsapp-link
func (h *OrderHandler) WhatsAppLink(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	link, err := h.service.WhatsAppLink(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.WhatsAppLinkResponse{WhatsAppLink: link})
}

// MarkWhatsAppSent handles PATCH /orders/:id/whatsapp-sent
func (h *OrderHandler) MarkWhatsAppSent(c *gin.Context) {
	h.mutate(c, h.service.MarkWhatsAppSent)
}

// MarkPaid handles PATCH /orders/:id/mark-paid
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	h.mutate(c, h.service.MarkFullyPaid)
}

// RecordPayment handles PATCH /orders/:id/payments
func (h *OrderHandler) RecordPayment(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.service.RecordPayment(c.Request.Context(), orderID, req.Amount)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(o))
}

// SetAmountPaid handles PATCH /orders/:id/amount-paid
func (h *OrderHandler) SetAmountPaid(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.AmountPaidRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.service.SetAmountPaid(c.Request.Context(), orderID, req.AmountPaid)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(o))
}

// Delete handles DELETE /orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteOrder(c.Request.Context(), orderID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "order deleted")
}

func (h *OrderHandler) mutate(c *gin.Context, fn func(ctx context.Context, orderID id.ID) (*order.Order, error)) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	o, err := fn(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(o))
}
