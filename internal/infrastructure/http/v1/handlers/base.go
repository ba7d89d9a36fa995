package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"laluna/internal/core/apperror"
	appctx "laluna/internal/core/context"
	"laluna/internal/core/id"
	"laluna/internal/infrastructure/http/v1/dto"
	"laluna/internal/infrastructure/http/v1/middleware"
)

const contentTypeJSON = "application/json; charset=utf-8"

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers err on the Gin context and aborts the request.
// The JSON response is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseID reads a UUID path parameter.
func (h *BaseHandler) ParseID(c *gin.Context, param string) (id.ID, bool) {
	v, err := id.Parse(c.Param(param))
	if err != nil {
		h.Error(c, apperror.NewInvalidInput(param, param+" must be a UUID").WithDetail("value", c.Param(param)))
		return id.ID{}, false
	}
	return v, true
}

// ParseBranchID reads a positive integer branch id from the path.
func (h *BaseHandler) ParseBranchID(c *gin.Context) (int, bool) {
	v, err := strconv.Atoi(c.Param("branchId"))
	if err != nil || v <= 0 {
		h.Error(c, apperror.NewInvalidInput("branchId", "branch id must be a positive integer").
			WithDetail("value", c.Param("branchId")))
		return 0, false
	}
	return v, true
}

// CurrentUserID returns the authenticated user id, or nil.
func (h *BaseHandler) CurrentUserID(c *gin.Context) *id.ID {
	raw := appctx.GetUserID(c.Request.Context())
	if raw == "" {
		return nil
	}
	v, err := id.Parse(raw)
	if err != nil {
		return nil
	}
	return &v
}

// Respond writes body as JSON and stores it for idempotent replay.
func (h *BaseHandler) Respond(c *gin.Context, status int, body any) {
	raw, err := json.Marshal(body)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	middleware.CompleteIdempotency(c, status, contentTypeJSON, raw)
	c.Data(status, contentTypeJSON, raw)
}

// OK sends 200 with data in the success envelope.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	h.Respond(c, http.StatusOK, dto.OK(data))
}

// Created sends 201 with data in the success envelope.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	h.Respond(c, http.StatusCreated, dto.OK(data))
}

// Success sends 200 with a message.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	h.Respond(c, http.StatusOK, dto.Message(message))
}
