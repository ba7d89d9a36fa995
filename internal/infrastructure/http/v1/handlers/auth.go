package handlers

import (
	"github.com/gin-gonic/gin"

	"laluna/internal/core/apperror"
	"laluna/internal/domain/auth"
	"laluna/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles login, token verification and user management.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Login authenticates a user and returns a bearer token.
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Login(c.Request.Context(), auth.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.FromUser(result.User),
	})
}

// Verify returns the user behind the presented token.
// GET /auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	userID := h.CurrentUserID(c)
	if userID == nil {
		h.Error(c, apperror.NewUnauthorized("invalid token subject"))
		return
	}

	user, err := h.service.Verify(c.Request.Context(), *userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.VerifyResponse{User: dto.FromUser(user)})
}

// ListUsers returns the active accounts.
// GET /users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromUsers(users))
}

// CreateUser provisions an account.
// POST /users
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromUser(user))
}
