package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/alims/leadcrm/internal/crm/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	user, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, user)
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, resp)
}

// Me GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.GetUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, user)
}

// ListCounsellors GET /api/v1/counsellors
func (h *AuthHandler) ListCounsellors(c *gin.Context) {
	counsellors, err := h.auth.ListCounsellors(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, counsellors)
}
