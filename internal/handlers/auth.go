// internal/handlers/auth.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kon/onlineshop/internal/services"
	"github.com/kon/onlineshop/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
	cartService *services.CartService
}

func NewAuthHandler(authService *services.AuthService, cartService *services.CartService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cartService: cartService,
	}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, resp)
}

// POST /auth/login
//
// An optional guest_cart carries the lines a visitor collected before
// signing in; they are folded into the account's cart after a
// successful login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		services.LoginRequest
		GuestCart []services.CartItemView `json:"guest_cart,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	resp, err := h.authService.Login(&req.LoginRequest)
	if err != nil {
		// Only bad credentials map to 401; a malformed request is
		// still the client's 400.
		var badRequest *services.BadRequestError
		if errors.As(err, &badRequest) {
			handleServiceError(c, err)
			return
		}
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	if len(req.GuestCart) > 0 {
		guest := &services.CartView{Items: req.GuestCart}
		if _, err := h.cartService.MergeCarts(guest, resp.User.ID); err != nil {
			logrus.WithError(err).WithField("user_id", resp.User.ID).
				Warn("failed to merge guest cart on login")
		}
	}

	utils.SuccessResponse(c, resp)
}

// POST /auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	resp, err := h.authService.RefreshToken(req.RefreshToken)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, resp)
}

// GET /auth/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}
