package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hyprmtrx/hvm/service"
)

// AuthHandlers contains HTTP handlers for the auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

type authRequestBody struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	AuthType      string `json:"auth_type" binding:"required"`
	Message       string `json:"message"`
	SignedMessage string `json:"signed_message"`
	UserName      string `json:"user_name"`
	GameName      string `json:"game_name"`
}

// Authenticate handles the two-step sign-in/registration flow: a
// request without signed_message receives the challenge to sign, a
// request with one runs through verification.
func (h *AuthHandlers) Authenticate(c *gin.Context) {
	var req authRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": service.StatusFailure,
			"reason": service.ReasonInvalidRequest,
		})
		return
	}

	result := h.authService.Authenticate(c.Request.Context(), service.AuthRequest{
		Address:   req.WalletAddress,
		Scheme:    req.AuthType,
		Message:   req.Message,
		Signature: req.SignedMessage,
		Handle:    req.UserName,
		Game:      req.GameName,
	})

	c.JSON(statusCode(result), result)
}

func statusCode(result service.AuthResult) int {
	if result.Status != service.StatusFailure {
		return http.StatusOK
	}
	switch result.Reason {
	case service.ReasonAuthenticationFailed:
		return http.StatusUnauthorized
	case service.ReasonAlreadyRegistered:
		return http.StatusConflict
	case service.ReasonServiceUnavailable:
		return http.StatusServiceUnavailable
	case service.ReasonInvalidRequest, service.ReasonUnsupportedScheme:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Me returns the identity bound to the presented session token
func (h *AuthHandlers) Me(c *gin.Context) {
	session, exists := getSession(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"handle":       session.Handle,
		"auth_wallets": session.AuthWallets,
		"game":         session.Game,
	})
}
