package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/jumakrk/IST-MOBILE-APP/internal/authstate"
	"github.com/jumakrk/IST-MOBILE-APP/internal/middleware"
	"github.com/jumakrk/IST-MOBILE-APP/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

// Helper to get authenticated user ID from context
func getAuthUserID(c *gin.Context) (string, error) {
	userIDVal, exists := c.Get(middleware.AuthUserKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	userID, ok := userIDVal.(string)
	if !ok {
		return "", errors.New("invalid user ID type in context")
	}
	return userID, nil
}

// stateStatus maps a terminal auth state to an HTTP status: Error uses the
// supplied failure code, everything else is 200. The state payload itself
// carries the user-facing message either way.
func stateStatus(state authstate.State, failCode int) int {
	if state.Status == authstate.StatusError {
		return failCode
	}
	return http.StatusOK
}

func (h *AuthHandler) Signup(c *gin.Context) {
	// No binding validation here on purpose: the service validates and
	// answers with the message catalog the clients render.
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		Firstname string `json:"firstname"`
		Lastname  string `json:"lastname"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	state := h.service.Signup(c.Request.Context(), req.Email, req.Password, req.Firstname, req.Lastname)
	c.JSON(stateStatus(state, http.StatusBadRequest), gin.H{"state": state})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	state, result := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if result == nil {
		c.JSON(stateStatus(state, http.StatusUnauthorized), gin.H{"state": state})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state, "token": result.Token, "user": result.User})
}

func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	state, result := h.service.GoogleSignIn(c.Request.Context(), req.IDToken)
	if result == nil {
		c.JSON(stateStatus(state, http.StatusUnauthorized), gin.H{"state": state})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state, "token": result.Token, "user": result.User})
}

// Status resolves the session on app start. The bearer token is optional:
// absent or invalid simply reads as unauthenticated.
func (h *AuthHandler) Status(c *gin.Context) {
	state := h.service.CheckStatus(c.Request.Context(), middleware.BearerToken(c))
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// State returns the auth state the holder currently carries.
func (h *AuthHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.service.States().Current()})
}

// StreamState streams auth state transitions as server-sent events.
func (h *AuthHandler) StreamState(c *gin.Context) {
	ch := h.service.States().Subscribe()
	defer h.service.States().Unsubscribe(ch)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case state, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("state", state)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	state := h.service.Logout(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"state": state, "message": "Successfully logged out"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	state := h.service.ResetPassword(c.Request.Context(), req.Email)
	c.JSON(stateStatus(state, http.StatusBadRequest), gin.H{"state": state})
}

func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.service.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters long"})
		case errors.Is(err, service.ErrInvalidToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset link"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated. You can now log in"})
}

func (h *AuthHandler) ResendVerificationEmail(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	state := h.service.ResendVerificationEmail(c.Request.Context(), userID)
	c.JSON(stateStatus(state, http.StatusBadRequest), gin.H{"state": state})
}

// VerifyEmail consumes the emailed verification link.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing verification token"})
		return
	}

	if err := h.service.VerifyEmail(c.Request.Context(), token); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification link"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify email"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified. You can now log in"})
}

func (h *AuthHandler) VerificationStatus(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	state := h.service.CheckEmailVerification(c.Request.Context(), userID)
	c.JSON(stateStatus(state, http.StatusBadRequest), gin.H{"state": state})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User data not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User data not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

func (h *AuthHandler) LoginMessage(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	shown, err := h.service.LoginMessageShown(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read preference"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shown": shown})
}

func (h *AuthHandler) MarkLoginMessage(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.MarkLoginMessageShown(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write preference"})
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, jwtAuthMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/signup", h.Signup)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/google", h.GoogleSignIn)
		authGroup.GET("/status", h.Status)
		authGroup.GET("/state", h.State)
		authGroup.GET("/state/stream", h.StreamState)
		authGroup.GET("/verify", h.VerifyEmail)
		authGroup.POST("/reset-password", h.ResetPassword)
		authGroup.POST("/reset-password/confirm", h.ConfirmPasswordReset)

		protected := authGroup.Group("", jwtAuthMW)
		{
			protected.POST("/logout", h.Logout)
			protected.POST("/verify/resend", h.ResendVerificationEmail)
			protected.GET("/verification-status", h.VerificationStatus)
			protected.GET("/me", h.Me)
			protected.DELETE("/me", h.DeleteAccount)
			protected.GET("/login-message", h.LoginMessage)
			protected.POST("/login-message", h.MarkLoginMessage)
		}
	}
}
