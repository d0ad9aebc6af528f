package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/jumakrk/IST-MOBILE-APP/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler handles the admin user-management screen and the profile view
type UserHandler struct {
	service service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context(), c.Query("role"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) ChangeUserRole(c *gin.Context) {
	user, err := h.service.ChangeUserRole(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// StreamUsers is the live user-list subscription: it emits the full list on
// connect and again whenever any user document changes.
func (h *UserHandler) StreamUsers(c *gin.Context) {
	ch := h.service.Changes().Subscribe()
	defer h.service.Changes().Unsubscribe(ch)

	c.Writer.Header().Set("Cache-Control", "no-cache")

	emit := func() bool {
		users, err := h.service.ListUsers(c.Request.Context(), c.Query("role"))
		if err != nil {
			// Dropped silently: the stream stays open and the next change
			// retries, matching the snapshot-listener behavior.
			return true
		}
		c.SSEvent("users", users)
		return true
	}

	if !emit() {
		return
	}
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case _, ok := <-ch:
			if !ok {
				return false
			}
			return emit()
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *UserHandler) Profile(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User data not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// RegisterUserRoutes registers user management and profile routes
func (h *UserHandler) RegisterUserRoutes(rg *gin.RouterGroup, jwtAuthMW, adminMW gin.HandlerFunc) {
	userGroup := rg.Group("/users", jwtAuthMW, adminMW)
	{
		userGroup.GET("", h.ListUsers)
		userGroup.GET("/stream", h.StreamUsers)
		userGroup.POST("/:id/role", h.ChangeUserRole)
	}

	rg.GET("/profile", jwtAuthMW, h.Profile)
}
