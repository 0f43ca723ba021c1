// Package users — handlers.go: /api/auth/* и /api/users/:userId.
package users

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"serotonyl.ru/newsboard/internal/common"
	"serotonyl.ru/newsboard/internal/features/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register — POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var in RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.JSONError(c, http.StatusBadRequest, "All fields are required")
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMissingFields):
			common.JSONError(c, http.StatusBadRequest, "All fields are required")
		case errors.Is(err, common.ErrPasswordTooShort):
			common.JSONError(c, http.StatusBadRequest,
				fmt.Sprintf("Password must be at least %d characters", h.service.cfg.PasswordMinLength))
		case errors.Is(err, common.ErrInvalidEmail):
			common.JSONError(c, http.StatusBadRequest, "Invalid email")
		case errors.Is(err, common.ErrEmailTaken):
			common.JSONError(c, http.StatusConflict, "Email already exists")
		case errors.Is(err, common.ErrUsernameTaken):
			common.JSONError(c, http.StatusConflict, "Username already exists")
		default:
			common.InternalError(c, err, "Register error")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
	})
}

// Login — POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var in LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.JSONError(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMissingFields):
			common.JSONError(c, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, common.ErrInvalidCredentials):
			common.JSONError(c, http.StatusUnauthorized, "Invalid credentials")
		default:
			common.InternalError(c, err, "Login error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Me — GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		common.JSONError(c, http.StatusUnauthorized, "Unauthorized: Missing token")
		return
	}

	user, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			common.JSONError(c, http.StatusNotFound, "User not found")
			return
		}
		common.InternalError(c, err, "Get Me error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Profile — GET /api/users/:userId (username или UUID)
func (h *Handler) Profile(c *gin.Context) {
	profile, err := h.service.Profile(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			common.JSONError(c, http.StatusNotFound, "User not found")
			return
		}
		common.InternalError(c, err, "Get Profile error")
		return
	}
	c.JSON(http.StatusOK, profile)
}
