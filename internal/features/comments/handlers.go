// Package comments — handlers.go: POST /api/comments.
package comments

import (
	"errors"
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

// Create — новый комментарий от текущего пользователя, 201 с комментарием.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		common.JSONError(c, http.StatusUnauthorized, "Unauthorized: Missing token")
		return
	}

	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.JSONError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.service.Create(c.Request.Context(), userID, in)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrContentRequired):
			common.JSONError(c, http.StatusBadRequest, "Story ID and content are required")
		case errors.Is(err, common.ErrInvalidStoryID):
			common.JSONError(c, http.StatusBadRequest, "Invalid story id")
		case errors.Is(err, common.ErrStoryNotFound):
			common.JSONError(c, http.StatusNotFound, "Story not found")
		case errors.Is(err, common.ErrParentNotFound):
			common.JSONError(c, http.StatusBadRequest, "Parent comment not found")
		default:
			common.InternalError(c, err, "Create Comment error")
		}
		return
	}

	c.JSON(http.StatusCreated, comment)
}
