// Package stories — handlers.go: лента, страница истории, публикация.
package stories

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"serotonyl.ru/newsboard/internal/common"
	"serotonyl.ru/newsboard/internal/features/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List — GET /api/stories?sort=new|top|hot&limit=&offset=
func (h *Handler) List(c *gin.Context) {
	params := ListParams{
		Sort:   ParseSort(c.Query("sort")),
		Limit:  common.ClampLimit(c.Query("limit"), DefaultLimit, MaxLimit),
		Offset: common.ParseOffset(c.Query("offset")),
	}

	stories, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		common.InternalError(c, err, "Get Stories error")
		return
	}
	c.JSON(http.StatusOK, stories)
}

// Get — GET /api/stories/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.JSONError(c, http.StatusBadRequest, "Invalid story id")
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrStoryNotFound) {
			common.JSONError(c, http.StatusNotFound, "Story not found")
			return
		}
		common.InternalError(c, err, "Get Story error")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Create — POST /api/stories
func (h *Handler) Create(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		common.JSONError(c, http.StatusUnauthorized, "Unauthorized: Missing token")
		return
	}
	var username string
	if claims, ok := auth.CurrentClaims(c); ok {
		username = claims.Username
	}

	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.JSONError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	story, err := h.service.Create(c.Request.Context(), userID, username, in)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTitleRequired):
			common.JSONError(c, http.StatusBadRequest, "Title is required")
		case errors.Is(err, common.ErrTitleTooLong):
			common.JSONError(c, http.StatusBadRequest, "Title is too long")
		case errors.Is(err, common.ErrInvalidURL):
			common.JSONError(c, http.StatusBadRequest, "Invalid url")
		default:
			common.InternalError(c, err, "Create Story error")
		}
		return
	}
	c.JSON(http.StatusCreated, story)
}
