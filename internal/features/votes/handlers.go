// Package votes — handlers.go обрабатывает POST /api/votes и GET /api/votes.
package votes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"serotonyl.ru/newsboard/internal/common"
	"serotonyl.ru/newsboard/internal/features/auth"
)

// Handler обрабатывает HTTP-запросы голосования.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик голосования.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Vote — POST /api/votes {itemId, itemType, value} → {message, scoreDelta}.
func (h *Handler) Vote(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		common.JSONError(c, http.StatusUnauthorized, "Unauthorized: Missing token")
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.JSONError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.service.Apply(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidItemType):
			common.JSONError(c, http.StatusBadRequest, "Invalid item type")
		case errors.Is(err, common.ErrInvalidVoteValue):
			common.JSONError(c, http.StatusBadRequest, "Invalid vote value")
		case errors.Is(err, common.ErrInvalidItemID):
			common.JSONError(c, http.StatusBadRequest, "Invalid item id")
		case errors.Is(err, common.ErrVoteConflict):
			common.JSONError(c, http.StatusConflict, "Vote conflict, please retry")
		default:
			common.InternalError(c, err, "Vote error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    res.Message(),
		"scoreDelta": res.ScoreDelta,
	})
}

// List — GET /api/votes?itemType=story|comment: голоса текущего пользователя.
func (h *Handler) List(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		common.JSONError(c, http.StatusUnauthorized, "Unauthorized: Missing token")
		return
	}

	var kind ItemKind
	if raw := c.Query("itemType"); raw != "" {
		k, err := ParseItemKind(raw)
		if err != nil {
			common.JSONError(c, http.StatusBadRequest, "Invalid item type")
			return
		}
		kind = k
	}

	votes, err := h.service.ListForUser(c.Request.Context(), userID, kind)
	if err != nil {
		common.InternalError(c, err, "Get votes error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"votes": votes})
}
