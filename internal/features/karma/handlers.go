// Package karma — handlers.go: GET /api/leaders.
package karma

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"serotonyl.ru/newsboard/internal/common"
)

// Handler обрабатывает HTTP-запросы кармы.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик кармы.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Leaders — таблица лидеров по карме.
func (h *Handler) Leaders(c *gin.Context) {
	limit := common.ClampLimit(c.Query("limit"), DefaultLeadersLimit, MaxLeadersLimit)
	leaders, err := h.service.Leaders(c.Request.Context(), limit)
	if err != nil {
		common.InternalError(c, err, "Ошибка получения лидеров")
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaders": leaders})
}
