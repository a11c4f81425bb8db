package handler

import (
	"net/http"
	"strconv"

	"github.com/MaulRai/tiku/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type EventHandler struct {
	eventLogic *logic.EventLogic
}

func NewEventHandler(db *gorm.DB, epsilon float64) *EventHandler {
	return &EventHandler{
		eventLogic: logic.NewEventLogic(db, epsilon),
	}
}

// GetEvents 获取活动列表
func (h *EventHandler) GetEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	filter := logic.EventFilter{
		Status:   c.Query("status"),
		Location: c.Query("location"),
		Search:   c.Query("search"),
		SortBy:   c.Query("sort_by"),
		Order:    c.Query("order"),
		Page:     page,
		PageSize: pageSize,
	}

	events, total, err := h.eventLogic.GetEvents(filter)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{
		"events":     events,
		"pagination": NewPagination(page, pageSize, total),
	})
}

// GetEvent 获取活动详情
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	event, err := h.eventLogic.GetEvent(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"event": event})
}

// GetEventStats 获取活动统计
func (h *EventHandler) GetEventStats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	stats, err := h.eventLogic.GetEventStats(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"stats": stats})
}
