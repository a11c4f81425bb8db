package handler

import (
	"net/http"
	"strconv"

	"github.com/MaulRai/tiku/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// OrganizerHandler 主办方控制台接口
type OrganizerHandler struct {
	eventLogic      *logic.EventLogic
	ticketTypeLogic *logic.TicketTypeLogic
	ticketLogic     *logic.TicketLogic
	statsLogic      *logic.StatsLogic
}

func NewOrganizerHandler(db *gorm.DB, chain logic.ChainReseller, epsilon float64) *OrganizerHandler {
	return &OrganizerHandler{
		eventLogic:      logic.NewEventLogic(db, epsilon),
		ticketTypeLogic: logic.NewTicketTypeLogic(db),
		ticketLogic:     logic.NewTicketLogic(db, chain),
		statsLogic:      logic.NewStatsLogic(db),
	}
}

// CreateEvent 创建活动及其提案
func (h *OrganizerHandler) CreateEvent(c *gin.Context) {
	user := CurrentUser(c)
	if user.WalletAddress == "" {
		ErrorResponse(c, http.StatusBadRequest, "请先绑定钱包地址")
		return
	}

	var input logic.CreateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	event, proposal, err := h.eventLogic.CreateEvent(&input, user.WalletAddress)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	DataResponse(c, http.StatusCreated, gin.H{
		"event":    event,
		"proposal": proposal,
	})
}

// GetMyEvents 获取主办方名下的活动
func (h *OrganizerHandler) GetMyEvents(c *gin.Context) {
	events, err := h.eventLogic.GetEventsByCreator(CurrentUser(c).WalletAddress)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"events": events})
}

// AddTicketType 为活动新增票种
func (h *OrganizerHandler) AddTicketType(c *gin.Context) {
	eventId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var input logic.TicketTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ticketType, err := h.ticketTypeLogic.AddTicketType(eventId, &input, CurrentUser(c).WalletAddress)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	DataResponse(c, http.StatusCreated, gin.H{"ticket_type": ticketType})
}

// UpdateTicketType 更新票种
func (h *OrganizerHandler) UpdateTicketType(c *gin.Context) {
	typeId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的票种ID")
		return
	}

	var input logic.TicketTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ticketType, err := h.ticketTypeLogic.UpdateTicketType(typeId, &input, CurrentUser(c).WalletAddress)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"ticket_type": ticketType})
}

// GetDashboardStats 获取主办方控制台统计
func (h *OrganizerHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.statsLogic.GetOrganizerStats(CurrentUser(c).WalletAddress)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"stats": stats})
}

// VerifyTicket 验票（不改变票的状态）
func (h *OrganizerHandler) VerifyTicket(c *gin.Context) {
	ticketId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的票ID")
		return
	}

	result, err := h.ticketLogic.VerifyTicket(ticketId)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, result)
}

// UseTicket 核销票
func (h *OrganizerHandler) UseTicket(c *gin.Context) {
	ticketId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的票ID")
		return
	}

	ticket, err := h.ticketLogic.UseTicket(ticketId, CurrentUser(c).WalletAddress)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"ticket": ticket})
}
