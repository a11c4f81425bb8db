package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/MaulRai/tiku/internal/config"
	"github.com/MaulRai/tiku/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ChainAdapter 票务接口依赖的链上能力
type ChainAdapter interface {
	logic.ChainPurchaser
	logic.ChainReseller
}

// TicketHandler 购票与持票接口
type TicketHandler struct {
	checkoutLogic *logic.CheckoutLogic
	ticketLogic   *logic.TicketLogic
}

func NewTicketHandler(db *gorm.DB, chain ChainAdapter, cfg config.CheckoutConfig) *TicketHandler {
	return &TicketHandler{
		checkoutLogic: logic.NewCheckoutLogic(db, chain, cfg),
		ticketLogic:   logic.NewTicketLogic(db, chain),
	}
}

type checkoutRequest struct {
	EventId    int64         `json:"event_id" binding:"required"`
	Quantities map[int64]int `json:"quantities" binding:"required"`
}

// Quote 计算选购报价
func (h *TicketHandler) Quote(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := h.checkoutLogic.Quote(req.EventId, req.Quantities)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"quote": quote})
}

// Purchase 购票
func (h *TicketHandler) Purchase(c *gin.Context) {
	user := CurrentUser(c)
	if user.WalletAddress == "" {
		ErrorResponse(c, http.StatusBadRequest, "请先绑定钱包地址")
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.checkoutLogic.Purchase(c.Request.Context(), req.EventId, req.Quantities, user.WalletAddress)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	DataResponse(c, http.StatusCreated, result)
}

// GetMyTickets 获取当前用户持有的票
func (h *TicketHandler) GetMyTickets(c *gin.Context) {
	tickets, err := h.ticketLogic.GetUserTickets(CurrentUser(c).WalletAddress)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"tickets": tickets})
}

// ListForResale 挂单转售
func (h *TicketHandler) ListForResale(c *gin.Context) {
	ticketId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的票ID")
		return
	}

	var req struct {
		ResalePrice    int64     `json:"resale_price" binding:"required"` // wei
		ResaleDeadline time.Time `json:"resale_deadline" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ticket, err := h.ticketLogic.ListForResale(c.Request.Context(), ticketId,
		req.ResalePrice, req.ResaleDeadline, CurrentUser(c).WalletAddress)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"ticket": ticket})
}

// BuyResale 购买转售票
func (h *TicketHandler) BuyResale(c *gin.Context) {
	ticketId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的票ID")
		return
	}

	user := CurrentUser(c)
	if user.WalletAddress == "" {
		ErrorResponse(c, http.StatusBadRequest, "请先绑定钱包地址")
		return
	}

	ticket, err := h.ticketLogic.BuyResale(c.Request.Context(), ticketId, user.WalletAddress)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"ticket": ticket})
}

// GetResaleTickets 获取转售市场在售票
func (h *TicketHandler) GetResaleTickets(c *gin.Context) {
	eventId, _ := strconv.ParseInt(c.Query("event_id"), 10, 64)

	tickets, err := h.ticketLogic.GetResaleTickets(eventId)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"tickets": tickets})
}

// SyncTicket 从链上同步票详情
func (h *TicketHandler) SyncTicket(c *gin.Context) {
	ticketId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的票ID")
		return
	}

	ticket, err := h.ticketLogic.SyncTicketFromChain(c.Request.Context(), ticketId)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"ticket": ticket})
}
