package handler

import (
	"net/http"
	"strconv"

	"github.com/MaulRai/tiku/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminHandler struct {
	proposalLogic *logic.ProposalLogic
	eventLogic    *logic.EventLogic
	statsLogic    *logic.StatsLogic
}

func NewAdminHandler(db *gorm.DB, epsilon float64) *AdminHandler {
	return &AdminHandler{
		proposalLogic: logic.NewProposalLogic(db),
		eventLogic:    logic.NewEventLogic(db, epsilon),
		statsLogic:    logic.NewStatsLogic(db),
	}
}

// GetPendingProposals 获取待审核提案列表
func (h *AdminHandler) GetPendingProposals(c *gin.Context) {
	proposals, err := h.proposalLogic.GetPendingProposals()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"proposals": proposals})
}

// ApproveProposal 批准提案
func (h *AdminHandler) ApproveProposal(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的提案ID")
		return
	}

	var req struct {
		TaxWalletAddress string `json:"tax_wallet_address"`
		AdminComment     string `json:"admin_comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	proposal, err := h.proposalLogic.ApproveProposal(id, req.TaxWalletAddress, req.AdminComment)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"proposal": proposal})
}

// RejectProposal 拒绝提案
func (h *AdminHandler) RejectProposal(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的提案ID")
		return
	}

	var req struct {
		AdminComment string `json:"admin_comment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "拒绝提案必须填写原因")
		return
	}

	proposal, err := h.proposalLogic.RejectProposal(id, req.AdminComment)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"proposal": proposal})
}

// GetAdminStats 获取管理后台统计
func (h *AdminHandler) GetAdminStats(c *gin.Context) {
	DataResponse(c, http.StatusOK, gin.H{"stats": h.statsLogic.GetAdminStats()})
}

// GetEventOrganizers 获取主办方列表
func (h *AdminHandler) GetEventOrganizers(c *gin.Context) {
	organizers, err := h.statsLogic.GetEventOrganizers()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"organizers": organizers})
}

// CancelEvent 取消活动
func (h *AdminHandler) CancelEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	if err := h.eventLogic.CancelEvent(id); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"cancelled": true})
}
