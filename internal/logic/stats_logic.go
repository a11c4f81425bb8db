package logic

import (
	"fmt"

	"github.com/MaulRai/tiku/internal/logger"
	"github.com/MaulRai/tiku/internal/model"
	"gorm.io/gorm"
)

// StatsLogic 平台统计业务逻辑
type StatsLogic struct {
	db *gorm.DB
}

// NewStatsLogic 创建平台统计业务逻辑
func NewStatsLogic(db *gorm.DB) *StatsLogic {
	return &StatsLogic{db: db}
}

// AdminStats 管理后台统计
type AdminStats struct {
	TotalEvents        int64                  `json:"total_events"`
	ActiveEvents       int64                  `json:"active_events"`
	PendingProposals   int64                  `json:"pending_proposals"`
	TotalTicketsSold   int64                  `json:"total_tickets_sold"`
	TotalRevenue       int64                  `json:"total_revenue"` // wei
	RecentTransactions []model.PurchaseRecord `json:"recent_transactions"`
}

// GetAdminStats 获取管理后台统计
// 各项统计相互独立：单项查询失败只记录日志并保留零值，不影响其余项
func (s *StatsLogic) GetAdminStats() *AdminStats {
	stats := &AdminStats{RecentTransactions: []model.PurchaseRecord{}}

	if err := s.db.Model(&model.Event{}).Count(&stats.TotalEvents).Error; err != nil {
		logger.Warn("Failed to count events for admin stats: %v", err)
	}
	if err := s.db.Model(&model.Event{}).Where("status = ?", model.EventStatusActive).
		Count(&stats.ActiveEvents).Error; err != nil {
		logger.Warn("Failed to count active events for admin stats: %v", err)
	}
	if err := s.db.Model(&model.Proposal{}).Where("status = ?", model.ProposalStatusPending).
		Count(&stats.PendingProposals).Error; err != nil {
		logger.Warn("Failed to count pending proposals for admin stats: %v", err)
	}

	var totals struct {
		TotalTicketsSold int64
		TotalRevenue     int64
	}
	if err := s.db.Model(&model.TicketType{}).
		Select("COALESCE(SUM(sold), 0) as total_tickets_sold, COALESCE(SUM(price * sold), 0) as total_revenue").
		Scan(&totals).Error; err != nil {
		logger.Warn("Failed to aggregate ticket sales for admin stats: %v", err)
	}
	stats.TotalTicketsSold = totals.TotalTicketsSold
	stats.TotalRevenue = totals.TotalRevenue

	if err := s.db.Order("created_at desc").Limit(10).
		Find(&stats.RecentTransactions).Error; err != nil {
		logger.Warn("Failed to load recent transactions for admin stats: %v", err)
	}

	return stats
}

// GetEventOrganizers 获取全部主办方用户
func (s *StatsLogic) GetEventOrganizers() ([]model.User, error) {
	var organizers []model.User
	if err := s.db.Where("role = ?", model.UserRoleOrganizer).
		Order("created_at asc").
		Find(&organizers).Error; err != nil {
		return nil, fmt.Errorf("获取主办方列表失败: %w", err)
	}
	return organizers, nil
}

// OrganizerStats 主办方控制台统计
type OrganizerStats struct {
	TotalEvents      int64 `json:"total_events"`
	ApprovedEvents   int64 `json:"approved_events"`
	PendingEvents    int64 `json:"pending_events"`
	TotalTicketsSold int64 `json:"total_tickets_sold"`
	TotalRevenue     int64 `json:"total_revenue"` // wei
}

// GetOrganizerStats 获取主办方控制台统计
func (s *StatsLogic) GetOrganizerStats(creatorAddress string) (*OrganizerStats, error) {
	stats := &OrganizerStats{}

	if err := s.db.Model(&model.Event{}).Where("creator_address = ?", creatorAddress).
		Count(&stats.TotalEvents).Error; err != nil {
		return nil, fmt.Errorf("统计主办方活动总数失败: %w", err)
	}
	if err := s.db.Model(&model.Event{}).
		Where("creator_address = ? AND status IN ?", creatorAddress,
			[]model.EventStatus{model.EventStatusApproved, model.EventStatusActive}).
		Count(&stats.ApprovedEvents).Error; err != nil {
		return nil, fmt.Errorf("统计已批准活动失败: %w", err)
	}
	if err := s.db.Model(&model.Event{}).
		Where("creator_address = ? AND status = ?", creatorAddress, model.EventStatusPending).
		Count(&stats.PendingEvents).Error; err != nil {
		return nil, fmt.Errorf("统计待审核活动失败: %w", err)
	}

	var totals struct {
		TotalTicketsSold int64
		TotalRevenue     int64
	}
	if err := s.db.Model(&model.TicketType{}).
		Joins("JOIN event ON event.id = ticket_type.event_id").
		Where("event.creator_address = ?", creatorAddress).
		Select("COALESCE(SUM(ticket_type.sold), 0) as total_tickets_sold, COALESCE(SUM(ticket_type.price * ticket_type.sold), 0) as total_revenue").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("统计主办方售票数据失败: %w", err)
	}
	stats.TotalTicketsSold = totals.TotalTicketsSold
	stats.TotalRevenue = totals.TotalRevenue

	return stats, nil
}
