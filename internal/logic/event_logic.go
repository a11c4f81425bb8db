package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/MaulRai/tiku/internal/model"
	"github.com/MaulRai/tiku/internal/revenue"
	"gorm.io/gorm"
)

// EventLogic 活动业务逻辑
type EventLogic struct {
	db      *gorm.DB
	epsilon float64 // 受益人百分比合计的容差
}

// NewEventLogic 创建活动业务逻辑
func NewEventLogic(db *gorm.DB, epsilon float64) *EventLogic {
	return &EventLogic{db: db, epsilon: epsilon}
}

// BeneficiaryInput 受益人入参（表单百分比输入）
type BeneficiaryInput struct {
	Address    string  `json:"address" binding:"required"`
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage" binding:"required"`
}

// CreateEventInput 创建活动入参
type CreateEventInput struct {
	Name             string             `json:"name" binding:"required"`
	Description      string             `json:"description"`
	Location         string             `json:"location" binding:"required"`
	Date             time.Time          `json:"date" binding:"required"`
	PosterURL        string             `json:"poster_url"`
	TaxWalletAddress string             `json:"tax_wallet_address"`
	Beneficiaries    []BeneficiaryInput `json:"beneficiaries"`
}

// CreateEvent 创建活动及其提案
// 活动与提案同时落库，提案进入待审核状态；受益人分成不合法时整体拒绝
func (e *EventLogic) CreateEvent(input *CreateEventInput, creatorAddress string) (*model.Event, *model.Proposal, error) {
	if input.Name == "" {
		return nil, nil, errors.New("活动名称不能为空")
	}
	if input.Location == "" {
		return nil, nil, errors.New("活动地点不能为空")
	}
	if input.Date.Before(time.Now()) {
		return nil, nil, errors.New("活动时间不能早于当前时间")
	}
	if creatorAddress == "" {
		return nil, nil, errors.New("创建者未绑定钱包地址")
	}

	// 表单百分比先做容差校验，再换算成基点做精确校验；不通过则整体不落库
	percentages := make([]float64, 0, len(input.Beneficiaries))
	for _, b := range input.Beneficiaries {
		percentages = append(percentages, b.Percentage)
	}
	if !revenue.ValidateTotalPercentage(percentages, e.epsilon) {
		sum := 0.0
		for _, p := range percentages {
			sum += p
		}
		return nil, nil, fmt.Errorf("受益人比例合计必须为100%%，当前为%.2f%%", sum)
	}

	beneficiaries := make([]model.RevenueBeneficiary, 0, len(input.Beneficiaries))
	for i, b := range input.Beneficiaries {
		beneficiaries = append(beneficiaries, model.RevenueBeneficiary{
			Address:     b.Address,
			Name:        b.Name,
			BasisPoints: revenue.ToBasisPoints(b.Percentage),
			SortOrder:   i,
		})
	}
	if err := revenue.ValidateSplit(beneficiaries); err != nil {
		return nil, nil, err
	}

	event := model.Event{
		Name:           input.Name,
		Description:    input.Description,
		Location:       input.Location,
		Date:           input.Date,
		PosterURL:      input.PosterURL,
		Status:         model.EventStatusPending,
		CreatorAddress: creatorAddress,
	}

	proposal := model.Proposal{
		CreatorAddress:   creatorAddress,
		TaxWalletAddress: input.TaxWalletAddress,
		Status:           model.ProposalStatusPending,
		SubmittedAt:      time.Now(),
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("创建活动失败: %w", err)
		}

		proposal.EventId = event.Id
		if err := tx.Create(&proposal).Error; err != nil {
			return fmt.Errorf("创建提案失败: %w", err)
		}

		for i := range beneficiaries {
			beneficiaries[i].ProposalId = proposal.Id
		}
		if err := tx.Create(&beneficiaries).Error; err != nil {
			return fmt.Errorf("保存受益人失败: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	proposal.Beneficiaries = beneficiaries
	return &event, &proposal, nil
}

// EventFilter 活动列表筛选条件
type EventFilter struct {
	Status   string
	Location string
	Search   string
	SortBy   string
	Order    string
	Page     int
	PageSize int
}

// GetEvents 获取活动列表
func (e *EventLogic) GetEvents(filter EventFilter) ([]model.Event, int64, error) {
	query := e.db.Model(&model.Event{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取活动总数失败: %w", err)
	}

	// 排序字段白名单
	sortBy := "date"
	switch filter.SortBy {
	case "date", "name", "created_at":
		sortBy = filter.SortBy
	}
	order := "asc"
	if filter.Order == "desc" {
		order = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, order))

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var events []model.Event
	if err := query.Preload("TicketTypes").Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("获取活动列表失败: %w", err)
	}

	return events, total, nil
}

// GetEvent 获取活动详情（含票种与提案）
func (e *EventLogic) GetEvent(id int64) (*model.Event, error) {
	var event model.Event
	if err := e.db.Preload("TicketTypes").
		Preload("Proposals").
		Preload("Proposals.Beneficiaries").
		First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("活动不存在")
		}
		return nil, fmt.Errorf("获取活动详情失败: %w", err)
	}

	return &event, nil
}

// GetEventsByCreator 获取主办方名下的活动
func (e *EventLogic) GetEventsByCreator(creatorAddress string) ([]model.Event, error) {
	var events []model.Event
	if err := e.db.Where("creator_address = ?", creatorAddress).
		Preload("TicketTypes").
		Preload("Proposals").
		Order("created_at desc").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("获取主办方活动失败: %w", err)
	}
	return events, nil
}

// EventStats 活动统计信息
type EventStats struct {
	EventId        int64   `json:"event_id"`
	TotalAvailable int64   `json:"total_available"`
	TotalSold      int64   `json:"total_sold"`
	TotalRevenue   int64   `json:"total_revenue"` // wei
	SoldPercentage float64 `json:"sold_percentage"`
}

// GetEventStats 获取活动统计信息（按票种聚合）
func (e *EventLogic) GetEventStats(id int64) (*EventStats, error) {
	var event model.Event
	if err := e.db.Preload("TicketTypes").First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("活动不存在")
		}
		return nil, fmt.Errorf("获取活动失败: %w", err)
	}

	stats := &EventStats{EventId: event.Id}
	for _, t := range event.TicketTypes {
		stats.TotalAvailable += t.Stock
		stats.TotalSold += t.Sold
		stats.TotalRevenue += t.Price * t.Sold
	}

	// 无库存时售出率定义为0
	if stats.TotalAvailable > 0 {
		stats.SoldPercentage = float64(stats.TotalSold) / float64(stats.TotalAvailable) * 100
	}

	return stats, nil
}

// CancelEvent 取消活动（管理员操作）
func (e *EventLogic) CancelEvent(id int64) error {
	var event model.Event
	if err := e.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("活动不存在")
		}
		return fmt.Errorf("获取活动失败: %w", err)
	}

	if !event.Status.CanTransitionTo(model.EventStatusCancelled) {
		return fmt.Errorf("活动当前状态(%s)不允许取消", event.Status)
	}

	return e.db.Model(&event).Update("status", model.EventStatusCancelled).Error
}
