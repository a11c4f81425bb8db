package logic

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MaulRai/tiku/internal/model"
	"gorm.io/gorm"
)

// TicketTypeLogic 票种配置业务逻辑
type TicketTypeLogic struct {
	db *gorm.DB
}

// NewTicketTypeLogic 创建票种配置业务逻辑
func NewTicketTypeLogic(db *gorm.DB) *TicketTypeLogic {
	return &TicketTypeLogic{db: db}
}

// TicketTypeInput 票种入参
type TicketTypeInput struct {
	Name          string    `json:"name" binding:"required"`
	Description   string    `json:"description"`
	Price         int64     `json:"price" binding:"required"` // wei
	Stock         int64     `json:"stock" binding:"required"`
	SaleStartDate time.Time `json:"sale_start_date" binding:"required"`
	SaleEndDate   time.Time `json:"sale_end_date" binding:"required"`
	Benefits      string    `json:"benefits"`
	Active        *bool     `json:"active"`
}

// AddTicketType 为活动新增票种
// 仅当活动已批准或售票中时允许；校验不通过不产生任何写入
func (t *TicketTypeLogic) AddTicketType(eventId int64, input *TicketTypeInput, operatorAddress string) (*model.TicketType, error) {
	var event model.Event
	if err := t.db.First(&event, eventId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("活动不存在")
		}
		return nil, fmt.Errorf("获取活动失败: %w", err)
	}

	if event.CreatorAddress != operatorAddress {
		return nil, errors.New("仅活动主办方可配置票种")
	}
	if !event.Status.IsSellable() {
		return nil, fmt.Errorf("活动当前状态(%s)不允许配置票种", event.Status)
	}

	if err := validateTicketTypeInput(input); err != nil {
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	ticketType := model.TicketType{
		EventId:       eventId,
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		Stock:         input.Stock,
		Sold:          0,
		SaleStartDate: input.SaleStartDate,
		SaleEndDate:   input.SaleEndDate,
		Benefits:      input.Benefits,
		Active:        active,
	}
	if err := t.db.Create(&ticketType).Error; err != nil {
		return nil, fmt.Errorf("创建票种失败: %w", err)
	}

	return &ticketType, nil
}

// UpdateTicketType 更新票种
// 同样受活动状态约束；不允许把库存改到低于已售数量
func (t *TicketTypeLogic) UpdateTicketType(typeId int64, input *TicketTypeInput, operatorAddress string) (*model.TicketType, error) {
	var ticketType model.TicketType
	if err := t.db.Preload("Event").First(&ticketType, typeId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("票种不存在")
		}
		return nil, fmt.Errorf("获取票种失败: %w", err)
	}

	if ticketType.Event == nil {
		return nil, errors.New("票种所属活动不存在")
	}
	if ticketType.Event.CreatorAddress != operatorAddress {
		return nil, errors.New("仅活动主办方可配置票种")
	}
	if !ticketType.Event.Status.IsSellable() {
		return nil, fmt.Errorf("活动当前状态(%s)不允许配置票种", ticketType.Event.Status)
	}

	if err := validateTicketTypeInput(input); err != nil {
		return nil, err
	}
	if input.Stock < ticketType.Sold {
		return nil, fmt.Errorf("库存不能低于已售数量(%d)", ticketType.Sold)
	}

	updates := map[string]interface{}{
		"name":            input.Name,
		"description":     input.Description,
		"price":           input.Price,
		"stock":           input.Stock,
		"sale_start_date": input.SaleStartDate,
		"sale_end_date":   input.SaleEndDate,
		"benefits":        input.Benefits,
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}

	if err := t.db.Model(&ticketType).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新票种失败: %w", err)
	}

	if err := t.db.First(&ticketType, typeId).Error; err != nil {
		return nil, fmt.Errorf("获取票种失败: %w", err)
	}
	return &ticketType, nil
}

// validateTicketTypeInput 票种入参校验
func validateTicketTypeInput(input *TicketTypeInput) error {
	if input.Name == "" {
		return errors.New("票种名称不能为空")
	}
	if input.Price <= 0 {
		return errors.New("票价必须大于0")
	}
	if input.Stock <= 0 {
		return errors.New("库存必须大于0")
	}
	if input.SaleStartDate.IsZero() || input.SaleEndDate.IsZero() {
		return errors.New("售票起止时间不能为空")
	}
	if !input.SaleStartDate.Before(input.SaleEndDate) {
		return errors.New("售票开始时间必须早于结束时间")
	}
	if input.Benefits != "" && !json.Valid([]byte(input.Benefits)) {
		return errors.New("权益说明必须是合法的JSON文档")
	}
	return nil
}
