package logic

import (
	"errors"
	"fmt"

	"github.com/MaulRai/tiku/internal/model"
	"gorm.io/gorm"
)

// ChainEventLogic 链上事件记录业务逻辑
type ChainEventLogic struct {
	db *gorm.DB
}

// NewChainEventLogic 创建链上事件记录业务逻辑
func NewChainEventLogic(db *gorm.DB) *ChainEventLogic {
	return &ChainEventLogic{db: db}
}

// ErrChainEventExists 事件已记录（按tx_hash+log_index去重）
var ErrChainEventExists = errors.New("链上事件已记录")

// CreateChainEvent 记录链上事件，重复记录返回 ErrChainEventExists
func (c *ChainEventLogic) CreateChainEvent(event *model.ChainEvent) error {
	var existing model.ChainEvent
	err := c.db.Where("tx_hash = ? AND log_index = ?", event.TxHash, event.LogIndex).
		First(&existing).Error
	if err == nil {
		return ErrChainEventExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("查询链上事件失败: %w", err)
	}

	if err := c.db.Create(event).Error; err != nil {
		return fmt.Errorf("创建链上事件记录失败: %w", err)
	}
	return nil
}

// MarkProcessed 标记事件已处理
func (c *ChainEventLogic) MarkProcessed(id int64) error {
	return c.db.Model(&model.ChainEvent{}).Where("id = ?", id).
		Update("processed", true).Error
}

// GetUnprocessed 获取未处理的事件
func (c *ChainEventLogic) GetUnprocessed(limit int) ([]model.ChainEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	var events []model.ChainEvent
	if err := c.db.Where("processed = ?", false).
		Order("block_num asc, log_index asc").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("获取未处理事件失败: %w", err)
	}
	return events, nil
}
