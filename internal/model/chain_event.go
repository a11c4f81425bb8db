package model

import (
	"time"
)

// ChainEvent 链上事件记录
type ChainEvent struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventName string `json:"event_name" gorm:"not null"` // 合约事件名称
	Contract  string `json:"contract" gorm:"not null"`   // 合约名称
	TxHash    string `json:"tx_hash" gorm:"not null;uniqueIndex:idx_tx_log"`
	BlockNum  uint64 `json:"block_num" gorm:"not null"`
	LogIndex  uint   `json:"log_index" gorm:"uniqueIndex:idx_tx_log"`
	Data      string `json:"data" gorm:"type:text"` // 事件参数JSON
	Processed bool   `json:"processed" gorm:"default:false"`
}

// TableName 自定义表名
func (ChainEvent) TableName() string {
	return "chain_event"
}
