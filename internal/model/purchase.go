package model

import (
	"time"
)

// PurchaseRecord 购票记录（一次链上购买）
type PurchaseRecord struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventId      int64  `json:"event_id" gorm:"not null;index"`
	TicketTypeId int64  `json:"ticket_type_id" gorm:"not null"`
	BuyerAddress string `json:"buyer_address" gorm:"not null;index"`
	Quantity     int    `json:"quantity" gorm:"not null"`

	// 金额（wei）
	Subtotal    int64 `json:"subtotal" gorm:"not null"`
	PlatformFee int64 `json:"platform_fee" gorm:"not null"`
	Total       int64 `json:"total" gorm:"not null"`

	// 链上信息
	TxHash   string `json:"tx_hash" gorm:"uniqueIndex"`
	BlockNum uint64 `json:"block_num"`

	Status PurchaseStatus `json:"status" gorm:"default:'pending'"`
}

// PurchaseStatus 购票记录状态
type PurchaseStatus string

const (
	PurchaseStatusPending PurchaseStatus = "pending" // 已提交链上交易
	PurchaseStatusSuccess PurchaseStatus = "success" // 链上确认成功
	PurchaseStatusFailed  PurchaseStatus = "failed"  // 链上交易失败
)

// TableName 自定义表名
func (PurchaseRecord) TableName() string {
	return "purchase_record"
}
