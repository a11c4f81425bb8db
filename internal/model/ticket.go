package model

import (
	"time"
)

// Ticket 已铸造的票（链上为权威数据，此处为缓存副本）
type Ticket struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventId      int64 `json:"event_id" gorm:"not null;index"`
	TicketTypeId int64 `json:"ticket_type_id" gorm:"not null;index"`

	// 链上票ID与持有人
	TokenId      int64  `json:"token_id" gorm:"uniqueIndex"`
	OwnerAddress string `json:"owner_address" gorm:"not null;index"`

	// 铸造信息
	MintTxHash    string `json:"mint_tx_hash" gorm:"not null"`
	BlockNum      uint64 `json:"block_num"`
	OriginalPrice int64  `json:"original_price" gorm:"not null"` // wei

	// 使用状态
	IsUsed bool   `json:"is_used" gorm:"default:false"`
	QRCode string `json:"qr_code"`

	// 二手转售信息
	IsForResale    bool       `json:"is_for_resale" gorm:"default:false"`
	ResalePrice    int64      `json:"resale_price"` // wei
	ResaleDeadline *time.Time `json:"resale_deadline"`
	ResaleCount    int        `json:"resale_count" gorm:"default:0"`

	// 关联
	Event      *Event      `json:"event,omitempty" gorm:"foreignKey:EventId"`
	TicketType *TicketType `json:"ticket_type,omitempty" gorm:"foreignKey:TicketTypeId"`
}

// TableName 自定义表名
func (Ticket) TableName() string {
	return "ticket"
}
