package model

import (
	"time"
)

// TicketType 票种模型
type TicketType struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventId int64 `json:"event_id" gorm:"not null;index"`

	// 基本信息
	Name        string `json:"name" gorm:"not null" binding:"required"`
	Description string `json:"description" gorm:"type:text"`

	// 价格与库存（价格单位为wei）
	Price int64 `json:"price" gorm:"not null"`
	Stock int64 `json:"stock" gorm:"not null"`
	Sold  int64 `json:"sold" gorm:"default:0"`

	// 售票窗口
	SaleStartDate time.Time `json:"sale_start_date" gorm:"not null"`
	SaleEndDate   time.Time `json:"sale_end_date" gorm:"not null"`

	// 权益说明（JSON文档）
	Benefits string `json:"benefits" gorm:"type:text"`

	Active bool `json:"active" gorm:"default:true"`

	// 关联
	Event *Event `json:"event,omitempty" gorm:"foreignKey:EventId"`
}

// Remaining 剩余可售数量
func (t *TicketType) Remaining() int64 {
	return t.Stock - t.Sold
}

// IsPurchasable 当前时刻是否可购买
func (t *TicketType) IsPurchasable(now time.Time) bool {
	if !t.Active {
		return false
	}
	if now.Before(t.SaleStartDate) || !now.Before(t.SaleEndDate) {
		return false
	}
	return t.Remaining() > 0
}

// TableName 自定义表名
func (TicketType) TableName() string {
	return "ticket_type"
}
