package model

import (
	"time"
)

// Event 活动模型
type Event struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Name        string    `json:"name" gorm:"not null" binding:"required"`
	Description string    `json:"description" gorm:"type:text"`
	Location    string    `json:"location" gorm:"not null"`
	Date        time.Time `json:"date" gorm:"not null"`
	PosterURL   string    `json:"poster_url"`

	// 状态
	Status EventStatus `json:"status" gorm:"default:'pending'"`

	// 创建者信息（活动主办方钱包地址）
	CreatorAddress string `json:"creator_address" gorm:"not null;index"`

	// 关联
	TicketTypes []TicketType `json:"ticket_types,omitempty" gorm:"foreignKey:EventId"`
	Proposals   []Proposal   `json:"proposals,omitempty" gorm:"foreignKey:EventId"`
}

// EventStatus 活动状态
type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"   // 待审核
	EventStatusApproved  EventStatus = "approved"  // 已批准
	EventStatusActive    EventStatus = "active"    // 售票中
	EventStatusEnded     EventStatus = "ended"     // 已结束
	EventStatusCancelled EventStatus = "cancelled" // 已取消
)

// eventTransitions 活动状态转移表
var eventTransitions = map[EventStatus][]EventStatus{
	EventStatusPending:   {EventStatusApproved, EventStatusCancelled},
	EventStatusApproved:  {EventStatusActive, EventStatusCancelled},
	EventStatusActive:    {EventStatusEnded, EventStatusCancelled},
	EventStatusEnded:     {},
	EventStatusCancelled: {},
}

// CanTransitionTo 判断是否允许转移到目标状态
func (s EventStatus) CanTransitionTo(target EventStatus) bool {
	for _, next := range eventTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal 是否为终止状态
func (s EventStatus) IsTerminal() bool {
	return len(eventTransitions[s]) == 0
}

// IsSellable 是否允许配置票种（已批准或售票中）
func (s EventStatus) IsSellable() bool {
	return s == EventStatusApproved || s == EventStatusActive
}

// TableName 自定义表名
func (Event) TableName() string {
	return "event"
}
