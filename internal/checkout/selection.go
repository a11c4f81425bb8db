package checkout

import (
	"github.com/MaulRai/tiku/internal/model"
)

// DefaultMaxTicketsPerPurchase 单次购买票数上限默认值
const DefaultMaxTicketsPerPurchase = 5

// Selection 一次购票的选择状态（每个票种的选购数量）
type Selection struct {
	maxTickets int
	quantities map[int64]int
}

// NewSelection 创建选择状态
func NewSelection(maxTickets int) *Selection {
	if maxTickets <= 0 {
		maxTickets = DefaultMaxTicketsPerPurchase
	}
	return &Selection{
		maxTickets: maxTickets,
		quantities: make(map[int64]int),
	}
}

// Quantity 获取票种当前选购数量
func (s *Selection) Quantity(ticketTypeId int64) int {
	return s.quantities[ticketTypeId]
}

// TotalQuantity 获取全部选购数量
func (s *Selection) TotalQuantity() int {
	total := 0
	for _, q := range s.quantities {
		total += q
	}
	return total
}

// Quantities 获取全部选购数量的副本
func (s *Selection) Quantities() map[int64]int {
	out := make(map[int64]int, len(s.quantities))
	for id, q := range s.quantities {
		if q > 0 {
			out[id] = q
		}
	}
	return out
}

// Increment 增加票种选购数量
// 仅当票种剩余库存大于当前选购数量、且总数未达上限时允许；
// 被拒绝的增加不改变任何状态
func (s *Selection) Increment(ticketType *model.TicketType) bool {
	current := s.quantities[ticketType.Id]

	if ticketType.Remaining() <= int64(current) {
		return false
	}
	if s.TotalQuantity() >= s.maxTickets {
		return false
	}

	s.quantities[ticketType.Id] = current + 1
	return true
}

// Decrement 减少票种选购数量，最低减到0
func (s *Selection) Decrement(ticketTypeId int64) bool {
	current := s.quantities[ticketTypeId]
	if current <= 0 {
		return false
	}

	if current == 1 {
		delete(s.quantities, ticketTypeId)
	} else {
		s.quantities[ticketTypeId] = current - 1
	}
	return true
}
