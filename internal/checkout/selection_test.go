package checkout

import (
	"testing"

	"github.com/MaulRai/tiku/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestSelectionIncrement(t *testing.T) {
	regular := &model.TicketType{Id: 1, Name: "Regular", Stock: 100, Sold: 0}
	vip := &model.TicketType{Id: 2, Name: "VIP", Stock: 10, Sold: 0}

	s := NewSelection(5)

	assert.True(t, s.Increment(regular))
	assert.True(t, s.Increment(regular))
	assert.True(t, s.Increment(vip))
	assert.Equal(t, 2, s.Quantity(regular.Id))
	assert.Equal(t, 1, s.Quantity(vip.Id))
	assert.Equal(t, 3, s.TotalQuantity())
}

func TestSelectionIncrementCap(t *testing.T) {
	regular := &model.TicketType{Id: 1, Name: "Regular", Stock: 100, Sold: 0}

	s := NewSelection(5)
	for i := 0; i < 5; i++ {
		assert.True(t, s.Increment(regular))
	}

	// 达到上限后重复增加不改变状态
	for i := 0; i < 3; i++ {
		assert.False(t, s.Increment(regular))
		assert.Equal(t, 5, s.Quantity(regular.Id))
	}
}

func TestSelectionIncrementSoldOut(t *testing.T) {
	soldOut := &model.TicketType{Id: 1, Name: "Regular", Stock: 10, Sold: 10}

	s := NewSelection(5)
	assert.False(t, s.Increment(soldOut))
	assert.Equal(t, 0, s.Quantity(soldOut.Id))
	assert.Equal(t, 0, s.TotalQuantity())
}

func TestSelectionIncrementLimitedStock(t *testing.T) {
	// 剩余2张时最多选2张
	nearlyOut := &model.TicketType{Id: 1, Name: "Regular", Stock: 10, Sold: 8}

	s := NewSelection(5)
	assert.True(t, s.Increment(nearlyOut))
	assert.True(t, s.Increment(nearlyOut))
	assert.False(t, s.Increment(nearlyOut))
	assert.Equal(t, 2, s.Quantity(nearlyOut.Id))
}

func TestSelectionDecrement(t *testing.T) {
	regular := &model.TicketType{Id: 1, Name: "Regular", Stock: 100, Sold: 0}

	s := NewSelection(5)
	s.Increment(regular)
	s.Increment(regular)

	assert.True(t, s.Decrement(regular.Id))
	assert.Equal(t, 1, s.Quantity(regular.Id))
	assert.True(t, s.Decrement(regular.Id))
	assert.Equal(t, 0, s.Quantity(regular.Id))

	// 减到0后不再允许
	assert.False(t, s.Decrement(regular.Id))
	assert.Equal(t, 0, s.Quantity(regular.Id))
}

func TestSelectionQuantitiesCopy(t *testing.T) {
	regular := &model.TicketType{Id: 1, Name: "Regular", Stock: 100, Sold: 0}

	s := NewSelection(5)
	s.Increment(regular)

	quantities := s.Quantities()
	quantities[regular.Id] = 99

	assert.Equal(t, 1, s.Quantity(regular.Id))
}

func TestSelectionDefaultCap(t *testing.T) {
	regular := &model.TicketType{Id: 1, Name: "Regular", Stock: 100, Sold: 0}

	s := NewSelection(0)
	for i := 0; i < DefaultMaxTicketsPerPurchase; i++ {
		assert.True(t, s.Increment(regular))
	}
	assert.False(t, s.Increment(regular))
}
