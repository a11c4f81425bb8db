package logic

import (
	"testing"
	"time"

	"github.com/MaulRai/tiku/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTicketTypeInput() *TicketTypeInput {
	return &TicketTypeInput{
		Name:          "Regular",
		Price:         1_000_000,
		Stock:         100,
		SaleStartDate: time.Now().Add(time.Hour),
		SaleEndDate:   time.Now().Add(48 * time.Hour),
		Benefits:      `["entry","merch"]`,
	}
}

func TestAddTicketType(t *testing.T) {
	db := newTestDB(t)
	ticketTypeLogic := NewTicketTypeLogic(db)

	event := seedEvent(t, db, model.EventStatusApproved)

	ticketType, err := ticketTypeLogic.AddTicketType(event.Id, validTicketTypeInput(), testCreator)
	require.NoError(t, err)
	assert.Equal(t, event.Id, ticketType.EventId)
	assert.True(t, ticketType.Active)
	assert.Zero(t, ticketType.Sold)
}

func TestAddTicketTypeGatedByEventStatus(t *testing.T) {
	db := newTestDB(t)
	ticketTypeLogic := NewTicketTypeLogic(db)

	for _, status := range []model.EventStatus{
		model.EventStatusPending,
		model.EventStatusEnded,
		model.EventStatusCancelled,
	} {
		event := seedEvent(t, db, status)
		_, err := ticketTypeLogic.AddTicketType(event.Id, validTicketTypeInput(), testCreator)
		assert.Error(t, err, "status %s should not allow ticket types", status)
	}

	// 售票中仍可配置票种
	active := seedEvent(t, db, model.EventStatusActive)
	_, err := ticketTypeLogic.AddTicketType(active.Id, validTicketTypeInput(), testCreator)
	assert.NoError(t, err)
}

func TestAddTicketTypeCreatorOnly(t *testing.T) {
	db := newTestDB(t)
	ticketTypeLogic := NewTicketTypeLogic(db)

	event := seedEvent(t, db, model.EventStatusApproved)

	_, err := ticketTypeLogic.AddTicketType(event.Id, validTicketTypeInput(), testBuyer)
	assert.Error(t, err)
}

func TestAddTicketTypeValidation(t *testing.T) {
	db := newTestDB(t)
	ticketTypeLogic := NewTicketTypeLogic(db)

	event := seedEvent(t, db, model.EventStatusApproved)

	tests := []struct {
		name   string
		mutate func(*TicketTypeInput)
	}{
		{"empty name", func(in *TicketTypeInput) { in.Name = "" }},
		{"zero price", func(in *TicketTypeInput) { in.Price = 0 }},
		{"negative price", func(in *TicketTypeInput) { in.Price = -1 }},
		{"zero stock", func(in *TicketTypeInput) { in.Stock = 0 }},
		{"start after end", func(in *TicketTypeInput) {
			in.SaleStartDate = in.SaleEndDate.Add(time.Hour)
		}},
		{"invalid benefits json", func(in *TicketTypeInput) { in.Benefits = "{not json" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validTicketTypeInput()
			tt.mutate(input)

			_, err := ticketTypeLogic.AddTicketType(event.Id, input, testCreator)
			assert.Error(t, err)
		})
	}

	var count int64
	db.Model(&model.TicketType{}).Count(&count)
	assert.Zero(t, count)
}

func TestUpdateTicketTypeStockFloor(t *testing.T) {
	db := newTestDB(t)
	ticketTypeLogic := NewTicketTypeLogic(db)

	event := seedEvent(t, db, model.EventStatusActive)
	ticketType := seedTicketType(t, db, event.Id, 1_000_000, 100)
	require.NoError(t, db.Model(ticketType).Update("sold", 40).Error)

	// 库存不能改到低于已售数量
	input := validTicketTypeInput()
	input.Stock = 39
	_, err := ticketTypeLogic.UpdateTicketType(ticketType.Id, input, testCreator)
	assert.Error(t, err)

	input.Stock = 40
	updated, err := ticketTypeLogic.UpdateTicketType(ticketType.Id, input, testCreator)
	require.NoError(t, err)
	assert.Equal(t, int64(40), updated.Stock)
}
