package logic

import (
	"testing"

	"github.com/MaulRai/tiku/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAdminStats(t *testing.T) {
	db := newTestDB(t)
	statsLogic := NewStatsLogic(db)

	seedEvent(t, db, model.EventStatusActive)
	event := seedEvent(t, db, model.EventStatusPending)
	ticketType := seedTicketType(t, db, event.Id, 1_000_000, 100)
	require.NoError(t, db.Model(ticketType).Update("sold", 10).Error)

	require.NoError(t, db.Create(&model.Proposal{
		EventId:        event.Id,
		CreatorAddress: testCreator,
		Status:         model.ProposalStatusPending,
	}).Error)

	stats := statsLogic.GetAdminStats()
	assert.Equal(t, int64(2), stats.TotalEvents)
	assert.Equal(t, int64(1), stats.ActiveEvents)
	assert.Equal(t, int64(1), stats.PendingProposals)
	assert.Equal(t, int64(10), stats.TotalTicketsSold)
	assert.Equal(t, int64(10_000_000), stats.TotalRevenue)
	assert.Empty(t, stats.RecentTransactions)
}

func TestGetAdminStatsDegradesOnPartialFailure(t *testing.T) {
	db := newTestDB(t)
	statsLogic := NewStatsLogic(db)

	seedEvent(t, db, model.EventStatusActive)

	// 最近交易查询失败时其余统计仍然返回，失败项保持零值
	require.NoError(t, db.Migrator().DropTable(&model.PurchaseRecord{}))

	stats := statsLogic.GetAdminStats()
	assert.Equal(t, int64(1), stats.TotalEvents)
	assert.Equal(t, int64(1), stats.ActiveEvents)
	assert.Empty(t, stats.RecentTransactions)
}

func TestGetOrganizerStats(t *testing.T) {
	db := newTestDB(t)
	statsLogic := NewStatsLogic(db)

	mine := seedEvent(t, db, model.EventStatusActive)
	ticketType := seedTicketType(t, db, mine.Id, 2_000_000, 50)
	require.NoError(t, db.Model(ticketType).Update("sold", 5).Error)

	pending := seedEvent(t, db, model.EventStatusPending)
	_ = pending

	// 其他主办方的活动不计入
	other := seedEvent(t, db, model.EventStatusActive)
	require.NoError(t, db.Model(other).Update("creator_address", testBuyer).Error)

	stats, err := statsLogic.GetOrganizerStats(testCreator)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalEvents)
	assert.Equal(t, int64(1), stats.ApprovedEvents)
	assert.Equal(t, int64(1), stats.PendingEvents)
	assert.Equal(t, int64(5), stats.TotalTicketsSold)
	assert.Equal(t, int64(10_000_000), stats.TotalRevenue)
}

func TestGetEventOrganizers(t *testing.T) {
	db := newTestDB(t)
	statsLogic := NewStatsLogic(db)

	require.NoError(t, db.Create(&model.User{
		Username: "org1", Email: "org1@example.com", PasswordHash: "x",
		Role: model.UserRoleOrganizer,
	}).Error)
	require.NoError(t, db.Create(&model.User{
		Username: "cust", Email: "cust@example.com", PasswordHash: "x",
		Role: model.UserRoleCustomer,
	}).Error)

	organizers, err := statsLogic.GetEventOrganizers()
	require.NoError(t, err)
	require.Len(t, organizers, 1)
	assert.Equal(t, "org1", organizers[0].Username)
}
