package logic

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/MaulRai/tiku/internal/ethereum"
	"github.com/MaulRai/tiku/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeReseller 测试用链上转售实现
type fakeReseller struct {
	canResell      bool
	maxResalePrice *big.Int
	listCalls      int
	buyCalls       int
}

func (f *fakeReseller) ListTicketForResale(ctx context.Context, tokenId int64, resalePrice *big.Int, resaleDeadline int64) (*ethereum.TxResult, error) {
	f.listCalls++
	return &ethereum.TxResult{TxHash: "0xlist", BlockNum: 200}, nil
}

func (f *fakeReseller) BuyResaleTicket(ctx context.Context, tokenId int64, price *big.Int) (*ethereum.TxResult, error) {
	f.buyCalls++
	return &ethereum.TxResult{TxHash: "0xbuy", BlockNum: 201}, nil
}

func (f *fakeReseller) GetTicketDetails(ctx context.Context, tokenId int64) (*ethereum.TicketDetails, error) {
	return &ethereum.TicketDetails{
		Owner:          common.HexToAddress(testBuyer),
		IsUsed:         true,
		IsForResale:    false,
		ResalePrice:    big.NewInt(0),
		ResaleCount:    big.NewInt(2),
		ResaleDeadline: big.NewInt(0),
	}, nil
}

func (f *fakeReseller) GetUserTickets(ctx context.Context, owner common.Address) ([]int64, error) {
	return nil, nil
}

func (f *fakeReseller) CanResell(ctx context.Context, tokenId int64) (bool, error) {
	return f.canResell, nil
}

func (f *fakeReseller) GetMaxResalePrice(ctx context.Context, tokenId int64) (*big.Int, error) {
	return f.maxResalePrice, nil
}

func seedTicket(t *testing.T, db *gorm.DB, eventId, typeId int64, owner string) *model.Ticket {
	t.Helper()

	ticket := &model.Ticket{
		EventId:       eventId,
		TicketTypeId:  typeId,
		TokenId:       time.Now().UnixNano(),
		OwnerAddress:  owner,
		MintTxHash:    "0xmint",
		OriginalPrice: 1_000_000,
	}
	require.NoError(t, db.Create(ticket).Error)
	return ticket
}

func TestVerifyTicket(t *testing.T) {
	db := newTestDB(t)
	ticketLogic := NewTicketLogic(db, &fakeReseller{})

	event := seedEvent(t, db, model.EventStatusActive)
	ticketType := seedTicketType(t, db, event.Id, 1_000_000, 10)
	ticket := seedTicket(t, db, event.Id, ticketType.Id, testBuyer)

	result, err := ticketLogic.VerifyTicket(ticket.Id)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	// 已使用的票验票失败
	require.NoError(t, db.Model(ticket).Update("is_used", true).Error)
	result, err = ticketLogic.VerifyTicket(ticket.Id)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "票已使用", result.Reason)

	// 不存在的票
	result, err = ticketLogic.VerifyTicket(99999)
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestVerifyTicketCancelledEvent(t *testing.T) {
	db := newTestDB(t)
	ticketLogic := NewTicketLogic(db, &fakeReseller{})

	event := seedEvent(t, db, model.EventStatusCancelled)
	ticketType := seedTicketType(t, db, event.Id, 1_000_000, 10)
	ticket := seedTicket(t, db, event.Id, ticketType.Id, testBuyer)

	result, err := ticketLogic.VerifyTicket(ticket.Id)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "活动已取消", result.Reason)
}

func TestUseTicket(t *testing.T) {
	db := newTestDB(t)
	ticketLogic := NewTicketLogic(db, &fakeReseller{})

	event := seedEvent(t, db, model.EventStatusActive)
	ticketType := seedTicketType(t, db, event.Id, 1_000_000, 10)
	ticket := seedTicket(t, db, event.Id, ticketType.Id, testBuyer)

	// 仅活动主办方可核销
	_, err := ticketLogic.UseTicket(ticket.Id, testBuyer)
	assert.Error(t, err)

	used, err := ticketLogic.UseTicket(ticket.Id, testCreator)
	require.NoError(t, err)
	assert.True(t, used.IsUsed)

	// 重复核销被拒绝
	_, err = ticketLogic.UseTicket(ticket.Id, testCreator)
	assert.Error(t, err)
}

func TestListForResale(t *testing.T) {
	db := newTestDB(t)
	chain := &fakeReseller{canResell: true, maxResalePrice: big.NewInt(2_000_000)}
	ticketLogic := NewTicketLogic(db, chain)

	event := seedEvent(t, db, model.EventStatusActive)
	ticketType := seedTicketType(t, db, event.Id, 1_000_000, 10)
	ticket := seedTicket(t, db, event.Id, ticketType.Id, testBuyer)

	deadline := time.Now().Add(48 * time.Hour)

	// 非持票人不能挂单
	_, err := ticketLogic.ListForResale(context.Background(), ticket.Id, 1_500_000, deadline, testCreator)
	assert.Error(t, err)
	assert.Zero(t, chain.listCalls)

	// 超过链上价格上限被拒绝
	_, err = ticketLogic.ListForResale(context.Background(), ticket.Id, 3_000_000, deadline, testBuyer)
	assert.Error(t, err)

	listed, err := ticketLogic.ListForResale(context.Background(), ticket.Id, 1_500_000, deadline, testBuyer)
	require.NoError(t, err)
	assert.True(t, listed.IsForResale)
	assert.Equal(t, int64(1_500_000), listed.ResalePrice)
	assert.Equal(t, 1, chain.listCalls)
}

func TestListForResaleChainDisallows(t *testing.T) {
	db := newTestDB(t)
	chain := &fakeReseller{canResell: false, maxResalePrice: big.NewInt(2_000_000)}
	ticketLogic := NewTicketLogic(db, chain)

	event := seedEvent(t, db, model.EventStatusActive)
	ticketType := seedTicketType(t, db, event.Id, 1_000_000, 10)
	ticket := seedTicket(t, db, event.Id, ticketType.Id, testBuyer)

	_, err := ticketLogic.ListForResale(context.Background(), ticket.Id,
		1_500_000, time.Now().Add(time.Hour), testBuyer)
	assert.Error(t, err)
	assert.Zero(t, chain.listCalls)
}

func TestBuyResale(t *testing.T) {
	db := newTestDB(t)
	chain := &fakeReseller{}
	ticketLogic := NewTicketLogic(db, chain)

	event := seedEvent(t, db, model.EventStatusActive)
	ticketType := seedTicketType(t, db, event.Id, 1_000_000, 10)
	ticket := seedTicket(t, db, event.Id, ticketType.Id, testBuyer)

	deadline := time.Now().Add(24 * time.Hour)
	require.NoError(t, db.Model(ticket).Updates(map[string]interface{}{
		"is_for_resale":   true,
		"resale_price":    1_500_000,
		"resale_deadline": &deadline,
	}).Error)

	// 不能购买自己的票
	_, err := ticketLogic.BuyResale(context.Background(), ticket.Id, testBuyer)
	assert.Error(t, err)

	bought, err := ticketLogic.BuyResale(context.Background(), ticket.Id, testCreator)
	require.NoError(t, err)
	assert.Equal(t, testCreator, bought.OwnerAddress)
	assert.False(t, bought.IsForResale)
	assert.Equal(t, 1, bought.ResaleCount)
	assert.Equal(t, 1, chain.buyCalls)
}

func TestBuyResaleExpired(t *testing.T) {
	db := newTestDB(t)
	ticketLogic := NewTicketLogic(db, &fakeReseller{})

	event := seedEvent(t, db, model.EventStatusActive)
	ticketType := seedTicketType(t, db, event.Id, 1_000_000, 10)
	ticket := seedTicket(t, db, event.Id, ticketType.Id, testBuyer)

	deadline := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(ticket).Updates(map[string]interface{}{
		"is_for_resale":   true,
		"resale_price":    1_500_000,
		"resale_deadline": &deadline,
	}).Error)

	_, err := ticketLogic.BuyResale(context.Background(), ticket.Id, testCreator)
	assert.Error(t, err)
}

func TestGetResaleTicketsExcludesExpired(t *testing.T) {
	db := newTestDB(t)
	ticketLogic := NewTicketLogic(db, &fakeReseller{})

	event := seedEvent(t, db, model.EventStatusActive)
	ticketType := seedTicketType(t, db, event.Id, 1_000_000, 10)

	live := seedTicket(t, db, event.Id, ticketType.Id, testBuyer)
	liveDeadline := time.Now().Add(24 * time.Hour)
	require.NoError(t, db.Model(live).Updates(map[string]interface{}{
		"is_for_resale":   true,
		"resale_price":    1_200_000,
		"resale_deadline": &liveDeadline,
	}).Error)

	expired := seedTicket(t, db, event.Id, ticketType.Id, testBuyer)
	expiredDeadline := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(expired).Updates(map[string]interface{}{
		"is_for_resale":   true,
		"resale_price":    900_000,
		"resale_deadline": &expiredDeadline,
	}).Error)

	tickets, err := ticketLogic.GetResaleTickets(event.Id)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, live.Id, tickets[0].Id)
}

func TestSyncTicketFromChain(t *testing.T) {
	db := newTestDB(t)
	ticketLogic := NewTicketLogic(db, &fakeReseller{})

	event := seedEvent(t, db, model.EventStatusActive)
	ticketType := seedTicketType(t, db, event.Id, 1_000_000, 10)
	ticket := seedTicket(t, db, event.Id, ticketType.Id, testCreator)

	synced, err := ticketLogic.SyncTicketFromChain(context.Background(), ticket.Id)
	require.NoError(t, err)

	// 链上数据为权威数据
	assert.Equal(t, common.HexToAddress(testBuyer).Hex(), synced.OwnerAddress)
	assert.True(t, synced.IsUsed)
	assert.Equal(t, 2, synced.ResaleCount)
}
