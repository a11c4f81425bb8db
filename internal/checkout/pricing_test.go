package checkout

import (
	"testing"
	"time"

	"github.com/MaulRai/tiku/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saleWindow(now time.Time) (time.Time, time.Time) {
	return now.Add(-time.Hour), now.Add(time.Hour)
}

func TestBuildQuote(t *testing.T) {
	now := time.Now()
	start, end := saleWindow(now)

	// 0.15 ETH 和 0.35 ETH，单位wei
	ticketTypes := []model.TicketType{
		{Id: 1, Name: "Regular", Price: 150000000000000000, Stock: 100, Active: true, SaleStartDate: start, SaleEndDate: end},
		{Id: 2, Name: "VIP", Price: 350000000000000000, Stock: 20, Active: true, SaleStartDate: start, SaleEndDate: end},
	}

	quote, err := BuildQuote(ticketTypes, map[int64]int{1: 2, 2: 1}, 2.5, now)
	require.NoError(t, err)

	// subtotal = 0.65 ETH, fee = 0.01625 ETH, total = 0.66625 ETH
	assert.Equal(t, int64(650000000000000000), quote.Subtotal)
	assert.Equal(t, int64(16250000000000000), quote.PlatformFee)
	assert.Equal(t, int64(666250000000000000), quote.Total)
	assert.Len(t, quote.Items, 2)
}

func TestBuildQuoteUnknownType(t *testing.T) {
	now := time.Now()
	start, end := saleWindow(now)
	ticketTypes := []model.TicketType{
		{Id: 1, Name: "Regular", Price: 1000, Stock: 10, Active: true, SaleStartDate: start, SaleEndDate: end},
	}

	_, err := BuildQuote(ticketTypes, map[int64]int{42: 1}, 2.5, now)
	require.Error(t, err)
}

func TestBuildQuoteEmptySelection(t *testing.T) {
	now := time.Now()
	start, end := saleWindow(now)
	ticketTypes := []model.TicketType{
		{Id: 1, Name: "Regular", Price: 1000, Stock: 10, Active: true, SaleStartDate: start, SaleEndDate: end},
	}

	_, err := BuildQuote(ticketTypes, map[int64]int{}, 2.5, now)
	require.Error(t, err)

	_, err = BuildQuote(ticketTypes, map[int64]int{1: 0}, 2.5, now)
	require.Error(t, err)
}

func TestBuildQuoteInsufficientStock(t *testing.T) {
	now := time.Now()
	start, end := saleWindow(now)
	ticketTypes := []model.TicketType{
		{Id: 1, Name: "Regular", Price: 1000, Stock: 10, Sold: 9, Active: true, SaleStartDate: start, SaleEndDate: end},
	}

	_, err := BuildQuote(ticketTypes, map[int64]int{1: 2}, 2.5, now)
	require.Error(t, err)
}

func TestBuildQuoteOutsideSaleWindow(t *testing.T) {
	now := time.Now()
	ticketTypes := []model.TicketType{
		{Id: 1, Name: "Early", Price: 1000, Stock: 10, Active: true,
			SaleStartDate: now.Add(time.Hour), SaleEndDate: now.Add(2 * time.Hour)},
		{Id: 2, Name: "Late", Price: 1000, Stock: 10, Active: true,
			SaleStartDate: now.Add(-2 * time.Hour), SaleEndDate: now.Add(-time.Hour)},
	}

	_, err := BuildQuote(ticketTypes, map[int64]int{1: 1}, 2.5, now)
	require.Error(t, err)

	_, err = BuildQuote(ticketTypes, map[int64]int{2: 1}, 2.5, now)
	require.Error(t, err)
}

func TestBuildQuoteInactiveType(t *testing.T) {
	now := time.Now()
	start, end := saleWindow(now)
	ticketTypes := []model.TicketType{
		{Id: 1, Name: "Disabled", Price: 1000, Stock: 10, Active: false, SaleStartDate: start, SaleEndDate: end},
	}

	_, err := BuildQuote(ticketTypes, map[int64]int{1: 1}, 2.5, now)
	require.Error(t, err)
}

func TestBuildQuoteSaleWindowBoundary(t *testing.T) {
	now := time.Now()
	ticketTypes := []model.TicketType{
		// 窗口为[start, end)：开始时刻可购，结束时刻不可购
		{Id: 1, Name: "Regular", Price: 1000, Stock: 10, Active: true,
			SaleStartDate: now, SaleEndDate: now.Add(time.Hour)},
	}

	_, err := BuildQuote(ticketTypes, map[int64]int{1: 1}, 2.5, now)
	require.NoError(t, err)

	_, err = BuildQuote(ticketTypes, map[int64]int{1: 1}, 2.5, now.Add(time.Hour))
	require.Error(t, err)
}

func TestPlatformFeeTruncation(t *testing.T) {
	// 1001 wei 的 2.5% = 25.025，截断到25
	assert.Equal(t, int64(25), platformFee(1001, 2.5))
	assert.Equal(t, int64(0), platformFee(0, 2.5))
	assert.Equal(t, int64(0), platformFee(1000, 0))
}
