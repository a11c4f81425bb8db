package checkout

import (
	"fmt"
	"time"

	"github.com/MaulRai/tiku/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultPlatformFeePercentage 平台手续费百分比默认值
const DefaultPlatformFeePercentage = 2.5

// QuoteItem 报价明细（单个票种）
type QuoteItem struct {
	TicketTypeId int64  `json:"ticket_type_id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unit_price"` // wei
	LineTotal    int64  `json:"line_total"` // wei
}

// Quote 购票报价
type Quote struct {
	Items       []QuoteItem `json:"items"`
	Subtotal    int64       `json:"subtotal"`     // wei
	PlatformFee int64       `json:"platform_fee"` // wei
	Total       int64       `json:"total"`        // wei
}

// BuildQuote 根据选购数量计算报价
// 金额全程使用wei整数；手续费按百分比用decimal计算后截断到wei
func BuildQuote(ticketTypes []model.TicketType, quantities map[int64]int, feePercentage float64, now time.Time) (*Quote, error) {
	if feePercentage < 0 {
		feePercentage = DefaultPlatformFeePercentage
	}

	byId := make(map[int64]*model.TicketType, len(ticketTypes))
	for i := range ticketTypes {
		byId[ticketTypes[i].Id] = &ticketTypes[i]
	}

	quote := &Quote{}
	for id, qty := range quantities {
		if qty <= 0 {
			continue
		}

		ticketType, ok := byId[id]
		if !ok {
			return nil, fmt.Errorf("票种不存在: %d", id)
		}
		if !ticketType.IsPurchasable(now) {
			return nil, fmt.Errorf("票种 %s 当前不可购买", ticketType.Name)
		}
		if ticketType.Remaining() < int64(qty) {
			return nil, fmt.Errorf("票种 %s 库存不足，剩余%d张", ticketType.Name, ticketType.Remaining())
		}

		lineTotal := ticketType.Price * int64(qty)
		quote.Items = append(quote.Items, QuoteItem{
			TicketTypeId: ticketType.Id,
			Name:         ticketType.Name,
			Quantity:     qty,
			UnitPrice:    ticketType.Price,
			LineTotal:    lineTotal,
		})
		quote.Subtotal += lineTotal
	}

	if len(quote.Items) == 0 {
		return nil, fmt.Errorf("未选择任何票种")
	}

	quote.PlatformFee = platformFee(quote.Subtotal, feePercentage)
	quote.Total = quote.Subtotal + quote.PlatformFee

	return quote, nil
}

// platformFee 计算平台手续费（wei），向下截断
func platformFee(subtotal int64, feePercentage float64) int64 {
	fee := decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromFloat(feePercentage)).
		Div(decimal.NewFromInt(100))
	return fee.IntPart()
}
