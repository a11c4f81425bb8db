package logic

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/MaulRai/tiku/internal/checkout"
	"github.com/MaulRai/tiku/internal/config"
	"github.com/MaulRai/tiku/internal/ethereum"
	"github.com/MaulRai/tiku/internal/logger"
	"github.com/MaulRai/tiku/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChainPurchaser 链上购票能力（便于测试替换）
type ChainPurchaser interface {
	BuyTickets(ctx context.Context, eventId, typeId int64, quantity int, beneficiaries []common.Address, basisPoints []*big.Int, value *big.Int) (*ethereum.PurchaseResult, error)
}

// CheckoutLogic 购票业务逻辑
type CheckoutLogic struct {
	db    *gorm.DB
	chain ChainPurchaser
	cfg   config.CheckoutConfig
}

// NewCheckoutLogic 创建购票业务逻辑
func NewCheckoutLogic(db *gorm.DB, chain ChainPurchaser, cfg config.CheckoutConfig) *CheckoutLogic {
	return &CheckoutLogic{db: db, chain: chain, cfg: cfg}
}

// Quote 对选购数量计算报价（不产生副作用）
func (c *CheckoutLogic) Quote(eventId int64, quantities map[int64]int) (*checkout.Quote, error) {
	event, err := c.sellableEvent(eventId)
	if err != nil {
		return nil, err
	}

	if err := c.checkQuantityCap(quantities); err != nil {
		return nil, err
	}

	return checkout.BuildQuote(event.TicketTypes, quantities, c.cfg.PlatformFeePercentage, time.Now())
}

// PurchaseResult 购票结果
type PurchaseResult struct {
	Quote    *checkout.Quote `json:"quote"`
	TxHash   string          `json:"tx_hash"`
	BlockNum uint64          `json:"block_num"`
	Tickets  []model.Ticket  `json:"tickets"`
}

// Purchase 执行购票
// 流程：校验选购 → 链上购票（附受益人分成） → 落库票与购票记录
// 链上调用失败时不产生任何本地写入，同一选购可直接重试
func (c *CheckoutLogic) Purchase(ctx context.Context, eventId int64, quantities map[int64]int, buyerAddress string) (*PurchaseResult, error) {
	if !common.IsHexAddress(buyerAddress) {
		return nil, errors.New("买家钱包地址无效")
	}

	event, err := c.sellableEvent(eventId)
	if err != nil {
		return nil, err
	}

	if err := c.checkQuantityCap(quantities); err != nil {
		return nil, err
	}

	quote, err := checkout.BuildQuote(event.TicketTypes, quantities, c.cfg.PlatformFeePercentage, time.Now())
	if err != nil {
		return nil, err
	}

	// 取已批准提案的受益人分成
	beneficiaries, basisPoints, err := c.approvedSplit(eventId)
	if err != nil {
		return nil, err
	}

	result := &PurchaseResult{Quote: quote}

	// 每个票种一次链上调用，顺序执行
	for _, item := range quote.Items {
		lineFee := big.NewInt(0)
		if quote.Subtotal > 0 {
			// 手续费按明细金额占比分摊
			lineFee = new(big.Int).Div(
				new(big.Int).Mul(big.NewInt(quote.PlatformFee), big.NewInt(item.LineTotal)),
				big.NewInt(quote.Subtotal))
		}
		value := new(big.Int).Add(big.NewInt(item.LineTotal), lineFee)

		chainResult, err := c.chain.BuyTickets(ctx, eventId, item.TicketTypeId, item.Quantity,
			beneficiaries, basisPoints, value)
		if err != nil {
			return nil, fmt.Errorf("链上购票失败: %w", err)
		}

		tickets, err := c.recordPurchase(event, item, chainResult, buyerAddress, lineFee.Int64())
		if err != nil {
			return nil, err
		}

		result.TxHash = chainResult.TxHash
		result.BlockNum = chainResult.BlockNum
		result.Tickets = append(result.Tickets, tickets...)
	}

	return result, nil
}

// sellableEvent 获取可售票的活动（含票种）
func (c *CheckoutLogic) sellableEvent(eventId int64) (*model.Event, error) {
	var event model.Event
	if err := c.db.Preload("TicketTypes").First(&event, eventId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("活动不存在")
		}
		return nil, fmt.Errorf("获取活动失败: %w", err)
	}

	if event.Status != model.EventStatusActive {
		return nil, fmt.Errorf("活动当前状态(%s)不可购票", event.Status)
	}
	return &event, nil
}

// checkQuantityCap 校验单次购买总数上限
func (c *CheckoutLogic) checkQuantityCap(quantities map[int64]int) error {
	maxTickets := c.cfg.MaxTicketsPerPurchase
	if maxTickets <= 0 {
		maxTickets = checkout.DefaultMaxTicketsPerPurchase
	}

	total := 0
	for _, qty := range quantities {
		if qty < 0 {
			return errors.New("选购数量不能为负数")
		}
		total += qty
	}
	if total > maxTickets {
		return fmt.Errorf("单次购买不能超过%d张", maxTickets)
	}
	return nil
}

// approvedSplit 取活动已批准提案的受益人分成，转换为链上调用参数
func (c *CheckoutLogic) approvedSplit(eventId int64) ([]common.Address, []*big.Int, error) {
	var proposal model.Proposal
	if err := c.db.Where("event_id = ? AND status = ?", eventId, model.ProposalStatusApproved).
		Preload("Beneficiaries", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc")
		}).
		First(&proposal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.New("活动没有已批准的提案")
		}
		return nil, nil, fmt.Errorf("获取提案失败: %w", err)
	}

	addresses := make([]common.Address, 0, len(proposal.Beneficiaries))
	basisPoints := make([]*big.Int, 0, len(proposal.Beneficiaries))
	for _, b := range proposal.Beneficiaries {
		addresses = append(addresses, common.HexToAddress(b.Address))
		basisPoints = append(basisPoints, big.NewInt(b.BasisPoints))
	}
	return addresses, basisPoints, nil
}

// recordPurchase 落库购票记录与票
func (c *CheckoutLogic) recordPurchase(event *model.Event, item checkout.QuoteItem, chainResult *ethereum.PurchaseResult, buyerAddress string, fee int64) ([]model.Ticket, error) {
	var tickets []model.Ticket

	err := c.db.Transaction(func(tx *gorm.DB) error {
		record := model.PurchaseRecord{
			EventId:      event.Id,
			TicketTypeId: item.TicketTypeId,
			BuyerAddress: buyerAddress,
			Quantity:     item.Quantity,
			Subtotal:     item.LineTotal,
			PlatformFee:  fee,
			Total:        item.LineTotal + fee,
			TxHash:       chainResult.TxHash,
			BlockNum:     chainResult.BlockNum,
			Status:       model.PurchaseStatusSuccess,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("创建购票记录失败: %w", err)
		}

		for _, tokenId := range chainResult.TokenIds {
			ticket := model.Ticket{
				EventId:       event.Id,
				TicketTypeId:  item.TicketTypeId,
				TokenId:       tokenId,
				OwnerAddress:  buyerAddress,
				MintTxHash:    chainResult.TxHash,
				BlockNum:      chainResult.BlockNum,
				OriginalPrice: item.UnitPrice,
				QRCode:        fmt.Sprintf("tiku://ticket/%d/%s", tokenId, uuid.NewString()),
			}
			if err := tx.Create(&ticket).Error; err != nil {
				return fmt.Errorf("保存票失败: %w", err)
			}
			tickets = append(tickets, ticket)
		}

		// 已售计数仅增不减，且不越过库存
		res := tx.Model(&model.TicketType{}).
			Where("id = ? AND sold + ? <= stock", item.TicketTypeId, item.Quantity).
			Update("sold", gorm.Expr("sold + ?", item.Quantity))
		if res.Error != nil {
			return fmt.Errorf("更新已售数量失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errors.New("票种库存不足")
		}

		return nil
	})
	if err != nil {
		// 链上已成交但落库失败：监控器会按链上事件补偿
		logger.Error("Failed to record purchase %s locally: %v", chainResult.TxHash, err)
		return nil, err
	}

	return tickets, nil
}
