package monitor

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/MaulRai/tiku/internal/chain"
	"github.com/MaulRai/tiku/internal/logger"
	"github.com/MaulRai/tiku/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

// EventProcessor 链上事件处理器
// 把合约事件落实到本地业务数据，链上数据为权威数据
type EventProcessor struct {
	db *gorm.DB
}

// NewEventProcessor 创建事件处理器
func NewEventProcessor(db *gorm.DB) *EventProcessor {
	return &EventProcessor{db: db}
}

// Process 按事件名称分发处理
func (p *EventProcessor) Process(record *model.ChainEvent, parsed *chain.ParsedEvent) error {
	logger.Info("Processing event %s from contract %s, tx: %s, block: %d",
		parsed.Name, parsed.Contract, parsed.TxHash, parsed.BlockNum)

	switch parsed.Name {
	case "TicketMinted":
		return p.handleTicketMinted(parsed)
	case "TicketListedForResale":
		return p.handleTicketListedForResale(parsed)
	case "TicketResold":
		return p.handleTicketResold(parsed)
	case "TicketUsed":
		return p.handleTicketUsed(parsed)
	default:
		logger.Debug("No handler for event %s, recorded only", parsed.Name)
		return nil
	}
}

// handleTicketMinted 处理铸票事件
// 正常购票流程已落库过票记录，此处只对缺失的记录做补偿
func (p *EventProcessor) handleTicketMinted(parsed *chain.ParsedEvent) error {
	tokenId, err := argBigInt(parsed.Args, "tokenId")
	if err != nil {
		return err
	}
	eventId, err := argBigInt(parsed.Args, "eventId")
	if err != nil {
		return err
	}
	typeId, err := argBigInt(parsed.Args, "typeId")
	if err != nil {
		return err
	}
	buyer, err := argAddress(parsed.Args, "buyer")
	if err != nil {
		return err
	}
	price, err := argBigInt(parsed.Args, "price")
	if err != nil {
		return err
	}

	var existing model.Ticket
	err = p.db.Where("token_id = ?", tokenId.Int64()).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("查询票失败: %w", err)
	}

	logger.Warn("Ticket %d minted on chain but missing locally, compensating from tx %s",
		tokenId.Int64(), parsed.TxHash)

	return p.db.Transaction(func(tx *gorm.DB) error {
		ticket := model.Ticket{
			EventId:       eventId.Int64(),
			TicketTypeId:  typeId.Int64(),
			TokenId:       tokenId.Int64(),
			OwnerAddress:  buyer.Hex(),
			MintTxHash:    parsed.TxHash,
			BlockNum:      parsed.BlockNum,
			OriginalPrice: price.Int64(),
		}
		if err := tx.Create(&ticket).Error; err != nil {
			return fmt.Errorf("补偿票记录失败: %w", err)
		}

		// 已售计数同步补偿，不越过库存
		res := tx.Model(&model.TicketType{}).
			Where("id = ? AND sold < stock", typeId.Int64()).
			Update("sold", gorm.Expr("sold + 1"))
		if res.Error != nil {
			return fmt.Errorf("补偿已售数量失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			logger.Warn("Sold counter for ticket type %d already at stock, skipping increment", typeId.Int64())
		}
		return nil
	})
}

// handleTicketListedForResale 处理挂单转售事件
func (p *EventProcessor) handleTicketListedForResale(parsed *chain.ParsedEvent) error {
	tokenId, err := argBigInt(parsed.Args, "tokenId")
	if err != nil {
		return err
	}
	resalePrice, err := argBigInt(parsed.Args, "resalePrice")
	if err != nil {
		return err
	}
	resaleDeadline, err := argBigInt(parsed.Args, "resaleDeadline")
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"is_for_resale": true,
		"resale_price":  resalePrice.Int64(),
	}
	if resaleDeadline.Sign() > 0 {
		deadline := time.Unix(resaleDeadline.Int64(), 0)
		updates["resale_deadline"] = &deadline
	}

	return p.updateTicketByToken(tokenId.Int64(), updates)
}

// handleTicketResold 处理转售成交事件
func (p *EventProcessor) handleTicketResold(parsed *chain.ParsedEvent) error {
	tokenId, err := argBigInt(parsed.Args, "tokenId")
	if err != nil {
		return err
	}
	to, err := argAddress(parsed.Args, "to")
	if err != nil {
		return err
	}

	return p.updateTicketByToken(tokenId.Int64(), map[string]interface{}{
		"owner_address":   to.Hex(),
		"is_for_resale":   false,
		"resale_price":    0,
		"resale_deadline": nil,
		"resale_count":    gorm.Expr("resale_count + 1"),
	})
}

// handleTicketUsed 处理验票核销事件
func (p *EventProcessor) handleTicketUsed(parsed *chain.ParsedEvent) error {
	tokenId, err := argBigInt(parsed.Args, "tokenId")
	if err != nil {
		return err
	}

	return p.updateTicketByToken(tokenId.Int64(), map[string]interface{}{
		"is_used": true,
	})
}

// updateTicketByToken 按链上票ID更新本地票记录
func (p *EventProcessor) updateTicketByToken(tokenId int64, updates map[string]interface{}) error {
	res := p.db.Model(&model.Ticket{}).Where("token_id = ?", tokenId).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("更新票记录失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		logger.Warn("No local ticket with token id %d, update skipped", tokenId)
	}
	return nil
}

// argBigInt 取uint256类型的事件参数
func argBigInt(args map[string]interface{}, name string) (*big.Int, error) {
	value, ok := args[name].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("事件参数%s缺失或类型不符", name)
	}
	return value, nil
}

// argAddress 取address类型的事件参数
func argAddress(args map[string]interface{}, name string) (common.Address, error) {
	value, ok := args[name].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("事件参数%s缺失或类型不符", name)
	}
	return value, nil
}

// encodableArgs 把事件参数转成可JSON序列化的形式
func encodableArgs(args map[string]interface{}) map[string]interface{} {
	encoded := make(map[string]interface{}, len(args))
	for name, value := range args {
		switch v := value.(type) {
		case *big.Int:
			encoded[name] = v.String()
		case common.Address:
			encoded[name] = v.Hex()
		case common.Hash:
			encoded[name] = v.Hex()
		case [32]byte:
			encoded[name] = common.BytesToHash(v[:]).Hex()
		default:
			encoded[name] = v
		}
	}
	return encoded
}
