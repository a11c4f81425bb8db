package logic

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/MaulRai/tiku/internal/ethereum"
	"github.com/MaulRai/tiku/internal/logger"
	"github.com/MaulRai/tiku/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

// ChainReseller 链上转售与查询能力（便于测试替换）
type ChainReseller interface {
	ListTicketForResale(ctx context.Context, tokenId int64, resalePrice *big.Int, resaleDeadline int64) (*ethereum.TxResult, error)
	BuyResaleTicket(ctx context.Context, tokenId int64, price *big.Int) (*ethereum.TxResult, error)
	GetTicketDetails(ctx context.Context, tokenId int64) (*ethereum.TicketDetails, error)
	GetUserTickets(ctx context.Context, owner common.Address) ([]int64, error)
	CanResell(ctx context.Context, tokenId int64) (bool, error)
	GetMaxResalePrice(ctx context.Context, tokenId int64) (*big.Int, error)
}

// TicketLogic 票务业务逻辑
type TicketLogic struct {
	db    *gorm.DB
	chain ChainReseller
}

// NewTicketLogic 创建票务业务逻辑
func NewTicketLogic(db *gorm.DB, chain ChainReseller) *TicketLogic {
	return &TicketLogic{db: db, chain: chain}
}

// GetUserTickets 获取用户持有的票（本地缓存副本）
func (t *TicketLogic) GetUserTickets(ownerAddress string) ([]model.Ticket, error) {
	var tickets []model.Ticket
	if err := t.db.Where("owner_address = ?", ownerAddress).
		Preload("Event").
		Preload("TicketType").
		Order("created_at desc").
		Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("获取用户票列表失败: %w", err)
	}
	return tickets, nil
}

// VerifyTicketResult 验票结果
type VerifyTicketResult struct {
	Valid  bool          `json:"valid"`
	Reason string        `json:"reason,omitempty"`
	Ticket *model.Ticket `json:"ticket,omitempty"`
}

// VerifyTicket 验票（入场校验，不改变票的状态）
func (t *TicketLogic) VerifyTicket(ticketId int64) (*VerifyTicketResult, error) {
	var ticket model.Ticket
	if err := t.db.Preload("Event").Preload("TicketType").First(&ticket, ticketId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &VerifyTicketResult{Valid: false, Reason: "票不存在"}, nil
		}
		return nil, fmt.Errorf("获取票失败: %w", err)
	}

	if ticket.IsUsed {
		return &VerifyTicketResult{Valid: false, Reason: "票已使用", Ticket: &ticket}, nil
	}
	if ticket.Event != nil && ticket.Event.Status == model.EventStatusCancelled {
		return &VerifyTicketResult{Valid: false, Reason: "活动已取消", Ticket: &ticket}, nil
	}

	return &VerifyTicketResult{Valid: true, Ticket: &ticket}, nil
}

// UseTicket 核销票（仅活动主办方可操作）
func (t *TicketLogic) UseTicket(ticketId int64, eventCreatorAddress string) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := t.db.Preload("Event").First(&ticket, ticketId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("票不存在")
		}
		return nil, fmt.Errorf("获取票失败: %w", err)
	}

	if ticket.Event == nil || ticket.Event.CreatorAddress != eventCreatorAddress {
		return nil, errors.New("仅活动主办方可核销票")
	}
	if ticket.IsUsed {
		return nil, errors.New("票已使用")
	}

	if err := t.db.Model(&ticket).Update("is_used", true).Error; err != nil {
		return nil, fmt.Errorf("核销票失败: %w", err)
	}

	ticket.IsUsed = true
	return &ticket, nil
}

// ListForResale 挂单转售
// 转售价与截止时间由链上规则约束；本地仅在链上成功后更新缓存
func (t *TicketLogic) ListForResale(ctx context.Context, ticketId int64, resalePrice int64, resaleDeadline time.Time, ownerAddress string) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := t.db.First(&ticket, ticketId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("票不存在")
		}
		return nil, fmt.Errorf("获取票失败: %w", err)
	}

	if ticket.OwnerAddress != ownerAddress {
		return nil, errors.New("仅持票人可挂单转售")
	}
	if ticket.IsUsed {
		return nil, errors.New("已使用的票不能转售")
	}
	if resalePrice <= 0 {
		return nil, errors.New("转售价必须大于0")
	}
	if !resaleDeadline.After(time.Now()) {
		return nil, errors.New("转售截止时间必须晚于当前时间")
	}

	// 链上校验转售资格与价格上限
	allowed, err := t.chain.CanResell(ctx, ticket.TokenId)
	if err != nil {
		return nil, fmt.Errorf("查询转售资格失败: %w", err)
	}
	if !allowed {
		return nil, errors.New("该票不允许转售")
	}

	maxPrice, err := t.chain.GetMaxResalePrice(ctx, ticket.TokenId)
	if err != nil {
		return nil, fmt.Errorf("查询转售价格上限失败: %w", err)
	}
	if big.NewInt(resalePrice).Cmp(maxPrice) > 0 {
		return nil, fmt.Errorf("转售价超过上限%s wei", maxPrice.String())
	}

	result, err := t.chain.ListTicketForResale(ctx, ticket.TokenId, big.NewInt(resalePrice), resaleDeadline.Unix())
	if err != nil {
		return nil, fmt.Errorf("链上挂单失败: %w", err)
	}

	updates := map[string]interface{}{
		"is_for_resale":   true,
		"resale_price":    resalePrice,
		"resale_deadline": &resaleDeadline,
	}
	if err := t.db.Model(&ticket).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新转售状态失败: %w", err)
	}

	logger.Info("Ticket %d listed for resale at %d wei, tx %s", ticket.TokenId, resalePrice, result.TxHash)

	ticket.IsForResale = true
	ticket.ResalePrice = resalePrice
	ticket.ResaleDeadline = &resaleDeadline
	return &ticket, nil
}

// BuyResale 购买转售票
func (t *TicketLogic) BuyResale(ctx context.Context, ticketId int64, buyerAddress string) (*model.Ticket, error) {
	if !common.IsHexAddress(buyerAddress) {
		return nil, errors.New("买家钱包地址无效")
	}

	var ticket model.Ticket
	if err := t.db.First(&ticket, ticketId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("票不存在")
		}
		return nil, fmt.Errorf("获取票失败: %w", err)
	}

	if !ticket.IsForResale {
		return nil, errors.New("该票未挂单转售")
	}
	if ticket.ResaleDeadline != nil && time.Now().After(*ticket.ResaleDeadline) {
		return nil, errors.New("转售已过期")
	}
	if ticket.OwnerAddress == buyerAddress {
		return nil, errors.New("不能购买自己的票")
	}

	result, err := t.chain.BuyResaleTicket(ctx, ticket.TokenId, big.NewInt(ticket.ResalePrice))
	if err != nil {
		return nil, fmt.Errorf("链上购买转售票失败: %w", err)
	}

	updates := map[string]interface{}{
		"owner_address":   buyerAddress,
		"is_for_resale":   false,
		"resale_price":    0,
		"resale_deadline": nil,
		"resale_count":    gorm.Expr("resale_count + 1"),
	}
	if err := t.db.Model(&ticket).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新票归属失败: %w", err)
	}

	logger.Info("Ticket %d resold to %s, tx %s", ticket.TokenId, buyerAddress, result.TxHash)

	if err := t.db.First(&ticket, ticketId).Error; err != nil {
		return nil, fmt.Errorf("获取票失败: %w", err)
	}
	return &ticket, nil
}

// GetResaleTickets 获取转售市场的在售票
func (t *TicketLogic) GetResaleTickets(eventId int64) ([]model.Ticket, error) {
	query := t.db.Where("is_for_resale = ?", true).
		Where("resale_deadline IS NULL OR resale_deadline > ?", time.Now()).
		Preload("Event").
		Preload("TicketType")
	if eventId > 0 {
		query = query.Where("event_id = ?", eventId)
	}

	var tickets []model.Ticket
	if err := query.Order("resale_price asc").Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("获取转售票列表失败: %w", err)
	}
	return tickets, nil
}

// SyncTicketFromChain 从链上同步票详情到本地缓存
func (t *TicketLogic) SyncTicketFromChain(ctx context.Context, ticketId int64) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := t.db.First(&ticket, ticketId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("票不存在")
		}
		return nil, fmt.Errorf("获取票失败: %w", err)
	}

	details, err := t.chain.GetTicketDetails(ctx, ticket.TokenId)
	if err != nil {
		return nil, fmt.Errorf("查询链上票详情失败: %w", err)
	}

	updates := map[string]interface{}{
		"owner_address": details.Owner.Hex(),
		"is_used":       details.IsUsed,
		"is_for_resale": details.IsForResale,
		"resale_price":  details.ResalePrice.Int64(),
		"resale_count":  int(details.ResaleCount.Int64()),
	}
	if details.ResaleDeadline.Sign() > 0 {
		deadline := time.Unix(details.ResaleDeadline.Int64(), 0)
		updates["resale_deadline"] = &deadline
	}

	if err := t.db.Model(&ticket).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("同步票详情失败: %w", err)
	}

	if err := t.db.First(&ticket, ticketId).Error; err != nil {
		return nil, fmt.Errorf("获取票失败: %w", err)
	}
	return &ticket, nil
}
