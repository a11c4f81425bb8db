package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/MaulRai/tiku/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

// ProposalLogic 提案审核业务逻辑
type ProposalLogic struct {
	db *gorm.DB
}

// NewProposalLogic 创建提案审核业务逻辑
func NewProposalLogic(db *gorm.DB) *ProposalLogic {
	return &ProposalLogic{db: db}
}

// GetPendingProposals 获取待审核提案列表
func (p *ProposalLogic) GetPendingProposals() ([]model.Proposal, error) {
	var proposals []model.Proposal
	if err := p.db.Where("status = ?", model.ProposalStatusPending).
		Preload("Event").
		Preload("Beneficiaries").
		Order("submitted_at asc").
		Find(&proposals).Error; err != nil {
		return nil, fmt.Errorf("获取待审核提案失败: %w", err)
	}
	return proposals, nil
}

// ApproveProposal 批准提案
// 需要税务钱包地址（入参优先，缺省取提案自带值）；提案批准后所属活动同步批准
func (p *ProposalLogic) ApproveProposal(id int64, taxWalletAddress, adminComment string) (*model.Proposal, error) {
	var proposal model.Proposal
	if err := p.db.Preload("Event").First(&proposal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("提案不存在")
		}
		return nil, fmt.Errorf("获取提案失败: %w", err)
	}

	if !proposal.Status.CanTransitionTo(model.ProposalStatusApproved) {
		return nil, fmt.Errorf("提案当前状态(%s)不允许批准", proposal.Status)
	}

	// 税务钱包地址：入参缺省时回退到提案自带值
	if taxWalletAddress == "" {
		taxWalletAddress = proposal.TaxWalletAddress
	}
	if !common.IsHexAddress(taxWalletAddress) {
		return nil, errors.New("批准提案需要有效的税务钱包地址")
	}

	if proposal.Event == nil {
		return nil, errors.New("提案所属活动不存在")
	}
	if !proposal.Event.Status.CanTransitionTo(model.EventStatusApproved) {
		return nil, fmt.Errorf("活动当前状态(%s)不允许批准", proposal.Event.Status)
	}

	now := time.Now()
	err := p.db.Transaction(func(tx *gorm.DB) error {
		proposalUpdates := map[string]interface{}{
			"status":             model.ProposalStatusApproved,
			"tax_wallet_address": taxWalletAddress,
			"admin_comment":      adminComment,
			"reviewed_at":        &now,
		}
		if err := tx.Model(&proposal).Updates(proposalUpdates).Error; err != nil {
			return fmt.Errorf("更新提案失败: %w", err)
		}

		if err := tx.Model(&model.Event{}).Where("id = ?", proposal.EventId).
			Update("status", model.EventStatusApproved).Error; err != nil {
			return fmt.Errorf("更新活动状态失败: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	proposal.Status = model.ProposalStatusApproved
	proposal.TaxWalletAddress = taxWalletAddress
	proposal.AdminComment = adminComment
	proposal.ReviewedAt = &now
	proposal.Event.Status = model.EventStatusApproved
	return &proposal, nil
}

// RejectProposal 拒绝提案
// 必须填写拒绝原因；活动保持待审核状态，不可配置票种
func (p *ProposalLogic) RejectProposal(id int64, adminComment string) (*model.Proposal, error) {
	if adminComment == "" {
		return nil, errors.New("拒绝提案必须填写原因")
	}

	var proposal model.Proposal
	if err := p.db.First(&proposal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("提案不存在")
		}
		return nil, fmt.Errorf("获取提案失败: %w", err)
	}

	if !proposal.Status.CanTransitionTo(model.ProposalStatusRejected) {
		return nil, fmt.Errorf("提案当前状态(%s)不允许拒绝", proposal.Status)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":        model.ProposalStatusRejected,
		"admin_comment": adminComment,
		"reviewed_at":   &now,
	}
	if err := p.db.Model(&proposal).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新提案失败: %w", err)
	}

	proposal.Status = model.ProposalStatusRejected
	proposal.AdminComment = adminComment
	proposal.ReviewedAt = &now
	return &proposal, nil
}
