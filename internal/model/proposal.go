package model

import (
	"time"
)

// Proposal 活动提案模型（主办方提交，管理员审核）
type Proposal struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventId        int64  `json:"event_id" gorm:"not null;index"`
	CreatorAddress string `json:"creator_address" gorm:"not null"`

	// 税务钱包地址
	TaxWalletAddress string `json:"tax_wallet_address"`

	// 状态
	Status ProposalStatus `json:"status" gorm:"default:'pending'"`

	// 审核信息
	AdminComment string     `json:"admin_comment"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	ReviewedAt   *time.Time `json:"reviewed_at"`

	// 关联
	Beneficiaries []RevenueBeneficiary `json:"beneficiaries,omitempty" gorm:"foreignKey:ProposalId"`
	Event         *Event               `json:"event,omitempty" gorm:"foreignKey:EventId"`
}

// RevenueBeneficiary 收益受益人（按基点分成）
type RevenueBeneficiary struct {
	Id         int64 `json:"id" gorm:"primaryKey"`
	ProposalId int64 `json:"proposal_id" gorm:"not null;index"`

	Address     string `json:"address" gorm:"not null"`
	Name        string `json:"name"`
	BasisPoints int64  `json:"basis_points" gorm:"not null"` // 万分比，合计必须为10000
	SortOrder   int    `json:"sort_order"`                   // 受益人顺序，与链上调用参数顺序一致
}

// ProposalStatus 提案状态
type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"  // 待审核
	ProposalStatusApproved ProposalStatus = "approved" // 已批准
	ProposalStatusRejected ProposalStatus = "rejected" // 已拒绝
)

// proposalTransitions 提案状态转移表
var proposalTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalStatusPending:  {ProposalStatusApproved, ProposalStatusRejected},
	ProposalStatusApproved: {},
	ProposalStatusRejected: {},
}

// CanTransitionTo 判断是否允许转移到目标状态
func (s ProposalStatus) CanTransitionTo(target ProposalStatus) bool {
	for _, next := range proposalTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal 是否为终止状态
func (s ProposalStatus) IsTerminal() bool {
	return len(proposalTransitions[s]) == 0
}

// TableName 自定义表名
func (Proposal) TableName() string {
	return "proposal"
}

// TableName 自定义表名
func (RevenueBeneficiary) TableName() string {
	return "revenue_beneficiary"
}
