package model

import (
	"time"

	"gorm.io/datatypes"
)

// SplitProposalModel 分成规则变更提案
// eligible_voters 在创建时快照，投票与计票都以快照为准。
type SplitProposalModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId      string         `json:"project_id" gorm:"not null;index"`
	ProposedBy     string         `json:"proposed_by" gorm:"not null"`
	ProposedRule   datatypes.JSON `json:"proposed_rule" gorm:"type:jsonb;not null"`   // user_id -> 分成比例
	VotingRule     string         `json:"voting_rule" gorm:"not null"`                // unanimous, majority
	Status         string         `json:"status" gorm:"not null;default:'pending';index"` // pending, approved, rejected
	EligibleVoters datatypes.JSON `json:"eligible_voters" gorm:"type:jsonb;not null"` // 创建时的协作者快照
	ExpiresAt      time.Time      `json:"expires_at" gorm:"not null"`
	Description    string         `json:"description" gorm:"type:text"`
}

// VotingRule 投票规则
type VotingRule string

const (
	VotingRuleUnanimous VotingRule = "unanimous" // 全体一致
	VotingRuleMajority  VotingRule = "majority"  // 过半数
)

// ProposalStatus 提案状态
type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"  // 投票中
	ProposalStatusApproved ProposalStatus = "approved" // 已通过
	ProposalStatusRejected ProposalStatus = "rejected" // 已否决
)

// ProposalExpiry 提案默认投票期
const ProposalExpiry = 7 * 24 * time.Hour

// ValidVotingRule 检查投票规则是否合法
func ValidVotingRule(rule string) bool {
	switch VotingRule(rule) {
	case VotingRuleUnanimous, VotingRuleMajority:
		return true
	}
	return false
}

// TableName 自定义表名
func (SplitProposalModel) TableName() string {
	return "split_proposal"
}
