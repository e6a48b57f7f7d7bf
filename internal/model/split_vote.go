package model

import (
	"time"
)

// SplitVoteModel 提案投票（每人每提案一票，投后不可更改）
type SplitVoteModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProposalId int64  `json:"proposal_id" gorm:"not null;uniqueIndex:idx_vote_proposal_voter,priority:1"`
	VoterId    string `json:"voter_id" gorm:"not null;uniqueIndex:idx_vote_proposal_voter,priority:2"`
	Vote       string `json:"vote" gorm:"not null"` // approve, reject
	Reason     string `json:"reason" gorm:"type:text"`
}

// VoteChoice 投票选项
type VoteChoice string

const (
	VoteApprove VoteChoice = "approve" // 赞成
	VoteReject  VoteChoice = "reject"  // 反对
)

// ValidVoteChoice 检查投票选项是否合法
func ValidVoteChoice(vote string) bool {
	switch VoteChoice(vote) {
	case VoteApprove, VoteReject:
		return true
	}
	return false
}

// TableName 自定义表名
func (SplitVoteModel) TableName() string {
	return "split_vote"
}
