package handler

import (
	"time"
)

// 金额字段统一用两位小数的十进制字符串传输，避免浮点误差。

// RecordRevenueEventRequest 收入事件入账请求
type RecordRevenueEventRequest struct {
	SourceType  string                 `json:"source_type" binding:"required"`
	SourceId    string                 `json:"source_id" binding:"required"`
	GrossAmount string                 `json:"gross_amount" binding:"required"`
	PlatformFee string                 `json:"platform_fee"`
	Currency    string                 `json:"currency"`
	ProjectId   string                 `json:"project_id"`
	OrgId       string                 `json:"org_id"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// ComputeSplitsRequest 分成计算请求
type ComputeSplitsRequest struct {
	NetAmount string     `json:"net_amount" binding:"required"`
	Timestamp *time.Time `json:"timestamp"`
}

// UpdateSplitRequest 分成规则更新请求
type UpdateSplitRequest struct {
	Rule      map[string]float64 `json:"rule" binding:"required"`
	CreatedBy string             `json:"created_by" binding:"required"`
}

// DepositRequest 托管入账请求
type DepositRequest struct {
	UserId    string `json:"user_id" binding:"required"`
	ProjectId string `json:"project_id" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
}

// CreatePayoutRequestRequest 提现申请请求
type CreatePayoutRequestRequest struct {
	UserId          string `json:"user_id" binding:"required"`
	EscrowAccountId int64  `json:"escrow_account_id" binding:"required"`
	RequestAmount   string `json:"request_amount" binding:"required"`
	Reason          string `json:"reason"`
}

// ReviewPayoutRequestRequest 提现申请审核请求
type ReviewPayoutRequestRequest struct {
	Approved bool   `json:"approved"`
	Notes    string `json:"notes"`
}

// RegisterPayoutMethodRequest 提现方式登记请求
type RegisterPayoutMethodRequest struct {
	UserId     string                 `json:"user_id" binding:"required"`
	MethodType string                 `json:"method_type" binding:"required"`
	Metadata   map[string]interface{} `json:"metadata"`
	IsPrimary  bool                   `json:"is_primary"`
}

// ProcessPayoutRequest 发起提现请求
type ProcessPayoutRequest struct {
	PayoutRequestId *int64 `json:"payout_request_id"`
	UserId          string `json:"user_id" binding:"required"`
	EscrowAccountId int64  `json:"escrow_account_id" binding:"required"`
	PayoutMethodId  int64  `json:"payout_method_id" binding:"required"`
	Amount          string `json:"amount" binding:"required"`
}

// CompletePayoutRequest 提现完成确认请求
type CompletePayoutRequest struct {
	ExternalTransactionId string `json:"external_transaction_id"`
}

// FailPayoutRequest 提现失败确认请求
type FailPayoutRequest struct {
	FailureReason string `json:"failure_reason"`
}

// CreateProposalRequest 分成提案创建请求
type CreateProposalRequest struct {
	ProjectId    string             `json:"project_id" binding:"required"`
	ProposedBy   string             `json:"proposed_by" binding:"required"`
	ProposedRule map[string]float64 `json:"proposed_rule" binding:"required"`
	VotingRule   string             `json:"voting_rule" binding:"required"`
	Description  string             `json:"description"`
	ExpiresAt    *time.Time         `json:"expires_at"`
}

// CastVoteRequest 投票请求
type CastVoteRequest struct {
	VoterId string `json:"voter_id" binding:"required"`
	Vote    string `json:"vote" binding:"required"`
	Reason  string `json:"reason"`
}

// EvaluateProposalRequest 提案计票请求
type EvaluateProposalRequest struct {
	RequesterUserId string `json:"requester_user_id" binding:"required"`
}
