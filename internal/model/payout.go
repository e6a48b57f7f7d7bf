package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayoutModel 提现记录（可不经申请直接创建，申请仅作参考）
type PayoutModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PayoutRequestId       *int64          `json:"payout_request_id" gorm:"index"`
	UserId                string          `json:"user_id" gorm:"not null;index"`
	EscrowAccountId       int64           `json:"escrow_account_id" gorm:"not null;index"`
	PayoutMethodId        int64           `json:"payout_method_id" gorm:"not null"`
	Amount                decimal.Decimal `json:"amount" gorm:"type:numeric(20,2);not null"` // 提现金额
	Currency              string          `json:"currency" gorm:"not null;default:'USD'"`
	Status                string          `json:"status" gorm:"not null;default:'processing';index"` // processing, completed, failed
	ExternalTransactionId string          `json:"external_transaction_id"`
	FailureReason         string          `json:"failure_reason" gorm:"type:text"`
	CompletedAt           *time.Time      `json:"completed_at"`
	ProcessedAt           *time.Time      `json:"processed_at"`
}

// PayoutStatus 提现状态
type PayoutStatus string

const (
	PayoutStatusProcessing PayoutStatus = "processing" // 处理中
	PayoutStatusCompleted  PayoutStatus = "completed"  // 已完成
	PayoutStatusFailed     PayoutStatus = "failed"     // 失败
)

// TableName 自定义表名
func (PayoutModel) TableName() string {
	return "payout"
}
