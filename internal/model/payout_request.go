package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayoutRequestModel 提现申请
type PayoutRequestModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserId          string          `json:"user_id" gorm:"not null;index"`
	EscrowAccountId int64           `json:"escrow_account_id" gorm:"not null;index"`
	RequestAmount   decimal.Decimal `json:"request_amount" gorm:"type:numeric(20,2);not null"` // 申请金额
	Status          string          `json:"status" gorm:"not null;default:'pending';index"`    // pending, approved, rejected
	ExpiresAt       time.Time       `json:"expires_at" gorm:"not null"`
	Reason          string          `json:"reason" gorm:"type:text"`
	Notes           string          `json:"notes" gorm:"type:text"` // 审核备注
}

// PayoutRequestStatus 提现申请状态
type PayoutRequestStatus string

const (
	PayoutRequestStatusPending  PayoutRequestStatus = "pending"  // 待审核
	PayoutRequestStatusApproved PayoutRequestStatus = "approved" // 已批准
	PayoutRequestStatusRejected PayoutRequestStatus = "rejected" // 已拒绝
)

// PayoutRequestExpiry 提现申请默认有效期
const PayoutRequestExpiry = 30 * 24 * time.Hour

// TableName 自定义表名
func (PayoutRequestModel) TableName() string {
	return "payout_request"
}
