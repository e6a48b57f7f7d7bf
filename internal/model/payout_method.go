package model

import (
	"time"

	"gorm.io/datatypes"
)

// PayoutMethodModel 提现方式
type PayoutMethodModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserId     string            `json:"user_id" gorm:"not null;index"`
	MethodType string            `json:"method_type" gorm:"not null"` // stripe_connect, paypal, bank_transfer, crypto
	Metadata   datatypes.JSONMap `json:"metadata" gorm:"type:jsonb;not null"`
	Verified   bool              `json:"verified" gorm:"default:false"`
	IsPrimary  bool              `json:"is_primary" gorm:"default:false"`
}

// PayoutMethodType 提现方式类型
type PayoutMethodType string

const (
	PayoutMethodStripeConnect PayoutMethodType = "stripe_connect" // Stripe Connect
	PayoutMethodPaypal        PayoutMethodType = "paypal"         // PayPal
	PayoutMethodBankTransfer  PayoutMethodType = "bank_transfer"  // 银行转账
	PayoutMethodCrypto        PayoutMethodType = "crypto"         // 加密货币
)

// ValidPayoutMethodType 检查提现方式类型是否合法
func ValidPayoutMethodType(methodType string) bool {
	switch PayoutMethodType(methodType) {
	case PayoutMethodStripeConnect, PayoutMethodPaypal, PayoutMethodBankTransfer, PayoutMethodCrypto:
		return true
	}
	return false
}

// TableName 自定义表名
func (PayoutMethodModel) TableName() string {
	return "payout_method"
}
