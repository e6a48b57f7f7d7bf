package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// RevenueEventModel 收入事件（不可变账本记录）
type RevenueEventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SourceType   string            `json:"source_type" gorm:"not null;index"` // marketplace, api, subscription, donation
	SourceId     string            `json:"source_id" gorm:"not null"`
	GrossAmount  decimal.Decimal   `json:"gross_amount" gorm:"type:numeric(20,2);not null"` // 总金额
	PlatformFee  decimal.Decimal   `json:"platform_fee" gorm:"type:numeric(20,2);not null"` // 平台手续费
	NetAmount    decimal.Decimal   `json:"net_amount" gorm:"type:numeric(20,2);not null"`   // 净金额 = gross - fee
	Currency     string            `json:"currency" gorm:"not null;default:'USD'"`
	ProjectId    string            `json:"project_id" gorm:"index"`
	OrgId        string            `json:"org_id" gorm:"index"`
	Metadata     datatypes.JSONMap `json:"metadata" gorm:"type:jsonb"`
	SettleStatus string            `json:"settle_status" gorm:"not null;default:'pending';index"` // pending, settled, skipped, failed
}

// RevenueSourceType 收入来源类型
type RevenueSourceType string

const (
	RevenueSourceMarketplace  RevenueSourceType = "marketplace"  // 市场交易
	RevenueSourceApi          RevenueSourceType = "api"          // API调用
	RevenueSourceSubscription RevenueSourceType = "subscription" // 订阅
	RevenueSourceDonation     RevenueSourceType = "donation"     // 捐赠
)

// SettleStatus 事件结算状态
type SettleStatus string

const (
	SettleStatusPending SettleStatus = "pending" // 待结算
	SettleStatusSettled SettleStatus = "settled" // 已结算
	SettleStatusSkipped SettleStatus = "skipped" // 无需结算（无项目或无分成规则）
	SettleStatusFailed  SettleStatus = "failed"  // 结算失败
)

// ValidSourceType 检查来源类型是否合法
func ValidSourceType(sourceType string) bool {
	switch RevenueSourceType(sourceType) {
	case RevenueSourceMarketplace, RevenueSourceApi, RevenueSourceSubscription, RevenueSourceDonation:
		return true
	}
	return false
}

// TableName 自定义表名
func (RevenueEventModel) TableName() string {
	return "revenue_event"
}
