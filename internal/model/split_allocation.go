package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitAllocationModel 分成分配记录（不可变，每个收入事件每个接收人一条）
type SplitAllocationModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RevenueEventId      int64           `json:"revenue_event_id" gorm:"not null;index"`
	ProjectId           string          `json:"project_id" gorm:"not null;index"`
	UserId              string          `json:"user_id" gorm:"not null;index"`
	SplitVersion        int             `json:"split_version" gorm:"not null"`
	AllocatedAmount     decimal.Decimal `json:"allocated_amount" gorm:"type:numeric(20,2);not null"`    // 分配金额
	AllocatedPercentage decimal.Decimal `json:"allocated_percentage" gorm:"type:numeric(10,4);not null"` // 分配比例 0-100
}

// TableName 自定义表名
func (SplitAllocationModel) TableName() string {
	return "split_allocation"
}
