package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EscrowAccountModel 托管账户（按用户和项目维度，余额三分区）
// 不变量: balance >= 0 且 held_amount >= 0；
// balance + held_amount + released_amount 等于累计入账减去失败回退金额。
type EscrowAccountModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserId         string          `json:"user_id" gorm:"not null;uniqueIndex:idx_escrow_user_project,priority:1"`
	ProjectId      string          `json:"project_id" gorm:"not null;uniqueIndex:idx_escrow_user_project,priority:2"`
	Balance        decimal.Decimal `json:"balance" gorm:"type:numeric(20,2);not null;default:0"`         // 可提现余额
	HeldAmount     decimal.Decimal `json:"held_amount" gorm:"type:numeric(20,2);not null;default:0"`     // 提现中冻结金额
	ReleasedAmount decimal.Decimal `json:"released_amount" gorm:"type:numeric(20,2);not null;default:0"` // 累计已提现金额
}

// TableName 自定义表名
func (EscrowAccountModel) TableName() string {
	return "escrow_account"
}
