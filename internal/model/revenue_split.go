package model

import (
	"time"

	"gorm.io/datatypes"
)

// RevenueSplitModel 收入分成规则（按版本追加，历史版本保留用于审计）
type RevenueSplitModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId    string         `json:"project_id" gorm:"not null;uniqueIndex:idx_split_project_version,priority:1"`
	SplitVersion int            `json:"split_version" gorm:"not null;uniqueIndex:idx_split_project_version,priority:2"` // 从1开始单调递增
	Rule         datatypes.JSON `json:"rule" gorm:"type:jsonb;not null"`                                                // user_id -> 分成比例
	ActiveFrom   time.Time      `json:"active_from" gorm:"not null;index"`
	ActiveUntil  *time.Time     `json:"active_until"` // 为空表示当前生效版本
	CreatedBy    string         `json:"created_by" gorm:"not null"`
}

// TableName 自定义表名
func (RevenueSplitModel) TableName() string {
	return "revenue_split"
}
