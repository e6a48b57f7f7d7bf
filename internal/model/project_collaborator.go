package model

import (
	"time"
)

// ProjectCollaboratorModel 项目协作者
// 该表由外部协作者目录维护，本服务只读，作为投票资格的依据。
type ProjectCollaboratorModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId string    `json:"project_id" gorm:"not null;uniqueIndex:idx_collab_project_user,priority:1"`
	UserId    string    `json:"user_id" gorm:"not null;uniqueIndex:idx_collab_project_user,priority:2"`
	Role      string    `json:"role"` // creator, developer, designer, marketer, advisor
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	JoinTime  time.Time `json:"join_time"`
}

// CollaboratorRole 协作者角色
type CollaboratorRole string

const (
	CollaboratorRoleCreator   CollaboratorRole = "creator"   // 创建者
	CollaboratorRoleDeveloper CollaboratorRole = "developer" // 开发者
	CollaboratorRoleDesigner  CollaboratorRole = "designer"  // 设计师
	CollaboratorRoleMarketer  CollaboratorRole = "marketer"  // 市场推广
	CollaboratorRoleAdvisor   CollaboratorRole = "advisor"   // 顾问
)

// TableName 自定义表名
func (ProjectCollaboratorModel) TableName() string {
	return "project_collaborator"
}
