package logic

import (
	"errors"
	"fmt"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/model"
	"gorm.io/gorm"
)

// CollaboratorLogic 协作者目录读取逻辑
// 协作者关系由外部目录服务维护，这里只消费，不提供写入接口。
type CollaboratorLogic struct {
	db *gorm.DB
}

// NewCollaboratorLogic 创建协作者目录读取逻辑
func NewCollaboratorLogic(db *gorm.DB) *CollaboratorLogic {
	return &CollaboratorLogic{db: db}
}

// IsCollaborator 判断用户当前是否为项目协作者
func (c *CollaboratorLogic) IsCollaborator(projectId, userId string) (bool, error) {
	var collaborator model.ProjectCollaboratorModel
	err := c.db.Where("project_id = ? AND user_id = ? AND is_active = ?", projectId, userId, true).
		First(&collaborator).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("查询协作者失败: %w", err)
	}
	return true, nil
}

// ListCollaborators 获取项目当前协作者列表
func (c *CollaboratorLogic) ListCollaborators(projectId string) ([]model.ProjectCollaboratorModel, error) {
	var collaborators []model.ProjectCollaboratorModel
	if err := c.db.Where("project_id = ? AND is_active = ?", projectId, true).
		Order("join_time ASC").
		Find(&collaborators).Error; err != nil {
		return nil, fmt.Errorf("获取协作者列表失败: %w", err)
	}
	return collaborators, nil
}
