package logic

import (
	"errors"
	"fmt"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RevenueLogic 收入事件业务逻辑
type RevenueLogic struct {
	db *gorm.DB
}

// NewRevenueLogic 创建收入事件业务逻辑
func NewRevenueLogic(db *gorm.DB) *RevenueLogic {
	return &RevenueLogic{db: db}
}

// RecordRevenueEventInput 收入事件入账参数
type RecordRevenueEventInput struct {
	SourceType     string
	SourceId       string
	GrossAmount    decimal.Decimal
	PlatformFee    decimal.Decimal
	Currency       string
	ProjectId      string
	OrgId          string
	Metadata       map[string]interface{}
	RequesterOrgId string // 多租户隔离校验用
}

// RecordRevenueEvent 记录一条不可变的收入事件
// 净金额由服务端计算，事件一经写入不再修改，修正只能通过追加新事件完成。
func (r *RevenueLogic) RecordRevenueEvent(input RecordRevenueEventInput) (*model.RevenueEventModel, error) {
	// 验证收入数据
	if !model.ValidSourceType(input.SourceType) {
		return nil, fmt.Errorf("无效的收入来源类型: %s", input.SourceType)
	}
	if input.SourceId == "" {
		return nil, errors.New("收入来源ID不能为空")
	}
	if input.GrossAmount.IsNegative() {
		return nil, errors.New("总金额不能为负数")
	}
	if input.PlatformFee.IsNegative() {
		return nil, errors.New("平台手续费不能为负数")
	}

	netAmount := input.GrossAmount.Sub(input.PlatformFee)
	if netAmount.IsNegative() {
		return nil, errors.New("净金额（总金额-手续费）不能为负数")
	}

	// 多租户隔离：请求方组织与事件组织都存在且不一致时拒绝
	if input.RequesterOrgId != "" && input.OrgId != "" && input.RequesterOrgId != input.OrgId {
		return nil, errors.New("组织不匹配，禁止跨组织写入")
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	event := &model.RevenueEventModel{
		SourceType:   input.SourceType,
		SourceId:     input.SourceId,
		GrossAmount:  input.GrossAmount.Round(2),
		PlatformFee:  input.PlatformFee.Round(2),
		NetAmount:    netAmount.Round(2),
		Currency:     currency,
		ProjectId:    input.ProjectId,
		OrgId:        input.OrgId,
		Metadata:     datatypes.JSONMap(input.Metadata),
		SettleStatus: string(model.SettleStatusPending),
	}

	if err := r.db.Create(event).Error; err != nil {
		return nil, fmt.Errorf("创建收入事件失败: %w", err)
	}

	return event, nil
}

// GetRevenueEvent 获取收入事件
func (r *RevenueLogic) GetRevenueEvent(eventId int64) (*model.RevenueEventModel, error) {
	var event model.RevenueEventModel
	if err := r.db.First(&event, eventId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("收入事件不存在")
		}
		return nil, err
	}
	return &event, nil
}

// GetProjectRevenueEvents 获取项目收入事件
func (r *RevenueLogic) GetProjectRevenueEvents(projectId string, page, pageSize int) ([]model.RevenueEventModel, int64, error) {
	var events []model.RevenueEventModel
	var total int64

	// 获取总数
	if err := r.db.Model(&model.RevenueEventModel{}).Where("project_id = ?", projectId).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取收入事件总数失败: %w", err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := r.db.Where("project_id = ?", projectId).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("获取收入事件失败: %w", err)
	}

	return events, total, nil
}
