package logic

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/logger"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 分成比例合计的容差：直接更新路径较宽松，提案路径更严格
const (
	SplitRuleTolerance    = 0.01
	ProposalRuleTolerance = 0.001
)

// ErrNoActiveSplit 项目在指定时间点没有生效的分成规则
var ErrNoActiveSplit = errors.New("项目没有生效的分成规则")

// SplitLogic 收入分成业务逻辑
type SplitLogic struct {
	db *gorm.DB
}

// NewSplitLogic 创建收入分成业务逻辑
func NewSplitLogic(db *gorm.DB) *SplitLogic {
	return &SplitLogic{db: db}
}

// ComputedAllocation 计算出的单个接收人分配
type ComputedAllocation struct {
	UserId              string          `json:"user_id"`
	AllocatedAmount     decimal.Decimal `json:"allocated_amount"`
	AllocatedPercentage decimal.Decimal `json:"allocated_percentage"` // 0-100
}

// decodeRule 解析分成规则JSON
func decodeRule(raw datatypes.JSON) (map[string]float64, error) {
	rule := make(map[string]float64)
	if err := json.Unmarshal(raw, &rule); err != nil {
		return nil, fmt.Errorf("解析分成规则失败: %w", err)
	}
	return rule, nil
}

// encodeRule 序列化分成规则
func encodeRule(rule map[string]float64) (datatypes.JSON, error) {
	raw, err := json.Marshal(rule)
	if err != nil {
		return nil, fmt.Errorf("序列化分成规则失败: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// ruleSum 计算分成比例合计
func ruleSum(rule map[string]float64) float64 {
	var sum float64
	for _, fraction := range rule {
		sum += fraction
	}
	return sum
}

// ValidateRule 校验分成规则比例合计是否在容差范围内
func ValidateRule(rule map[string]float64, tolerance float64) error {
	if len(rule) == 0 {
		return errors.New("分成规则不能为空")
	}
	for userId, fraction := range rule {
		if userId == "" {
			return errors.New("分成规则包含空的用户ID")
		}
		if fraction < 0 {
			return fmt.Errorf("用户 %s 的分成比例不能为负数", userId)
		}
	}
	sum := ruleSum(rule)
	if math.Abs(sum-1.0) > tolerance {
		return fmt.Errorf("分成比例合计必须为1.0，当前为 %.4f", sum)
	}
	return nil
}

// ComputeRevenueSplits 按指定时间点生效的规则计算分成
// 取 active_from <= timestamp 中最新的一条规则，而不是 active_until 为空的那条，
// 以便对历史事件按当时生效的规则重算。
func (s *SplitLogic) ComputeRevenueSplits(projectId string, netAmount decimal.Decimal, at time.Time) ([]ComputedAllocation, int, error) {
	var split model.RevenueSplitModel
	err := s.db.Where("project_id = ? AND active_from <= ?", projectId, at).
		Order("active_from DESC").
		First(&split).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrNoActiveSplit
		}
		return nil, 0, fmt.Errorf("查询分成规则失败: %w", err)
	}

	rule, err := decodeRule(split.Rule)
	if err != nil {
		return nil, 0, err
	}

	// 比例合计偏差只告警不拒绝，容忍轻微舍入误差
	if sum := ruleSum(rule); math.Abs(sum-1.0) > SplitRuleTolerance {
		logger.Warn("Split rule fractions sum to %.4f, not 1.0 (project %s, version %d)", sum, projectId, split.SplitVersion)
	}

	allocations := make([]ComputedAllocation, 0, len(rule))
	for userId, fraction := range rule {
		fractionDec := decimal.NewFromFloat(fraction)
		allocations = append(allocations, ComputedAllocation{
			UserId:              userId,
			AllocatedAmount:     netAmount.Mul(fractionDec).Round(2),
			AllocatedPercentage: fractionDec.Mul(decimal.NewFromInt(100)),
		})
	}

	return allocations, split.SplitVersion, nil
}

// RecordSplitAllocations 写入分配批次（全部成功或全部失败）
func (s *SplitLogic) RecordSplitAllocations(revenueEventId int64, projectId string, allocations []ComputedAllocation, splitVersion int) error {
	if len(allocations) == 0 {
		return errors.New("分配批次不能为空")
	}

	records := make([]model.SplitAllocationModel, 0, len(allocations))
	for _, a := range allocations {
		records = append(records, model.SplitAllocationModel{
			RevenueEventId:      revenueEventId,
			ProjectId:           projectId,
			UserId:              a.UserId,
			SplitVersion:        splitVersion,
			AllocatedAmount:     a.AllocatedAmount,
			AllocatedPercentage: a.AllocatedPercentage,
		})
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("写入分配记录失败: %w", err)
		}
		return nil
	})
}

// UpdateRevenueSplit 创建新版本分成规则并停用旧版本
func (s *SplitLogic) UpdateRevenueSplit(projectId string, rule map[string]float64, createdBy string) (int, error) {
	var newVersion int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		newVersion, err = applyRevenueSplit(tx, projectId, rule, createdBy)
		return err
	})
	if err != nil {
		return 0, err
	}
	return newVersion, nil
}

// applyRevenueSplit 在事务内安装新版本分成规则
// 这是唯一修改“当前生效”状态的路径：为当前最大版本盖上 active_until，
// 然后追加版本号加一的新行，历史行保持不变。
func applyRevenueSplit(tx *gorm.DB, projectId string, rule map[string]float64, createdBy string) (int, error) {
	if err := ValidateRule(rule, SplitRuleTolerance); err != nil {
		return 0, err
	}
	if createdBy == "" {
		return 0, errors.New("创建人不能为空")
	}

	// 查当前最大版本
	var latest model.RevenueSplitModel
	currentVersion := 0
	err := tx.Where("project_id = ?", projectId).
		Order("split_version DESC").
		First(&latest).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("查询当前分成版本失败: %w", err)
	}
	if err == nil {
		currentVersion = latest.SplitVersion
	}

	now := time.Now()

	// 停用旧版本
	if currentVersion > 0 {
		if err := tx.Model(&model.RevenueSplitModel{}).
			Where("project_id = ? AND split_version = ?", projectId, currentVersion).
			Update("active_until", now).Error; err != nil {
			return 0, fmt.Errorf("停用旧分成规则失败: %w", err)
		}
	}

	raw, err := encodeRule(rule)
	if err != nil {
		return 0, err
	}

	newVersion := currentVersion + 1
	split := model.RevenueSplitModel{
		ProjectId:    projectId,
		SplitVersion: newVersion,
		Rule:         raw,
		ActiveFrom:   now,
		CreatedBy:    createdBy,
	}
	if err := tx.Create(&split).Error; err != nil {
		return 0, fmt.Errorf("创建分成规则失败: %w", err)
	}

	return newVersion, nil
}

// GetActiveSplit 获取当前生效的分成规则
func (s *SplitLogic) GetActiveSplit(projectId string) (*model.RevenueSplitModel, error) {
	var split model.RevenueSplitModel
	err := s.db.Where("project_id = ? AND active_until IS NULL", projectId).
		First(&split).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSplit
		}
		return nil, fmt.Errorf("查询分成规则失败: %w", err)
	}
	return &split, nil
}

// GetEventAllocations 获取某收入事件的分配记录
func (s *SplitLogic) GetEventAllocations(revenueEventId int64) ([]model.SplitAllocationModel, error) {
	var allocations []model.SplitAllocationModel
	if err := s.db.Where("revenue_event_id = ?", revenueEventId).
		Find(&allocations).Error; err != nil {
		return nil, fmt.Errorf("获取分配记录失败: %w", err)
	}
	return allocations, nil
}
