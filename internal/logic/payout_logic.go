package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PayoutLogic 提现业务逻辑
type PayoutLogic struct {
	db     *gorm.DB
	escrow *EscrowLogic
}

// NewPayoutLogic 创建提现业务逻辑
func NewPayoutLogic(db *gorm.DB) *PayoutLogic {
	return &PayoutLogic{db: db, escrow: NewEscrowLogic(db)}
}

// CreatePayoutRequest 创建提现申请
// 申请不冻结资金，只做余额预检，审批后由 ProcessPayout 实际划转。
func (p *PayoutLogic) CreatePayoutRequest(userId string, escrowAccountId int64, requestAmount decimal.Decimal, reason string) (*model.PayoutRequestModel, error) {
	if requestAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("申请金额必须大于0")
	}

	// 校验托管账户归属
	account, err := p.escrow.GetAccount(escrowAccountId)
	if err != nil {
		return nil, err
	}
	if account.UserId != userId {
		return nil, errors.New("托管账户不属于当前用户")
	}

	if requestAmount.GreaterThan(account.Balance) {
		return nil, fmt.Errorf("余额不足，可用 %s，申请 %s", account.Balance.StringFixed(2), requestAmount.StringFixed(2))
	}

	request := &model.PayoutRequestModel{
		UserId:          userId,
		EscrowAccountId: escrowAccountId,
		RequestAmount:   requestAmount.Round(2),
		Status:          string(model.PayoutRequestStatusPending),
		ExpiresAt:       time.Now().Add(model.PayoutRequestExpiry),
		Reason:          reason,
	}
	if err := p.db.Create(request).Error; err != nil {
		return nil, fmt.Errorf("创建提现申请失败: %w", err)
	}

	return request, nil
}

// ReviewPayoutRequest 审核提现申请（管理员操作，不划转资金）
// 状态和有效期条件都写在 UPDATE 里，已审核或已过期的申请不会被覆盖。
func (p *PayoutLogic) ReviewPayoutRequest(requestId int64, approved bool, notes string) error {
	newStatus := model.PayoutRequestStatusRejected
	if approved {
		newStatus = model.PayoutRequestStatusApproved
	}

	result := p.db.Model(&model.PayoutRequestModel{}).
		Where("id = ? AND status = ? AND expires_at > ?", requestId, model.PayoutRequestStatusPending, time.Now()).
		Updates(map[string]interface{}{
			"status": string(newStatus),
			"notes":  notes,
		})
	if result.Error != nil {
		return fmt.Errorf("更新提现申请失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var request model.PayoutRequestModel
		if err := p.db.First(&request, requestId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("提现申请不存在")
			}
			return fmt.Errorf("查询提现申请失败: %w", err)
		}
		if request.Status == string(model.PayoutRequestStatusPending) {
			return errors.New("提现申请已过期")
		}
		return fmt.Errorf("提现申请已是终态: %s", request.Status)
	}

	return nil
}

// RegisterPayoutMethod 登记提现方式，默认未验证
func (p *PayoutLogic) RegisterPayoutMethod(userId, methodType string, metadata map[string]interface{}, isPrimary bool) (*model.PayoutMethodModel, error) {
	if userId == "" {
		return nil, errors.New("用户ID不能为空")
	}
	if !model.ValidPayoutMethodType(methodType) {
		return nil, fmt.Errorf("无效的提现方式类型: %s", methodType)
	}
	if len(metadata) == 0 {
		return nil, errors.New("提现方式元数据不能为空")
	}

	method := &model.PayoutMethodModel{
		UserId:     userId,
		MethodType: methodType,
		Metadata:   datatypes.JSONMap(metadata),
		Verified:   false,
		IsPrimary:  isPrimary,
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		// 设为主方式时取消该用户原有主方式
		if isPrimary {
			if err := tx.Model(&model.PayoutMethodModel{}).
				Where("user_id = ? AND is_primary = ?", userId, true).
				Update("is_primary", false).Error; err != nil {
				return fmt.Errorf("更新原主提现方式失败: %w", err)
			}
		}
		if err := tx.Create(method).Error; err != nil {
			return fmt.Errorf("登记提现方式失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return method, nil
}

// ListPayoutMethods 获取用户的提现方式
func (p *PayoutLogic) ListPayoutMethods(userId string) ([]model.PayoutMethodModel, error) {
	var methods []model.PayoutMethodModel
	if err := p.db.Where("user_id = ?", userId).
		Order("is_primary DESC, created_at DESC").
		Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("获取提现方式失败: %w", err)
	}
	return methods, nil
}

// ProcessPayoutInput 发起提现参数
type ProcessPayoutInput struct {
	PayoutRequestId *int64 // 可为空，申请仅作参考
	UserId          string
	EscrowAccountId int64
	PayoutMethodId  int64
	Amount          decimal.Decimal
}

// ProcessPayout 发起提现
// 提现记录与余额冻结在同一事务内完成，余额不足时整体回滚。
func (p *PayoutLogic) ProcessPayout(input ProcessPayoutInput) (*model.PayoutModel, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("提现金额必须大于0")
	}

	// 校验提现方式归属
	var method model.PayoutMethodModel
	err := p.db.Where("id = ? AND user_id = ?", input.PayoutMethodId, input.UserId).
		First(&method).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("提现方式不存在或不属于当前用户")
		}
		return nil, fmt.Errorf("查询提现方式失败: %w", err)
	}

	// 校验托管账户归属
	account, err := p.escrow.GetAccount(input.EscrowAccountId)
	if err != nil {
		return nil, err
	}
	if account.UserId != input.UserId {
		return nil, errors.New("托管账户不属于当前用户")
	}

	payout := &model.PayoutModel{
		PayoutRequestId: input.PayoutRequestId,
		UserId:          input.UserId,
		EscrowAccountId: input.EscrowAccountId,
		PayoutMethodId:  input.PayoutMethodId,
		Amount:          input.Amount.Round(2),
		Currency:        "USD",
		Status:          string(model.PayoutStatusProcessing),
	}

	err = p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payout).Error; err != nil {
			return fmt.Errorf("创建提现记录失败: %w", err)
		}
		return holdEscrow(tx, input.EscrowAccountId, payout.Amount)
	})
	if err != nil {
		return nil, err
	}

	return payout, nil
}

// CompletePayout 标记提现完成（由外部支付通道确认后调用）
// 状态流转与 held -> released 划转在同一事务内完成，且只会成功一次。
func (p *PayoutLogic) CompletePayout(payoutId int64, externalTransactionId string) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		payout, err := getProcessingPayout(tx, payoutId)
		if err != nil {
			return err
		}

		now := time.Now()
		result := tx.Model(&model.PayoutModel{}).
			Where("id = ? AND status = ?", payoutId, model.PayoutStatusProcessing).
			Updates(map[string]interface{}{
				"status":                  string(model.PayoutStatusCompleted),
				"external_transaction_id": externalTransactionId,
				"completed_at":            now,
				"processed_at":            now,
			})
		if result.Error != nil {
			return fmt.Errorf("更新提现状态失败: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.New("提现不在处理中状态")
		}

		return releaseEscrow(tx, payout.EscrowAccountId, payout.Amount)
	})
}

// FailPayout 标记提现失败并回退冻结资金
func (p *PayoutLogic) FailPayout(payoutId int64, failureReason string) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		payout, err := getProcessingPayout(tx, payoutId)
		if err != nil {
			return err
		}

		now := time.Now()
		result := tx.Model(&model.PayoutModel{}).
			Where("id = ? AND status = ?", payoutId, model.PayoutStatusProcessing).
			Updates(map[string]interface{}{
				"status":         string(model.PayoutStatusFailed),
				"failure_reason": failureReason,
				"processed_at":   now,
			})
		if result.Error != nil {
			return fmt.Errorf("更新提现状态失败: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.New("提现不在处理中状态")
		}

		return reverseEscrow(tx, payout.EscrowAccountId, payout.Amount)
	})
}

// getProcessingPayout 读取处理中的提现记录
// 终态流转的并发安全由调用方状态条件 UPDATE 保证，这里不加行锁。
func getProcessingPayout(tx *gorm.DB, payoutId int64) (*model.PayoutModel, error) {
	var payout model.PayoutModel
	if err := tx.First(&payout, payoutId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("提现记录不存在")
		}
		return nil, fmt.Errorf("查询提现记录失败: %w", err)
	}
	if payout.Status != string(model.PayoutStatusProcessing) {
		return nil, fmt.Errorf("提现已是终态: %s", payout.Status)
	}
	return &payout, nil
}

// GetPayoutHistory 获取用户提现历史，按时间倒序
func (p *PayoutLogic) GetPayoutHistory(userId string, limit int) ([]model.PayoutModel, error) {
	if limit <= 0 {
		limit = 50
	}

	var payouts []model.PayoutModel
	if err := p.db.Where("user_id = ?", userId).
		Order("created_at DESC").
		Limit(limit).
		Find(&payouts).Error; err != nil {
		return nil, fmt.Errorf("获取提现历史失败: %w", err)
	}
	return payouts, nil
}

// GetPayoutRequest 获取提现申请
func (p *PayoutLogic) GetPayoutRequest(requestId int64) (*model.PayoutRequestModel, error) {
	var request model.PayoutRequestModel
	if err := p.db.First(&request, requestId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("提现申请不存在")
		}
		return nil, fmt.Errorf("查询提现申请失败: %w", err)
	}
	return &request, nil
}
