package logic

import (
	"errors"
	"fmt"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EscrowLogic 托管账户业务逻辑
type EscrowLogic struct {
	db *gorm.DB
}

// NewEscrowLogic 创建托管账户业务逻辑
func NewEscrowLogic(db *gorm.DB) *EscrowLogic {
	return &EscrowLogic{db: db}
}

// EscrowBalance 托管账户余额三分区
type EscrowBalance struct {
	Balance        decimal.Decimal `json:"balance"`
	HeldAmount     decimal.Decimal `json:"held_amount"`
	ReleasedAmount decimal.Decimal `json:"released_amount"`
}

// GetEscrowBalance 查询托管账户余额
// 账户不存在时返回全零，不创建行（懒创建，首笔入账时才建）。
func (e *EscrowLogic) GetEscrowBalance(userId, projectId string) (*EscrowBalance, error) {
	var account model.EscrowAccountModel
	err := e.db.Where("user_id = ? AND project_id = ?", userId, projectId).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &EscrowBalance{
				Balance:        decimal.Zero,
				HeldAmount:     decimal.Zero,
				ReleasedAmount: decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("查询托管账户失败: %w", err)
	}

	return &EscrowBalance{
		Balance:        account.Balance,
		HeldAmount:     account.HeldAmount,
		ReleasedAmount: account.ReleasedAmount,
	}, nil
}

// GetAccount 按ID获取托管账户
func (e *EscrowLogic) GetAccount(escrowAccountId int64) (*model.EscrowAccountModel, error) {
	var account model.EscrowAccountModel
	if err := e.db.First(&account, escrowAccountId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("托管账户不存在")
		}
		return nil, fmt.Errorf("查询托管账户失败: %w", err)
	}
	return &account, nil
}

// GetUserAccount 获取用户在某项目下的托管账户
func (e *EscrowLogic) GetUserAccount(userId, projectId string) (*model.EscrowAccountModel, error) {
	var account model.EscrowAccountModel
	err := e.db.Where("user_id = ? AND project_id = ?", userId, projectId).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("托管账户不存在")
		}
		return nil, fmt.Errorf("查询托管账户失败: %w", err)
	}
	return &account, nil
}

// DepositToEscrow 入账到托管账户
// 单条 upsert 完成“不存在则建、存在则加”，并发入账不会丢失更新。
func (e *EscrowLogic) DepositToEscrow(userId, projectId string, amount decimal.Decimal) error {
	if userId == "" || projectId == "" {
		return errors.New("用户ID和项目ID不能为空")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("入账金额必须大于0")
	}

	account := model.EscrowAccountModel{
		UserId:         userId,
		ProjectId:      projectId,
		Balance:        amount.Round(2),
		HeldAmount:     decimal.Zero,
		ReleasedAmount: decimal.Zero,
	}

	err := e.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "project_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance": gorm.Expr("escrow_account.balance + excluded.balance"),
		}),
	}).Create(&account).Error
	if err != nil {
		return fmt.Errorf("托管账户入账失败: %w", err)
	}

	return nil
}

// holdEscrow 冻结余额（balance -> held）
// 条件式单条 UPDATE，余额不足时零行命中，不产生部分写入。
func holdEscrow(tx *gorm.DB, escrowAccountId int64, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("冻结金额必须大于0")
	}

	result := tx.Model(&model.EscrowAccountModel{}).
		Where("id = ? AND balance >= ?", escrowAccountId, amount).
		Updates(map[string]interface{}{
			"balance":     gorm.Expr("balance - ?", amount),
			"held_amount": gorm.Expr("held_amount + ?", amount),
		})
	if result.Error != nil {
		return fmt.Errorf("冻结托管余额失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("托管余额不足")
	}
	return nil
}

// releaseEscrow 释放冻结金额（held -> released），提现完成时调用
func releaseEscrow(tx *gorm.DB, escrowAccountId int64, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("释放金额必须大于0")
	}

	result := tx.Model(&model.EscrowAccountModel{}).
		Where("id = ? AND held_amount >= ?", escrowAccountId, amount).
		Updates(map[string]interface{}{
			"held_amount":     gorm.Expr("held_amount - ?", amount),
			"released_amount": gorm.Expr("released_amount + ?", amount),
		})
	if result.Error != nil {
		return fmt.Errorf("释放托管冻结金额失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("托管冻结金额不足")
	}
	return nil
}

// reverseEscrow 回退冻结金额（held -> balance），提现失败时调用
func reverseEscrow(tx *gorm.DB, escrowAccountId int64, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("回退金额必须大于0")
	}

	result := tx.Model(&model.EscrowAccountModel{}).
		Where("id = ? AND held_amount >= ?", escrowAccountId, amount).
		Updates(map[string]interface{}{
			"balance":     gorm.Expr("balance + ?", amount),
			"held_amount": gorm.Expr("held_amount - ?", amount),
		})
	if result.Error != nil {
		return fmt.Errorf("回退托管冻结金额失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("托管冻结金额不足")
	}
	return nil
}
