package logic

import (
	"testing"
	"time"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/model"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 创建内存数据库并建表
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// 内存库随连接销毁，限制为单连接
	sqlDB.SetMaxOpenConns(1)

	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

// seedCollaborator 写入一条激活的项目协作者
func seedCollaborator(t *testing.T, db *gorm.DB, projectId, userId, role string) {
	t.Helper()

	collaborator := model.ProjectCollaboratorModel{
		ProjectId: projectId,
		UserId:    userId,
		Role:      role,
		IsActive:  true,
		JoinTime:  time.Now(),
	}
	if err := db.Create(&collaborator).Error; err != nil {
		t.Fatalf("seed collaborator %s/%s: %v", projectId, userId, err)
	}
}

// seedEscrowAccount 入账并返回托管账户
func seedEscrowAccount(t *testing.T, db *gorm.DB, userId, projectId string, amount decimal.Decimal) *model.EscrowAccountModel {
	t.Helper()

	escrow := NewEscrowLogic(db)
	if err := escrow.DepositToEscrow(userId, projectId, amount); err != nil {
		t.Fatalf("deposit to escrow: %v", err)
	}
	account, err := escrow.GetUserAccount(userId, projectId)
	if err != nil {
		t.Fatalf("get escrow account: %v", err)
	}
	return account
}

// assertDecimal 断言金额相等
func assertDecimal(t *testing.T, got decimal.Decimal, want string, label string) {
	t.Helper()

	if got.StringFixed(2) != want {
		t.Fatalf("%s = %s, want %s", label, got.StringFixed(2), want)
	}
}
