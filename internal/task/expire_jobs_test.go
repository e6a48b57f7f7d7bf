package task

import (
	"testing"
	"time"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/config"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/model"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

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
	sqlDB.SetMaxOpenConns(1)

	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func TestProposalExpireJob(t *testing.T) {
	db := newTestDB(t)
	cfg := &config.Config{Task: config.TaskConfig{Interval: 60}}

	expired := model.SplitProposalModel{
		ProjectId:      "p1",
		ProposedBy:     "alice",
		ProposedRule:   datatypes.JSON(`{"alice":1.0}`),
		VotingRule:     string(model.VotingRuleUnanimous),
		Status:         string(model.ProposalStatusPending),
		EligibleVoters: datatypes.JSON(`["alice"]`),
		ExpiresAt:      time.Now().Add(-time.Hour),
	}
	current := model.SplitProposalModel{
		ProjectId:      "p1",
		ProposedBy:     "alice",
		ProposedRule:   datatypes.JSON(`{"alice":1.0}`),
		VotingRule:     string(model.VotingRuleUnanimous),
		Status:         string(model.ProposalStatusPending),
		EligibleVoters: datatypes.JSON(`["alice"]`),
		ExpiresAt:      time.Now().Add(time.Hour),
	}
	if err := db.Create(&expired).Error; err != nil {
		t.Fatalf("seed expired proposal: %v", err)
	}
	if err := db.Create(&current).Error; err != nil {
		t.Fatalf("seed current proposal: %v", err)
	}

	NewProposalExpireJob(db, cfg).Execute()

	var loaded model.SplitProposalModel
	if err := db.First(&loaded, expired.Id).Error; err != nil {
		t.Fatalf("reload expired proposal: %v", err)
	}
	if loaded.Status != string(model.ProposalStatusRejected) {
		t.Fatalf("expired proposal status = %s, want rejected", loaded.Status)
	}

	var loadedCurrent model.SplitProposalModel
	if err := db.First(&loadedCurrent, current.Id).Error; err != nil {
		t.Fatalf("reload current proposal: %v", err)
	}
	if loadedCurrent.Status != string(model.ProposalStatusPending) {
		t.Fatalf("current proposal status = %s, want pending", loadedCurrent.Status)
	}
}

func TestPayoutRequestExpireJob(t *testing.T) {
	db := newTestDB(t)
	cfg := &config.Config{Task: config.TaskConfig{Interval: 60}}

	expired := model.PayoutRequestModel{
		UserId:          "u1",
		EscrowAccountId: 1,
		RequestAmount:   decimal.NewFromInt(10),
		Status:          string(model.PayoutRequestStatusPending),
		ExpiresAt:       time.Now().Add(-time.Hour),
	}
	reviewed := model.PayoutRequestModel{
		UserId:          "u1",
		EscrowAccountId: 1,
		RequestAmount:   decimal.NewFromInt(10),
		Status:          string(model.PayoutRequestStatusApproved),
		ExpiresAt:       time.Now().Add(-time.Hour),
	}
	if err := db.Create(&expired).Error; err != nil {
		t.Fatalf("seed expired request: %v", err)
	}
	if err := db.Create(&reviewed).Error; err != nil {
		t.Fatalf("seed reviewed request: %v", err)
	}

	NewPayoutRequestExpireJob(db, cfg).Execute()

	var loaded model.PayoutRequestModel
	if err := db.First(&loaded, expired.Id).Error; err != nil {
		t.Fatalf("reload expired request: %v", err)
	}
	if loaded.Status != string(model.PayoutRequestStatusRejected) {
		t.Fatalf("expired request status = %s, want rejected", loaded.Status)
	}
	if loaded.Notes == "" {
		t.Fatalf("expired request should carry a review note")
	}

	// 已审核的过期申请不被覆盖
	var loadedReviewed model.PayoutRequestModel
	if err := db.First(&loadedReviewed, reviewed.Id).Error; err != nil {
		t.Fatalf("reload reviewed request: %v", err)
	}
	if loadedReviewed.Status != string(model.PayoutRequestStatusApproved) {
		t.Fatalf("reviewed request status = %s, want approved", loadedReviewed.Status)
	}
}
