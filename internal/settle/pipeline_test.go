package settle

import (
	"testing"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/config"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/logic"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/model"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestPipeline(t *testing.T) (*Pipeline, *gorm.DB) {
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

	cfg := &config.Config{
		Task:   config.TaskConfig{Interval: 60},
		Settle: config.SettleConfig{Workers: 2, QueueSize: 16},
	}
	pipeline, err := NewPipeline(db, cfg)
	if err != nil {
		t.Fatalf("create pipeline: %v", err)
	}
	t.Cleanup(pipeline.Stop)

	return pipeline, db
}

func recordEvent(t *testing.T, db *gorm.DB, projectId string, gross, fee float64) *model.RevenueEventModel {
	t.Helper()

	revenue := logic.NewRevenueLogic(db)
	event, err := revenue.RecordRevenueEvent(logic.RecordRevenueEventInput{
		SourceType:  string(model.RevenueSourceMarketplace),
		SourceId:    "order-1",
		GrossAmount: decimal.NewFromFloat(gross),
		PlatformFee: decimal.NewFromFloat(fee),
		ProjectId:   projectId,
	})
	if err != nil {
		t.Fatalf("record revenue event: %v", err)
	}
	return event
}

func eventStatus(t *testing.T, db *gorm.DB, eventId int64) string {
	t.Helper()

	var event model.RevenueEventModel
	if err := db.First(&event, eventId).Error; err != nil {
		t.Fatalf("reload event: %v", err)
	}
	return event.SettleStatus
}

func TestRunOnceSettlesPendingEvent(t *testing.T) {
	pipeline, db := newTestPipeline(t)
	split := logic.NewSplitLogic(db)
	escrow := logic.NewEscrowLogic(db)

	if _, err := split.UpdateRevenueSplit("p1", map[string]float64{"alice": 0.6, "bob": 0.4}, "admin"); err != nil {
		t.Fatalf("create split: %v", err)
	}
	event := recordEvent(t, db, "p1", 100, 0)

	if err := pipeline.RunOnce(); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if got := eventStatus(t, db, event.Id); got != string(model.SettleStatusSettled) {
		t.Fatalf("settle status = %s, want settled", got)
	}

	// 分配记录落库
	allocations, err := split.GetEventAllocations(event.Id)
	if err != nil {
		t.Fatalf("get allocations: %v", err)
	}
	if len(allocations) != 2 {
		t.Fatalf("allocation count = %d, want 2", len(allocations))
	}

	// 分成入账到各自托管账户
	aliceBalance, err := escrow.GetEscrowBalance("alice", "p1")
	if err != nil {
		t.Fatalf("alice balance: %v", err)
	}
	bobBalance, err := escrow.GetEscrowBalance("bob", "p1")
	if err != nil {
		t.Fatalf("bob balance: %v", err)
	}
	if aliceBalance.Balance.StringFixed(2) != "60.00" {
		t.Fatalf("alice balance = %s, want 60.00", aliceBalance.Balance.StringFixed(2))
	}
	if bobBalance.Balance.StringFixed(2) != "40.00" {
		t.Fatalf("bob balance = %s, want 40.00", bobBalance.Balance.StringFixed(2))
	}
}

func TestRunOnceSkipsEventWithoutProject(t *testing.T) {
	pipeline, db := newTestPipeline(t)
	event := recordEvent(t, db, "", 100, 10)

	if err := pipeline.RunOnce(); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if got := eventStatus(t, db, event.Id); got != string(model.SettleStatusSkipped) {
		t.Fatalf("settle status = %s, want skipped", got)
	}
}

func TestRunOnceSkipsProjectWithoutSplitRule(t *testing.T) {
	pipeline, db := newTestPipeline(t)
	event := recordEvent(t, db, "p-no-rule", 100, 10)

	if err := pipeline.RunOnce(); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if got := eventStatus(t, db, event.Id); got != string(model.SettleStatusSkipped) {
		t.Fatalf("settle status = %s, want skipped", got)
	}
}

func TestRunOnceIsIdempotent(t *testing.T) {
	pipeline, db := newTestPipeline(t)
	split := logic.NewSplitLogic(db)
	escrow := logic.NewEscrowLogic(db)

	if _, err := split.UpdateRevenueSplit("p1", map[string]float64{"alice": 1.0}, "admin"); err != nil {
		t.Fatalf("create split: %v", err)
	}
	event := recordEvent(t, db, "p1", 50, 0)

	if err := pipeline.RunOnce(); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := pipeline.RunOnce(); err != nil {
		t.Fatalf("second run: %v", err)
	}

	// 第二轮不再处理已结算事件，余额不会翻倍
	balance, err := escrow.GetEscrowBalance("alice", "p1")
	if err != nil {
		t.Fatalf("alice balance: %v", err)
	}
	if balance.Balance.StringFixed(2) != "50.00" {
		t.Fatalf("alice balance = %s, want 50.00", balance.Balance.StringFixed(2))
	}

	allocations, err := split.GetEventAllocations(event.Id)
	if err != nil {
		t.Fatalf("get allocations: %v", err)
	}
	if len(allocations) != 1 {
		t.Fatalf("allocation count = %d, want 1", len(allocations))
	}
}
