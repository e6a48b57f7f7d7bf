package settle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/config"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/logger"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/logic"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/model"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// Pipeline 收入结算流水线
// 扫描待结算的收入事件，计算分成、写入分配批次并逐个入账到接收人托管账户。
// 事件之间通过协程池并发处理，账户级安全由托管入账的原子 upsert 保证。
type Pipeline struct {
	db     *gorm.DB
	split  *logic.SplitLogic
	escrow *logic.EscrowLogic
	pool   *ants.Pool
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	interval  time.Duration
	batchSize int
}

// NewPipeline 创建结算流水线
func NewPipeline(db *gorm.DB, cfg *config.Config) (*Pipeline, error) {
	workers := cfg.Settle.Workers
	if workers <= 0 {
		workers = 4
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create settle worker pool: %w", err)
	}

	interval := time.Duration(cfg.Task.Interval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	batchSize := cfg.Settle.QueueSize
	if batchSize <= 0 {
		batchSize = 256
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pipeline{
		db:        db,
		split:     logic.NewSplitLogic(db),
		escrow:    logic.NewEscrowLogic(db),
		pool:      pool,
		ctx:       ctx,
		cancel:    cancel,
		interval:  interval,
		batchSize: batchSize,
	}, nil
}

// Start 启动结算循环
func (p *Pipeline) Start() {
	logger.Info("Starting revenue settlement pipeline (workers=%d, interval=%s)", p.pool.Cap(), p.interval)
	go p.loop()
}

// Stop 停止结算流水线
func (p *Pipeline) Stop() {
	p.cancel()
	p.wg.Wait()
	p.pool.Release()
	logger.Info("Revenue settlement pipeline stopped")
}

// loop 结算循环
func (p *Pipeline) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			if err := p.RunOnce(); err != nil {
				logger.Error("Settlement sweep failed: %v", err)
			}
		}
	}
}

// RunOnce 执行一轮结算扫描
func (p *Pipeline) RunOnce() error {
	var events []model.RevenueEventModel
	if err := p.db.Where("settle_status = ?", model.SettleStatusPending).
		Order("created_at ASC").
		Limit(p.batchSize).
		Find(&events).Error; err != nil {
		return fmt.Errorf("查询待结算事件失败: %w", err)
	}

	if len(events) == 0 {
		return nil
	}
	logger.Info("Settling %d pending revenue events", len(events))

	for i := range events {
		event := events[i]
		p.wg.Add(1)
		err := p.pool.Submit(func() {
			defer p.wg.Done()
			p.settleEvent(event)
		})
		if err != nil {
			p.wg.Done()
			logger.Error("Failed to submit settlement task for event %d: %v", event.Id, err)
		}
	}

	p.wg.Wait()
	return nil
}

// settleEvent 结算单个收入事件
func (p *Pipeline) settleEvent(event model.RevenueEventModel) {
	// 没有关联项目的事件无需分成
	if event.ProjectId == "" {
		p.markEvent(event.Id, model.SettleStatusSkipped)
		return
	}

	allocations, splitVersion, err := p.split.ComputeRevenueSplits(event.ProjectId, event.NetAmount, event.CreatedAt)
	if err != nil {
		// 无分成规则的项目跳过，其余错误标记失败
		if errors.Is(err, logic.ErrNoActiveSplit) {
			p.markEvent(event.Id, model.SettleStatusSkipped)
			return
		}
		logger.Error("Failed to compute splits for event %d: %v", event.Id, err)
		p.markEvent(event.Id, model.SettleStatusFailed)
		return
	}

	if err := p.split.RecordSplitAllocations(event.Id, event.ProjectId, allocations, splitVersion); err != nil {
		logger.Error("Failed to record allocations for event %d: %v", event.Id, err)
		p.markEvent(event.Id, model.SettleStatusFailed)
		return
	}

	for _, a := range allocations {
		if a.AllocatedAmount.IsZero() {
			continue
		}
		if err := p.escrow.DepositToEscrow(a.UserId, event.ProjectId, a.AllocatedAmount); err != nil {
			logger.Error("Failed to deposit allocation for event %d user %s: %v", event.Id, a.UserId, err)
			p.markEvent(event.Id, model.SettleStatusFailed)
			return
		}
	}

	p.markEvent(event.Id, model.SettleStatusSettled)
	logger.Info("Settled revenue event %d: %d allocations at split version %d", event.Id, len(allocations), splitVersion)
}

// markEvent 更新事件结算状态
func (p *Pipeline) markEvent(eventId int64, status model.SettleStatus) {
	if err := p.db.Model(&model.RevenueEventModel{}).
		Where("id = ? AND settle_status = ?", eventId, model.SettleStatusPending).
		Update("settle_status", string(status)).Error; err != nil {
		logger.Error("Failed to mark event %d as %s: %v", eventId, status, err)
	}
}
