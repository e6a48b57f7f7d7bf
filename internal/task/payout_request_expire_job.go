package task

import (
	"time"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/config"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/logger"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// PayoutRequestExpireJob 过期提现申请清理任务
type PayoutRequestExpireJob struct {
	db     *gorm.DB
	config *config.Config
}

// NewPayoutRequestExpireJob 创建过期提现申请清理任务
func NewPayoutRequestExpireJob(db *gorm.DB, cfg *config.Config) *PayoutRequestExpireJob {
	return &PayoutRequestExpireJob{
		db:     db,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *PayoutRequestExpireJob) GetName() string {
	return "payout_request_expire_sweeper"
}

// GetSchedule 获取调度配置
func (j *PayoutRequestExpireJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *PayoutRequestExpireJob) Execute() {
	result := j.db.Model(&model.PayoutRequestModel{}).
		Where("status = ? AND expires_at < ?", model.PayoutRequestStatusPending, time.Now()).
		Updates(map[string]interface{}{
			"status": string(model.PayoutRequestStatusRejected),
			"notes":  "申请已过期",
		})
	if result.Error != nil {
		logger.Error("Failed to sweep expired payout requests: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		logger.Info("Marked %d expired payout requests as rejected", result.RowsAffected)
	}
}
