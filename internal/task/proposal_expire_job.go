package task

import (
	"time"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/config"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/logger"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// ProposalExpireJob 过期提案清理任务
// 投票、计票路径本身会懒检查过期时间，这里只是把长期滞留的
// pending 提案标记为 rejected，便于报表统计。
type ProposalExpireJob struct {
	db     *gorm.DB
	config *config.Config
}

// NewProposalExpireJob 创建过期提案清理任务
func NewProposalExpireJob(db *gorm.DB, cfg *config.Config) *ProposalExpireJob {
	return &ProposalExpireJob{
		db:     db,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *ProposalExpireJob) GetName() string {
	return "proposal_expire_sweeper"
}

// GetSchedule 获取调度配置
func (j *ProposalExpireJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *ProposalExpireJob) Execute() {
	result := j.db.Model(&model.SplitProposalModel{}).
		Where("status = ? AND expires_at < ?", model.ProposalStatusPending, time.Now()).
		Update("status", string(model.ProposalStatusRejected))
	if result.Error != nil {
		logger.Error("Failed to sweep expired proposals: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		logger.Info("Marked %d expired split proposals as rejected", result.RowsAffected)
	}
}
