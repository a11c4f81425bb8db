package task

import (
	"time"

	"github.com/MaulRai/tiku/internal/config"
	"github.com/MaulRai/tiku/internal/logger"
	"github.com/MaulRai/tiku/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// ResaleExpiryJob 转售过期任务
// 下架已过转售截止时间的挂单
type ResaleExpiryJob struct {
	db     *gorm.DB
	config *config.Config
}

// NewResaleExpiryJob 创建转售过期任务
func NewResaleExpiryJob(db *gorm.DB, cfg *config.Config) *ResaleExpiryJob {
	return &ResaleExpiryJob{
		db:     db,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *ResaleExpiryJob) GetName() string {
	return "resale_expiry_updater"
}

// GetSchedule 获取调度配置
func (j *ResaleExpiryJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *ResaleExpiryJob) Execute() {
	logger.Debug("Starting resale expiry task")

	res := j.db.Model(&model.Ticket{}).
		Where("is_for_resale = ? AND resale_deadline IS NOT NULL AND resale_deadline < ?", true, time.Now()).
		Updates(map[string]interface{}{
			"is_for_resale":   false,
			"resale_price":    0,
			"resale_deadline": nil,
		})
	if res.Error != nil {
		logger.Error("Failed to expire resale listings: %v", res.Error)
		return
	}

	if res.RowsAffected > 0 {
		logger.Info("Resale expiry task completed, delisted %d tickets", res.RowsAffected)
	}
}
