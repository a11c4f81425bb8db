package task

import (
	"time"

	"github.com/MaulRai/tiku/internal/config"
	"github.com/MaulRai/tiku/internal/logger"
	"github.com/MaulRai/tiku/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// EventFinishJob 活动结束任务
// 售票中的活动在活动日期过后转入已结束
type EventFinishJob struct {
	db     *gorm.DB
	config *config.Config
}

// NewEventFinishJob 创建活动结束任务
func NewEventFinishJob(db *gorm.DB, cfg *config.Config) *EventFinishJob {
	return &EventFinishJob{
		db:     db,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *EventFinishJob) GetName() string {
	return "event_finish_updater"
}

// GetSchedule 获取调度配置
func (j *EventFinishJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *EventFinishJob) Execute() {
	logger.Debug("Starting event finish task")

	now := time.Now()

	var events []model.Event
	err := j.db.Where("status = ? AND date < ?", model.EventStatusActive, now).
		Find(&events).Error
	if err != nil {
		logger.Error("Failed to fetch active events: %v", err)
		return
	}

	finishedCount := 0

	for _, event := range events {
		if !event.Status.CanTransitionTo(model.EventStatusEnded) {
			continue
		}

		if err := j.db.Model(&event).Update("status", model.EventStatusEnded).Error; err != nil {
			logger.Error("Failed to finish event %d: %v", event.Id, err)
			continue
		}

		logger.Info("Event %d (%s) has ended", event.Id, event.Name)
		finishedCount++
	}

	if finishedCount > 0 {
		logger.Info("Event finish task completed, finished %d events", finishedCount)
	}
}
