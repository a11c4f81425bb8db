package task

import (
	"time"

	"github.com/MaulRai/tiku/internal/config"
	"github.com/MaulRai/tiku/internal/logger"
	"github.com/MaulRai/tiku/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// EventActivateJob 活动开售任务
// 已批准的活动在任一票种售票窗口打开后转入售票中
type EventActivateJob struct {
	db     *gorm.DB
	config *config.Config
}

// NewEventActivateJob 创建活动开售任务
func NewEventActivateJob(db *gorm.DB, cfg *config.Config) *EventActivateJob {
	return &EventActivateJob{
		db:     db,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *EventActivateJob) GetName() string {
	return "event_activate_updater"
}

// GetSchedule 获取调度配置
func (j *EventActivateJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *EventActivateJob) Execute() {
	logger.Debug("Starting event activate task")

	now := time.Now()

	var events []model.Event
	err := j.db.Preload("TicketTypes").
		Where("status = ?", model.EventStatusApproved).
		Find(&events).Error
	if err != nil {
		logger.Error("Failed to fetch approved events: %v", err)
		return
	}

	activatedCount := 0

	for _, event := range events {
		if !saleOpen(event.TicketTypes, now) {
			continue
		}
		if !event.Status.CanTransitionTo(model.EventStatusActive) {
			continue
		}

		if err := j.db.Model(&event).Update("status", model.EventStatusActive).Error; err != nil {
			logger.Error("Failed to activate event %d: %v", event.Id, err)
			continue
		}

		logger.Info("Event %d (%s) is now on sale", event.Id, event.Name)
		activatedCount++
	}

	if activatedCount > 0 {
		logger.Info("Event activate task completed, activated %d events", activatedCount)
	}
}

// saleOpen 是否已有票种进入售票窗口
func saleOpen(ticketTypes []model.TicketType, now time.Time) bool {
	for _, tt := range ticketTypes {
		if !tt.Active {
			continue
		}
		if !now.Before(tt.SaleStartDate) && now.Before(tt.SaleEndDate) {
			return true
		}
	}
	return false
}
