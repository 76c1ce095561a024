package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/clinicxz/backend/internal/models"
)

// accepted layouts for an appointment time, tried in order
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

func ParseEventTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// stored as UTC so starts_at sorts by instant
			return t.UTC(), nil
		}
	}
	return time.Time{}, invalid("time %q: want RFC3339 or YYYY-MM-DDTHH:MM", s)
}

type Schedule struct {
	db *gorm.DB
}

func NewSchedule(gdb *gorm.DB) *Schedule {
	return &Schedule{db: gdb}
}

// List returns all events, earliest first.
func (s *Schedule) List(ctx context.Context) ([]models.ScheduleEvent, error) {
	evs := []models.ScheduleEvent{}
	if err := s.db.WithContext(ctx).Order("starts_at asc, id asc").Find(&evs).Error; err != nil {
		return nil, err
	}
	return evs, nil
}

// Create adds an event in Scheduled status.
func (s *Schedule) Create(ctx context.Context, title, when string) (*models.ScheduleEvent, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalid("title is required")
	}
	t, err := ParseEventTime(when)
	if err != nil {
		return nil, err
	}
	ev := models.ScheduleEvent{Title: title, Time: t, Status: models.StatusScheduled}
	if err := s.db.WithContext(ctx).Create(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

// UpdateStatus overwrites only the status.
func (s *Schedule) UpdateStatus(ctx context.Context, id uint, status string) (*models.ScheduleEvent, error) {
	if !models.ValidStatus(status) {
		return nil, invalid("status %q: want Scheduled, Completed or Canceled", status)
	}
	var ev models.ScheduleEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ev, id).Error; err != nil {
			return notFound(err, "schedule event", id)
		}
		if err := tx.Model(&ev).Update("status", status).Error; err != nil {
			return err
		}
		ev.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *Schedule) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.ScheduleEvent{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "schedule event", id)
	}
	return nil
}
