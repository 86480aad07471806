package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityStatus string

const (
	ActivityStatusScheduled ActivityStatus = "Scheduled"
	ActivityStatusCompleted ActivityStatus = "Completed"
	ActivityStatusCancelled ActivityStatus = "Cancelled"
)

var ErrActivityDurationInvalid = errors.New("the activity must end after it starts")

// Activity is a scheduled occurrence of a project that volunteers
// attend. Its scheduled duration is the fallback for implausibly short
// measured attendance durations.
type Activity struct {
	DefaultModel
	ProjectID uuid.UUID
	Project   Project `json:"-"`
	StartsAt  time.Time
	EndsAt    time.Time
	Location  string
	Capacity  int            `gorm:"check:capacity > 0"`
	Status    ActivityStatus `gorm:"default:Scheduled"`
}

// ScheduledDuration returns the planned length of the activity.
func (a Activity) ScheduledDuration() time.Duration {
	return a.EndsAt.Sub(a.StartsAt)
}

func (a *Activity) BeforeSave(_ *gorm.DB) error {
	a.Location = strings.TrimSpace(a.Location)

	if !a.EndsAt.After(a.StartsAt) {
		return ErrActivityDurationInvalid
	}

	a.StartsAt = a.StartsAt.In(time.UTC)
	a.EndsAt = a.EndsAt.In(time.UTC)
	return nil
}

// BeforeCreate verifies references to other resources
func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	_ = a.DefaultModel.BeforeCreate(tx)
	return tx.First(&Project{}, "id = ?", a.ProjectID).Error
}

// AfterFind updates the timestamps to use UTC
func (a *Activity) AfterFind(tx *gorm.DB) error {
	_ = a.DefaultModel.AfterFind(tx)
	a.StartsAt = a.StartsAt.In(time.UTC)
	a.EndsAt = a.EndsAt.In(time.UTC)
	return nil
}
