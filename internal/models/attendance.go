package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceStatus string

const (
	AttendanceStatusPending  AttendanceStatus = "Pending"
	AttendanceStatusVerified AttendanceStatus = "Verified"
	AttendanceStatusRejected AttendanceStatus = "Rejected"
)

var ErrAttendanceDurationInvalid = errors.New("the check-out time must be after the check-in time")

// Attendance records a volunteer's presence at an activity. Once both
// check times are set and a verifier signs off, the attendance becomes
// the source event for a minted credit.
type Attendance struct {
	DefaultModel
	VolunteerID uuid.UUID `gorm:"uniqueIndex:attendance_volunteer_activity"`
	Volunteer   Volunteer `json:"-"`
	ActivityID  uuid.UUID `gorm:"uniqueIndex:attendance_volunteer_activity"`
	Activity    Activity  `json:"-"`
	CheckInAt   *time.Time
	CheckOutAt  *time.Time
	VerifiedBy  *uuid.UUID
	Status      AttendanceStatus `gorm:"default:Pending"`
}

// WorkedDuration returns the measured time between check-in and
// check-out, or zero when either is missing.
func (a Attendance) WorkedDuration() time.Duration {
	if a.CheckInAt == nil || a.CheckOutAt == nil {
		return 0
	}
	return a.CheckOutAt.Sub(*a.CheckInAt)
}

func (a *Attendance) BeforeSave(_ *gorm.DB) error {
	if a.CheckInAt != nil && a.CheckOutAt != nil && !a.CheckOutAt.After(*a.CheckInAt) {
		return ErrAttendanceDurationInvalid
	}
	return nil
}

// BeforeCreate verifies references to other resources
func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	_ = a.DefaultModel.BeforeCreate(tx)

	err := tx.First(&Volunteer{}, "id = ?", a.VolunteerID).Error
	if err != nil {
		return err
	}

	return tx.First(&Activity{}, "id = ?", a.ActivityID).Error
}
