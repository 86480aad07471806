package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"github.com/volo-impact/backend/internal/models"
)

// RecomputeProfile re-derives a volunteer's totals from the attendance,
// credit and allocation records. It is a snapshot read followed by an
// upsert: idempotent, safe to run concurrently with writes, and
// deliberately outside the allocation transactions. Dashboards accept
// eventual consistency on this projection.
func (e *Engine) RecomputeProfile(volunteerID uuid.UUID) (models.Profile, error) {
	// The volunteer must exist, a profile for nobody helps no one
	var volunteer models.Volunteer
	err := e.db.First(&volunteer, "id = ?", volunteerID).Error
	if err != nil {
		return models.Profile{}, err
	}

	var attendances []models.Attendance
	err = e.db.Where("volunteer_id = ? AND status = ?", volunteerID, models.AttendanceStatusVerified).
		Find(&attendances).Error
	if err != nil {
		return models.Profile{}, err
	}

	totalHours := decimal.Zero
	for _, attendance := range attendances {
		var activity models.Activity
		err = e.db.First(&activity, "id = ?", attendance.ActivityID).Error
		if err != nil {
			return models.Profile{}, err
		}

		totalHours = totalHours.Add(hoursFromDuration(e.effectiveDuration(attendance, activity)))
	}

	earned, err := models.CreditsEarned(e.db, volunteerID)
	if err != nil {
		return models.Profile{}, err
	}

	allocated, err := models.CreditsAllocated(e.db, volunteerID)
	if err != nil {
		return models.Profile{}, err
	}

	profile := models.Profile{
		VolunteerID:           volunteerID,
		TotalHours:            totalHours,
		TotalCreditsEarned:    earned,
		TotalCreditsAllocated: allocated,
		UpdatedAt:             time.Now().In(time.UTC),
	}

	err = e.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "volunteer_id"}},
		UpdateAll: true,
	}).Create(&profile).Error
	if err != nil {
		return models.Profile{}, err
	}

	return profile, nil
}
