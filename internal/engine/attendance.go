package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/volo-impact/backend/internal/models"
)

var secondsPerHour = decimal.NewFromInt(3600)

// attendanceVerifiedPayload is the canonical ledger payload for an
// attendance verification.
type attendanceVerifiedPayload struct {
	VolunteerID uuid.UUID       `json:"volunteerId"`
	ActivityID  uuid.UUID       `json:"activityId"`
	VerifiedBy  uuid.UUID       `json:"verifiedBy"`
	Hours       decimal.Decimal `json:"hours"`
}

// creditMintedPayload is the canonical ledger payload for a credit
// creation.
type creditMintedPayload struct {
	VolunteerID        uuid.UUID       `json:"volunteerId"`
	SourceAttendanceID uuid.UUID       `json:"sourceAttendanceId"`
	Amount             decimal.Decimal `json:"amount"`
	ExpiresAt          time.Time       `json:"expiresAt"`
}

// effectiveDuration returns the duration an attendance is credited
// for. Measured durations below the plausibility threshold fall back
// to the activity's scheduled duration: a check-in/check-out pair only
// seconds apart is a clock artifact, not volunteer work. This fallback
// is deliberate policy, not a silent repair, and is logged.
func (e *Engine) effectiveDuration(attendance models.Attendance, activity models.Activity) time.Duration {
	worked := attendance.WorkedDuration()
	if worked < e.policy.MinWorkedDuration {
		log.Info().
			Str("attendance", attendance.ID.String()).
			Dur("measured", worked).
			Dur("scheduled", activity.ScheduledDuration()).
			Msg("measured duration below plausibility threshold, crediting scheduled duration")
		return activity.ScheduledDuration()
	}
	return worked
}

// hoursFromDuration converts a duration to decimal hours with cent
// precision.
func hoursFromDuration(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d.Seconds())).DivRound(secondsPerHour, 2)
}

// VerifyAttendance marks an attendance as verified and mints the
// credit for the worked hours. Attendance update, credit creation and
// both ledger entries commit atomically; a credit already referencing
// the attendance fails the whole operation with ErrDuplicateSource.
func (e *Engine) VerifyAttendance(id uuid.UUID, verifiedBy uuid.UUID) (models.VoloCredit, error) {
	var credit models.VoloCredit

	err := e.inTransaction(func(tx *gorm.DB) error {
		var attendance models.Attendance
		err := tx.First(&attendance, "id = ?", id).Error
		if err != nil {
			return err
		}

		if attendance.CheckInAt == nil || attendance.CheckOutAt == nil {
			return models.ErrAttendanceIncomplete
		}

		// One credit per verified attendance. The unique index on
		// source_attendance_id backs this up under concurrency.
		var existing int64
		err = tx.Model(&models.VoloCredit{}).Where("source_attendance_id = ?", attendance.ID).Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return models.ErrDuplicateSource
		}

		var activity models.Activity
		err = tx.First(&activity, "id = ?", attendance.ActivityID).Error
		if err != nil {
			return err
		}

		hours := hoursFromDuration(e.effectiveDuration(attendance, activity))
		amount := e.policy.CreditRatePerHour.Mul(hours).Round(2)

		attendance.Status = models.AttendanceStatusVerified
		attendance.VerifiedBy = &verifiedBy
		err = tx.Save(&attendance).Error
		if err != nil {
			return err
		}

		now := time.Now().In(time.UTC)
		credit = models.VoloCredit{
			VolunteerID:        attendance.VolunteerID,
			SourceAttendanceID: &attendance.ID,
			Amount:             amount,
			Status:             models.CreditStatusAvailable,
			GrantedAt:          now,
			ExpiresAt:          now.Add(e.policy.CreditExpiry),
		}
		err = tx.Create(&credit).Error
		if err != nil {
			return err
		}

		_, err = models.AppendLedgerEntry(tx, models.LedgerRefAttendance, attendance.ID, attendanceVerifiedPayload{
			VolunteerID: attendance.VolunteerID,
			ActivityID:  attendance.ActivityID,
			VerifiedBy:  verifiedBy,
			Hours:       hours,
		})
		if err != nil {
			return err
		}

		_, err = models.AppendLedgerEntry(tx, models.LedgerRefVoloCredit, credit.ID, creditMintedPayload{
			VolunteerID:        credit.VolunteerID,
			SourceAttendanceID: attendance.ID,
			Amount:             credit.Amount,
			ExpiresAt:          credit.ExpiresAt,
		})
		return err
	})
	if err != nil {
		return models.VoloCredit{}, err
	}

	e.refreshProfile(credit.VolunteerID)
	return credit, nil
}

// ExpireOverdueCredits transitions every credit past its expiry to
// Expired, forfeiting any unallocated remainder. The sweep is
// idempotent and safe to run concurrently with allocation attempts:
// the status check and the update share one transaction.
func (e *Engine) ExpireOverdueCredits(now time.Time) (int, error) {
	var expired int

	err := e.inTransaction(func(tx *gorm.DB) error {
		expired = 0

		var credits []models.VoloCredit
		err := tx.Where("status != ? AND expires_at < ?", models.CreditStatusExpired, now).Find(&credits).Error
		if err != nil {
			return err
		}

		for i := range credits {
			credits[i].Status = models.CreditStatusExpired
			err = tx.Save(&credits[i]).Error
			if err != nil {
				return err
			}
			expired++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		log.Info().Int("count", expired).Msg("expired overdue credits")
	}

	return expired, nil
}
