package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Profile is the derived per-volunteer aggregate. It is a pure
// projection over attendances, credits and allocations: never the
// source of truth, always re-derivable via Recompute.
type Profile struct {
	VolunteerID           uuid.UUID       `gorm:"primaryKey"`
	Volunteer             Volunteer       `json:"-"`
	TotalHours            decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	TotalCreditsEarned    decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	TotalCreditsAllocated decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	UpdatedAt             time.Time
}

// sumDecimal runs an aggregate query and maps a NULL sum to zero.
func sumDecimal(q *gorm.DB) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := q.Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}

	if !sum.Valid {
		return decimal.Zero, nil
	}

	return sum.Decimal, nil
}

// CreditsEarned returns the sum of all credits minted for a volunteer.
func CreditsEarned(db *gorm.DB, volunteerID uuid.UUID) (decimal.Decimal, error) {
	return sumDecimal(db.Model(&VoloCredit{}).
		Where("volunteer_id = ?", volunteerID).
		Select("SUM(amount)"))
}

// CreditsAllocated returns the sum of all allocations of a volunteer.
func CreditsAllocated(db *gorm.DB, volunteerID uuid.UUID) (decimal.Decimal, error) {
	return sumDecimal(db.Model(&Allocation{}).
		Where("volunteer_id = ?", volunteerID).
		Select("SUM(amount)"))
}
