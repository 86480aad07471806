package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreditStatus string

const (
	CreditStatusAvailable CreditStatus = "Available"
	CreditStatusAllocated CreditStatus = "Allocated"
	CreditStatusExpired   CreditStatus = "Expired"
)

var ErrCreditAmountNotPositive = errors.New("the credit amount must be positive")

// VoloCredit is a quantity of value issued to exactly one volunteer
// from exactly one source event. SourceAttendanceID is nil for
// manually issued credit.
//
// State machine: Available -> Allocated once the allocated sum reaches
// the full amount, Allocated -> Available again when an allocation is
// deleted, and Available|Allocated -> Expired (terminal) once
// ExpiresAt has passed. Expiry forfeits any unallocated remainder.
type VoloCredit struct {
	DefaultModel
	VolunteerID        uuid.UUID
	Volunteer          Volunteer       `json:"-"`
	SourceAttendanceID *uuid.UUID      `gorm:"uniqueIndex"`
	Amount             decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Status             CreditStatus    `gorm:"default:Available"`
	GrantedAt          time.Time
	ExpiresAt          time.Time
}

func (c *VoloCredit) BeforeSave(_ *gorm.DB) error {
	if !c.Amount.IsPositive() {
		return ErrCreditAmountNotPositive
	}
	return nil
}

// BeforeCreate verifies references to other resources
func (c *VoloCredit) BeforeCreate(tx *gorm.DB) error {
	_ = c.DefaultModel.BeforeCreate(tx)
	return tx.First(&Volunteer{}, "id = ?", c.VolunteerID).Error
}

// BeforeDelete keeps credits referenced by allocations from being
// deleted. Allocations must be deleted first, which releases the
// credit through the engine's compensating path.
func (c *VoloCredit) BeforeDelete(tx *gorm.DB) error {
	var count int64
	err := tx.Model(&Allocation{}).Where("source_credit_id = ?", c.ID).Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrCreditReferenced
	}

	return nil
}

// AllocatedSum returns the sum of all allocations drawing on this
// credit.
func (c VoloCredit) AllocatedSum(db *gorm.DB) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := db.Model(&Allocation{}).
		Where("source_credit_id = ?", c.ID).
		Select("SUM(amount)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}

	if !sum.Valid {
		return decimal.Zero, nil
	}

	return sum.Decimal, nil
}

// RemainingBalance returns the unallocated part of the credit.
func (c VoloCredit) RemainingBalance(db *gorm.DB) (decimal.Decimal, error) {
	allocated, err := c.AllocatedSum(db)
	if err != nil {
		return decimal.Zero, err
	}

	return c.Amount.Sub(allocated), nil
}
