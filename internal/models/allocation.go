package models

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AllocationKind names the two halves of the 50/50 policy. The
// mandatory half is fixed to the attended project, the free choice
// half may target any project within the same region.
type AllocationKind string

const (
	AllocationKindMandatory  AllocationKind = "MANDATORY_50"
	AllocationKindFreeChoice AllocationKind = "FREE_CHOICE_50"
)

var ErrAllocationAmountNotPositive = errors.New("the allocation amount must be positive")

// Allocation is a directed disbursement of part of a credit's value to
// a project, optionally sponsored by a company. SourceCreditID is nil
// only for legacy, manually entered allocations.
type Allocation struct {
	DefaultModel
	VolunteerID    uuid.UUID
	Volunteer      Volunteer `json:"-"`
	ProjectID      uuid.UUID
	Project        Project `json:"-"`
	CompanyID      *uuid.UUID
	Company        *Company `json:"-"`
	SourceCreditID *uuid.UUID
	SourceCredit   *VoloCredit     `json:"-" gorm:"foreignKey:SourceCreditID"`
	Amount         decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Kind           AllocationKind  `gorm:"check:kind IN ('MANDATORY_50','FREE_CHOICE_50')"`
}

func (a *Allocation) BeforeSave(_ *gorm.DB) error {
	if !a.Amount.IsPositive() {
		return ErrAllocationAmountNotPositive
	}

	if a.Kind != AllocationKindMandatory && a.Kind != AllocationKindFreeChoice {
		return ErrKindInvalid
	}

	return nil
}

// BeforeCreate verifies references to other resources
func (a *Allocation) BeforeCreate(tx *gorm.DB) error {
	_ = a.DefaultModel.BeforeCreate(tx)

	err := tx.First(&Volunteer{}, "id = ?", a.VolunteerID).Error
	if err != nil {
		return err
	}

	return tx.First(&Project{}, "id = ?", a.ProjectID).Error
}
