package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FundingStatus string

const (
	FundingStatusActive    FundingStatus = "ACTIVE"
	FundingStatusCancelled FundingStatus = "CANCELLED"
)

var ErrFundingBudgetNotPositive = errors.New("the maximum budget must be positive")

// ProjectCompanyFunding is a company's pre-approved budget ceiling for
// a specific project. AllocatedBudget is the authoritative running sum
// of all sponsored allocations against the pair and is kept in exact
// sync by the engine on every allocation insert, update and delete.
type ProjectCompanyFunding struct {
	DefaultModel
	ProjectID       uuid.UUID       `gorm:"uniqueIndex:funding_project_company"`
	Project         Project         `json:"-"`
	CompanyID       uuid.UUID       `gorm:"uniqueIndex:funding_project_company"`
	Company         Company         `json:"-"`
	MaxBudget       decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	AllocatedBudget decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Status          FundingStatus   `gorm:"default:ACTIVE"`
	ApprovedAt      time.Time
	ApprovedBy      string
}

// BudgetRemaining returns the part of the ceiling not yet consumed.
func (f ProjectCompanyFunding) BudgetRemaining() decimal.Decimal {
	return f.MaxBudget.Sub(f.AllocatedBudget)
}

func (f *ProjectCompanyFunding) BeforeSave(_ *gorm.DB) error {
	if f.Status == "" {
		f.Status = FundingStatusActive
	}

	if f.Status != FundingStatusActive && f.Status != FundingStatusCancelled {
		return ErrFundingStatusInvalid
	}

	if !f.MaxBudget.IsPositive() {
		return ErrFundingBudgetNotPositive
	}

	// allocated_budget <= max_budget must hold at all times
	if f.AllocatedBudget.GreaterThan(f.MaxBudget) {
		return ErrBudgetExceeded
	}

	return nil
}

// BeforeCreate verifies references to other resources
func (f *ProjectCompanyFunding) BeforeCreate(tx *gorm.DB) error {
	_ = f.DefaultModel.BeforeCreate(tx)

	if f.ApprovedAt.IsZero() {
		f.ApprovedAt = time.Now().In(time.UTC)
	}

	err := tx.First(&Project{}, "id = ?", f.ProjectID).Error
	if err != nil {
		return err
	}

	return tx.First(&Company{}, "id = ?", f.CompanyID).Error
}
