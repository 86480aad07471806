package engine

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/volo-impact/backend/internal/models"
)

// FundingCheck is the result of a funding validation.
type FundingCheck struct {
	Valid           bool             `json:"valid"`
	Reason          string           `json:"reason,omitempty"`
	BudgetRemaining *decimal.Decimal `json:"budgetRemaining,omitempty"`
}

// activeFunding loads the ACTIVE funding row for a (project, company)
// pair.
func activeFunding(tx *gorm.DB, projectID, companyID uuid.UUID) (models.ProjectCompanyFunding, error) {
	var funding models.ProjectCompanyFunding
	err := tx.Where("project_id = ? AND company_id = ? AND status = ?", projectID, companyID, models.FundingStatusActive).
		First(&funding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, models.ErrResourceNotFound) {
			return funding, models.ErrFundingUnavailable
		}
		return funding, err
	}
	return funding, nil
}

// validateFunding checks that an amount fits into the remaining budget
// of the ACTIVE funding for the pair.
func validateFunding(tx *gorm.DB, projectID, companyID uuid.UUID, amount decimal.Decimal) (models.ProjectCompanyFunding, error) {
	funding, err := activeFunding(tx, projectID, companyID)
	if err != nil {
		return funding, err
	}

	if amount.GreaterThan(funding.BudgetRemaining()) {
		return funding, models.ErrBudgetExceeded
	}

	return funding, nil
}

// reserveFunding consumes budget. The ceiling is re-checked after the
// increment: validate-then-reserve is not safe across concurrent
// callers, only this check inside the transaction is.
func reserveFunding(tx *gorm.DB, funding *models.ProjectCompanyFunding, amount decimal.Decimal) error {
	funding.AllocatedBudget = funding.AllocatedBudget.Add(amount)
	if funding.AllocatedBudget.GreaterThan(funding.MaxBudget) {
		return models.ErrBudgetExceeded
	}

	return tx.Save(funding).Error
}

// releaseFunding returns budget on allocation deletion, flooring at
// zero. Cancelled fundings release too so that history stays
// consistent.
func releaseFunding(tx *gorm.DB, projectID, companyID uuid.UUID, amount decimal.Decimal) error {
	var funding models.ProjectCompanyFunding
	err := tx.Where("project_id = ? AND company_id = ?", projectID, companyID).First(&funding).Error
	if err != nil {
		return err
	}

	funding.AllocatedBudget = funding.AllocatedBudget.Sub(amount)
	if funding.AllocatedBudget.IsNegative() {
		funding.AllocatedBudget = decimal.Zero
	}

	return tx.Save(&funding).Error
}

// CheckFunding is the read-only validation exposed to collaborators.
func (e *Engine) CheckFunding(projectID, companyID uuid.UUID, amount decimal.Decimal) (FundingCheck, error) {
	funding, err := validateFunding(e.db, projectID, companyID, amount)
	if err != nil {
		if errors.Is(err, models.ErrFundingUnavailable) {
			return FundingCheck{Valid: false, Reason: err.Error()}, nil
		}
		if errors.Is(err, models.ErrBudgetExceeded) {
			remaining := funding.BudgetRemaining()
			return FundingCheck{Valid: false, Reason: err.Error(), BudgetRemaining: &remaining}, nil
		}
		return FundingCheck{}, err
	}

	remaining := funding.BudgetRemaining()
	return FundingCheck{Valid: true, BudgetRemaining: &remaining}, nil
}

// ApproveFunding creates a company's pre-approval for a project. Only
// one approval per (project, company) pair may exist.
func (e *Engine) ApproveFunding(funding models.ProjectCompanyFunding) (models.ProjectCompanyFunding, error) {
	err := e.inTransaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.ProjectCompanyFunding{}).
			Where("project_id = ? AND company_id = ?", funding.ProjectID, funding.CompanyID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return models.ErrFundingNotUnique
		}

		funding.AllocatedBudget = decimal.Zero
		funding.Status = models.FundingStatusActive
		return tx.Create(&funding).Error
	})
	if err != nil {
		return models.ProjectCompanyFunding{}, err
	}

	return funding, nil
}

// AdjustFunding changes the budget ceiling or the status of an
// approval. Lowering the ceiling below the allocated budget fails.
func (e *Engine) AdjustFunding(id uuid.UUID, maxBudget *decimal.Decimal, status *models.FundingStatus) (models.ProjectCompanyFunding, error) {
	var funding models.ProjectCompanyFunding

	err := e.inTransaction(func(tx *gorm.DB) error {
		err := tx.First(&funding, "id = ?", id).Error
		if err != nil {
			return err
		}

		if maxBudget != nil {
			if maxBudget.LessThan(funding.AllocatedBudget) {
				return models.ErrBudgetBelowAllocated
			}
			funding.MaxBudget = *maxBudget
		}

		if status != nil {
			funding.Status = *status
		}

		return tx.Save(&funding).Error
	})
	if err != nil {
		return models.ProjectCompanyFunding{}, err
	}

	return funding, nil
}

// RevokeFunding withdraws an approval. Approvals with consumed budget
// are soft-cancelled to preserve history, untouched ones are deleted.
// Returns true when the funding was cancelled rather than deleted.
func (e *Engine) RevokeFunding(id uuid.UUID) (bool, error) {
	var cancelled bool

	err := e.inTransaction(func(tx *gorm.DB) error {
		var funding models.ProjectCompanyFunding
		err := tx.First(&funding, "id = ?", id).Error
		if err != nil {
			return err
		}

		if funding.AllocatedBudget.IsPositive() {
			funding.Status = models.FundingStatusCancelled
			cancelled = true
			return tx.Save(&funding).Error
		}

		cancelled = false
		return tx.Delete(&funding).Error
	})

	return cancelled, err
}
