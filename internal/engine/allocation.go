package engine

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/volo-impact/backend/internal/models"
)

// AllocationRequest carries all data needed to create one allocation.
type AllocationRequest struct {
	VolunteerID    uuid.UUID
	ProjectID      uuid.UUID
	CompanyID      *uuid.UUID
	SourceCreditID *uuid.UUID
	Amount         decimal.Decimal
	Kind           models.AllocationKind
}

// allocationPayload is the canonical ledger payload for allocation
// events.
type allocationPayload struct {
	Event          string                `json:"event"`
	VolunteerID    uuid.UUID             `json:"volunteerId"`
	ProjectID      uuid.UUID             `json:"projectId"`
	CompanyID      *uuid.UUID            `json:"companyId,omitempty"`
	SourceCreditID *uuid.UUID            `json:"sourceCreditId,omitempty"`
	Amount         decimal.Decimal       `json:"amount"`
	Kind           models.AllocationKind `json:"kind"`
}

func payloadFor(event string, a models.Allocation) allocationPayload {
	return allocationPayload{
		Event:          event,
		VolunteerID:    a.VolunteerID,
		ProjectID:      a.ProjectID,
		CompanyID:      a.CompanyID,
		SourceCreditID: a.SourceCreditID,
		Amount:         a.Amount,
		Kind:           a.Kind,
	}
}

// sourceActivity resolves the activity a credit was earned at. Returns
// false for manually issued credits, which carry no targeting
// constraints.
func sourceActivity(tx *gorm.DB, credit models.VoloCredit) (models.Activity, bool, error) {
	if credit.SourceAttendanceID == nil {
		return models.Activity{}, false, nil
	}

	var attendance models.Attendance
	err := tx.First(&attendance, "id = ?", *credit.SourceAttendanceID).Error
	if err != nil {
		return models.Activity{}, false, err
	}

	var activity models.Activity
	err = tx.First(&activity, "id = ?", attendance.ActivityID).Error
	if err != nil {
		return models.Activity{}, false, err
	}

	return activity, true, nil
}

// checkCreditConstraints validates ownership, availability, the 50/50
// targeting rules and the remaining balance for an allocation drawing
// on a credit. All checks happen before any write.
func (e *Engine) checkCreditConstraints(tx *gorm.DB, req AllocationRequest, excludeAllocationID *uuid.UUID) (models.VoloCredit, error) {
	var credit models.VoloCredit
	err := tx.First(&credit, "id = ?", *req.SourceCreditID).Error
	if err != nil {
		return credit, err
	}

	if credit.VolunteerID != req.VolunteerID {
		return credit, models.ErrVolunteerMismatch
	}

	if credit.Status == models.CreditStatusExpired {
		return credit, models.ErrCreditNotAvailable
	}

	// For a single source credit, exactly one allocation per kind
	kindQuery := tx.Model(&models.Allocation{}).
		Where("source_credit_id = ? AND kind = ?", credit.ID, req.Kind)
	if excludeAllocationID != nil {
		kindQuery = kindQuery.Where("id != ?", *excludeAllocationID)
	}

	var kindCount int64
	err = kindQuery.Count(&kindCount).Error
	if err != nil {
		return credit, err
	}
	if kindCount > 0 {
		return credit, models.ErrAllocationKindTaken
	}

	activity, hasSource, err := sourceActivity(tx, credit)
	if err != nil {
		return credit, err
	}

	if hasSource {
		switch req.Kind {
		case models.AllocationKindMandatory:
			// The mandatory half is fixed to the attended project
			if req.ProjectID != activity.ProjectID {
				return credit, models.ErrProjectMismatch
			}
		case models.AllocationKindFreeChoice:
			// The free choice half stays within the attended region
			var attendedProject, targetProject models.Project
			err = tx.First(&attendedProject, "id = ?", activity.ProjectID).Error
			if err != nil {
				return credit, err
			}
			err = tx.First(&targetProject, "id = ?", req.ProjectID).Error
			if err != nil {
				return credit, err
			}
			if targetProject.RegionID != attendedProject.RegionID {
				return credit, models.ErrRegionMismatch
			}
		}
	}

	remaining, err := credit.RemainingBalance(tx)
	if err != nil {
		return credit, err
	}

	if excludeAllocationID != nil {
		var current models.Allocation
		err = tx.First(&current, "id = ?", *excludeAllocationID).Error
		if err != nil {
			return credit, err
		}
		remaining = remaining.Add(current.Amount)
	}

	if req.Amount.GreaterThan(remaining) {
		return credit, models.ErrInsufficientCredit
	}

	return credit, nil
}

// syncCreditStatus transitions a credit between Available and
// Allocated depending on its remaining balance. Expired is terminal.
func (e *Engine) syncCreditStatus(tx *gorm.DB, creditID uuid.UUID) error {
	var credit models.VoloCredit
	err := tx.First(&credit, "id = ?", creditID).Error
	if err != nil {
		return err
	}

	if credit.Status == models.CreditStatusExpired {
		return nil
	}

	remaining, err := credit.RemainingBalance(tx)
	if err != nil {
		return err
	}

	// A negative remainder beyond the rounding tolerance means a
	// balance check was bypassed. Abort, never repair silently.
	if remaining.LessThan(e.policy.Epsilon.Neg()) {
		return models.ErrInvariantViolation
	}

	status := models.CreditStatusAvailable
	if remaining.LessThanOrEqual(e.policy.Epsilon) {
		status = models.CreditStatusAllocated
	}

	if status == credit.Status {
		return nil
	}

	credit.Status = status
	return tx.Save(&credit).Error
}

// createAllocation performs one allocation inside the caller's
// transaction: constraint checks, funding reservation, the row insert,
// the credit status transition and the ledger entry.
func (e *Engine) createAllocation(tx *gorm.DB, req AllocationRequest) (models.Allocation, error) {
	if req.SourceCreditID != nil {
		_, err := e.checkCreditConstraints(tx, req, nil)
		if err != nil {
			return models.Allocation{}, err
		}
	}

	var funding *models.ProjectCompanyFunding
	if req.CompanyID != nil {
		f, err := validateFunding(tx, req.ProjectID, *req.CompanyID, req.Amount)
		if err != nil {
			return models.Allocation{}, err
		}
		funding = &f
	}

	allocation := models.Allocation{
		VolunteerID:    req.VolunteerID,
		ProjectID:      req.ProjectID,
		CompanyID:      req.CompanyID,
		SourceCreditID: req.SourceCreditID,
		Amount:         req.Amount,
		Kind:           req.Kind,
	}
	err := tx.Create(&allocation).Error
	if err != nil {
		return models.Allocation{}, err
	}

	if funding != nil {
		err = reserveFunding(tx, funding, req.Amount)
		if err != nil {
			return models.Allocation{}, err
		}
	}

	if req.SourceCreditID != nil {
		err = e.syncCreditStatus(tx, *req.SourceCreditID)
		if err != nil {
			return models.Allocation{}, err
		}
	}

	_, err = models.AppendLedgerEntry(tx, models.LedgerRefAllocation, allocation.ID, payloadFor("created", allocation))
	if err != nil {
		return models.Allocation{}, err
	}

	return allocation, nil
}

// CreateAllocation creates one allocation. Balance check, funding
// reservation, row insert, credit status update and ledger append are
// one atomic unit: either all apply or none do.
func (e *Engine) CreateAllocation(req AllocationRequest) (models.Allocation, error) {
	var allocation models.Allocation

	err := e.inTransaction(func(tx *gorm.DB) error {
		var err error
		allocation, err = e.createAllocation(tx, req)
		return err
	})
	if err != nil {
		return models.Allocation{}, err
	}

	e.refreshProfile(allocation.VolunteerID)
	return allocation, nil
}

// SplitCredit consumes a credit through the 50/50 policy in one
// transaction: the mandatory half goes to the attended project, the
// free choice half to the chosen project within the same region. Both
// halves commit or neither does.
func (e *Engine) SplitCredit(creditID, freeChoiceProjectID uuid.UUID, mandatoryCompanyID, freeChoiceCompanyID *uuid.UUID) ([]models.Allocation, error) {
	var allocations []models.Allocation

	err := e.inTransaction(func(tx *gorm.DB) error {
		allocations = allocations[:0]

		var credit models.VoloCredit
		err := tx.First(&credit, "id = ?", creditID).Error
		if err != nil {
			return err
		}

		activity, hasSource, err := sourceActivity(tx, credit)
		if err != nil {
			return err
		}
		if !hasSource {
			return models.ErrProjectMismatch
		}

		mandatoryAmount, freeChoiceAmount := SplitAmounts(credit.Amount)

		mandatory, err := e.createAllocation(tx, AllocationRequest{
			VolunteerID:    credit.VolunteerID,
			ProjectID:      activity.ProjectID,
			CompanyID:      mandatoryCompanyID,
			SourceCreditID: &credit.ID,
			Amount:         mandatoryAmount,
			Kind:           models.AllocationKindMandatory,
		})
		if err != nil {
			return err
		}

		freeChoice, err := e.createAllocation(tx, AllocationRequest{
			VolunteerID:    credit.VolunteerID,
			ProjectID:      freeChoiceProjectID,
			CompanyID:      freeChoiceCompanyID,
			SourceCreditID: &credit.ID,
			Amount:         freeChoiceAmount,
			Kind:           models.AllocationKindFreeChoice,
		})
		if err != nil {
			return err
		}

		allocations = append(allocations, mandatory, freeChoice)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(allocations) > 0 {
		e.refreshProfile(allocations[0].VolunteerID)
	}
	return allocations, nil
}

// UpdateAllocation corrects the amount or kind of an allocation. The
// funding budget and the credit balance are re-validated against the
// corrected values.
func (e *Engine) UpdateAllocation(id uuid.UUID, amount *decimal.Decimal, kind *models.AllocationKind) (models.Allocation, error) {
	var allocation models.Allocation

	err := e.inTransaction(func(tx *gorm.DB) error {
		err := tx.First(&allocation, "id = ?", id).Error
		if err != nil {
			return err
		}

		newAmount := allocation.Amount
		if amount != nil {
			newAmount = *amount
		}
		newKind := allocation.Kind
		if kind != nil {
			newKind = *kind
		}

		if allocation.SourceCreditID != nil {
			_, err = e.checkCreditConstraints(tx, AllocationRequest{
				VolunteerID:    allocation.VolunteerID,
				ProjectID:      allocation.ProjectID,
				CompanyID:      allocation.CompanyID,
				SourceCreditID: allocation.SourceCreditID,
				Amount:         newAmount,
				Kind:           newKind,
			}, &allocation.ID)
			if err != nil {
				return err
			}
		}

		if allocation.CompanyID != nil && !newAmount.Equal(allocation.Amount) {
			// Return the old reservation, then re-validate and reserve
			// the corrected amount against the current ceiling.
			err = releaseFunding(tx, allocation.ProjectID, *allocation.CompanyID, allocation.Amount)
			if err != nil {
				return err
			}

			funding, err := validateFunding(tx, allocation.ProjectID, *allocation.CompanyID, newAmount)
			if err != nil {
				return err
			}

			err = reserveFunding(tx, &funding, newAmount)
			if err != nil {
				return err
			}
		}

		allocation.Amount = newAmount
		allocation.Kind = newKind
		err = tx.Save(&allocation).Error
		if err != nil {
			return err
		}

		if allocation.SourceCreditID != nil {
			err = e.syncCreditStatus(tx, *allocation.SourceCreditID)
			if err != nil {
				return err
			}
		}

		_, err = models.AppendLedgerEntry(tx, models.LedgerRefAllocation, allocation.ID, payloadFor("updated", allocation))
		return err
	})
	if err != nil {
		return models.Allocation{}, err
	}

	e.refreshProfile(allocation.VolunteerID)
	return allocation, nil
}

// DeleteAllocation reverses an allocation as a compensating
// transaction: the funding budget is released, the credit becomes
// Available again when balance remains, and an immutable deletion
// entry is appended. The ledger is never rewound.
func (e *Engine) DeleteAllocation(id uuid.UUID) error {
	var volunteerID uuid.UUID

	err := e.inTransaction(func(tx *gorm.DB) error {
		var allocation models.Allocation
		err := tx.First(&allocation, "id = ?", id).Error
		if err != nil {
			return err
		}
		volunteerID = allocation.VolunteerID

		if allocation.CompanyID != nil {
			err = releaseFunding(tx, allocation.ProjectID, *allocation.CompanyID, allocation.Amount)
			if err != nil && !errors.Is(err, models.ErrResourceNotFound) && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		err = tx.Delete(&allocation).Error
		if err != nil {
			return err
		}

		if allocation.SourceCreditID != nil {
			err = e.syncCreditStatus(tx, *allocation.SourceCreditID)
			if err != nil {
				return err
			}
		}

		_, err = models.AppendLedgerEntry(tx, models.LedgerRefAllocationDeleted, allocation.ID, payloadFor("deleted", allocation))
		return err
	})
	if err != nil {
		return err
	}

	e.refreshProfile(volunteerID)
	return nil
}
