package models

import "errors"

// General errors
var (
	ErrGeneral          = errors.New("an error occurred on the server during your request, please contact your server administrator")
	ErrResourceNotFound = errors.New("there is no")
	ErrBusy             = errors.New("the database is currently busy, please retry the request")
)

// Uniqueness errors, translated from database constraint violations
var (
	ErrRegionNameNotUnique     = errors.New("the region name must be unique")
	ErrVolunteerEmailNotUnique = errors.New("the email address is already registered for another volunteer")
	ErrAttendanceNotUnique     = errors.New("an attendance record already exists for this volunteer and activity")
	ErrFundingNotUnique        = errors.New("the company has already approved funding for this project")
)

// Credit errors
var (
	ErrDuplicateSource    = errors.New("a credit has already been minted for this attendance")
	ErrInsufficientCredit = errors.New("the credit balance is insufficient for this allocation")
	ErrCreditNotAvailable = errors.New("the credit is not available for allocation")
	ErrCreditReferenced   = errors.New("the credit is still referenced by allocations and cannot be deleted")
)

// Funding errors
var (
	ErrFundingUnavailable   = errors.New("the company has no active pre-approved funding for this project")
	ErrBudgetExceeded       = errors.New("the allocation would exceed the company's approved budget for this project")
	ErrBudgetBelowAllocated = errors.New("the maximum budget cannot be set below the already allocated budget")
	ErrFundingStatusInvalid = errors.New("the specified funding status is invalid")
)

// Allocation errors
var (
	ErrVolunteerMismatch   = errors.New("the source credit does not belong to this volunteer")
	ErrProjectMismatch     = errors.New("the mandatory allocation must target the project of the attended activity")
	ErrRegionMismatch      = errors.New("the free choice allocation must target a project in the region of the attended activity")
	ErrAllocationKindTaken = errors.New("an allocation of this kind already exists for the source credit")
	ErrKindInvalid         = errors.New("the specified allocation kind is invalid")
)

// Attendance errors
var (
	ErrAlreadyCheckedIn     = errors.New("the attendance has already been checked in")
	ErrAlreadyCheckedOut    = errors.New("the attendance has already been checked out")
	ErrNotCheckedIn         = errors.New("the attendance must be checked in before checking out")
	ErrAttendanceIncomplete = errors.New("the attendance must have both check-in and check-out times to be verified")
)

// Ledger errors
var (
	ErrLedgerConflict = errors.New("the ledger chain tip changed while appending, the operation must be retried")
)

// ErrInvariantViolation signals drift between a cached sum and its
// recomputation. It is a bug, never a transient condition: the
// operation aborts and the state is left for manual reconciliation.
var ErrInvariantViolation = errors.New("accounting invariant violated, manual reconciliation required")
