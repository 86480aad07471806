// Package engine implements the credit allocation core: attendance
// verification with credit minting, the 50/50 allocation policy,
// company funding enforcement and the append-only audit ledger. All
// mutating operations run inside a single database transaction and are
// retried a bounded number of times on conflicts.
package engine

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/volo-impact/backend/internal/config"
	"github.com/volo-impact/backend/internal/models"
)

// Engine orchestrates all state-changing operations on credits,
// allocations, fundings and the ledger. The policy is injected at
// construction, the engine never reads ambient configuration.
type Engine struct {
	db     *gorm.DB
	policy config.Policy
}

func New(db *gorm.DB, policy config.Policy) *Engine {
	return &Engine{db: db, policy: policy}
}

// Policy returns the policy the engine was constructed with.
func (e *Engine) Policy() config.Policy {
	return e.policy
}

// retryable reports whether an error signals a transient conflict that
// a fresh transaction may resolve. Invariant violations are never
// retried, they signal a bug.
func retryable(err error) bool {
	return errors.Is(err, models.ErrLedgerConflict) || errors.Is(err, models.ErrBusy)
}

// inTransaction runs fn in a database transaction, retrying on
// conflict with doubling backoff. Everything fn writes is rolled back
// on error, so a failed operation leaves no partial state.
func (e *Engine) inTransaction(fn func(tx *gorm.DB) error) error {
	var err error
	backoff := e.policy.RetryBackoff

	for attempt := 1; attempt <= e.policy.RetryAttempts; attempt++ {
		err = e.db.Transaction(fn)
		if err == nil || !retryable(err) {
			return err
		}

		log.Warn().Err(err).Int("attempt", attempt).Msg("transaction conflict, retrying")
		time.Sleep(backoff)
		backoff *= 2
	}

	return err
}

// refreshProfile updates the projection after a committed mutation.
// The projection is eventually consistent, a failure here must not
// fail the operation that triggered it.
func (e *Engine) refreshProfile(volunteerID uuid.UUID) {
	_, err := e.RecomputeProfile(volunteerID)
	if err != nil {
		log.Error().Err(err).Str("volunteer", volunteerID.String()).Msg("profile recomputation failed")
	}
}
