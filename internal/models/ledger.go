package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reference types for ledger entries
const (
	LedgerRefAttendance        = "Attendance"
	LedgerRefVoloCredit        = "VoloCredit"
	LedgerRefAllocation        = "Allocation"
	LedgerRefAllocationDeleted = "AllocationDeleted"
)

var (
	ErrLedgerImmutable = errors.New("ledger entries cannot be updated or deleted")
	ErrLedgerBroken    = errors.New("the ledger hash chain does not verify")
)

// LedgerEntry is an immutable, hash-chained audit record of one
// mutating event. The chain is global: PrevHash of every entry equals
// the Hash of the previous entry, the genesis entry uses the empty
// string. A unique index on PrevHash guarantees that no two entries
// can reference the same chain tip, so a concurrent append loses with
// ErrLedgerConflict and the enclosing operation retries.
//
// The integer primary key doubles as the chain position.
type LedgerEntry struct {
	ID        uint64 `gorm:"primaryKey"`
	RefType   string `gorm:"size:50"`
	RefID     uuid.UUID
	Hash      string `gorm:"size:64;uniqueIndex"`
	PrevHash  string `gorm:"size:64;uniqueIndex"`
	Payload   string `gorm:"type:text"`
	Timestamp time.Time
}

// BeforeUpdate blocks retroactive edits.
func (e *LedgerEntry) BeforeUpdate(_ *gorm.DB) error {
	return ErrLedgerImmutable
}

// BeforeDelete blocks erasing history.
func (e *LedgerEntry) BeforeDelete(_ *gorm.DB) error {
	return ErrLedgerImmutable
}

// entryHash computes the digest of an entry over the previous hash,
// the reference and the canonical payload bytes.
func entryHash(prevHash, refType string, refID uuid.UUID, payload string) string {
	sum := sha256.Sum256([]byte(prevHash + "|" + refType + "|" + refID.String() + "|" + payload))
	return hex.EncodeToString(sum[:])
}

// AppendLedgerEntry appends one entry to the global chain inside the
// caller's transaction. The payload must marshal deterministically, so
// callers pass structs, never maps.
//
// The tip read and the insert are a check-then-act pair. Correctness
// does not depend on the read being fresh: a stale tip collides with
// the PrevHash unique index and the database rejects the insert, which
// the create callback translates to ErrLedgerConflict.
func AppendLedgerEntry(tx *gorm.DB, refType string, refID uuid.UUID, payload any) (LedgerEntry, error) {
	canonical, err := json.Marshal(payload)
	if err != nil {
		return LedgerEntry{}, fmt.Errorf("ledger payload could not be serialized: %w", err)
	}

	var tip LedgerEntry
	prevHash := ""
	err = tx.Order("id DESC").First(&tip).Error
	if err == nil {
		prevHash = tip.Hash
	} else if !errors.Is(err, ErrResourceNotFound) && !errors.Is(err, gorm.ErrRecordNotFound) {
		return LedgerEntry{}, err
	}

	entry := LedgerEntry{
		RefType:   refType,
		RefID:     refID,
		PrevHash:  prevHash,
		Payload:   string(canonical),
		Hash:      entryHash(prevHash, refType, refID, string(canonical)),
		Timestamp: time.Now().In(time.UTC),
	}

	err = tx.Create(&entry).Error
	if err != nil {
		return LedgerEntry{}, err
	}

	return entry, nil
}

// VerifyLedger walks the whole chain, recomputing every hash and
// checking every link. Any retroactive edit surfaces here.
func VerifyLedger(db *gorm.DB) error {
	var entries []LedgerEntry
	err := db.Order("id ASC").Find(&entries).Error
	if err != nil {
		return err
	}

	prevHash := ""
	for _, entry := range entries {
		if entry.PrevHash != prevHash {
			return fmt.Errorf("%w: entry %d references tip %q, expected %q", ErrLedgerBroken, entry.ID, entry.PrevHash, prevHash)
		}

		if got := entryHash(entry.PrevHash, entry.RefType, entry.RefID, entry.Payload); got != entry.Hash {
			return fmt.Errorf("%w: entry %d stores hash %q, recomputed %q", ErrLedgerBroken, entry.ID, entry.Hash, got)
		}

		prevHash = entry.Hash
	}

	return nil
}
