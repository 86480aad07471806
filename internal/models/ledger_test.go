package models_test

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/volo-impact/backend/internal/models"
)

type testPayload struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

func (suite *TestSuiteStandard) TestLedgerAppend() {
	first, err := models.AppendLedgerEntry(models.DB, models.LedgerRefVoloCredit, uuid.New(), testPayload{Amount: decimal.NewFromFloat(40), Note: "minted"})
	suite.Assert().Nil(err)
	suite.Assert().Equal("", first.PrevHash, "the genesis entry must reference the empty tip")
	suite.Assert().NotEmpty(first.Hash)

	second, err := models.AppendLedgerEntry(models.DB, models.LedgerRefAllocation, uuid.New(), testPayload{Amount: decimal.NewFromFloat(20), Note: "allocated"})
	suite.Assert().Nil(err)
	suite.Assert().Equal(first.Hash, second.PrevHash, "every entry must chain to the previous hash")
	suite.Assert().Greater(second.ID, first.ID)
}

func (suite *TestSuiteStandard) TestLedgerVerify() {
	for i := 0; i < 5; i++ {
		_, err := models.AppendLedgerEntry(models.DB, models.LedgerRefAllocation, uuid.New(), testPayload{Amount: decimal.NewFromInt(int64(i + 1))})
		suite.Assert().Nil(err)
	}

	suite.Assert().Nil(models.VerifyLedger(models.DB))
}

func (suite *TestSuiteStandard) TestLedgerVerifyDetectsTampering() {
	_, err := models.AppendLedgerEntry(models.DB, models.LedgerRefVoloCredit, uuid.New(), testPayload{Amount: decimal.NewFromFloat(40)})
	suite.Assert().Nil(err)

	entry, err := models.AppendLedgerEntry(models.DB, models.LedgerRefAllocation, uuid.New(), testPayload{Amount: decimal.NewFromFloat(20)})
	suite.Assert().Nil(err)

	// Rewrite the payload behind gorm's back, the hooks would block it
	err = models.DB.Exec("UPDATE ledger_entries SET payload = ? WHERE id = ?", `{"amount":"9000"}`, entry.ID).Error
	suite.Assert().Nil(err)

	err = models.VerifyLedger(models.DB)
	suite.Assert().NotNil(err)
	suite.Assert().ErrorIs(err, models.ErrLedgerBroken)
}

func (suite *TestSuiteStandard) TestLedgerEntriesAreImmutable() {
	entry, err := models.AppendLedgerEntry(models.DB, models.LedgerRefVoloCredit, uuid.New(), testPayload{Amount: decimal.NewFromFloat(40)})
	suite.Assert().Nil(err)

	entry.Payload = `{"amount":"0"}`
	err = models.DB.Save(&entry).Error
	suite.Assert().ErrorIs(err, models.ErrLedgerImmutable)

	err = models.DB.Delete(&entry).Error
	suite.Assert().ErrorIs(err, models.ErrLedgerImmutable)
}

func (suite *TestSuiteStandard) TestLedgerConflictOnStaleTip() {
	tip, err := models.AppendLedgerEntry(models.DB, models.LedgerRefVoloCredit, uuid.New(), testPayload{Amount: decimal.NewFromFloat(40)})
	suite.Assert().Nil(err)

	_, err = models.AppendLedgerEntry(models.DB, models.LedgerRefAllocation, uuid.New(), testPayload{Amount: decimal.NewFromFloat(20)})
	suite.Assert().Nil(err)

	// Simulate a second writer that read the old tip
	stale := models.LedgerEntry{
		RefType:  models.LedgerRefAllocation,
		RefID:    uuid.New(),
		PrevHash: tip.Hash,
		Payload:  `{"amount":"20"}`,
		Hash:     "0000000000000000000000000000000000000000000000000000000000000000",
	}
	err = models.DB.Create(&stale).Error
	suite.Assert().ErrorIs(err, models.ErrLedgerConflict)
}
