package v1_test

import (
	"net/http"

	"github.com/volo-impact/backend/internal/models"
)

func (suite *TestSuiteStandard) TestVerifyLedgerBrokenChain() {
	credit := suite.createTestCredit(models.VoloCredit{})
	project := suite.createTestProject(models.Project{})

	recorder := suite.request(http.MethodPost, "/v1/allocations", map[string]any{
		"volunteerId":    credit.VolunteerID.String(),
		"projectId":      project.ID.String(),
		"sourceCreditId": credit.ID.String(),
		"amount":         "20",
		"kind":           "MANDATORY_50",
	})
	suite.assertHTTPStatus(recorder, http.StatusCreated)

	recorder = suite.request(http.MethodGet, "/v1/ledger/verify", nil)
	suite.assertHTTPStatus(recorder, http.StatusOK)

	// A tampered payload is a server-side integrity failure, not a
	// request error
	err := models.DB.Exec("UPDATE ledger_entries SET payload = ?", `{"event":"forged"}`).Error
	suite.Assert().Nil(err)

	recorder = suite.request(http.MethodGet, "/v1/ledger/verify", nil)
	suite.assertHTTPStatus(recorder, http.StatusInternalServerError)
}
