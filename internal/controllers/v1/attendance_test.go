package v1_test

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/volo-impact/backend/internal/models"
)

func (suite *TestSuiteStandard) TestAttendanceLifecycle() {
	activity := suite.createTestActivity(models.Activity{})
	volunteer := suite.createTestVolunteer(models.Volunteer{})

	recorder := suite.request(http.MethodPost, "/v1/attendances", map[string]string{
		"volunteerId": volunteer.ID.String(),
		"activityId":  activity.ID.String(),
	})
	suite.assertHTTPStatus(recorder, http.StatusCreated)

	var created struct {
		Data models.Attendance `json:"data"`
	}
	suite.decode(recorder, &created)
	base := "/v1/attendances/" + created.Data.ID.String()

	// Check out before check in fails
	recorder = suite.request(http.MethodPost, base+"/check-out", nil)
	suite.assertHTTPStatus(recorder, http.StatusBadRequest)

	recorder = suite.request(http.MethodPost, base+"/check-in", nil)
	suite.assertHTTPStatus(recorder, http.StatusOK)

	// A second check in fails
	recorder = suite.request(http.MethodPost, base+"/check-in", nil)
	suite.assertHTTPStatus(recorder, http.StatusBadRequest)

	recorder = suite.request(http.MethodPost, base+"/check-out", nil)
	suite.assertHTTPStatus(recorder, http.StatusOK)

	// Verification mints the credit
	recorder = suite.request(http.MethodPost, base+"/verify", map[string]string{
		"verifiedBy": uuid.New().String(),
	})
	suite.assertHTTPStatus(recorder, http.StatusCreated)

	var minted struct {
		Data models.VoloCredit `json:"data"`
	}
	suite.decode(recorder, &minted)
	suite.Assert().Equal(volunteer.ID, minted.Data.VolunteerID)
	suite.Assert().True(minted.Data.Amount.IsPositive(), "minted credit amount is %s, should be positive", minted.Data.Amount)

	// The profile projection is readable right away
	recorder = suite.request(http.MethodGet, "/v1/volunteers/"+volunteer.ID.String()+"/profile", nil)
	suite.assertHTTPStatus(recorder, http.StatusOK)

	var profile struct {
		Data models.Profile `json:"data"`
	}
	suite.decode(recorder, &profile)
	suite.Assert().True(profile.Data.TotalCreditsEarned.Equal(minted.Data.Amount))
}

func (suite *TestSuiteStandard) TestAttendanceVerifyIncomplete() {
	attendance := suite.createTestAttendance(models.Attendance{})

	recorder := suite.request(http.MethodPost, "/v1/attendances/"+attendance.ID.String()+"/verify", map[string]string{
		"verifiedBy": uuid.New().String(),
	})
	suite.assertHTTPStatus(recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestCreditSplit() {
	region := suite.createTestRegion(models.Region{})
	project := suite.createTestProject(models.Project{RegionID: region.ID})
	activity := suite.createTestActivity(models.Activity{ProjectID: project.ID})
	volunteer := suite.createTestVolunteer(models.Volunteer{RegionID: region.ID})

	checkIn := activity.StartsAt
	checkOut := activity.EndsAt
	attendance := suite.createTestAttendance(models.Attendance{
		VolunteerID: volunteer.ID,
		ActivityID:  activity.ID,
		CheckInAt:   &checkIn,
		CheckOutAt:  &checkOut,
	})

	recorder := suite.request(http.MethodPost, "/v1/attendances/"+attendance.ID.String()+"/verify", map[string]string{
		"verifiedBy": uuid.New().String(),
	})
	suite.assertHTTPStatus(recorder, http.StatusCreated)

	var minted struct {
		Data models.VoloCredit `json:"data"`
	}
	suite.decode(recorder, &minted)

	freeChoice := suite.createTestProject(models.Project{RegionID: region.ID})
	recorder = suite.request(http.MethodPost, "/v1/credits/"+minted.Data.ID.String()+"/split", map[string]string{
		"freeChoiceProjectId": freeChoice.ID.String(),
	})
	suite.assertHTTPStatus(recorder, http.StatusCreated)

	var split struct {
		Data []models.Allocation `json:"data"`
	}
	suite.decode(recorder, &split)
	suite.Assert().Len(split.Data, 2)

	total := split.Data[0].Amount.Add(split.Data[1].Amount)
	suite.Assert().True(total.Equal(minted.Data.Amount), "halves sum to %s, should be %s", total, minted.Data.Amount)

	// The balance endpoint reports full consumption
	recorder = suite.request(http.MethodGet, "/v1/credits/"+minted.Data.ID.String()+"/balance", nil)
	suite.assertHTTPStatus(recorder, http.StatusOK)

	var balance struct {
		Data struct {
			Remaining decimal.Decimal     `json:"remainingBalance"`
			Status    models.CreditStatus `json:"status"`
		} `json:"data"`
	}
	suite.decode(recorder, &balance)
	suite.Assert().True(balance.Data.Remaining.IsZero(), "remaining balance is %s, should be 0", balance.Data.Remaining)

	// Both mutations are on a verifiable ledger
	recorder = suite.request(http.MethodGet, "/v1/ledger/verify", nil)
	suite.assertHTTPStatus(recorder, http.StatusOK)
}

func (suite *TestSuiteStandard) TestLedgerList() {
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

	recorder = suite.request(http.MethodGet, "/v1/ledger", nil)
	suite.assertHTTPStatus(recorder, http.StatusOK)

	var list struct {
		Data []models.LedgerEntry `json:"data"`
	}
	suite.decode(recorder, &list)
	suite.Assert().Len(list.Data, 1)
	suite.Assert().Equal(models.LedgerRefAllocation, list.Data[0].RefType)
}
