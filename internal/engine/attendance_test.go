package engine_test

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/volo-impact/backend/internal/models"
)

func (suite *TestSuiteStandard) TestVerifyAttendanceMintsCredit() {
	f := suite.createFixture()
	verifier := uuid.New()

	credit, err := suite.engine.VerifyAttendance(f.attendance.ID, verifier)
	suite.Assert().Nil(err)

	// 4 hours at a rate of 10 per hour
	suite.Assert().True(credit.Amount.Equal(decimal.NewFromFloat(40)), "credit amount is %s, should be 40", credit.Amount)
	suite.Assert().Equal(models.CreditStatusAvailable, credit.Status)
	suite.Assert().Equal(f.volunteer.ID, credit.VolunteerID)
	suite.Assert().Equal(f.attendance.ID, *credit.SourceAttendanceID)
	suite.Assert().True(credit.ExpiresAt.After(credit.GrantedAt), "the credit must expire after it was granted")

	var attendance models.Attendance
	suite.Assert().Nil(models.DB.First(&attendance, "id = ?", f.attendance.ID).Error)
	suite.Assert().Equal(models.AttendanceStatusVerified, attendance.Status)
	suite.Assert().Equal(verifier, *attendance.VerifiedBy)

	// Verification and minting each leave a ledger entry
	var entries []models.LedgerEntry
	suite.Assert().Nil(models.DB.Order("id ASC").Find(&entries).Error)
	suite.Assert().Len(entries, 2)
	suite.Assert().Equal(models.LedgerRefAttendance, entries[0].RefType)
	suite.Assert().Equal(models.LedgerRefVoloCredit, entries[1].RefType)
	suite.Assert().Nil(models.VerifyLedger(models.DB))

	var profile models.Profile
	suite.Assert().Nil(models.DB.First(&profile, "volunteer_id = ?", f.volunteer.ID).Error)
	suite.Assert().True(profile.TotalHours.Equal(decimal.NewFromFloat(4)), "total hours is %s, should be 4", profile.TotalHours)
	suite.Assert().True(profile.TotalCreditsEarned.Equal(decimal.NewFromFloat(40)), "earned is %s, should be 40", profile.TotalCreditsEarned)
}

func (suite *TestSuiteStandard) TestVerifyAttendanceIncomplete() {
	f := suite.createFixture()

	incomplete := suite.createTestAttendance(models.Attendance{
		VolunteerID: suite.createTestVolunteer(models.Volunteer{RegionID: f.region.ID}).ID,
		ActivityID:  f.activity.ID,
		CheckInAt:   f.attendance.CheckInAt,
	})

	_, err := suite.engine.VerifyAttendance(incomplete.ID, uuid.New())
	suite.Assert().ErrorIs(err, models.ErrAttendanceIncomplete)
}

func (suite *TestSuiteStandard) TestVerifyAttendanceTwice() {
	f := suite.createFixture()

	_, err := suite.engine.VerifyAttendance(f.attendance.ID, uuid.New())
	suite.Assert().Nil(err)

	_, err = suite.engine.VerifyAttendance(f.attendance.ID, uuid.New())
	suite.Assert().ErrorIs(err, models.ErrDuplicateSource)

	// Only one credit exists for the attendance
	var count int64
	suite.Assert().Nil(models.DB.Model(&models.VoloCredit{}).Where("source_attendance_id = ?", f.attendance.ID).Count(&count).Error)
	suite.Assert().Equal(int64(1), count)
}

func (suite *TestSuiteStandard) TestVerifyAttendanceShortDurationFallsBack() {
	f := suite.createFixture()

	// Check-in and check-out seconds apart, a clock artifact
	checkIn := f.activity.StartsAt
	checkOut := checkIn.Add(30 * time.Second)
	attendance := suite.createTestAttendance(models.Attendance{
		VolunteerID: suite.createTestVolunteer(models.Volunteer{RegionID: f.region.ID}).ID,
		ActivityID:  f.activity.ID,
		CheckInAt:   &checkIn,
		CheckOutAt:  &checkOut,
	})

	credit, err := suite.engine.VerifyAttendance(attendance.ID, uuid.New())
	suite.Assert().Nil(err)

	// The scheduled duration of 4 hours is credited instead
	suite.Assert().True(credit.Amount.Equal(decimal.NewFromFloat(40)), "credit amount is %s, should be 40", credit.Amount)
}

func (suite *TestSuiteStandard) TestExpireOverdueCredits() {
	f := suite.createFixture()
	credit := suite.verifiedCredit(f)

	// Nothing is overdue yet
	count, err := suite.engine.ExpireOverdueCredits(time.Now().In(time.UTC))
	suite.Assert().Nil(err)
	suite.Assert().Equal(0, count)

	// One year later the credit is forfeited
	later := time.Now().In(time.UTC).Add(366 * 24 * time.Hour)
	count, err = suite.engine.ExpireOverdueCredits(later)
	suite.Assert().Nil(err)
	suite.Assert().Equal(1, count)

	var expired models.VoloCredit
	suite.Assert().Nil(models.DB.First(&expired, "id = ?", credit.ID).Error)
	suite.Assert().Equal(models.CreditStatusExpired, expired.Status)

	// The sweep is idempotent
	count, err = suite.engine.ExpireOverdueCredits(later)
	suite.Assert().Nil(err)
	suite.Assert().Equal(0, count)
}
