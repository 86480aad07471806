package engine_test

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/volo-impact/backend/internal/engine"
	"github.com/volo-impact/backend/internal/models"
)

func (suite *TestSuiteStandard) TestSplitCredit() {
	f := suite.createFixture()
	credit := suite.verifiedCredit(f)

	freeChoice := suite.createTestProject(models.Project{RegionID: f.region.ID})

	allocations, err := suite.engine.SplitCredit(credit.ID, freeChoice.ID, nil, nil)
	suite.Assert().Nil(err)
	suite.Assert().Len(allocations, 2)

	suite.Assert().Equal(models.AllocationKindMandatory, allocations[0].Kind)
	suite.Assert().Equal(f.project.ID, allocations[0].ProjectID, "the mandatory half must go to the attended project")
	suite.Assert().Equal(models.AllocationKindFreeChoice, allocations[1].Kind)
	suite.Assert().Equal(freeChoice.ID, allocations[1].ProjectID)

	total := allocations[0].Amount.Add(allocations[1].Amount)
	suite.Assert().True(total.Equal(credit.Amount), "halves sum to %s, should be %s", total, credit.Amount)

	// The credit is fully consumed
	var consumed models.VoloCredit
	suite.Assert().Nil(models.DB.First(&consumed, "id = ?", credit.ID).Error)
	suite.Assert().Equal(models.CreditStatusAllocated, consumed.Status)

	var profile models.Profile
	suite.Assert().Nil(models.DB.First(&profile, "volunteer_id = ?", f.volunteer.ID).Error)
	suite.Assert().True(profile.TotalCreditsEarned.Equal(decimal.NewFromFloat(40)), "earned is %s, should be 40", profile.TotalCreditsEarned)
	suite.Assert().True(profile.TotalCreditsAllocated.Equal(decimal.NewFromFloat(40)), "allocated is %s, should be 40", profile.TotalCreditsAllocated)

	suite.Assert().Nil(models.VerifyLedger(models.DB))
}

func (suite *TestSuiteStandard) TestSplitCreditTwice() {
	f := suite.createFixture()
	credit := suite.verifiedCredit(f)
	freeChoice := suite.createTestProject(models.Project{RegionID: f.region.ID})

	_, err := suite.engine.SplitCredit(credit.ID, freeChoice.ID, nil, nil)
	suite.Assert().Nil(err)

	// The kind uniqueness blocks a second disbursement of the same credit
	_, err = suite.engine.SplitCredit(credit.ID, freeChoice.ID, nil, nil)
	suite.Assert().ErrorIs(err, models.ErrAllocationKindTaken)

	// No partial state leaked from the failed attempt
	var count int64
	suite.Assert().Nil(models.DB.Model(&models.Allocation{}).Where("source_credit_id = ?", credit.ID).Count(&count).Error)
	suite.Assert().Equal(int64(2), count)
}

func (suite *TestSuiteStandard) TestAllocationOverdraw() {
	f := suite.createFixture()
	credit := suite.verifiedCredit(f)

	_, err := suite.engine.CreateAllocation(engine.AllocationRequest{
		VolunteerID:    f.volunteer.ID,
		ProjectID:      f.project.ID,
		SourceCreditID: &credit.ID,
		Amount:         credit.Amount.Add(decimal.NewFromFloat(0.01)),
		Kind:           models.AllocationKindMandatory,
	})
	suite.Assert().ErrorIs(err, models.ErrInsufficientCredit)
}

func (suite *TestSuiteStandard) TestAllocationConcurrentFullBalance() {
	f := suite.createFixture()
	credit := suite.verifiedCredit(f)

	// Two allocations racing for the full balance. The balance check
	// inside the transaction lets exactly one through, no matter the
	// interleaving.
	requests := []engine.AllocationRequest{
		{
			VolunteerID:    f.volunteer.ID,
			ProjectID:      f.project.ID,
			SourceCreditID: &credit.ID,
			Amount:         credit.Amount,
			Kind:           models.AllocationKindMandatory,
		},
		{
			VolunteerID:    f.volunteer.ID,
			ProjectID:      f.project.ID,
			SourceCreditID: &credit.ID,
			Amount:         credit.Amount,
			Kind:           models.AllocationKindFreeChoice,
		},
	}

	errs := make(chan error, len(requests))
	var wg sync.WaitGroup
	for _, request := range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.engine.CreateAllocation(request)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var failures []error
	for err := range errs {
		if err != nil {
			failures = append(failures, err)
		}
	}
	suite.Assert().Len(failures, 1, "exactly one of the racing allocations must fail")
	suite.Assert().ErrorIs(failures[0], models.ErrInsufficientCredit)

	// No value created or destroyed by the race
	allocated, err := credit.AllocatedSum(models.DB)
	suite.Assert().Nil(err)
	suite.Assert().True(allocated.Equal(credit.Amount), "allocated sum is %s, should be %s", allocated, credit.Amount)
	suite.Assert().Nil(models.VerifyLedger(models.DB))
}

func (suite *TestSuiteStandard) TestAllocationVolunteerMismatch() {
	f := suite.createFixture()
	credit := suite.verifiedCredit(f)
	stranger := suite.createTestVolunteer(models.Volunteer{RegionID: f.region.ID})

	_, err := suite.engine.CreateAllocation(engine.AllocationRequest{
		VolunteerID:    stranger.ID,
		ProjectID:      f.project.ID,
		SourceCreditID: &credit.ID,
		Amount:         decimal.NewFromFloat(20),
		Kind:           models.AllocationKindMandatory,
	})
	suite.Assert().ErrorIs(err, models.ErrVolunteerMismatch)
}

func (suite *TestSuiteStandard) TestAllocationMandatoryProjectFixed() {
	f := suite.createFixture()
	credit := suite.verifiedCredit(f)
	other := suite.createTestProject(models.Project{RegionID: f.region.ID})

	_, err := suite.engine.CreateAllocation(engine.AllocationRequest{
		VolunteerID:    f.volunteer.ID,
		ProjectID:      other.ID,
		SourceCreditID: &credit.ID,
		Amount:         decimal.NewFromFloat(20),
		Kind:           models.AllocationKindMandatory,
	})
	suite.Assert().ErrorIs(err, models.ErrProjectMismatch)
}

func (suite *TestSuiteStandard) TestAllocationFreeChoiceRegionBound() {
	f := suite.createFixture()
	credit := suite.verifiedCredit(f)

	elsewhere := suite.createTestRegion(models.Region{})
	foreign := suite.createTestProject(models.Project{RegionID: elsewhere.ID})

	_, err := suite.engine.CreateAllocation(engine.AllocationRequest{
		VolunteerID:    f.volunteer.ID,
		ProjectID:      foreign.ID,
		SourceCreditID: &credit.ID,
		Amount:         decimal.NewFromFloat(20),
		Kind:           models.AllocationKindFreeChoice,
	})
	suite.Assert().ErrorIs(err, models.ErrRegionMismatch)
}

func (suite *TestSuiteStandard) TestAllocationExpiredCredit() {
	f := suite.createFixture()
	credit := suite.verifiedCredit(f)

	credit.Status = models.CreditStatusExpired
	suite.Assert().Nil(models.DB.Save(&credit).Error)

	_, err := suite.engine.CreateAllocation(engine.AllocationRequest{
		VolunteerID:    f.volunteer.ID,
		ProjectID:      f.project.ID,
		SourceCreditID: &credit.ID,
		Amount:         decimal.NewFromFloat(20),
		Kind:           models.AllocationKindMandatory,
	})
	suite.Assert().ErrorIs(err, models.ErrCreditNotAvailable)
}

func (suite *TestSuiteStandard) TestAllocationFundingCeiling() {
	f := suite.createFixture()
	credit := suite.verifiedCredit(f)

	company := suite.createTestCompany(models.Company{Name: "Acme"})
	suite.createTestFunding(models.ProjectCompanyFunding{
		ProjectID: f.project.ID,
		CompanyID: company.ID,
		MaxBudget: decimal.NewFromFloat(15),
	})

	// 20 exceeds the ceiling of 15
	_, err := suite.engine.CreateAllocation(engine.AllocationRequest{
		VolunteerID:    f.volunteer.ID,
		ProjectID:      f.project.ID,
		CompanyID:      &company.ID,
		SourceCreditID: &credit.ID,
		Amount:         decimal.NewFromFloat(20),
		Kind:           models.AllocationKindMandatory,
	})
	suite.Assert().ErrorIs(err, models.ErrBudgetExceeded)

	// An exact fill of the remaining budget passes
	allocation, err := suite.engine.CreateAllocation(engine.AllocationRequest{
		VolunteerID:    f.volunteer.ID,
		ProjectID:      f.project.ID,
		CompanyID:      &company.ID,
		SourceCreditID: &credit.ID,
		Amount:         decimal.NewFromFloat(15),
		Kind:           models.AllocationKindMandatory,
	})
	suite.Assert().Nil(err)
	suite.Assert().True(allocation.Amount.Equal(decimal.NewFromFloat(15)))

	var funding models.ProjectCompanyFunding
	suite.Assert().Nil(models.DB.First(&funding, "project_id = ? AND company_id = ?", f.project.ID, company.ID).Error)
	suite.Assert().True(funding.AllocatedBudget.Equal(decimal.NewFromFloat(15)), "allocated budget is %s, should be 15", funding.AllocatedBudget)
	suite.Assert().True(funding.BudgetRemaining().IsZero(), "remaining budget is %s, should be 0", funding.BudgetRemaining())
}

func (suite *TestSuiteStandard) TestAllocationWithoutFunding() {
	f := suite.createFixture()
	credit := suite.verifiedCredit(f)
	company := suite.createTestCompany(models.Company{Name: "Unfunded Inc"})

	_, err := suite.engine.CreateAllocation(engine.AllocationRequest{
		VolunteerID:    f.volunteer.ID,
		ProjectID:      f.project.ID,
		CompanyID:      &company.ID,
		SourceCreditID: &credit.ID,
		Amount:         decimal.NewFromFloat(20),
		Kind:           models.AllocationKindMandatory,
	})
	suite.Assert().ErrorIs(err, models.ErrFundingUnavailable)
}

func (suite *TestSuiteStandard) TestUpdateAllocation() {
	f := suite.createFixture()
	credit := suite.verifiedCredit(f)

	allocation, err := suite.engine.CreateAllocation(engine.AllocationRequest{
		VolunteerID:    f.volunteer.ID,
		ProjectID:      f.project.ID,
		SourceCreditID: &credit.ID,
		Amount:         decimal.NewFromFloat(20),
		Kind:           models.AllocationKindMandatory,
	})
	suite.Assert().Nil(err)

	// Raising the amount within the balance works
	newAmount := decimal.NewFromFloat(30)
	updated, err := suite.engine.UpdateAllocation(allocation.ID, &newAmount, nil)
	suite.Assert().Nil(err)
	suite.Assert().True(updated.Amount.Equal(newAmount))

	// Raising it beyond the credit fails
	excessive := decimal.NewFromFloat(50)
	_, err = suite.engine.UpdateAllocation(allocation.ID, &excessive, nil)
	suite.Assert().ErrorIs(err, models.ErrInsufficientCredit)
}

func (suite *TestSuiteStandard) TestUpdateAllocationFundingDelta() {
	f := suite.createFixture()
	credit := suite.verifiedCredit(f)

	company := suite.createTestCompany(models.Company{Name: "Acme"})
	suite.createTestFunding(models.ProjectCompanyFunding{
		ProjectID: f.project.ID,
		CompanyID: company.ID,
		MaxBudget: decimal.NewFromFloat(25),
	})

	allocation, err := suite.engine.CreateAllocation(engine.AllocationRequest{
		VolunteerID:    f.volunteer.ID,
		ProjectID:      f.project.ID,
		CompanyID:      &company.ID,
		SourceCreditID: &credit.ID,
		Amount:         decimal.NewFromFloat(20),
		Kind:           models.AllocationKindMandatory,
	})
	suite.Assert().Nil(err)

	// 25 fits the ceiling because the current reservation of 20 is
	// released before re-validation
	newAmount := decimal.NewFromFloat(25)
	_, err = suite.engine.UpdateAllocation(allocation.ID, &newAmount, nil)
	suite.Assert().Nil(err)

	var funding models.ProjectCompanyFunding
	suite.Assert().Nil(models.DB.First(&funding, "project_id = ? AND company_id = ?", f.project.ID, company.ID).Error)
	suite.Assert().True(funding.AllocatedBudget.Equal(newAmount), "allocated budget is %s, should be 25", funding.AllocatedBudget)

	// 26 does not fit
	excessive := decimal.NewFromFloat(26)
	_, err = suite.engine.UpdateAllocation(allocation.ID, &excessive, nil)
	suite.Assert().ErrorIs(err, models.ErrBudgetExceeded)
}

func (suite *TestSuiteStandard) TestDeleteAllocationCompensates() {
	f := suite.createFixture()
	credit := suite.verifiedCredit(f)

	company := suite.createTestCompany(models.Company{Name: "Acme"})
	suite.createTestFunding(models.ProjectCompanyFunding{
		ProjectID: f.project.ID,
		CompanyID: company.ID,
		MaxBudget: decimal.NewFromFloat(100),
	})

	freeChoice := suite.createTestProject(models.Project{RegionID: f.region.ID})
	allocations, err := suite.engine.SplitCredit(credit.ID, freeChoice.ID, &company.ID, nil)
	suite.Assert().Nil(err)

	err = suite.engine.DeleteAllocation(allocations[0].ID)
	suite.Assert().Nil(err)

	// The credit has balance again
	var released models.VoloCredit
	suite.Assert().Nil(models.DB.First(&released, "id = ?", credit.ID).Error)
	suite.Assert().Equal(models.CreditStatusAvailable, released.Status)

	remaining, err := released.RemainingBalance(models.DB)
	suite.Assert().Nil(err)
	suite.Assert().True(remaining.Equal(allocations[0].Amount), "remaining balance is %s, should be %s", remaining, allocations[0].Amount)

	// The funding reservation was returned
	var funding models.ProjectCompanyFunding
	suite.Assert().Nil(models.DB.First(&funding, "project_id = ? AND company_id = ?", f.project.ID, company.ID).Error)
	suite.Assert().True(funding.AllocatedBudget.IsZero(), "allocated budget is %s, should be 0", funding.AllocatedBudget)

	// The deletion is on the ledger, nothing was rewound
	var entries []models.LedgerEntry
	suite.Assert().Nil(models.DB.Where("ref_type = ?", models.LedgerRefAllocationDeleted).Find(&entries).Error)
	suite.Assert().Len(entries, 1)
	suite.Assert().Nil(models.VerifyLedger(models.DB))
}

func (suite *TestSuiteStandard) TestSplitCreditOddAmount() {
	f := suite.createFixture()

	// A credit with an odd cent cannot be halved exactly
	credit := models.VoloCredit{
		VolunteerID:        f.volunteer.ID,
		SourceAttendanceID: &f.attendance.ID,
		Amount:             decimal.NewFromFloat(33.33),
		GrantedAt:          f.activity.EndsAt,
		ExpiresAt:          f.activity.EndsAt.Add(365 * 24 * time.Hour),
	}
	suite.Assert().Nil(models.DB.Create(&credit).Error)

	freeChoice := suite.createTestProject(models.Project{RegionID: f.region.ID})
	allocations, err := suite.engine.SplitCredit(credit.ID, freeChoice.ID, nil, nil)
	suite.Assert().Nil(err)

	suite.Assert().True(allocations[0].Amount.Equal(decimal.NewFromFloat(16.66)), "mandatory half is %s, should be 16.66", allocations[0].Amount)
	suite.Assert().True(allocations[1].Amount.Equal(decimal.NewFromFloat(16.67)), "free choice half is %s, should be 16.67", allocations[1].Amount)

	// Despite the odd cent, the credit counts as fully consumed
	var consumed models.VoloCredit
	suite.Assert().Nil(models.DB.First(&consumed, "id = ?", credit.ID).Error)
	suite.Assert().Equal(models.CreditStatusAllocated, consumed.Status)
}
