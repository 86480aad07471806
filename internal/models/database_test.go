package models_test

import (
	"github.com/volo-impact/backend/internal/models"
)

func (suite *TestSuiteStandard) TestResourceNotFoundMessage() {
	var volunteer models.Volunteer
	err := models.DB.First(&volunteer, "id = ?", "4eeff485-e06a-4b04-b592-22b32b6941c6").Error

	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
	suite.Assert().Equal("there is no volunteer matching your query", err.Error())
}

func (suite *TestSuiteStandard) TestVolunteerEmailUnique() {
	volunteer := suite.createTestVolunteer(models.Volunteer{Email: "ada@example.com"})

	duplicate := models.Volunteer{
		Name:     "Someone Else",
		Email:    volunteer.Email,
		Age:      30,
		RegionID: volunteer.RegionID,
	}
	err := models.DB.Create(&duplicate).Error
	suite.Assert().ErrorIs(err, models.ErrVolunteerEmailNotUnique)
}

func (suite *TestSuiteStandard) TestRegionNameUnique() {
	region := suite.createTestRegion(models.Region{Name: "Île-de-France"})

	duplicate := models.Region{Name: region.Name}
	err := models.DB.Create(&duplicate).Error
	suite.Assert().ErrorIs(err, models.ErrRegionNameNotUnique)
}

func (suite *TestSuiteStandard) TestAttendanceUniquePerVolunteerAndActivity() {
	attendance := suite.createTestAttendance(models.Attendance{})

	duplicate := models.Attendance{
		VolunteerID: attendance.VolunteerID,
		ActivityID:  attendance.ActivityID,
	}
	err := models.DB.Create(&duplicate).Error
	suite.Assert().ErrorIs(err, models.ErrAttendanceNotUnique)
}

func (suite *TestSuiteStandard) TestFundingUniquePerProjectAndCompany() {
	funding := suite.createTestFunding(models.ProjectCompanyFunding{})

	duplicate := models.ProjectCompanyFunding{
		ProjectID: funding.ProjectID,
		CompanyID: funding.CompanyID,
		MaxBudget: funding.MaxBudget,
	}
	err := models.DB.Create(&duplicate).Error
	suite.Assert().ErrorIs(err, models.ErrFundingNotUnique)
}

func (suite *TestSuiteStandard) TestVolunteerEmailNormalized() {
	volunteer := suite.createTestVolunteer(models.Volunteer{Email: "  Grace@Example.COM "})
	suite.Assert().Equal("grace@example.com", volunteer.Email)
}
