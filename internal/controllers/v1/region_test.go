package v1_test

import (
	"net/http"

	"github.com/volo-impact/backend/internal/models"
)

func (suite *TestSuiteStandard) TestRegionCRUD() {
	recorder := suite.request(http.MethodPost, "/v1/regions", map[string]string{"name": "Île-de-France"})
	suite.assertHTTPStatus(recorder, http.StatusCreated)

	var created struct {
		Data models.Region `json:"data"`
	}
	suite.decode(recorder, &created)
	suite.Assert().Equal("Île-de-France", created.Data.Name)

	recorder = suite.request(http.MethodGet, "/v1/regions/"+created.Data.ID.String(), nil)
	suite.assertHTTPStatus(recorder, http.StatusOK)

	recorder = suite.request(http.MethodPatch, "/v1/regions/"+created.Data.ID.String(), map[string]string{"name": "Bretagne"})
	suite.assertHTTPStatus(recorder, http.StatusOK)

	var updated struct {
		Data models.Region `json:"data"`
	}
	suite.decode(recorder, &updated)
	suite.Assert().Equal("Bretagne", updated.Data.Name)

	recorder = suite.request(http.MethodDelete, "/v1/regions/"+created.Data.ID.String(), nil)
	suite.assertHTTPStatus(recorder, http.StatusNoContent)

	recorder = suite.request(http.MethodGet, "/v1/regions/"+created.Data.ID.String(), nil)
	suite.assertHTTPStatus(recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestRegionList() {
	suite.createTestRegion(models.Region{Name: "Alsace"})
	suite.createTestRegion(models.Region{Name: "Bretagne"})

	recorder := suite.request(http.MethodGet, "/v1/regions", nil)
	suite.assertHTTPStatus(recorder, http.StatusOK)

	var list struct {
		Data []models.Region `json:"data"`
	}
	suite.decode(recorder, &list)
	suite.Assert().Len(list.Data, 2)
	suite.Assert().Equal("Alsace", list.Data[0].Name)
}

func (suite *TestSuiteStandard) TestRegionInvalidUUID() {
	recorder := suite.request(http.MethodGet, "/v1/regions/not-a-uuid", nil)
	suite.assertHTTPStatus(recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestRegionEmptyBody() {
	recorder := suite.request(http.MethodPost, "/v1/regions", nil)
	suite.assertHTTPStatus(recorder, http.StatusBadRequest)

	var response struct {
		Error string `json:"error"`
	}
	suite.decode(recorder, &response)
	suite.Assert().Equal("the request body must not be empty", response.Error)
}

func (suite *TestSuiteStandard) TestRegionDuplicateName() {
	suite.createTestRegion(models.Region{Name: "Alsace"})

	recorder := suite.request(http.MethodPost, "/v1/regions", map[string]string{"name": "Alsace"})
	suite.assertHTTPStatus(recorder, http.StatusBadRequest)
}
