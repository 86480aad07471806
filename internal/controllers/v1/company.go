package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/volo-impact/backend/internal/httputil"
	"github.com/volo-impact/backend/internal/models"
)

type CompanyEditable struct {
	Name string `json:"name" binding:"required" example:"L'Oréal"` // Name of the company
}

func (editable CompanyEditable) model() models.Company {
	return models.Company{Name: editable.Name}
}

func (co Controller) RegisterCompanyRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetCompanies)
		r.POST("", co.CreateCompany)
	}
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetCompany)
		r.PATCH("/:id", co.UpdateCompany)
		r.DELETE("/:id", co.DeleteCompany)
	}
}

func (co Controller) CreateCompany(c *gin.Context) {
	var editable CompanyEditable
	if err := httputil.BindData(c, &editable); err != nil {
		abort(c, err)
		return
	}

	company := editable.model()
	if err := models.DB.Create(&company).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": company})
}

func (co Controller) GetCompanies(c *gin.Context) {
	var pagination Pagination
	if err := c.Bind(&pagination); err != nil {
		abort(c, err)
		return
	}

	var companies []models.Company
	err := models.DB.Order("name ASC").
		Offset(pagination.Offset).Limit(pagination.limitOrDefault()).
		Find(&companies).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": companies})
}

func (co Controller) GetCompany(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var company models.Company
	if err := models.DB.First(&company, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": company})
}

func (co Controller) UpdateCompany(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var company models.Company
	if err := models.DB.First(&company, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	var editable CompanyEditable
	if err := httputil.BindData(c, &editable); err != nil {
		abort(c, err)
		return
	}

	company.Name = editable.Name
	if err := models.DB.Save(&company).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": company})
}

func (co Controller) DeleteCompany(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var company models.Company
	if err := models.DB.First(&company, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	if err := models.DB.Delete(&company).Error; err != nil {
		abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
