package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/volo-impact/backend/internal/httputil"
	"github.com/volo-impact/backend/internal/models"
)

type OrganizationEditable struct {
	Type models.OrganizationType `json:"type" binding:"required,oneof=NGO NBE" example:"NGO"` // NGO or NBE
	Name string                  `json:"name" binding:"required" example:"Green Cities e.V."` // Name of the organization
}

func (editable OrganizationEditable) model() models.Organization {
	return models.Organization{Type: editable.Type, Name: editable.Name}
}

func (co Controller) RegisterOrganizationRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetOrganizations)
		r.POST("", co.CreateOrganization)
	}
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetOrganization)
		r.PATCH("/:id", co.UpdateOrganization)
		r.DELETE("/:id", co.DeleteOrganization)
	}
}

func (co Controller) CreateOrganization(c *gin.Context) {
	var editable OrganizationEditable
	if err := httputil.BindData(c, &editable); err != nil {
		abort(c, err)
		return
	}

	organization := editable.model()
	if err := models.DB.Create(&organization).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": organization})
}

func (co Controller) GetOrganizations(c *gin.Context) {
	var pagination Pagination
	if err := c.Bind(&pagination); err != nil {
		abort(c, err)
		return
	}

	var organizations []models.Organization
	err := models.DB.Order("name ASC").
		Offset(pagination.Offset).Limit(pagination.limitOrDefault()).
		Find(&organizations).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": organizations})
}

func (co Controller) GetOrganization(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var organization models.Organization
	if err := models.DB.First(&organization, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": organization})
}

func (co Controller) UpdateOrganization(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var organization models.Organization
	if err := models.DB.First(&organization, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	var editable OrganizationEditable
	if err := httputil.BindData(c, &editable); err != nil {
		abort(c, err)
		return
	}

	organization.Type = editable.Type
	organization.Name = editable.Name
	if err := models.DB.Save(&organization).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": organization})
}

func (co Controller) DeleteOrganization(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var organization models.Organization
	if err := models.DB.First(&organization, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	if err := models.DB.Delete(&organization).Error; err != nil {
		abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
