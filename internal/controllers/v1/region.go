package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/volo-impact/backend/internal/httputil"
	"github.com/volo-impact/backend/internal/models"
)

type RegionEditable struct {
	Name string `json:"name" binding:"required" example:"Île-de-France"` // Name of the region
}

func (editable RegionEditable) model() models.Region {
	return models.Region{Name: editable.Name}
}

func (co Controller) RegisterRegionRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetRegions)
		r.POST("", co.CreateRegion)
	}
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetRegion)
		r.PATCH("/:id", co.UpdateRegion)
		r.DELETE("/:id", co.DeleteRegion)
	}
}

func (co Controller) CreateRegion(c *gin.Context) {
	var editable RegionEditable
	if err := httputil.BindData(c, &editable); err != nil {
		abort(c, err)
		return
	}

	region := editable.model()
	if err := models.DB.Create(&region).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": region})
}

func (co Controller) GetRegions(c *gin.Context) {
	var pagination Pagination
	if err := c.Bind(&pagination); err != nil {
		abort(c, err)
		return
	}

	var regions []models.Region
	err := models.DB.Order("name ASC").
		Offset(pagination.Offset).Limit(pagination.limitOrDefault()).
		Find(&regions).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": regions})
}

func (co Controller) GetRegion(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var region models.Region
	if err := models.DB.First(&region, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": region})
}

func (co Controller) UpdateRegion(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var region models.Region
	if err := models.DB.First(&region, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	var editable RegionEditable
	if err := httputil.BindData(c, &editable); err != nil {
		abort(c, err)
		return
	}

	region.Name = editable.Name
	if err := models.DB.Save(&region).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": region})
}

func (co Controller) DeleteRegion(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var region models.Region
	if err := models.DB.First(&region, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	if err := models.DB.Delete(&region).Error; err != nil {
		abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
