package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/volo-impact/backend/internal/httputil"
	"github.com/volo-impact/backend/internal/models"
)

type ProjectEditable struct {
	NgoID       uuid.UUID `json:"ngoId" binding:"required"`                                // Organization running the project
	RegionID    uuid.UUID `json:"regionId" binding:"required"`                             // Region the project takes place in
	Name        string    `json:"name" binding:"required" example:"Urban Tree Planting"`   // Name of the project
	Description string    `json:"description" example:"Planting trees in the city center"` // Description
}

func (editable ProjectEditable) model() models.Project {
	return models.Project{
		NgoID:       editable.NgoID,
		RegionID:    editable.RegionID,
		Name:        editable.Name,
		Description: editable.Description,
	}
}

func (co Controller) RegisterProjectRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetProjects)
		r.POST("", co.CreateProject)
	}
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetProject)
		r.PATCH("/:id", co.UpdateProject)
		r.DELETE("/:id", co.DeleteProject)
	}
}

func (co Controller) CreateProject(c *gin.Context) {
	var editable ProjectEditable
	if err := httputil.BindData(c, &editable); err != nil {
		abort(c, err)
		return
	}

	project := editable.model()
	if err := models.DB.Create(&project).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": project})
}

func (co Controller) GetProjects(c *gin.Context) {
	var filter struct {
		Pagination
		RegionID string `form:"region"`
		NgoID    string `form:"ngo"`
	}
	if err := c.Bind(&filter); err != nil {
		abort(c, err)
		return
	}

	q := models.DB.Order("name ASC")
	if filter.RegionID != "" {
		q = q.Where("region_id = ?", filter.RegionID)
	}
	if filter.NgoID != "" {
		q = q.Where("ngo_id = ?", filter.NgoID)
	}

	var projects []models.Project
	err := q.Offset(filter.Offset).Limit(filter.limitOrDefault()).Find(&projects).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": projects})
}

func (co Controller) GetProject(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var project models.Project
	if err := models.DB.First(&project, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": project})
}

func (co Controller) UpdateProject(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var project models.Project
	if err := models.DB.First(&project, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	var editable ProjectEditable
	if err := httputil.BindData(c, &editable); err != nil {
		abort(c, err)
		return
	}

	project.NgoID = editable.NgoID
	project.RegionID = editable.RegionID
	project.Name = editable.Name
	project.Description = editable.Description
	if err := models.DB.Save(&project).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": project})
}

func (co Controller) DeleteProject(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var project models.Project
	if err := models.DB.First(&project, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	if err := models.DB.Delete(&project).Error; err != nil {
		abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
