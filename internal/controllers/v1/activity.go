package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/volo-impact/backend/internal/httputil"
	"github.com/volo-impact/backend/internal/models"
)

type ActivityEditable struct {
	ProjectID uuid.UUID             `json:"projectId" binding:"required"`                                   // Project the activity belongs to
	StartsAt  time.Time             `json:"startsAt" binding:"required"`                                    // Scheduled start
	EndsAt    time.Time             `json:"endsAt" binding:"required"`                                      // Scheduled end
	Location  string                `json:"location" example:"Parc de la Villette"`                         // Where the activity takes place
	Capacity  int                   `json:"capacity" binding:"required,gt=0" example:"25"`                  // Maximum number of volunteers
	Status    models.ActivityStatus `json:"status" binding:"omitempty,oneof=Scheduled Completed Cancelled"` // Status, defaults to Scheduled
}

func (editable ActivityEditable) model() models.Activity {
	status := editable.Status
	if status == "" {
		status = models.ActivityStatusScheduled
	}

	return models.Activity{
		ProjectID: editable.ProjectID,
		StartsAt:  editable.StartsAt,
		EndsAt:    editable.EndsAt,
		Location:  editable.Location,
		Capacity:  editable.Capacity,
		Status:    status,
	}
}

func (co Controller) RegisterActivityRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetActivities)
		r.POST("", co.CreateActivity)
	}
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetActivity)
		r.PATCH("/:id", co.UpdateActivity)
		r.DELETE("/:id", co.DeleteActivity)
	}
}

func (co Controller) CreateActivity(c *gin.Context) {
	var editable ActivityEditable
	if err := httputil.BindData(c, &editable); err != nil {
		abort(c, err)
		return
	}

	activity := editable.model()
	if err := models.DB.Create(&activity).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": activity})
}

func (co Controller) GetActivities(c *gin.Context) {
	var filter struct {
		Pagination
		ProjectID string `form:"project"`
		Status    string `form:"status"`
	}
	if err := c.Bind(&filter); err != nil {
		abort(c, err)
		return
	}

	q := models.DB.Order("starts_at ASC")
	if filter.ProjectID != "" {
		q = q.Where("project_id = ?", filter.ProjectID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var activities []models.Activity
	err := q.Offset(filter.Offset).Limit(filter.limitOrDefault()).Find(&activities).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": activities})
}

func (co Controller) GetActivity(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var activity models.Activity
	if err := models.DB.First(&activity, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": activity})
}

func (co Controller) UpdateActivity(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var activity models.Activity
	if err := models.DB.First(&activity, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	var editable ActivityEditable
	if err := httputil.BindData(c, &editable); err != nil {
		abort(c, err)
		return
	}

	activity.ProjectID = editable.ProjectID
	activity.StartsAt = editable.StartsAt
	activity.EndsAt = editable.EndsAt
	activity.Location = editable.Location
	activity.Capacity = editable.Capacity
	if editable.Status != "" {
		activity.Status = editable.Status
	}
	if err := models.DB.Save(&activity).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": activity})
}

func (co Controller) DeleteActivity(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var activity models.Activity
	if err := models.DB.First(&activity, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	if err := models.DB.Delete(&activity).Error; err != nil {
		abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
