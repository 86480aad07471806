package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/volo-impact/backend/internal/httputil"
	"github.com/volo-impact/backend/internal/models"
)

type VolunteerEditable struct {
	Name     string    `json:"name" binding:"required" example:"Ada Muster"`             // Name of the volunteer
	Email    string    `json:"email" binding:"required,email" example:"ada@example.com"` // Email, unique
	Age      int       `json:"age" binding:"required,gte=13,lte=100" example:"28"`       // Age, 13 to 100
	RegionID uuid.UUID `json:"regionId" binding:"required"`                              // Region the volunteer lives in
}

func (editable VolunteerEditable) model() models.Volunteer {
	return models.Volunteer{
		Name:     editable.Name,
		Email:    editable.Email,
		Age:      editable.Age,
		RegionID: editable.RegionID,
	}
}

// AllocationSummary is the per-kind breakdown of a volunteer's
// allocations.
type AllocationSummary struct {
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func (co Controller) RegisterVolunteerRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetVolunteers)
		r.POST("", co.CreateVolunteer)
	}
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetVolunteer)
		r.PATCH("/:id", co.UpdateVolunteer)
		r.DELETE("/:id", co.DeleteVolunteer)
	}
	{
		r.GET("/:id/profile", co.GetVolunteerProfile)
		r.POST("/:id/profile/recompute", co.RecomputeVolunteerProfile)
		r.GET("/:id/allocation-summary", co.GetVolunteerAllocationSummary)
	}
}

func (co Controller) CreateVolunteer(c *gin.Context) {
	var editable VolunteerEditable
	if err := httputil.BindData(c, &editable); err != nil {
		abort(c, err)
		return
	}

	volunteer := editable.model()
	if err := models.DB.Create(&volunteer).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": volunteer})
}

func (co Controller) GetVolunteers(c *gin.Context) {
	var filter struct {
		Pagination
		RegionID string `form:"region"`
	}
	if err := c.Bind(&filter); err != nil {
		abort(c, err)
		return
	}

	q := models.DB.Order("name ASC")
	if filter.RegionID != "" {
		q = q.Where("region_id = ?", filter.RegionID)
	}

	var volunteers []models.Volunteer
	err := q.Offset(filter.Offset).Limit(filter.limitOrDefault()).Find(&volunteers).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": volunteers})
}

func (co Controller) GetVolunteer(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var volunteer models.Volunteer
	if err := models.DB.First(&volunteer, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": volunteer})
}

func (co Controller) UpdateVolunteer(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var volunteer models.Volunteer
	if err := models.DB.First(&volunteer, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	var editable VolunteerEditable
	if err := httputil.BindData(c, &editable); err != nil {
		abort(c, err)
		return
	}

	volunteer.Name = editable.Name
	volunteer.Email = editable.Email
	volunteer.Age = editable.Age
	volunteer.RegionID = editable.RegionID
	if err := models.DB.Save(&volunteer).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": volunteer})
}

func (co Controller) DeleteVolunteer(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var volunteer models.Volunteer
	if err := models.DB.First(&volunteer, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	if err := models.DB.Delete(&volunteer).Error; err != nil {
		abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (co Controller) GetVolunteerProfile(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var profile models.Profile
	if err := models.DB.First(&profile, "volunteer_id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (co Controller) RecomputeVolunteerProfile(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	profile, err := co.Engine.RecomputeProfile(id.UUID)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (co Controller) GetVolunteerAllocationSummary(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var volunteer models.Volunteer
	if err := models.DB.First(&volunteer, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	summary := make(map[string]AllocationSummary, 2)
	for _, kind := range []models.AllocationKind{models.AllocationKindMandatory, models.AllocationKindFreeChoice} {
		var count int64
		err := models.DB.Model(&models.Allocation{}).
			Where("volunteer_id = ? AND kind = ?", volunteer.ID, kind).
			Count(&count).Error
		if err != nil {
			abort(c, err)
			return
		}

		var sum decimal.NullDecimal
		err = models.DB.Model(&models.Allocation{}).
			Where("volunteer_id = ? AND kind = ?", volunteer.ID, kind).
			Select("SUM(amount)").Scan(&sum).Error
		if err != nil {
			abort(c, err)
			return
		}

		total := decimal.Zero
		if sum.Valid {
			total = sum.Decimal
		}

		summary[string(kind)] = AllocationSummary{Count: count, TotalAmount: total}
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}
