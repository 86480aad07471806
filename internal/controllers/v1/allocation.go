package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/volo-impact/backend/internal/engine"
	"github.com/volo-impact/backend/internal/httputil"
	"github.com/volo-impact/backend/internal/models"
)

type AllocationEditable struct {
	VolunteerID    uuid.UUID             `json:"volunteerId" binding:"required"`                            // Volunteer disbursing credit value
	ProjectID      uuid.UUID             `json:"projectId" binding:"required"`                              // Project receiving the value
	CompanyID      *uuid.UUID            `json:"companyId"`                                                 // Optional sponsoring company
	SourceCreditID *uuid.UUID            `json:"sourceCreditId"`                                            // Credit the value is drawn from
	Amount         decimal.Decimal       `json:"amount" binding:"required" example:"20.00"`                 // Amount to disburse
	Kind           models.AllocationKind `json:"kind" binding:"required,oneof=MANDATORY_50 FREE_CHOICE_50"` // Half of the 50/50 policy
}

func (editable AllocationEditable) request() engine.AllocationRequest {
	return engine.AllocationRequest{
		VolunteerID:    editable.VolunteerID,
		ProjectID:      editable.ProjectID,
		CompanyID:      editable.CompanyID,
		SourceCreditID: editable.SourceCreditID,
		Amount:         editable.Amount,
		Kind:           editable.Kind,
	}
}

// AllocationUpdate corrects the amount or kind of an allocation.
type AllocationUpdate struct {
	Amount *decimal.Decimal       `json:"amount"` // New amount, re-validated against credit and funding
	Kind   *models.AllocationKind `json:"kind" binding:"omitempty,oneof=MANDATORY_50 FREE_CHOICE_50"`
}

func (co Controller) RegisterAllocationRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetAllocations)
		r.POST("", co.CreateAllocation)
	}
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetAllocation)
		r.PATCH("/:id", co.UpdateAllocation)
		r.DELETE("/:id", co.DeleteAllocation)
	}
}

func (co Controller) CreateAllocation(c *gin.Context) {
	var editable AllocationEditable
	if err := httputil.BindData(c, &editable); err != nil {
		abort(c, err)
		return
	}

	allocation, err := co.Engine.CreateAllocation(editable.request())
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": allocation})
}

func (co Controller) GetAllocations(c *gin.Context) {
	var filter struct {
		Pagination
		VolunteerID string `form:"volunteer"`
		ProjectID   string `form:"project"`
		Kind        string `form:"kind"`
	}
	if err := c.Bind(&filter); err != nil {
		abort(c, err)
		return
	}

	q := models.DB.Order("created_at ASC")
	if filter.VolunteerID != "" {
		q = q.Where("volunteer_id = ?", filter.VolunteerID)
	}
	if filter.ProjectID != "" {
		q = q.Where("project_id = ?", filter.ProjectID)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}

	var allocations []models.Allocation
	err := q.Offset(filter.Offset).Limit(filter.limitOrDefault()).Find(&allocations).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": allocations})
}

func (co Controller) GetAllocation(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var allocation models.Allocation
	if err := models.DB.First(&allocation, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": allocation})
}

func (co Controller) UpdateAllocation(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var update AllocationUpdate
	if err := httputil.BindData(c, &update); err != nil {
		abort(c, err)
		return
	}

	allocation, err := co.Engine.UpdateAllocation(id.UUID, update.Amount, update.Kind)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": allocation})
}

func (co Controller) DeleteAllocation(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	if err := co.Engine.DeleteAllocation(id.UUID); err != nil {
		abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
