package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/volo-impact/backend/internal/httputil"
	"github.com/volo-impact/backend/internal/models"
)

// SplitCreditRequest selects the free choice target for consuming a
// credit under the 50/50 policy. The mandatory target is derived from
// the attended activity and cannot be chosen.
type SplitCreditRequest struct {
	FreeChoiceProjectID uuid.UUID  `json:"freeChoiceProjectId" binding:"required"` // Project for the free choice half, same region as the attended project
	MandatoryCompanyID  *uuid.UUID `json:"mandatoryCompanyId"`                     // Optional sponsor of the mandatory half
	FreeChoiceCompanyID *uuid.UUID `json:"freeChoiceCompanyId"`                    // Optional sponsor of the free choice half
}

func (co Controller) RegisterCreditRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", httputil.OptionsGet)
		r.GET("", co.GetCredits)
	}
	{
		r.OPTIONS("/:id", httputil.OptionsGet)
		r.GET("/:id", co.GetCredit)
	}
	{
		r.OPTIONS("/:id/balance", httputil.OptionsGet)
		r.GET("/:id/balance", co.GetCreditBalance)
		r.OPTIONS("/:id/split", httputil.OptionsPost)
		r.POST("/:id/split", co.SplitCredit)
	}
	{
		r.OPTIONS("/expire-overdue", httputil.OptionsPost)
		r.POST("/expire-overdue", co.ExpireOverdueCredits)
	}
}

func (co Controller) GetCredits(c *gin.Context) {
	var filter struct {
		Pagination
		VolunteerID string `form:"volunteer"`
		Status      string `form:"status"`
	}
	if err := c.Bind(&filter); err != nil {
		abort(c, err)
		return
	}

	q := models.DB.Order("granted_at ASC")
	if filter.VolunteerID != "" {
		q = q.Where("volunteer_id = ?", filter.VolunteerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var credits []models.VoloCredit
	err := q.Offset(filter.Offset).Limit(filter.limitOrDefault()).Find(&credits).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": credits})
}

func (co Controller) GetCredit(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var credit models.VoloCredit
	if err := models.DB.First(&credit, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": credit})
}

// GetCreditBalance returns the allocated sum and remaining balance of
// a credit, the minimal read contract for verifying conservation.
func (co Controller) GetCreditBalance(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var credit models.VoloCredit
	if err := models.DB.First(&credit, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	allocated, err := credit.AllocatedSum(models.DB)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"amount":           credit.Amount,
		"allocated":        allocated,
		"remainingBalance": credit.Amount.Sub(allocated),
		"status":           credit.Status,
	}})
}

// SplitCredit consumes the credit through the 50/50 policy.
func (co Controller) SplitCredit(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var request SplitCreditRequest
	if err := httputil.BindData(c, &request); err != nil {
		abort(c, err)
		return
	}

	allocations, err := co.Engine.SplitCredit(id.UUID, request.FreeChoiceProjectID, request.MandatoryCompanyID, request.FreeChoiceCompanyID)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": allocations})
}

// ExpireOverdueCredits runs the idempotent expiry sweep.
func (co Controller) ExpireOverdueCredits(c *gin.Context) {
	count, err := co.Engine.ExpireOverdueCredits(time.Now().In(time.UTC))
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"expired": count}})
}
