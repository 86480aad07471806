package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/volo-impact/backend/internal/httputil"
	"github.com/volo-impact/backend/internal/models"
)

type FundingEditable struct {
	ProjectID uuid.UUID       `json:"projectId" binding:"required"`                 // Project being funded
	CompanyID uuid.UUID       `json:"companyId" binding:"required"`                 // Company approving the budget
	MaxBudget decimal.Decimal `json:"maxBudget" binding:"required" example:"10000"` // Budget ceiling in credits
}

func (editable FundingEditable) model() models.ProjectCompanyFunding {
	return models.ProjectCompanyFunding{
		ProjectID: editable.ProjectID,
		CompanyID: editable.CompanyID,
		MaxBudget: editable.MaxBudget,
	}
}

// FundingUpdate adjusts the ceiling or the status of an approval.
type FundingUpdate struct {
	MaxBudget *decimal.Decimal      `json:"maxBudget"` // New ceiling, must cover the allocated budget
	Status    *models.FundingStatus `json:"status" binding:"omitempty,oneof=ACTIVE CANCELLED"`
}

// FundingValidation asks whether an amount fits into the remaining
// budget of the (project, company) pair.
type FundingValidation struct {
	ProjectID uuid.UUID       `json:"projectId" binding:"required"`
	CompanyID uuid.UUID       `json:"companyId" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required" example:"20.00"`
}

func (co Controller) RegisterFundingRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetFundings)
		r.POST("", co.ApproveFunding)
	}
	{
		r.OPTIONS("/validate", httputil.OptionsPost)
		r.POST("/validate", co.ValidateFunding)
	}
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetFunding)
		r.PATCH("/:id", co.UpdateFunding)
		r.DELETE("/:id", co.DeleteFunding)
	}
}

func (co Controller) ApproveFunding(c *gin.Context) {
	var editable FundingEditable
	if err := httputil.BindData(c, &editable); err != nil {
		abort(c, err)
		return
	}

	funding, err := co.Engine.ApproveFunding(editable.model())
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": funding})
}

func (co Controller) GetFundings(c *gin.Context) {
	var filter struct {
		Pagination
		ProjectID string `form:"project"`
		CompanyID string `form:"company"`
		Status    string `form:"status"`
	}
	if err := c.Bind(&filter); err != nil {
		abort(c, err)
		return
	}

	q := models.DB.Order("created_at ASC")
	if filter.ProjectID != "" {
		q = q.Where("project_id = ?", filter.ProjectID)
	}
	if filter.CompanyID != "" {
		q = q.Where("company_id = ?", filter.CompanyID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var fundings []models.ProjectCompanyFunding
	err := q.Offset(filter.Offset).Limit(filter.limitOrDefault()).Find(&fundings).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": fundings})
}

func (co Controller) GetFunding(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var funding models.ProjectCompanyFunding
	if err := models.DB.First(&funding, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": funding})
}

func (co Controller) UpdateFunding(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var update FundingUpdate
	if err := httputil.BindData(c, &update); err != nil {
		abort(c, err)
		return
	}

	funding, err := co.Engine.AdjustFunding(id.UUID, update.MaxBudget, update.Status)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": funding})
}

// DeleteFunding revokes an approval. Approvals that already funded
// allocations are cancelled, not deleted, so the response says which
// happened.
func (co Controller) DeleteFunding(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	cancelled, err := co.Engine.RevokeFunding(id.UUID)
	if err != nil {
		abort(c, err)
		return
	}

	if cancelled {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"cancelled": true}})
		return
	}

	c.Status(http.StatusNoContent)
}

// ValidateFunding is the read-only budget check.
func (co Controller) ValidateFunding(c *gin.Context) {
	var validation FundingValidation
	if err := httputil.BindData(c, &validation); err != nil {
		abort(c, err)
		return
	}

	check, err := co.Engine.CheckFunding(validation.ProjectID, validation.CompanyID, validation.Amount)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": check})
}
