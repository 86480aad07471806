// Package v1 is the thin request layer over the allocation engine. It
// binds and validates requests, calls the engine or the models package
// and maps domain errors to HTTP statuses. No accounting logic lives
// here.
package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/volo-impact/backend/internal/engine"
	"github.com/volo-impact/backend/internal/httputil"
	"github.com/volo-impact/backend/internal/models"
	volo_uuid "github.com/volo-impact/backend/internal/uuid"
)

// Controller holds the engine all handlers dispatch to.
type Controller struct {
	Engine *engine.Engine
}

// URIID is the URI binding for resource detail routes.
type URIID struct {
	ID volo_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

// Pagination is the query binding for list routes.
type Pagination struct {
	Offset int `form:"offset" binding:"omitempty,gte=0"`
	Limit  int `form:"limit" binding:"omitempty,gte=1,lte=100"`
}

// apply adds offset and limit to a query, defaulting to 50 resources.
func (p Pagination) limitOrDefault() int {
	if p.Limit == 0 {
		return 50
	}
	return p.Limit
}

// status returns the appropriate HTTP status for a domain error. The
// mapping is the error taxonomy contract of the request layer.
func status(err error) int {
	switch {
	case errors.Is(err, models.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrLedgerConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrInvariantViolation), errors.Is(err, models.ErrLedgerBroken), errors.Is(err, models.ErrGeneral):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// abort writes the error response for err.
func abort(c *gin.Context, err error) {
	c.JSON(status(err), gin.H{"error": err.Error()})
}

// bindURI binds the resource ID or writes the error response.
func bindURI(c *gin.Context) (volo_uuid.UUID, bool) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": httputil.ErrInvalidUUID.Error()})
		return volo_uuid.Nil, false
	}
	return uri.ID, true
}

// RegisterRoutes attaches all v1 routes to the group.
func (co Controller) RegisterRoutes(r *gin.RouterGroup) {
	co.RegisterRegionRoutes(r.Group("/regions"))
	co.RegisterOrganizationRoutes(r.Group("/organizations"))
	co.RegisterCompanyRoutes(r.Group("/companies"))
	co.RegisterVolunteerRoutes(r.Group("/volunteers"))
	co.RegisterProjectRoutes(r.Group("/projects"))
	co.RegisterActivityRoutes(r.Group("/activities"))
	co.RegisterAttendanceRoutes(r.Group("/attendances"))
	co.RegisterCreditRoutes(r.Group("/credits"))
	co.RegisterAllocationRoutes(r.Group("/allocations"))
	co.RegisterFundingRoutes(r.Group("/project-fundings"))
	co.RegisterLedgerRoutes(r.Group("/ledger"))
}
