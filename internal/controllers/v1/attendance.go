package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/volo-impact/backend/internal/httputil"
	"github.com/volo-impact/backend/internal/models"
)

type AttendanceEditable struct {
	VolunteerID uuid.UUID  `json:"volunteerId" binding:"required"` // Volunteer attending
	ActivityID  uuid.UUID  `json:"activityId" binding:"required"`  // Activity attended
	CheckInAt   *time.Time `json:"checkInAt"`                      // Optional check-in time
	CheckOutAt  *time.Time `json:"checkOutAt"`                     // Optional check-out time
}

func (editable AttendanceEditable) model() models.Attendance {
	return models.Attendance{
		VolunteerID: editable.VolunteerID,
		ActivityID:  editable.ActivityID,
		CheckInAt:   editable.CheckInAt,
		CheckOutAt:  editable.CheckOutAt,
	}
}

type VerifyAttendanceRequest struct {
	VerifiedBy uuid.UUID `json:"verifiedBy" binding:"required"` // Representative signing off the attendance
}

func (co Controller) RegisterAttendanceRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetAttendances)
		r.POST("", co.CreateAttendance)
	}
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetAttendance)
		r.PATCH("/:id", co.UpdateAttendance)
		r.DELETE("/:id", co.DeleteAttendance)
	}
	{
		r.OPTIONS("/:id/check-in", httputil.OptionsPost)
		r.POST("/:id/check-in", co.CheckIn)
		r.OPTIONS("/:id/check-out", httputil.OptionsPost)
		r.POST("/:id/check-out", co.CheckOut)
		r.OPTIONS("/:id/verify", httputil.OptionsPost)
		r.POST("/:id/verify", co.VerifyAttendance)
	}
}

func (co Controller) CreateAttendance(c *gin.Context) {
	var editable AttendanceEditable
	if err := httputil.BindData(c, &editable); err != nil {
		abort(c, err)
		return
	}

	attendance := editable.model()
	if err := models.DB.Create(&attendance).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": attendance})
}

func (co Controller) GetAttendances(c *gin.Context) {
	var filter struct {
		Pagination
		VolunteerID string `form:"volunteer"`
		ActivityID  string `form:"activity"`
		Status      string `form:"status"`
	}
	if err := c.Bind(&filter); err != nil {
		abort(c, err)
		return
	}

	q := models.DB.Order("created_at ASC")
	if filter.VolunteerID != "" {
		q = q.Where("volunteer_id = ?", filter.VolunteerID)
	}
	if filter.ActivityID != "" {
		q = q.Where("activity_id = ?", filter.ActivityID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var attendances []models.Attendance
	err := q.Offset(filter.Offset).Limit(filter.limitOrDefault()).Find(&attendances).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": attendances})
}

func (co Controller) GetAttendance(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var attendance models.Attendance
	if err := models.DB.First(&attendance, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": attendance})
}

func (co Controller) UpdateAttendance(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var attendance models.Attendance
	if err := models.DB.First(&attendance, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	var editable AttendanceEditable
	if err := httputil.BindData(c, &editable); err != nil {
		abort(c, err)
		return
	}

	attendance.VolunteerID = editable.VolunteerID
	attendance.ActivityID = editable.ActivityID
	attendance.CheckInAt = editable.CheckInAt
	attendance.CheckOutAt = editable.CheckOutAt
	if err := models.DB.Save(&attendance).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": attendance})
}

func (co Controller) DeleteAttendance(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var attendance models.Attendance
	if err := models.DB.First(&attendance, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	if err := models.DB.Delete(&attendance).Error; err != nil {
		abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (co Controller) CheckIn(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var attendance models.Attendance
	if err := models.DB.First(&attendance, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	if attendance.CheckInAt != nil {
		abort(c, models.ErrAlreadyCheckedIn)
		return
	}

	now := time.Now().In(time.UTC)
	attendance.CheckInAt = &now
	if err := models.DB.Save(&attendance).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": attendance})
}

func (co Controller) CheckOut(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var attendance models.Attendance
	if err := models.DB.First(&attendance, "id = ?", id.UUID).Error; err != nil {
		abort(c, err)
		return
	}

	if attendance.CheckInAt == nil {
		abort(c, models.ErrNotCheckedIn)
		return
	}

	if attendance.CheckOutAt != nil {
		abort(c, models.ErrAlreadyCheckedOut)
		return
	}

	now := time.Now().In(time.UTC)
	attendance.CheckOutAt = &now
	if err := models.DB.Save(&attendance).Error; err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": attendance})
}

// VerifyAttendance marks the attendance as verified and mints the
// credit for the worked hours.
func (co Controller) VerifyAttendance(c *gin.Context) {
	id, ok := bindURI(c)
	if !ok {
		return
	}

	var request VerifyAttendanceRequest
	if err := httputil.BindData(c, &request); err != nil {
		abort(c, err)
		return
	}

	credit, err := co.Engine.VerifyAttendance(id.UUID, request.VerifiedBy)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": credit})
}
