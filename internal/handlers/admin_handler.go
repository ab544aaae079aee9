// internal/handlers/admin_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/hek316/workin/internal/attendance"
	"github.com/hek316/workin/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminHandler struct {
	DB *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler { return &AdminHandler{DB: db} }

func (h *AdminHandler) ListEmployees(c *gin.Context) {
	var rows []models.User
	q := h.DB.Order("name asc")
	if c.Query("role") != "" {
		q = q.Where("role = ?", strings.ToUpper(c.Query("role")))
	}
	if err := q.Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": rows})
}

// DailyAttendance returns every record for one date, the admin dashboard feed,
// plus the aggregate counters the dashboard header shows.
func (h *AdminHandler) DailyAttendance(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if len(date) != 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	var rows []models.Attendance
	if err := h.DB.Where("date = ?", date).Order("name asc").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": rows, "stats": attendanceStats(rows)})
}

func attendanceStats(rows []models.Attendance) gin.H {
	var checkedIn, checkedOut, late, early int
	for _, r := range rows {
		if r.CheckInTime != nil {
			checkedIn++
		}
		if r.CheckOutTime != nil {
			checkedOut++
		}
		if r.CheckInStatus == string(attendance.StatusLate) {
			late++
		}
		if r.CheckOutStatus == string(attendance.StatusEarly) {
			early++
		}
	}
	return gin.H{
		"total":       len(rows),
		"checked_in":  checkedIn,
		"checked_out": checkedOut,
		"late":        late,
		"early":       early,
	}
}
