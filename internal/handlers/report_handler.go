// internal/handlers/report_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hek316/workin/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ReportHandler struct {
	DB  *gorm.DB
	Loc *time.Location
}

func NewReportHandler(db *gorm.DB, loc *time.Location) *ReportHandler {
	return &ReportHandler{DB: db, Loc: loc}
}

// Monthly streams the month's attendance for every employee as an XLSX
// workbook.
func (h *ReportHandler) Monthly(c *gin.Context) {
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}

	first, last := monthBounds(year, month)
	var rows []models.Attendance
	if err := h.DB.Where("date >= ? AND date <= ?", first, last).
		Order("date asc, name asc").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Attendance"
	f.SetSheetName("Sheet1", sheet)

	header := []any{"Date", "Name", "Check In", "In Status", "Check Out", "Out Status", "Work Hours"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		values := []any{
			row.Date,
			row.Name,
			h.clock(row.CheckInTime),
			statusLabel(row.CheckInStatus, row.CheckInApproved),
			h.clock(row.CheckOutTime),
			statusLabel(row.CheckOutStatus, row.CheckOutApproved),
			workHoursLabel(row.WorkHours),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
			return
		}
	}

	name := fmt.Sprintf("attendance-%04d-%02d.xlsx", year, month)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if _, err := f.WriteTo(c.Writer); err != nil {
		// headers are already out; nothing left to do but log via gin recovery
		_ = c.Error(err)
	}
}

func (h *ReportHandler) clock(t *time.Time) string {
	if t == nil {
		return ""
	}
	lt := *t
	if h.Loc != nil {
		lt = lt.In(h.Loc)
	}
	return lt.Format("15:04")
}

func statusLabel(status string, approved bool) string {
	if status == "" {
		return ""
	}
	if approved {
		return status + " (approved)"
	}
	return status
}

func workHoursLabel(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
