// internal/handlers/attendance_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/hek316/workin/internal/attendance"
	"github.com/hek316/workin/internal/config"
	"github.com/hek316/workin/internal/geo"
	"github.com/hek316/workin/internal/gps"
	"github.com/hek316/workin/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AttendanceHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Policy attendance.Policy
	Now    func() time.Time
}

func NewAttendanceHandler(db *gorm.DB, cfg *config.Config) *AttendanceHandler {
	return &AttendanceHandler{
		DB:  db,
		Cfg: cfg,
		Policy: attendance.Policy{
			CheckInCutoff:  cfg.CheckInCutoff,
			CheckOutCutoff: cfg.CheckOutCutoff,
			Location:       cfg.Timezone,
		},
		Now: time.Now,
	}
}

// CheckReq carries either a GPS fix or the sensor's failure code. The
// browser reads the sensor; the server only judges the result.
type CheckReq struct {
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Accuracy    *float64 `json:"accuracy"`
	SensorError string   `json:"sensor_error"`
}

func (h *AttendanceHandler) CheckIn(c *gin.Context)  { h.check(c, models.ApprovalCheckIn) }
func (h *AttendanceHandler) CheckOut(c *gin.Context) { h.check(c, models.ApprovalCheckOut) }

func (h *AttendanceHandler) check(c *gin.Context, typ models.ApprovalType) {
	var req CheckReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}

	if req.SensorError != "" {
		v := gps.SensorFailure(req.SensorError)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": v.Message, "verdict": v})
		return
	}
	if req.Lat == nil || req.Lng == nil || req.Accuracy == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat, lng and accuracy required"})
		return
	}

	loc := gps.Location{
		Coordinate: geo.Coordinate{Lat: *req.Lat, Lng: *req.Lng},
		Accuracy:   *req.Accuracy,
	}
	if !loc.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return
	}

	office, ok := h.activeOffice(loc.Coordinate)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no active office configured"})
		return
	}

	radius := h.Cfg.CheckInRadius
	if typ == models.ApprovalCheckOut {
		radius = h.Cfg.CheckOutRadius
	}
	if typ == models.ApprovalCheckIn && office.CheckInRadius > 0 {
		radius = office.CheckInRadius
	}
	if typ == models.ApprovalCheckOut && office.CheckOutRadius > 0 {
		radius = office.CheckOutRadius
	}

	verdict := gps.Validate(loc, geo.Coordinate{Lat: office.Lat, Lng: office.Lng}, radius, h.Cfg.MaxAccuracy)
	if !verdict.Valid {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verdict.Message, "verdict": verdict, "office": office.Name})
		return
	}

	uid := c.GetString("uid")
	name := c.GetString("name")
	now := h.Now()

	date := h.Policy.DateString(now)
	var row models.Attendance
	var err error
	if typ == models.ApprovalCheckIn {
		row, err = recordCheckIn(h.DB, h.Policy, uid, name, date, now, loc, false)
	} else {
		row, err = recordCheckOut(h.DB, h.Policy, uid, date, now, loc, false)
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrAlreadyCheckedIn) || errors.Is(err, ErrAlreadyCheckedOut) || errors.Is(err, ErrNoCheckIn) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": row, "distance": verdict.Distance})
}

// activeOffice picks the nearest active office; seeds nothing. The fallback
// office from config exists so a fresh deployment can take check-ins before
// an admin has configured anything.
func (h *AttendanceHandler) activeOffice(loc geo.Coordinate) (models.OfficeLocation, bool) {
	var offices []models.OfficeLocation
	if err := h.DB.Where("is_active = ?", true).Find(&offices).Error; err != nil {
		return models.OfficeLocation{}, false
	}
	if len(offices) == 0 {
		return models.OfficeLocation{
			Name: "default",
			Lat:  h.Cfg.DefaultOfficeLat,
			Lng:  h.Cfg.DefaultOfficeLng,
		}, true
	}
	return gps.NearestActiveOffice(loc, offices)
}

var (
	ErrAlreadyCheckedIn  = errors.New("already checked in today")
	ErrAlreadyCheckedOut = errors.New("already checked out today")
	ErrNoCheckIn         = errors.New("no check-in record for today")
	ErrCorruptRecord     = errors.New("check-out precedes check-in")
)

// recordCheckIn creates the (user, date) record. The unique index on that
// pair turns a create race between two tabs into a DB error instead of a
// duplicate day.
func recordCheckIn(db *gorm.DB, policy attendance.Policy, uid, name, date string, now time.Time, loc gps.Location, approved bool) (models.Attendance, error) {
	var existing models.Attendance
	err := db.Where("user_uid = ? AND date = ?", uid, date).First(&existing).Error
	if err == nil && existing.CheckInTime != nil {
		return models.Attendance{}, ErrAlreadyCheckedIn
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Attendance{}, err
	}

	status := string(policy.ClassifyCheckIn(now))
	row := models.Attendance{
		UserUID:         uid,
		Name:            name,
		Date:            date,
		CheckInTime:     &now,
		CheckInLat:      &loc.Lat,
		CheckInLng:      &loc.Lng,
		CheckInAccuracy: &loc.Accuracy,
		CheckInStatus:   status,
		CheckInApproved: approved,
	}
	if err := db.Create(&row).Error; err != nil {
		return models.Attendance{}, err
	}
	return row, nil
}

// recordCheckOut completes the day's record and computes work hours.
func recordCheckOut(db *gorm.DB, policy attendance.Policy, uid, date string, now time.Time, loc gps.Location, approved bool) (models.Attendance, error) {
	var row models.Attendance
	err := db.Where("user_uid = ? AND date = ?", uid, date).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Attendance{}, ErrNoCheckIn
	}
	if err != nil {
		return models.Attendance{}, err
	}
	if row.CheckInTime == nil {
		return models.Attendance{}, ErrNoCheckIn
	}
	if row.CheckOutTime != nil {
		return models.Attendance{}, ErrAlreadyCheckedOut
	}

	hours := attendance.WorkHours(*row.CheckInTime, now)
	if hours < 0 {
		return models.Attendance{}, ErrCorruptRecord
	}

	status := string(policy.ClassifyCheckOut(now))
	row.CheckOutTime = &now
	row.CheckOutLat = &loc.Lat
	row.CheckOutLng = &loc.Lng
	row.CheckOutAccuracy = &loc.Accuracy
	row.CheckOutStatus = status
	row.CheckOutApproved = approved
	row.WorkHours = &hours

	if err := db.Save(&row).Error; err != nil {
		return models.Attendance{}, err
	}
	return row, nil
}

// =========================
// READ ENDPOINTS
// =========================

func (h *AttendanceHandler) Today(c *gin.Context) {
	uid := c.GetString("uid")
	date := h.Policy.DateString(h.Now())

	var row models.Attendance
	err := h.DB.Where("user_uid = ? AND date = ?", uid, date).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "data": nil})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": row})
}

func (h *AttendanceHandler) History(c *gin.Context) {
	uid := c.GetString("uid")

	months := 3
	if v := c.Query("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "months must be 1-12"})
			return
		}
		months = n
	}

	now := h.Now()
	if h.Cfg.Timezone != nil {
		now = now.In(h.Cfg.Timezone)
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -months, 0)

	var rows []models.Attendance
	if err := h.DB.Where("user_uid = ? AND date >= ?", uid, start.Format("2006-01-02")).
		Order("date desc").Limit(100).Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": rows})
}

func (h *AttendanceHandler) Monthly(c *gin.Context) {
	uid := c.GetString("uid")

	year, month, ok := yearMonth(c)
	if !ok {
		return
	}

	first, last := monthBounds(year, month)
	var rows []models.Attendance
	if err := h.DB.Where("user_uid = ? AND date >= ? AND date <= ?", uid, first, last).
		Order("date asc").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": rows})
}

func yearMonth(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return 0, 0, false
	}
	return year, month, true
}

func monthBounds(year, month int) (string, string) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02")
}
