// internal/handlers/approval_handler.go
package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hek316/workin/internal/attendance"
	"github.com/hek316/workin/internal/config"
	"github.com/hek316/workin/internal/geo"
	"github.com/hek316/workin/internal/gps"
	"github.com/hek316/workin/internal/models"
	"github.com/hek316/workin/internal/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ApprovalHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Policy attendance.Policy
	Hub    *notify.Hub
	Now    func() time.Time
}

func NewApprovalHandler(db *gorm.DB, cfg *config.Config, hub *notify.Hub) *ApprovalHandler {
	return &ApprovalHandler{
		DB:  db,
		Cfg: cfg,
		Policy: attendance.Policy{
			CheckInCutoff:  cfg.CheckInCutoff,
			CheckOutCutoff: cfg.CheckOutCutoff,
			Location:       cfg.Timezone,
		},
		Hub: hub,
		Now: time.Now,
	}
}

func approvalTopic(id uint) string { return fmt.Sprintf("approval/%d", id) }

// =========================
// CREATE (employee)
// =========================
type CreateApprovalReq struct {
	Type     string  `json:"type" binding:"required"`
	Reason   string  `json:"reason" binding:"required"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy"`
}

func (h *ApprovalHandler) Create(c *gin.Context) {
	var req CreateApprovalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}

	typ := models.ApprovalType(strings.TrimSpace(req.Type))
	if typ != models.ApprovalCheckIn && typ != models.ApprovalCheckOut {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be check_in or check_out"})
		return
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if len([]rune(req.Reason)) < h.Cfg.MinReasonLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("reason must be at least %d characters", h.Cfg.MinReasonLen)})
		return
	}
	if !(geo.Coordinate{Lat: req.Lat, Lng: req.Lng}).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return
	}

	uid := c.GetString("uid")
	name := c.GetString("name")
	date := h.Policy.DateString(h.Now())

	var row models.ApprovalRequest
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_uid = ? AND date = ? AND type = ?", uid, date, typ).First(&row).Error
		switch {
		case err == nil:
			if row.Status == models.ApprovalPending {
				return ErrPendingExists
			}
			// A rejected or approved request for the key is superseded by
			// the new appeal; the key row is reused.
			row.Reason = req.Reason
			row.Lat = req.Lat
			row.Lng = req.Lng
			row.Accuracy = req.Accuracy
			row.Status = models.ApprovalPending
			row.ReviewedBy = ""
			row.ReviewedAt = nil
			row.RejectionReason = ""
			return tx.Save(&row).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = models.ApprovalRequest{
				UserUID:  uid,
				Name:     name,
				Date:     date,
				Type:     typ,
				Reason:   req.Reason,
				Lat:      req.Lat,
				Lng:      req.Lng,
				Accuracy: req.Accuracy,
				Status:   models.ApprovalPending,
			}
			return tx.Create(&row).Error
		default:
			return err
		}
	})
	if errors.Is(err, ErrPendingExists) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed", "detail": err.Error()})
		return
	}

	h.Hub.Publish(approvalTopic(row.ID), row)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": row})
}

var (
	ErrPendingExists = errors.New("a pending request already exists for today")
	ErrNotPending    = errors.New("request was already reviewed")
)

// =========================
// LIST (employee)
// =========================
func (h *ApprovalHandler) ListMine(c *gin.Context) {
	uid := c.GetString("uid")

	var rows []models.ApprovalRequest
	if err := h.DB.Where("user_uid = ?", uid).Order("created_at desc").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": rows})
}

// =========================
// WATCH (employee, SSE)
// =========================

// Watch streams the request's latest state until the client disconnects.
// The current state is sent first so a subscriber joining after a review
// still converges.
func (h *ApprovalHandler) Watch(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	uid := c.GetString("uid")

	// Subscribe before the initial read. A review committing between the
	// two would otherwise publish to nobody, and terminal states never
	// publish again; the worst this ordering costs is a duplicate
	// delivery, which the hub contract already permits.
	ch, cancel := h.Hub.Subscribe(approvalTopic(id))
	defer cancel()

	var row models.ApprovalRequest
	if err := h.DB.First(&row, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	if row.UserUID != uid && c.GetString("role") != string(models.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your request"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")

	c.SSEvent("approval", row)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case s, open := <-ch:
			if !open {
				return false
			}
			c.SSEvent("approval", s)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// =========================
// ADMIN REVIEW
// =========================

func (h *ApprovalHandler) ListPending(c *gin.Context) {
	var rows []models.ApprovalRequest
	if err := h.DB.Where("status = ?", models.ApprovalPending).
		Order("created_at desc").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": rows})
}

// Approve moves pending → approved and materializes the deferred check event
// in the same transaction, using the location captured at request time. The
// event is flagged approved; its timeliness column still records what the
// clock said.
func (h *ApprovalHandler) Approve(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	reviewer := c.GetString("uid")
	now := h.Now()

	var row models.ApprovalRequest
	var record models.Attendance
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, id).Error; err != nil {
			return err
		}
		if row.Status != models.ApprovalPending {
			return ErrNotPending
		}

		row.Status = models.ApprovalApproved
		row.ReviewedBy = reviewer
		row.ReviewedAt = &now
		if err := tx.Save(&row).Error; err != nil {
			return err
		}

		loc := gps.Location{
			Coordinate: geo.Coordinate{Lat: row.Lat, Lng: row.Lng},
			Accuracy:   row.Accuracy,
		}
		var err error
		if row.Type == models.ApprovalCheckIn {
			record, err = recordCheckIn(tx, h.Policy, row.UserUID, row.Name, row.Date, now, loc, true)
		} else {
			record, err = recordCheckOut(tx, h.Policy, row.UserUID, row.Date, now, loc, true)
		}
		return err
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	case errors.Is(err, ErrNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, ErrAlreadyCheckedIn), errors.Is(err, ErrAlreadyCheckedOut), errors.Is(err, ErrNoCheckIn):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "approve failed", "detail": err.Error()})
		return
	}

	h.Hub.Publish(approvalTopic(row.ID), row)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": row, "attendance": record})
}

type RejectReq struct {
	RejectionReason string `json:"rejection_reason" binding:"required"`
}

func (h *ApprovalHandler) Reject(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req RejectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}
	req.RejectionReason = strings.TrimSpace(req.RejectionReason)
	if len([]rune(req.RejectionReason)) < h.Cfg.MinReasonLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("rejection reason must be at least %d characters", h.Cfg.MinReasonLen)})
		return
	}

	reviewer := c.GetString("uid")
	now := h.Now()

	var row models.ApprovalRequest
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, id).Error; err != nil {
			return err
		}
		if row.Status != models.ApprovalPending {
			return ErrNotPending
		}

		row.Status = models.ApprovalRejected
		row.ReviewedBy = reviewer
		row.ReviewedAt = &now
		row.RejectionReason = req.RejectionReason
		return tx.Save(&row).Error
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	case errors.Is(err, ErrNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reject failed", "detail": err.Error()})
		return
	}

	h.Hub.Publish(approvalTopic(row.ID), row)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": row})
}

func paramID(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id64 == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id64), true
}
