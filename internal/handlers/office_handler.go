// internal/handlers/office_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/hek316/workin/internal/geo"
	"github.com/hek316/workin/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OfficeHandler struct {
	DB *gorm.DB
}

func NewOfficeHandler(db *gorm.DB) *OfficeHandler { return &OfficeHandler{DB: db} }

type OfficeReq struct {
	Name           string  `json:"name" binding:"required"`
	Address        string  `json:"address"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	CheckInRadius  float64 `json:"check_in_radius"`
	CheckOutRadius float64 `json:"check_out_radius"`
	IsActive       *bool   `json:"is_active"`
}

func (r *OfficeReq) validate() string {
	if !(geo.Coordinate{Lat: r.Lat, Lng: r.Lng}).Valid() {
		return "coordinates out of range"
	}
	if r.CheckInRadius <= 0 || r.CheckOutRadius <= 0 {
		return "radii must be positive"
	}
	return ""
}

func (h *OfficeHandler) List(c *gin.Context) {
	var rows []models.OfficeLocation
	q := h.DB.Order("created_at asc")
	if c.Query("active") == "true" {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": rows})
}

func (h *OfficeHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var row models.OfficeLocation
	if err := h.DB.First(&row, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "office not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": row})
}

func (h *OfficeHandler) Create(c *gin.Context) {
	var req OfficeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	row := models.OfficeLocation{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(req.Name),
		Address:        strings.TrimSpace(req.Address),
		Lat:            req.Lat,
		Lng:            req.Lng,
		CheckInRadius:  req.CheckInRadius,
		CheckOutRadius: req.CheckOutRadius,
		IsActive:       active,
	}
	if err := h.DB.Create(&row).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": row})
}

func (h *OfficeHandler) Update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req OfficeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var row models.OfficeLocation
	if err := h.DB.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "office not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}

	row.Name = strings.TrimSpace(req.Name)
	row.Address = strings.TrimSpace(req.Address)
	row.Lat = req.Lat
	row.Lng = req.Lng
	row.CheckInRadius = req.CheckInRadius
	row.CheckOutRadius = req.CheckOutRadius
	if req.IsActive != nil {
		row.IsActive = *req.IsActive
	}
	if err := h.DB.Save(&row).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": row})
}

func (h *OfficeHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	res := h.DB.Delete(&models.OfficeLocation{}, "id = ?", id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "office not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SeedDefaultOffices creates the headquarters entry on a fresh database so
// validation has a reference point before any admin signs in.
func SeedDefaultOffices(db *gorm.DB, lat, lng float64) error {
	var n int64
	if err := db.Model(&models.OfficeLocation{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return db.Create(&models.OfficeLocation{
		ID:             uuid.NewString(),
		Name:           "Headquarters",
		Lat:            lat,
		Lng:            lng,
		CheckInRadius:  1000,
		CheckOutRadius: 3000,
		IsActive:       true,
	}).Error
}
