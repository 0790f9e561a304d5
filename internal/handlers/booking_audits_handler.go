package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

const RoleAdmin = "admin"

// ======================================================
// HANDLER
// ======================================================

type BookingAuditsHandler struct {
	db *gorm.DB
}

func NewBookingAuditsHandler(db *gorm.DB) *BookingAuditsHandler {
	return &BookingAuditsHandler{db: db}
}

type BookingAuditsResponse struct {
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
	Total int64                 `json:"total"`
	Logs  []models.BookingAudit `json:"logs"`
}

// List pages through the booking trail, newest first. Admins only.
func (h *BookingAuditsHandler) List(c *gin.Context) {
	session := middleware.SessionFrom(c)
	if session == nil {
		httperr.Unauthorized(c, "authentication_required", "Please sign in.")
		return
	}
	if session.Role != RoleAdmin {
		httperr.Forbidden(c, "forbidden", "Only admins can read the booking trail.")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	filtered := func() *gorm.DB {
		q := h.db.WithContext(c.Request.Context()).Model(&models.BookingAudit{})

		if action := c.Query("action"); action != "" {
			q = q.Where("action = ?", action)
		}
		if sessionID := c.Query("session_id"); sessionID != "" {
			q = q.Where("session_id = ?", sessionID)
		}
		if barberID := c.Query("barber_id"); barberID != "" {
			q = q.Where("barber_id = ?", barberID)
		}
		if from, err := time.Parse(time.DateOnly, c.Query("from")); err == nil {
			q = q.Where("created_at >= ?", from)
		}
		if to, err := time.Parse(time.DateOnly, c.Query("to")); err == nil {
			q = q.Where("created_at < ?", to.Add(24*time.Hour))
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "Could not count booking audits.")
		return
	}

	logs := []models.BookingAudit{}
	if err := filtered().
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&logs).Error; err != nil {
		httperr.Internal(c, "audit_list_failed", "Could not list booking audits.")
		return
	}

	c.JSON(200, BookingAuditsResponse{
		Page:  page,
		Limit: limit,
		Total: total,
		Logs:  logs,
	})
}
