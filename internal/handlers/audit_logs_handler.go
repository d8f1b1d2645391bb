package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/peluqueria-anita/salon-api/internal/httperr"
	"github.com/peluqueria-anita/salon-api/internal/httpresp"
	"github.com/peluqueria-anita/salon-api/internal/models"
	"github.com/peluqueria-anita/salon-api/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db *gorm.DB
	tz string
}

func NewAuditLogsHandler(db *gorm.DB, tz string) *AuditLogsHandler {
	return &AuditLogsHandler{db: db, tz: tz}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	dates, ok := queryDates(c, "from", "to")
	if !ok {
		return
	}

	page := queryInt(c, "page", 1)
	if page <= 0 {
		page = 1
	}

	limit := queryInt(c, "limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	// --------------------------------------------------
	// Filters
	// --------------------------------------------------

	q := h.db.WithContext(c.Request.Context()).Model(&models.AuditLog{})

	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if entity := c.Query("entity"); entity != "" {
		q = q.Where("entity = ?", entity)
	}
	if id := queryUint(c, "entity_id"); id != 0 {
		q = q.Where("entity_id = ?", id)
	}
	if id := queryUint(c, "user_id"); id != 0 {
		q = q.Where("user_id = ?", id)
	}

	from, to, _ := timezone.DaySpan(h.tz, dates[0].String(), dates[1].String())
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}

	// --------------------------------------------------
	// Total + page
	// --------------------------------------------------

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Respond(c, err, "audit_count_failed")
		return
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&logs).Error; err != nil {
		httperr.Respond(c, err, "audit_list_failed")
		return
	}

	httpresp.Page(c, logs, total, page, limit)
}
