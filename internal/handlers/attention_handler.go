package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/audit"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/httperr"
	"github.com/peluqueria-anita/salon-api/internal/httpresp"
	"github.com/peluqueria-anita/salon-api/internal/models"
	"github.com/peluqueria-anita/salon-api/internal/usecase/stats"
)

var attentionStatuses = map[string]bool{
	"started":     true,
	"in_progress": true,
	"completed":   true,
	"cancelled":   true,
}

type AttentionHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
	stats *stats.GetAttentionStats
}

func NewAttentionHandler(
	db *gorm.DB,
	statsRepo stats.Repository,
	d *audit.Dispatcher,
	now func() time.Time,
) *AttentionHandler {
	return &AttentionHandler{
		db:    db,
		audit: d,
		stats: stats.NewGetAttentionStats(statsRepo, now),
	}
}

// ======================================================
// REQUESTS
// ======================================================

type AttentionRequest struct {
	AppointmentID      *uint            `json:"appointment_id"`
	ClientID           *uint            `json:"client_id"`
	UserID             *uint            `json:"user_id"`
	ServiceID          *uint            `json:"service_id"`
	AttentionDate      *models.Date     `json:"attention_date"`
	StartTime          *string          `json:"start_time"`
	EndTime            *string          `json:"end_time"`
	Status             *string          `json:"status"`
	ServicePrice       *decimal.Decimal `json:"service_price"`
	TipAmount          *decimal.Decimal `json:"tip_amount"`
	ClientSatisfaction *string          `json:"client_satisfaction"`
	Observations       *string          `json:"observations"`
	ProductsUsed       *string          `json:"products_used"`
	Notes              *string          `json:"notes"`
}

type AttentionStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

// apply copies every set field onto a. On create every required field must
// be present.
func (r AttentionRequest) apply(a *models.Attention, creating bool) map[string]string {
	fields := map[string]string{}

	required := func(key string, set bool) {
		if creating && !set {
			fields[key] = "is required"
		}
	}
	required("appointment_id", r.AppointmentID != nil)
	required("client_id", r.ClientID != nil)
	required("user_id", r.UserID != nil)
	required("service_id", r.ServiceID != nil)
	required("attention_date", r.AttentionDate != nil && !r.AttentionDate.IsZero())
	required("start_time", r.StartTime != nil)
	required("end_time", r.EndTime != nil)
	required("status", r.Status != nil)
	required("service_price", r.ServicePrice != nil)

	if r.AppointmentID != nil {
		a.AppointmentID = *r.AppointmentID
	}
	if r.ClientID != nil {
		a.ClientID = *r.ClientID
	}
	if r.UserID != nil {
		a.UserID = *r.UserID
	}
	if r.ServiceID != nil {
		a.ServiceID = *r.ServiceID
	}
	if r.AttentionDate != nil {
		a.AttentionDate = *r.AttentionDate
	}
	if r.StartTime != nil {
		a.StartTime = *r.StartTime
	}
	if r.EndTime != nil {
		a.EndTime = *r.EndTime
	}
	if r.Status != nil {
		a.Status = *r.Status
	}
	if r.ServicePrice != nil {
		a.ServicePrice = *r.ServicePrice
	}
	if r.TipAmount != nil {
		a.TipAmount = *r.TipAmount
	}
	if r.ClientSatisfaction != nil {
		if *r.ClientSatisfaction == "" {
			a.ClientSatisfaction = nil
		} else {
			v := *r.ClientSatisfaction
			a.ClientSatisfaction = &v
		}
	}
	if r.Observations != nil {
		a.Observations = *r.Observations
	}
	if r.ProductsUsed != nil {
		a.ProductsUsed = *r.ProductsUsed
	}
	if r.Notes != nil {
		a.Notes = *r.Notes
	}

	for k, v := range validateAttention(a) {
		if _, seen := fields[k]; !seen {
			fields[k] = v
		}
	}
	return fields
}

// validateAttention checks the row as it would be stored.
func validateAttention(a *models.Attention) map[string]string {
	fields := map[string]string{}

	start, startErr := domain.ParseClock(a.StartTime)
	if a.StartTime != "" && startErr != nil {
		fields["start_time"] = "must be formatted HH:MM"
	}
	end, endErr := domain.ParseClock(a.EndTime)
	if a.EndTime != "" && endErr != nil {
		fields["end_time"] = "must be formatted HH:MM"
	}
	if startErr == nil && endErr == nil && end <= start {
		fields["end_time"] = "must be after start_time"
	}

	if a.Status != "" && !attentionStatuses[a.Status] {
		fields["status"] = "must be one of started, in_progress, completed, cancelled"
	}
	if a.ServicePrice.IsNegative() {
		fields["service_price"] = "must be zero or greater"
	}
	if a.TipAmount.IsNegative() {
		fields["tip_amount"] = "must be zero or greater"
	}
	if a.ClientSatisfaction != nil {
		if _, ok := stats.SatisfactionScore(*a.ClientSatisfaction); !ok {
			fields["client_satisfaction"] = "is not a valid satisfaction level"
		}
	}
	return fields
}

// checkReferences reports body ids that point at no row.
func (h *AttentionHandler) checkReferences(c *gin.Context, a *models.Attention, fields map[string]string) error {
	refs := []struct {
		key   string
		model any
		id    uint
	}{
		{"appointment_id", &models.Appointment{}, a.AppointmentID},
		{"client_id", &models.Client{}, a.ClientID},
		{"user_id", &models.User{}, a.UserID},
		{"service_id", &models.Service{}, a.ServiceID},
	}

	for _, r := range refs {
		if _, bad := fields[r.key]; bad || r.id == 0 {
			continue
		}
		var n int64
		if err := h.db.WithContext(c.Request.Context()).
			Model(r.model).
			Where("id = ?", r.id).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			fields[r.key] = "does not exist"
		}
	}
	return nil
}

func (h *AttentionHandler) find(c *gin.Context) (*models.Attention, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}

	var a models.Attention
	if err := h.withRelations(c).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "attention_not_found", "Attention not found.")
			return nil, false
		}
		httperr.Respond(c, err, "attention_fetch_failed")
		return nil, false
	}
	return &a, true
}

func (h *AttentionHandler) withRelations(c *gin.Context) *gorm.DB {
	return h.db.WithContext(c.Request.Context()).
		Preload("Client").
		Preload("Stylist").
		Preload("Service").
		Preload("Appointment")
}

// save validates, checks references and writes a. It answers the request
// on failure and reports whether it succeeded.
func (h *AttentionHandler) save(c *gin.Context, a *models.Attention, fields map[string]string) bool {
	if err := h.checkReferences(c, a, fields); err != nil {
		httperr.Respond(c, err, "attention_save_failed")
		return false
	}
	if len(fields) > 0 {
		httperr.Respond(c, apperr.ValidationFields(fields), "")
		return false
	}

	row := *a
	row.Appointment, row.Client, row.Stylist, row.Service = nil, nil, nil, nil
	if err := h.db.WithContext(c.Request.Context()).Save(&row).Error; err != nil {
		httperr.Respond(c, err, "attention_save_failed")
		return false
	}
	a.ID = row.ID
	return true
}

// ======================================================
// HANDLERS
// ======================================================

func (h *AttentionHandler) Index(c *gin.Context) {
	dates, ok := queryDates(c, "date")
	if !ok {
		return
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.Attention{})

	if !dates[0].IsZero() {
		q = q.Where("attentions.attention_date = ?", dates[0])
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("attentions.status = ?", status)
	}
	if id := queryUint(c, "stylist_id"); id != 0 {
		q = q.Where("attentions.user_id = ?", id)
	}
	if id := queryUint(c, "client_id"); id != 0 {
		q = q.Where("attentions.client_id = ?", id)
	}
	if search := strings.ToLower(strings.TrimSpace(c.Query("search"))); search != "" {
		q = q.Joins("JOIN clients ON clients.id = attentions.client_id").
			Where("LOWER(clients.name) LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Respond(c, err, "attentions_list_failed")
		return
	}

	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(c, "per_page", 15)
	if perPage < 1 || perPage > 100 {
		perPage = 15
	}

	var items []models.Attention
	if err := q.
		Select("attentions.*").
		Preload("Client").
		Preload("Stylist").
		Preload("Service").
		Order("attentions.attention_date DESC, attentions.start_time DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&items).Error; err != nil {
		httperr.Respond(c, err, "attentions_list_failed")
		return
	}

	httpresp.Page(c, items, total, page, perPage)
}

func (h *AttentionHandler) Store(c *gin.Context) {
	var req AttentionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	a := models.Attention{TipAmount: decimal.Zero}
	if !h.save(c, &a, req.apply(&a, true)) {
		return
	}

	writeAudit(h.audit, c, "attention_created", "attention", &a.ID, nil)

	created := a
	if err := h.withRelations(c).First(&created, a.ID).Error; err != nil {
		httperr.Respond(c, err, "attention_fetch_failed")
		return
	}
	httpresp.Created(c, created, "Attention created.")
}

func (h *AttentionHandler) Show(c *gin.Context) {
	a, ok := h.find(c)
	if !ok {
		return
	}
	httpresp.OK(c, a)
}

func (h *AttentionHandler) Update(c *gin.Context) {
	a, ok := h.find(c)
	if !ok {
		return
	}

	var req AttentionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	if !h.save(c, a, req.apply(a, false)) {
		return
	}

	writeAudit(h.audit, c, "attention_updated", "attention", &a.ID, nil)

	updated, ok := h.find(c)
	if !ok {
		return
	}
	httpresp.OK(c, updated)
}

func (h *AttentionHandler) Destroy(c *gin.Context) {
	a, ok := h.find(c)
	if !ok {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(&models.Attention{}, a.ID).Error; err != nil {
		httperr.Respond(c, err, "attention_delete_failed")
		return
	}

	writeAudit(h.audit, c, "attention_deleted", "attention", &a.ID, nil)
	httpresp.Message(c, "Attention deleted.")
}

// UpdateStatus moves the attention to any known status; notes are kept
// unless given.
func (h *AttentionHandler) UpdateStatus(c *gin.Context) {
	a, ok := h.find(c)
	if !ok {
		return
	}

	var req AttentionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}
	if !attentionStatuses[req.Status] {
		httperr.Respond(c, apperr.ValidationFields(map[string]string{
			"status": "must be one of started, in_progress, completed, cancelled",
		}), "")
		return
	}

	updates := map[string]any{"status": req.Status}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if err := h.db.WithContext(c.Request.Context()).
		Model(&models.Attention{ID: a.ID}).
		Updates(updates).Error; err != nil {
		httperr.Respond(c, err, "attention_update_failed")
		return
	}

	writeAudit(h.audit, c, "attention_status_changed", "attention", &a.ID,
		map[string]string{"from": a.Status, "to": req.Status})

	updated, ok := h.find(c)
	if !ok {
		return
	}
	httpresp.OK(c, updated)
}

func (h *AttentionHandler) Stats(c *gin.Context) {
	s, err := h.stats.Execute(c.Request.Context(), queryInt(c, "top", 5))
	if err != nil {
		httperr.Respond(c, err, "attention_stats_failed")
		return
	}
	httpresp.OK(c, s)
}
