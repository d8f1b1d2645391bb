package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/audit"
	"github.com/peluqueria-anita/salon-api/internal/httperr"
	"github.com/peluqueria-anita/salon-api/internal/httpresp"
	"github.com/peluqueria-anita/salon-api/internal/models"
	"github.com/peluqueria-anita/salon-api/internal/usecase/stats"
)

type ClientHandler struct {
	db       *gorm.DB
	audit    *audit.Dispatcher
	now      func() time.Time
	stats    *stats.GetClientStats
	overview *stats.GetClientOverview
}

func NewClientHandler(
	db *gorm.DB,
	statsRepo stats.Repository,
	d *audit.Dispatcher,
	now func() time.Time,
) *ClientHandler {
	return &ClientHandler{
		db:       db,
		audit:    d,
		now:      now,
		stats:    stats.NewGetClientStats(statsRepo),
		overview: stats.NewGetClientOverview(statsRepo, now),
	}
}

// --------- Requests ---------

type CreateClientRequest struct {
	Name        string       `json:"name" binding:"required,max=100"`
	Email       string       `json:"email" binding:"required,email,max=255"`
	Phone       string       `json:"phone" binding:"required,max=20"`
	Address     string       `json:"address" binding:"max=500"`
	BirthDate   *models.Date `json:"birth_date"`
	Gender      string       `json:"gender" binding:"omitempty,oneof=male female other"`
	Preferences string       `json:"preferences" binding:"max=1000"`
	Notes       string       `json:"notes"`
	IsActive    *bool        `json:"is_active"`
}

type UpdateClientRequest struct {
	Name        *string      `json:"name" binding:"omitempty,max=100"`
	Email       *string      `json:"email" binding:"omitempty,email,max=255"`
	Phone       *string      `json:"phone" binding:"omitempty,max=20"`
	Address     *string      `json:"address" binding:"omitempty,max=500"`
	BirthDate   *models.Date `json:"birth_date"`
	Gender      *string      `json:"gender" binding:"omitempty,oneof=male female other"`
	Preferences *string      `json:"preferences" binding:"omitempty,max=1000"`
	Notes       *string      `json:"notes"`
	IsActive    *bool        `json:"is_active"`
}

// ClientListItem is a client with its booking totals.
type ClientListItem struct {
	models.Client     `gorm:"embedded"`
	AppointmentsCount int64           `json:"appointments_count"`
	LastAppointment   *models.Date    `json:"last_appointment"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
}

var clientSortColumns = map[string]bool{
	"name":       true,
	"email":      true,
	"created_at": true,
	"updated_at": true,
}

const clientTotalsSelect = `clients.*,
	(SELECT COUNT(*) FROM appointments a WHERE a.client_id = clients.id) AS appointments_count,
	(SELECT MAX(a.appointment_date) FROM appointments a WHERE a.client_id = clients.id) AS last_appointment,
	(SELECT COALESCE(SUM(a.total_amount), 0) FROM appointments a
		WHERE a.client_id = clients.id AND a.status = 'completed') AS total_spent`

// --------- Helpers ---------

func (h *ClientHandler) find(c *gin.Context) (*models.Client, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}

	var client models.Client
	if err := h.db.WithContext(c.Request.Context()).First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "client_not_found", "Client not found.")
			return nil, false
		}
		httperr.Respond(c, err, "client_fetch_failed")
		return nil, false
	}
	return &client, true
}

// checkClientFields validates what binding tags cannot: unique email and a
// birth date in the past.
func (h *ClientHandler) checkClientFields(c *gin.Context, selfID uint, email *string, birth *models.Date) error {
	fields := map[string]string{}

	if email != nil && *email != "" {
		var n int64
		q := h.db.WithContext(c.Request.Context()).
			Model(&models.Client{}).
			Where("LOWER(email) = ?", strings.ToLower(*email))
		if selfID != 0 {
			q = q.Where("id <> ?", selfID)
		}
		if err := q.Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			fields["email"] = "has already been taken"
		}
	}

	if birth != nil && !birth.IsZero() && !birth.Before(models.NewDate(h.now())) {
		fields["birth_date"] = "must be a date before today"
	}

	if len(fields) > 0 {
		return apperr.ValidationFields(fields)
	}
	return nil
}

// --------- Handlers ---------

func (h *ClientHandler) Index(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Client{})

	if active := queryBool(c, "is_active"); active != nil {
		q = q.Where("is_active = ?", *active)
	}
	if gender := strings.TrimSpace(c.Query("gender")); gender != "" {
		q = q.Where("gender = ?", gender)
	}
	if search := strings.ToLower(strings.TrimSpace(c.Query("search"))); search != "" {
		like := "%" + search + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Respond(c, err, "clients_list_failed")
		return
	}

	sortBy := c.Query("sort_by")
	if !clientSortColumns[sortBy] {
		sortBy = "created_at"
	}
	order := "DESC"
	if strings.ToLower(c.Query("sort_order")) == "asc" {
		order = "ASC"
	}

	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(c, "per_page", 15)
	if perPage < 1 || perPage > 100 {
		perPage = 15
	}

	var items []ClientListItem
	if err := q.
		Select(clientTotalsSelect).
		Order("clients." + sortBy + " " + order).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Scan(&items).Error; err != nil {
		httperr.Respond(c, err, "clients_list_failed")
		return
	}

	httpresp.Page(c, items, total, page, perPage)
}

func (h *ClientHandler) Store(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	if err := h.checkClientFields(c, 0, &req.Email, req.BirthDate); err != nil {
		httperr.Respond(c, err, "client_create_failed")
		return
	}

	client := models.Client{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       req.Phone,
		Address:     req.Address,
		BirthDate:   req.BirthDate,
		Gender:      req.Gender,
		Preferences: req.Preferences,
		Notes:       req.Notes,
		IsActive:    true,
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	if err := createWithActive(h.db.WithContext(c.Request.Context()), &client, req.IsActive); err != nil {
		httperr.Respond(c, err, "client_create_failed")
		return
	}
	client.IsActive = req.IsActive == nil || *req.IsActive

	writeAudit(h.audit, c, "client_created", "client", &client.ID, nil)
	httpresp.Created(c, client, "Client created.")
}

func (h *ClientHandler) Show(c *gin.Context) {
	client, ok := h.find(c)
	if !ok {
		return
	}
	httpresp.OK(c, client)
}

func (h *ClientHandler) Update(c *gin.Context) {
	client, ok := h.find(c)
	if !ok {
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	if err := h.checkClientFields(c, client.ID, req.Email, req.BirthDate); err != nil {
		httperr.Respond(c, err, "client_update_failed")
		return
	}

	if req.Name != nil {
		client.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		client.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.BirthDate != nil {
		client.BirthDate = req.BirthDate
	}
	if req.Gender != nil {
		client.Gender = *req.Gender
	}
	if req.Preferences != nil {
		client.Preferences = *req.Preferences
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	if err := h.db.WithContext(c.Request.Context()).Save(client).Error; err != nil {
		httperr.Respond(c, err, "client_update_failed")
		return
	}

	writeAudit(h.audit, c, "client_updated", "client", &client.ID, nil)
	httpresp.OK(c, client)
}

// Destroy refuses while any appointment, past or cancelled included, still
// references the client.
func (h *ClientHandler) Destroy(c *gin.Context) {
	client, ok := h.find(c)
	if !ok {
		return
	}

	db := h.db.WithContext(c.Request.Context())
	err := deleteUnreferenced(db, client,
		db.Model(&models.Appointment{}).Where("client_id = ?", client.ID),
		apperr.InvalidState(
			"client_has_appointments",
			"the client has appointments and cannot be deleted",
		))
	if err != nil {
		httperr.Respond(c, err, "client_delete_failed")
		return
	}

	writeAudit(h.audit, c, "client_deleted", "client", &client.ID, nil)
	httpresp.Message(c, "Client deleted.")
}

func (h *ClientHandler) ToggleStatus(c *gin.Context) {
	client, ok := h.find(c)
	if !ok {
		return
	}

	client.IsActive = !client.IsActive
	if err := h.db.WithContext(c.Request.Context()).
		Model(client).
		Update("is_active", client.IsActive).Error; err != nil {
		httperr.Respond(c, err, "client_update_failed")
		return
	}

	msg := "Client deactivated."
	if client.IsActive {
		msg = "Client activated."
	}
	writeAudit(h.audit, c, "client_status_toggled", "client", &client.ID, map[string]bool{"is_active": client.IsActive})
	c.JSON(http.StatusOK, httpresp.DataResponse{Data: client, Message: msg})
}

// Appointments is the client's booking history, newest first.
func (h *ClientHandler) Appointments(c *gin.Context) {
	client, ok := h.find(c)
	if !ok {
		return
	}

	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	const perPage = 10

	q := h.db.WithContext(c.Request.Context()).
		Model(&models.Appointment{}).
		Where("client_id = ?", client.ID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Respond(c, err, "client_appointments_failed")
		return
	}

	var items []models.Appointment
	if err := q.
		Preload("Stylist").
		Preload("Details.Service").
		Order("appointment_date DESC, start_time DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&items).Error; err != nil {
		httperr.Respond(c, err, "client_appointments_failed")
		return
	}

	httpresp.Page(c, items, total, page, perPage)
}

func (h *ClientHandler) Stats(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	s, err := h.stats.Execute(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err, "client_stats_failed")
		return
	}

	httpresp.OK(c, s)
}

func (h *ClientHandler) Overview(c *gin.Context) {
	s, err := h.overview.Execute(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err, "client_overview_failed")
		return
	}

	httpresp.OK(c, s)
}
