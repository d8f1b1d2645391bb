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
	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/httperr"
	"github.com/peluqueria-anita/salon-api/internal/httpresp"
	"github.com/peluqueria-anita/salon-api/internal/models"
	"github.com/peluqueria-anita/salon-api/internal/usecase/stats"
)

type ServiceHandler struct {
	db      *gorm.DB
	audit   *audit.Dispatcher
	now     func() time.Time
	popular *stats.GetPopularServices
}

func NewServiceHandler(
	db *gorm.DB,
	statsRepo stats.Repository,
	d *audit.Dispatcher,
	now func() time.Time,
) *ServiceHandler {
	return &ServiceHandler{
		db:      db,
		audit:   d,
		now:     now,
		popular: stats.NewGetPopularServices(statsRepo, now),
	}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name        string          `json:"name" binding:"required,max=255"`
	Description string          `json:"description" binding:"required,max=1000"`
	Price       decimal.Decimal `json:"price"`
	Duration    int             `json:"duration" binding:"required"`
	Category    string          `json:"category" binding:"max=50"`
	IsActive    *bool           `json:"is_active"`
}

type UpdateServiceRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=255"`
	Description *string          `json:"description" binding:"omitempty,max=1000"`
	Price       *decimal.Decimal `json:"price"`
	Duration    *int             `json:"duration"`
	Category    *string          `json:"category" binding:"omitempty,max=50"`
	IsActive    *bool            `json:"is_active"`
}

// ServiceUsage summarises completed bookings of one service.
type ServiceUsage struct {
	TimesBooked  int64           `json:"times_booked"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	AveragePrice decimal.Decimal `json:"average_price"`
}

type ServiceWithUsage struct {
	models.Service
	Stats ServiceUsage `json:"stats"`
}

var serviceSortColumns = map[string]bool{
	"name":       true,
	"price":      true,
	"duration":   true,
	"created_at": true,
}

// validateServiceValues checks the catalogue limits on price and duration.
func validateServiceValues(price *decimal.Decimal, duration *int) error {
	fields := map[string]string{}
	if price != nil && (price.IsNegative() || price.GreaterThan(models.MaxServicePrice)) {
		fields["price"] = "must be between 0 and " + models.MaxServicePrice.StringFixed(2)
	}
	if duration != nil && (*duration < models.MinServiceDuration || *duration > models.MaxServiceDuration) {
		fields["duration"] = "must be between 15 and 480 minutes"
	}
	if len(fields) > 0 {
		return apperr.ValidationFields(fields)
	}
	return nil
}

func (h *ServiceHandler) nameTaken(c *gin.Context, name string, selfID uint) (bool, error) {
	var n int64
	q := h.db.WithContext(c.Request.Context()).
		Model(&models.Service{}).
		Where("LOWER(name) = ?", strings.ToLower(name))
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func (h *ServiceHandler) find(c *gin.Context) (*models.Service, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}

	var svc models.Service
	if err := h.db.WithContext(c.Request.Context()).First(&svc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "service_not_found", "Service not found.")
			return nil, false
		}
		httperr.Respond(c, err, "service_fetch_failed")
		return nil, false
	}
	return &svc, true
}

// --------- Handlers ---------

func (h *ServiceHandler) Index(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Service{})

	if active := queryBool(c, "active"); active != nil {
		q = q.Where("is_active = ?", *active)
	}
	if category := strings.ToLower(strings.TrimSpace(c.Query("category"))); category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}
	if search := strings.ToLower(strings.TrimSpace(c.Query("search"))); search != "" {
		like := "%" + search + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Respond(c, err, "services_list_failed")
		return
	}

	sortBy := c.Query("sort_by")
	order := "ASC"
	if !serviceSortColumns[sortBy] {
		sortBy = "name"
	} else if strings.ToLower(c.Query("sort_order")) == "desc" {
		order = "DESC"
	}

	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(c, "per_page", 10)
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	var items []models.Service
	if err := q.
		Order(sortBy + " " + order).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&items).Error; err != nil {
		httperr.Respond(c, err, "services_list_failed")
		return
	}

	httpresp.Page(c, items, total, page, perPage)
}

func (h *ServiceHandler) Store(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	if err := validateServiceValues(&req.Price, &req.Duration); err != nil {
		httperr.Respond(c, err, "service_create_failed")
		return
	}

	taken, err := h.nameTaken(c, req.Name, 0)
	if err != nil {
		httperr.Respond(c, err, "service_create_failed")
		return
	}
	if taken {
		httperr.Respond(c, apperr.ValidationFields(map[string]string{"name": "has already been taken"}), "")
		return
	}

	svc := models.Service{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Duration:    req.Duration,
		Category:    strings.ToLower(req.Category),
		IsActive:    true,
	}

	if err := createWithActive(h.db.WithContext(c.Request.Context()), &svc, req.IsActive); err != nil {
		httperr.Respond(c, err, "service_create_failed")
		return
	}
	svc.IsActive = req.IsActive == nil || *req.IsActive

	writeAudit(h.audit, c, "service_created", "service", &svc.ID, nil)
	httpresp.Created(c, svc, "Service created.")
}

// Show includes usage over completed appointments.
func (h *ServiceHandler) Show(c *gin.Context) {
	svc, ok := h.find(c)
	if !ok {
		return
	}

	var usage ServiceUsage
	if err := h.db.WithContext(c.Request.Context()).
		Table("appointment_details d").
		Joins("JOIN appointments a ON a.id = d.appointment_id").
		Where("d.service_id = ? AND a.status = ?", svc.ID, string(domain.StatusCompleted)).
		Select("COUNT(*) AS times_booked, " +
			"COALESCE(SUM(d.subtotal), 0) AS total_revenue, " +
			"COALESCE(AVG(d.unit_price), 0) AS average_price").
		Scan(&usage).Error; err != nil {
		httperr.Respond(c, err, "service_fetch_failed")
		return
	}
	usage.AveragePrice = usage.AveragePrice.Round(2)

	httpresp.OK(c, ServiceWithUsage{Service: *svc, Stats: usage})
}

func (h *ServiceHandler) Update(c *gin.Context) {
	svc, ok := h.find(c)
	if !ok {
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	if err := validateServiceValues(req.Price, req.Duration); err != nil {
		httperr.Respond(c, err, "service_update_failed")
		return
	}

	if req.Name != nil {
		taken, err := h.nameTaken(c, *req.Name, svc.ID)
		if err != nil {
			httperr.Respond(c, err, "service_update_failed")
			return
		}
		if taken {
			httperr.Respond(c, apperr.ValidationFields(map[string]string{"name": "has already been taken"}), "")
			return
		}
		svc.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.Duration != nil {
		svc.Duration = *req.Duration
	}
	if req.Category != nil {
		svc.Category = strings.ToLower(*req.Category)
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := h.db.WithContext(c.Request.Context()).Save(svc).Error; err != nil {
		httperr.Respond(c, err, "service_update_failed")
		return
	}

	writeAudit(h.audit, c, "service_updated", "service", &svc.ID, nil)
	httpresp.OK(c, svc)
}

// Destroy refuses while any appointment line books the service.
func (h *ServiceHandler) Destroy(c *gin.Context) {
	svc, ok := h.find(c)
	if !ok {
		return
	}

	db := h.db.WithContext(c.Request.Context())
	err := deleteUnreferenced(db, svc,
		db.Model(&models.AppointmentDetail{}).Where("service_id = ?", svc.ID),
		apperr.InvalidState(
			"service_has_appointments",
			"the service is booked by appointments and cannot be deleted",
		))
	if err != nil {
		httperr.Respond(c, err, "service_delete_failed")
		return
	}

	writeAudit(h.audit, c, "service_deleted", "service", &svc.ID, nil)
	httpresp.Message(c, "Service deleted.")
}

func (h *ServiceHandler) ToggleStatus(c *gin.Context) {
	svc, ok := h.find(c)
	if !ok {
		return
	}

	svc.IsActive = !svc.IsActive
	if err := h.db.WithContext(c.Request.Context()).
		Model(svc).
		Update("is_active", svc.IsActive).Error; err != nil {
		httperr.Respond(c, err, "service_update_failed")
		return
	}

	msg := "Service deactivated."
	if svc.IsActive {
		msg = "Service activated."
	}
	writeAudit(h.audit, c, "service_status_toggled", "service", &svc.ID, map[string]bool{"is_active": svc.IsActive})
	c.JSON(http.StatusOK, httpresp.DataResponse{Data: svc, Message: msg})
}

func (h *ServiceHandler) Popular(c *gin.Context) {
	items, err := h.popular.Execute(c.Request.Context(), queryInt(c, "limit", 5))
	if err != nil {
		httperr.Respond(c, err, "popular_services_failed")
		return
	}

	httpresp.List(c, items)
}
