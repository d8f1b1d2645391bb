package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/audit"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/dto"
	"github.com/peluqueria-anita/salon-api/internal/httperr"
	"github.com/peluqueria-anita/salon-api/internal/httpresp"
	"github.com/peluqueria-anita/salon-api/internal/models"
	"github.com/peluqueria-anita/salon-api/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	list       *appointment.ListAppointments
	search     *appointment.SearchAppointments
	today      *appointment.TodayAppointments
	get        *appointment.GetAppointment
	create     *appointment.CreateAppointment
	update     *appointment.UpdateAppointment
	reschedule *appointment.Reschedule
	status     *appointment.ChangeStatus
	remove     *appointment.DeleteAppointment
	slots      *appointment.GetAvailability
	check      *appointment.CheckAvailability
}

func NewAppointmentHandler(
	repo domain.Repository,
	d *audit.Dispatcher,
	hours domain.WorkingHours,
	now func() time.Time,
) *AppointmentHandler {
	return &AppointmentHandler{
		list:       appointment.NewListAppointments(repo),
		search:     appointment.NewSearchAppointments(repo),
		today:      appointment.NewTodayAppointments(repo, now),
		get:        appointment.NewGetAppointment(repo),
		create:     appointment.NewCreateAppointment(repo, d, now),
		update:     appointment.NewUpdateAppointment(repo, d, now),
		reschedule: appointment.NewReschedule(repo, d, now),
		status:     appointment.NewChangeStatus(repo, d, now),
		remove:     appointment.NewDeleteAppointment(repo, d),
		slots:      appointment.NewGetAvailability(repo, hours, now),
		check:      appointment.NewCheckAvailability(repo),
	}
}

// ======================================================
// REQUESTS
// ======================================================

type ServiceLineRequest struct {
	ServiceID uint             `json:"service_id" binding:"required"`
	Price     *decimal.Decimal `json:"price"`
	Quantity  int              `json:"quantity" binding:"omitempty,min=1"`
}

type CreateAppointmentRequest struct {
	ClientID        uint                 `json:"client_id" binding:"required"`
	UserID          uint                 `json:"user_id" binding:"required"`
	AppointmentDate models.Date          `json:"appointment_date" binding:"required"`
	StartTime       string               `json:"start_time" binding:"required"`
	Notes           string               `json:"notes" binding:"max=1000"`
	Services        []ServiceLineRequest `json:"services" binding:"required,min=1,dive"`
}

type UpdateAppointmentRequest struct {
	ClientID        *uint                `json:"client_id"`
	UserID          *uint                `json:"user_id"`
	AppointmentDate *models.Date         `json:"appointment_date"`
	StartTime       *string              `json:"start_time"`
	Status          *string              `json:"status"`
	Notes           *string              `json:"notes" binding:"omitempty,max=1000"`
	Services        []ServiceLineRequest `json:"services" binding:"omitempty,dive"`
}

type ChangeStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes" binding:"omitempty,max=500"`
}

type CancelRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

type RescheduleRequest struct {
	AppointmentDate models.Date `json:"appointment_date" binding:"required"`
	StartTime       string      `json:"start_time" binding:"required"`
	UserID          *uint       `json:"user_id"`
	Notes           *string     `json:"notes" binding:"omitempty,max=500"`
}

// serviceLines converts request lines. A missing price is reported per line
// so the caller can answer 422 with every problem at once.
func serviceLines(in []ServiceLineRequest) ([]appointment.ServiceLine, error) {
	fields := map[string]string{}
	out := make([]appointment.ServiceLine, 0, len(in))

	for i, l := range in {
		if l.Price == nil {
			fields[fmt.Sprintf("services.%d.price", i)] = "is required"
			continue
		}
		qty := l.Quantity
		if qty == 0 {
			qty = 1
		}
		out = append(out, appointment.ServiceLine{
			ServiceID: l.ServiceID,
			Price:     *l.Price,
			Quantity:  qty,
		})
	}

	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}
	return out, nil
}

// ======================================================
// INDEX
// ======================================================

func (h *AppointmentHandler) Index(c *gin.Context) {
	dates, ok := queryDates(c, "date", "date_from", "date_to")
	if !ok {
		return
	}

	items, total, f, err := h.list.Execute(c.Request.Context(), domain.ListFilter{
		Date:      dates[0],
		DateFrom:  dates[1],
		DateTo:    dates[2],
		StylistID: queryUint(c, "user_id"),
		ClientID:  queryUint(c, "client_id"),
		Status:    c.Query("status"),
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      queryInt(c, "page", 1),
		PerPage:   queryInt(c, "per_page", 0),
	})
	if err != nil {
		httperr.Respond(c, err, "appointments_list_failed")
		return
	}

	httpresp.Page(c, items, total, f.Page, f.PerPage)
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Store(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	lines, err := serviceLines(req.Services)
	if err != nil {
		httperr.Respond(c, err, "invalid_request")
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), appointment.CreateAppointmentInput{
		ActorID:   actorID(c),
		ClientID:  req.ClientID,
		StylistID: req.UserID,
		Date:      req.AppointmentDate,
		StartTime: req.StartTime,
		Notes:     req.Notes,
		Services:  lines,
	})
	if err != nil {
		httperr.Respond(c, err, "appointment_create_failed")
		return
	}

	httpresp.Created(c, ap, "Appointment created.")
}

// ======================================================
// SHOW / UPDATE / DELETE
// ======================================================

func (h *AppointmentHandler) Show(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ap, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err, "appointment_fetch_failed")
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	in := appointment.UpdateAppointmentInput{
		ActorID:   actorID(c),
		ClientID:  req.ClientID,
		StylistID: req.UserID,
		Date:      req.AppointmentDate,
		StartTime: req.StartTime,
		Status:    req.Status,
		Notes:     req.Notes,
	}
	if req.Services != nil {
		lines, err := serviceLines(req.Services)
		if err != nil {
			httperr.Respond(c, err, "invalid_request")
			return
		}
		in.Services = lines
	}

	ap, err := h.update.Execute(c.Request.Context(), id, in)
	if err != nil {
		httperr.Respond(c, err, "appointment_update_failed")
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Destroy(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.remove.Execute(c.Request.Context(), actorID(c), id); err != nil {
		httperr.Respond(c, err, "appointment_delete_failed")
		return
	}

	httpresp.Message(c, "Appointment deleted.")
}

// ======================================================
// LISTINGS
// ======================================================

// Today lists the day of the stylist in user_id, or of the caller.
func (h *AppointmentHandler) Today(c *gin.Context) {
	dates, ok := queryDates(c, "date")
	if !ok {
		return
	}

	stylistID := queryUint(c, "user_id")
	if stylistID == 0 {
		if a := actorID(c); a != nil {
			stylistID = *a
		}
	}

	items, err := h.today.Execute(c.Request.Context(), stylistID, dates[0])
	if err != nil {
		httperr.Respond(c, err, "appointments_today_failed")
		return
	}

	httpresp.List(c, dto.NewAppointmentList(items))
}

func (h *AppointmentHandler) Search(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		term = c.Query("search")
	}

	items, total, f, err := h.search.Execute(c.Request.Context(), term, queryInt(c, "page", 1))
	if err != nil {
		httperr.Respond(c, err, "appointments_search_failed")
		return
	}

	httpresp.Page(c, items, total, f.Page, f.PerPage)
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *AppointmentHandler) AvailableSlots(c *gin.Context) {
	dates, ok := queryDates(c, "date")
	if !ok {
		return
	}

	res, err := h.slots.Execute(c.Request.Context(), domain.AvailabilityInput{
		StylistID: queryUint(c, "user_id"),
		Date:      dates[0],
	})
	if err != nil {
		httperr.Respond(c, err, "available_slots_failed")
		return
	}

	httpresp.OK(c, res)
}

func (h *AppointmentHandler) CheckAvailability(c *gin.Context) {
	dates, ok := queryDates(c, "appointment_date")
	if !ok {
		return
	}

	in := domain.CheckInput{
		StylistID: queryUint(c, "user_id"),
		Date:      dates[0],
		StartTime: c.Query("start_time"),
		ExcludeID: queryUint(c, "exclude_id"),
	}

	available, err := h.check.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.Respond(c, err, "check_availability_failed")
		return
	}

	httpresp.OK(c, gin.H{
		"available":        available,
		"user_id":          in.StylistID,
		"appointment_date": in.Date,
		"start_time":       in.StartTime,
	})
}

// ======================================================
// STATUS
// ======================================================

func (h *AppointmentHandler) changeStatus(c *gin.Context, status string, notes *string) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ap, err := h.status.Execute(c.Request.Context(), id, appointment.ChangeStatusInput{
		ActorID: actorID(c),
		Status:  status,
		Notes:   notes,
	})
	if err != nil {
		httperr.Respond(c, err, "appointment_status_failed")
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}
	h.changeStatus(c, req.Status, req.Notes)
}

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	h.changeStatus(c, string(domain.StatusConfirmed), nil)
}

func (h *AppointmentHandler) Start(c *gin.Context) {
	h.changeStatus(c, string(domain.StatusInProgress), nil)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.changeStatus(c, string(domain.StatusCompleted), nil)
}

func (h *AppointmentHandler) NoShow(c *gin.Context) {
	h.changeStatus(c, string(domain.StatusNoShow), nil)
}

// Cancel accepts an optional reason that replaces the notes.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	var req CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.Binding(c, err)
			return
		}
	}
	h.changeStatus(c, string(domain.StatusCancelled), req.Reason)
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	ap, err := h.reschedule.Execute(c.Request.Context(), id, appointment.RescheduleInput{
		ActorID:   actorID(c),
		Date:      req.AppointmentDate,
		StartTime: req.StartTime,
		StylistID: req.UserID,
		Notes:     req.Notes,
	})
	if err != nil {
		httperr.Respond(c, err, "appointment_reschedule_failed")
		return
	}

	httpresp.OK(c, ap)
}
