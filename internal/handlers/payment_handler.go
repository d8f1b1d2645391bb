package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/peluqueria-anita/salon-api/internal/audit"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/payment"
	"github.com/peluqueria-anita/salon-api/internal/httperr"
	"github.com/peluqueria-anita/salon-api/internal/httpresp"
	"github.com/peluqueria-anita/salon-api/internal/usecase/payment"
)

type PaymentHandler struct {
	list     *payment.ListPayments
	get      *payment.GetPayment
	record   *payment.RecordPayment
	update   *payment.UpdatePayment
	remove   *payment.DeletePayment
	refund   *payment.RefundPayment
	summary  *payment.GetSummary
	checkout *payment.CreateCheckout
}

// NewPaymentHandler wires the ledger use cases. provider may be nil, in
// which case checkout answers checkout_disabled.
func NewPaymentHandler(
	repo domain.Repository,
	d *audit.Dispatcher,
	provider payment.CheckoutProvider,
	now func() time.Time,
) *PaymentHandler {
	return &PaymentHandler{
		list:     payment.NewListPayments(repo),
		get:      payment.NewGetPayment(repo),
		record:   payment.NewRecordPayment(repo, d, now),
		update:   payment.NewUpdatePayment(repo, d),
		remove:   payment.NewDeletePayment(repo, d),
		refund:   payment.NewRefundPayment(repo, d, now),
		summary:  payment.NewGetSummary(repo),
		checkout: payment.NewCreateCheckout(repo, provider),
	}
}

// ======================================================
// REQUESTS
// ======================================================

type RecordPaymentRequest struct {
	AppointmentID uint            `json:"appointment_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id"`
	Notes         string          `json:"notes"`
}

type UpdatePaymentRequest struct {
	Amount        *decimal.Decimal `json:"amount"`
	PaymentMethod *string          `json:"payment_method"`
	Status        *string          `json:"status"`
	TransactionID *string          `json:"transaction_id"`
	Notes         *string          `json:"notes"`
}

type RefundRequest struct {
	Reason string           `json:"reason" binding:"required"`
	Amount *decimal.Decimal `json:"amount"`
}

// ======================================================
// CRUD
// ======================================================

func (h *PaymentHandler) Index(c *gin.Context) {
	dates, ok := queryDates(c, "date_from", "date_to")
	if !ok {
		return
	}

	items, total, f, err := h.list.Execute(c.Request.Context(), domain.ListFilter{
		Status:        c.Query("status"),
		PaymentMethod: c.Query("payment_method"),
		DateFrom:      dates[0],
		DateTo:        dates[1],
		Search:        strings.TrimSpace(c.Query("search")),
		AppointmentID: queryUint(c, "appointment_id"),
		SortBy:        c.Query("sort_by"),
		SortOrder:     c.Query("sort_order"),
		Page:          queryInt(c, "page", 1),
		PerPage:       queryInt(c, "per_page", 0),
	})
	if err != nil {
		httperr.Respond(c, err, "payments_list_failed")
		return
	}

	httpresp.Page(c, items, total, f.Page, f.PerPage)
}

func (h *PaymentHandler) Store(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	p, err := h.record.Execute(c.Request.Context(), payment.RecordPaymentInput{
		ActorID:       actorID(c),
		AppointmentID: req.AppointmentID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Status:        req.Status,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
	})
	if err != nil {
		httperr.Respond(c, err, "payment_create_failed")
		return
	}

	httpresp.Created(c, p, "Payment recorded.")
}

func (h *PaymentHandler) Show(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	p, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err, "payment_fetch_failed")
		return
	}

	httpresp.OK(c, p)
}

func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	p, err := h.update.Execute(c.Request.Context(), id, payment.UpdatePaymentInput{
		ActorID:       actorID(c),
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Status:        req.Status,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
	})
	if err != nil {
		httperr.Respond(c, err, "payment_update_failed")
		return
	}

	httpresp.OK(c, p)
}

func (h *PaymentHandler) Destroy(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.remove.Execute(c.Request.Context(), actorID(c), id); err != nil {
		httperr.Respond(c, err, "payment_delete_failed")
		return
	}

	httpresp.Message(c, "Payment deleted.")
}

// ======================================================
// LEDGER
// ======================================================

func (h *PaymentHandler) Summary(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	s, err := h.summary.Execute(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err, "payment_summary_failed")
		return
	}

	httpresp.OK(c, s)
}

func (h *PaymentHandler) Refund(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	res, err := h.refund.Execute(c.Request.Context(), id, payment.RefundInput{
		ActorID: actorID(c),
		Reason:  req.Reason,
		Amount:  req.Amount,
	})
	if err != nil {
		httperr.Respond(c, err, "payment_refund_failed")
		return
	}

	httpresp.OK(c, res)
}

// Checkout opens a hosted checkout for the appointment balance.
func (h *PaymentHandler) Checkout(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	link, err := h.checkout.Execute(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err, "checkout_failed")
		return
	}

	httpresp.Created(c, link, "Checkout created.")
}
