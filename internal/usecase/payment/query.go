package payment

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/payment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

type Summary struct {
	AppointmentID uint             `json:"appointment_id"`
	TotalAmount   decimal.Decimal  `json:"total_amount"`
	TotalPaid     decimal.Decimal  `json:"total_paid"`
	PendingAmount decimal.Decimal  `json:"pending_amount"`
	PaymentStatus string           `json:"payment_status"`
	Payments      []models.Payment `json:"payments"`
}

type GetSummary struct {
	repo domain.Repository
}

func NewGetSummary(repo domain.Repository) *GetSummary {
	return &GetSummary{repo: repo}
}

func (uc *GetSummary) Execute(ctx context.Context, appointmentID uint) (*Summary, error) {
	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if isNotFound(err) {
		return nil, apperr.NotFound("appointment_not_found", "appointment not found")
	}
	if err != nil {
		return nil, err
	}

	ledger, err := uc.repo.ListLedger(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	return &Summary{
		AppointmentID: ap.ID,
		TotalAmount:   ap.TotalAmount,
		TotalPaid:     domain.TotalPaid(ledger),
		PendingAmount: domain.Outstanding(ap.TotalAmount, ledger),
		PaymentStatus: ap.PaymentStatus,
		Payments:      ledger,
	}, nil
}

var sortColumns = map[string]bool{
	"created_at":     true,
	"amount":         true,
	"payment_date":   true,
	"status":         true,
	"payment_method": true,
}

type ListPayments struct {
	repo domain.Repository
}

func NewListPayments(repo domain.Repository) *ListPayments {
	return &ListPayments{repo: repo}
}

func (uc *ListPayments) Execute(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Payment, int64, domain.ListFilter, error) {

	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PerPage <= 0 {
		f.PerPage = 10
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}
	if !sortColumns[f.SortBy] {
		f.SortBy = "created_at"
	}
	if strings.ToLower(f.SortOrder) == "asc" {
		f.SortOrder = "asc"
	} else {
		f.SortOrder = "desc"
	}

	items, total, err := uc.repo.ListPayments(ctx, f)
	return items, total, f, err
}

type GetPayment struct {
	repo domain.Repository
}

func NewGetPayment(repo domain.Repository) *GetPayment {
	return &GetPayment{repo: repo}
}

func (uc *GetPayment) Execute(ctx context.Context, id uint) (*models.Payment, error) {
	return loadPayment(ctx, uc.repo, id)
}
