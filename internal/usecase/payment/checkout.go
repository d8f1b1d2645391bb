package payment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/payment"
)

// CheckoutRequest describes an outstanding balance to collect online.
type CheckoutRequest struct {
	AppointmentID uint
	Title         string
	Amount        decimal.Decimal
}

type CheckoutLink struct {
	AppointmentID uint            `json:"appointment_id"`
	Amount        decimal.Decimal `json:"amount"`
	PreferenceID  string          `json:"preference_id"`
	InitPoint     string          `json:"init_point"`
}

// CheckoutProvider creates a hosted checkout for a balance.
type CheckoutProvider interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)
}

// CreateCheckout opens a hosted checkout for exactly the outstanding
// balance of a completed appointment. Nothing is written to the ledger.
type CreateCheckout struct {
	repo     domain.Repository
	provider CheckoutProvider
}

func NewCreateCheckout(repo domain.Repository, provider CheckoutProvider) *CreateCheckout {
	return &CreateCheckout{repo: repo, provider: provider}
}

func (uc *CreateCheckout) Execute(ctx context.Context, appointmentID uint) (*CheckoutLink, error) {
	if uc.provider == nil {
		return nil, apperr.InvalidState("checkout_disabled", "online checkout is not configured")
	}

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if isNotFound(err) {
		return nil, apperr.NotFound("appointment_not_found", "appointment not found")
	}
	if err != nil {
		return nil, err
	}

	if ap.Status != "completed" {
		return nil, apperr.InvalidState(
			"appointment_not_completed",
			"checkout is only available for completed appointments",
		)
	}

	ledger, err := uc.repo.ListLedger(ctx, ap.ID)
	if err != nil {
		return nil, err
	}

	balance := domain.Outstanding(ap.TotalAmount, ledger)
	if !balance.IsPositive() {
		return nil, apperr.InvalidState("nothing_to_collect", "the appointment has no outstanding balance")
	}

	return uc.provider.CreateCheckout(ctx, CheckoutRequest{
		AppointmentID: ap.ID,
		Title:         fmt.Sprintf("Appointment #%d", ap.ID),
		Amount:        balance,
	})
}
