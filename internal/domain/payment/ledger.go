package payment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

// Status of a single ledger row.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

type Method string

const (
	MethodCash     Method = "cash"
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
	MethodOther    Method = "other"
)

// Standing is the appointment-level payment_status derived from the ledger.
type Standing string

const (
	StandingPending Standing = "pending"
	StandingPartial Standing = "partial"
	StandingPaid    Standing = "paid"
)

func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

func ValidMethod(s string) bool {
	switch Method(s) {
	case MethodCash, MethodCard, MethodTransfer, MethodOther:
		return true
	}
	return false
}

// TotalPaid sums the completed rows, refunds included as negatives.
func TotalPaid(ledger []models.Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range ledger {
		if Status(p.Status) == StatusCompleted {
			sum = sum.Add(p.Amount)
		}
	}
	return sum
}

// Reconcile derives the standing of an appointment from its ledger. It has
// no side effects and returns the same answer for the same input.
func Reconcile(total decimal.Decimal, ledger []models.Payment) Standing {
	paid := TotalPaid(ledger)
	switch {
	case paid.GreaterThanOrEqual(total):
		return StandingPaid
	case paid.IsPositive():
		return StandingPartial
	default:
		return StandingPending
	}
}

func Outstanding(total decimal.Decimal, ledger []models.Payment) decimal.Decimal {
	return total.Sub(TotalPaid(ledger))
}

// Apply reconciles ap against ledger and stores the result on ap.
func Apply(ap *models.Appointment, ledger []models.Payment) Standing {
	st := Reconcile(ap.TotalAmount, ledger)
	ap.PaymentStatus = string(st)
	return st
}

// Without returns ledger minus the row with the given id.
func Without(ledger []models.Payment, id uint) []models.Payment {
	out := make([]models.Payment, 0, len(ledger))
	for _, p := range ledger {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// CanRecord guards a new ledger entry against the appointment state and
// the outstanding balance.
func CanRecord(ap *models.Appointment, ledger []models.Payment, amount decimal.Decimal) error {
	if ap.Status != "completed" {
		return apperr.InvalidState(
			"appointment_not_completed",
			"payments can only be recorded for completed appointments",
		)
	}
	return CheckBalance(ap, ledger, amount)
}

func CheckBalance(ap *models.Appointment, ledger []models.Payment, amount decimal.Decimal) error {
	remaining := Outstanding(ap.TotalAmount, ledger)
	if amount.GreaterThan(remaining) {
		return apperr.Overpayment(
			"amount_exceeds_balance",
			fmt.Sprintf("amount exceeds the outstanding balance: %s", remaining.StringFixed(2)),
		)
	}
	return nil
}

// RefundEntry builds the negative ledger row for a refund of original and
// marks original as refunded. A nil amount refunds the whole payment.
func RefundEntry(
	original *models.Payment,
	amount *decimal.Decimal,
	reason string,
	now time.Time,
) (*models.Payment, error) {

	if Status(original.Status) != StatusCompleted {
		return nil, apperr.InvalidState(
			"payment_not_completed",
			"only completed payments can be refunded",
		)
	}

	refund := original.Amount
	if amount != nil {
		refund = *amount
	}
	if !refund.IsPositive() {
		return nil, apperr.ValidationFields(map[string]string{"amount": "must be greater than zero"})
	}
	if refund.GreaterThan(original.Amount) {
		return nil, apperr.ValidationFields(map[string]string{
			"amount": fmt.Sprintf("must not exceed %s", original.Amount.StringFixed(2)),
		})
	}

	entry := &models.Payment{
		AppointmentID: original.AppointmentID,
		Amount:        refund.Neg(),
		PaymentMethod: original.PaymentMethod,
		Status:        string(StatusCompleted),
		TransactionID: fmt.Sprintf("REFUND-%d-%d", original.ID, now.Unix()),
		Notes:         "Refund: " + reason,
		PaymentDate:   &now,
	}

	original.Status = string(StatusRefunded)
	if original.Notes != "" {
		original.Notes += " | "
	}
	original.Notes += "Refunded: " + reason

	return entry, nil
}
