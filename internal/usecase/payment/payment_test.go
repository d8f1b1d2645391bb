package payment

import (
	"context"
	"testing"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/payment"
)

func TestRecordPayment_PartialOverpaymentPaid(t *testing.T) {
	repo := repoWithAppointment("completed", "100.00")
	uc := NewRecordPayment(repo, nil, fixedNow)
	ctx := context.Background()

	if _, err := uc.Execute(ctx, record("60.00")); err != nil {
		t.Fatalf("record 60: %v", err)
	}
	if repo.appts[1].PaymentStatus != "partial" {
		t.Fatalf("expected partial, got %s", repo.appts[1].PaymentStatus)
	}

	summary, err := NewGetSummary(repo).Execute(ctx, 1)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.PendingAmount.Equal(dec("40")) {
		t.Fatalf("expected outstanding 40, got %s", summary.PendingAmount)
	}

	_, err = uc.Execute(ctx, record("50.00"))
	if !apperr.Is(err, apperr.KindOverpayment) {
		t.Fatalf("expected overpayment, got %v", err)
	}
	if len(repo.payments) != 1 || repo.appts[1].PaymentStatus != "partial" {
		t.Fatal("overpayment must leave the ledger and status unchanged")
	}

	if _, err := uc.Execute(ctx, record("40.00")); err != nil {
		t.Fatalf("record 40: %v", err)
	}
	if repo.appts[1].PaymentStatus != "paid" {
		t.Fatalf("expected paid, got %s", repo.appts[1].PaymentStatus)
	}
	if len(repo.locked) != 3 {
		t.Fatalf("every record must lock the appointment, locked %v", repo.locked)
	}
}

func TestRecordPayment_RequiresCompletedAppointment(t *testing.T) {
	repo := repoWithAppointment("confirmed", "100.00")
	_, err := NewRecordPayment(repo, nil, fixedNow).Execute(context.Background(), record("10"))
	if !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	if len(repo.payments) != 0 {
		t.Fatal("no payment may be written")
	}
}

func TestRecordPayment_AssignsTransactionID(t *testing.T) {
	repo := repoWithAppointment("completed", "100.00")
	p, err := NewRecordPayment(repo, nil, fixedNow).Execute(context.Background(), record("10"))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(p.TransactionID) != 36 {
		t.Fatalf("expected a uuid transaction id, got %q", p.TransactionID)
	}

	in := record("10")
	in.TransactionID = "POS-1"
	p, err = NewRecordPayment(repo, nil, fixedNow).Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if p.TransactionID != "POS-1" {
		t.Fatalf("caller id must be kept, got %q", p.TransactionID)
	}
}

func TestRecordPayment_Validation(t *testing.T) {
	repo := repoWithAppointment("completed", "100.00")
	uc := NewRecordPayment(repo, nil, fixedNow)

	in := record("-5")
	in.PaymentMethod = "bitcoin"
	in.Status = "done"
	_, err := uc.Execute(context.Background(), in)
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.KindValidation || len(ae.Fields) != 3 {
		t.Fatalf("expected three field errors, got %v", err)
	}

	in = record("5")
	in.AppointmentID = 77
	_, err = uc.Execute(context.Background(), in)
	ae, ok = apperr.As(err)
	if !ok || ae.Fields["appointment_id"] == "" {
		t.Fatalf("unknown appointment in body must be a validation error, got %v", err)
	}
}

func TestRecordPayment_RollsBackWhenReconcileFails(t *testing.T) {
	repo := repoWithAppointment("completed", "100.00")
	repo.failStatusWrite = true

	if _, err := NewRecordPayment(repo, nil, fixedNow).Execute(context.Background(), record("10")); err == nil {
		t.Fatal("expected failure")
	}
	if len(repo.payments) != 0 {
		t.Fatal("payment row must be rolled back")
	}
}

func TestRefundPayment_Scenario(t *testing.T) {
	repo := repoWithAppointment("completed", "100.00")
	rec := NewRecordPayment(repo, nil, fixedNow)
	ctx := context.Background()

	if _, err := rec.Execute(ctx, record("60")); err != nil {
		t.Fatalf("record 60: %v", err)
	}
	second, err := rec.Execute(ctx, record("40"))
	if err != nil {
		t.Fatalf("record 40: %v", err)
	}
	if repo.appts[1].PaymentStatus != "paid" {
		t.Fatalf("expected paid before refund, got %s", repo.appts[1].PaymentStatus)
	}

	res, err := NewRefundPayment(repo, nil, fixedNow).Execute(ctx, second.ID, RefundInput{Reason: "double charge"})
	if err != nil {
		t.Fatalf("refund: %v", err)
	}

	if !res.Refund.Amount.Equal(dec("-40")) || res.Refund.Status != "completed" {
		t.Fatalf("unexpected refund row %+v", res.Refund)
	}
	if repo.payments[second.ID].Status != "refunded" {
		t.Fatalf("original must be refunded, got %s", repo.payments[second.ID].Status)
	}
	if repo.appts[1].PaymentStatus != "partial" {
		t.Fatalf("expected status to drop to partial, got %s", repo.appts[1].PaymentStatus)
	}

	_, err = NewRefundPayment(repo, nil, fixedNow).Execute(ctx, second.ID, RefundInput{Reason: "again"})
	if !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("refunding a refunded payment must fail, got %v", err)
	}
}

func TestRefundPayment_PartialAmount(t *testing.T) {
	repo := repoWithAppointment("completed", "100.00")
	p, err := NewRecordPayment(repo, nil, fixedNow).Execute(context.Background(), record("100"))
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	tooMuch := dec("150")
	_, err = NewRefundPayment(repo, nil, fixedNow).Execute(context.Background(), p.ID, RefundInput{Reason: "x", Amount: &tooMuch})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
	if len(repo.payments) != 1 || repo.payments[p.ID].Status != "completed" {
		t.Fatal("failed refund must not write")
	}

	part := dec("30")
	res, err := NewRefundPayment(repo, nil, fixedNow).Execute(context.Background(), p.ID, RefundInput{Reason: "x", Amount: &part})
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if !res.Refund.Amount.Equal(dec("-30")) {
		t.Fatalf("unexpected refund %s", res.Refund.Amount)
	}
	if _, err := NewRefundPayment(repo, nil, fixedNow).Execute(context.Background(), 999, RefundInput{Reason: "x"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdatePayment_ReconcilesAndGuardsBalance(t *testing.T) {
	repo := repoWithAppointment("completed", "100.00")
	ctx := context.Background()
	p, err := NewRecordPayment(repo, nil, fixedNow).Execute(ctx, record("60"))
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	uc := NewUpdatePayment(repo, nil)

	amount := dec("120")
	if _, err := uc.Execute(ctx, p.ID, UpdatePaymentInput{Amount: &amount}); !apperr.Is(err, apperr.KindOverpayment) {
		t.Fatalf("expected overpayment, got %v", err)
	}

	amount = dec("100")
	if _, err := uc.Execute(ctx, p.ID, UpdatePaymentInput{Amount: &amount}); err != nil {
		t.Fatalf("update to 100: %v", err)
	}
	if repo.appts[1].PaymentStatus != "paid" {
		t.Fatalf("expected paid, got %s", repo.appts[1].PaymentStatus)
	}

	failed := string(domain.StatusFailed)
	if _, err := uc.Execute(ctx, p.ID, UpdatePaymentInput{Status: &failed}); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if repo.appts[1].PaymentStatus != "pending" {
		t.Fatalf("expected pending, got %s", repo.appts[1].PaymentStatus)
	}
}

func TestDeletePayment_Reconciles(t *testing.T) {
	repo := repoWithAppointment("completed", "100.00")
	ctx := context.Background()
	p, err := NewRecordPayment(repo, nil, fixedNow).Execute(ctx, record("100"))
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := NewDeletePayment(repo, nil).Execute(ctx, nil, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.payments) != 0 || repo.appts[1].PaymentStatus != "pending" {
		t.Fatalf("unexpected state %+v", repo.appts[1])
	}
	if err := NewDeletePayment(repo, nil).Execute(ctx, nil, p.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListPayments_Defaults(t *testing.T) {
	_, _, f, err := NewListPayments(newMockLedgerRepo()).Execute(context.Background(), domain.ListFilter{SortBy: "nope"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if f.SortBy != "created_at" || f.SortOrder != "desc" || f.PerPage != 10 || f.Page != 1 {
		t.Fatalf("unexpected filter %+v", f)
	}
}
