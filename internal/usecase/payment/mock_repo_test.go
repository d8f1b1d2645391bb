package payment

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domain "github.com/peluqueria-anita/salon-api/internal/domain/payment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

type mockLedgerRepo struct {
	appts    map[uint]*models.Appointment
	payments map[uint]*models.Payment
	nextID   uint
	locked   []uint

	failStatusWrite bool
}

func newMockLedgerRepo() *mockLedgerRepo {
	return &mockLedgerRepo{
		appts:    map[uint]*models.Appointment{},
		payments: map[uint]*models.Payment{},
		nextID:   1,
	}
}

func (m *mockLedgerRepo) Transaction(_ context.Context, fn func(domain.Repository) error) error {
	appts := map[uint]models.Appointment{}
	for id, ap := range m.appts {
		appts[id] = *ap
	}
	pays := map[uint]models.Payment{}
	for id, p := range m.payments {
		pays[id] = *p
	}
	next := m.nextID

	if err := fn(m); err != nil {
		m.appts = map[uint]*models.Appointment{}
		for id, ap := range appts {
			cp := ap
			m.appts[id] = &cp
		}
		m.payments = map[uint]*models.Payment{}
		for id, p := range pays {
			cp := p
			m.payments[id] = &cp
		}
		m.nextID = next
		return err
	}
	return nil
}

func (m *mockLedgerRepo) LockAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	m.locked = append(m.locked, id)
	return m.GetAppointment(ctx, id)
}

func (m *mockLedgerRepo) GetAppointment(_ context.Context, id uint) (*models.Appointment, error) {
	if ap, ok := m.appts[id]; ok {
		cp := *ap
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLedgerRepo) SetPaymentStatus(_ context.Context, id uint, status string) error {
	if m.failStatusWrite {
		return errors.New("status write failed")
	}
	m.appts[id].PaymentStatus = status
	return nil
}

func (m *mockLedgerRepo) ListLedger(_ context.Context, appointmentID uint) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.payments {
		if p.AppointmentID == appointmentID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockLedgerRepo) GetPayment(_ context.Context, id uint) (*models.Payment, error) {
	if p, ok := m.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLedgerRepo) CreatePayment(_ context.Context, p *models.Payment) error {
	p.ID = m.nextID
	m.nextID++
	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m *mockLedgerRepo) UpdatePayment(_ context.Context, p *models.Payment) error {
	if _, ok := m.payments[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m *mockLedgerRepo) DeletePayment(_ context.Context, id uint) error {
	delete(m.payments, id)
	return nil
}

func (m *mockLedgerRepo) ListPayments(ctx context.Context, f domain.ListFilter) ([]models.Payment, int64, error) {
	var out []models.Payment
	for _, p := range m.payments {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.PaymentMethod != "" && p.PaymentMethod != f.PaymentMethod {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fixedNow() time.Time { return time.Unix(1717236000, 0).UTC() }

func repoWithAppointment(status, total string) *mockLedgerRepo {
	repo := newMockLedgerRepo()
	repo.appts[1] = &models.Appointment{ID: 1, Status: status, TotalAmount: dec(total), PaymentStatus: "pending"}
	return repo
}

func record(amount string) RecordPaymentInput {
	return RecordPaymentInput{
		AppointmentID: 1,
		Amount:        dec(amount),
		PaymentMethod: "cash",
		Status:        "completed",
	}
}
