package appointment

import (
	"context"
	"testing"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

func bookOne(t *testing.T, repo *mockApptRepo) *models.Appointment {
	t.Helper()
	ap, err := NewCreateAppointment(repo, nil, fixedNow).Execute(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return ap
}

func TestChangeStatus_FollowsMachine(t *testing.T) {
	repo := seededRepo()
	ap := bookOne(t, repo)
	uc := NewChangeStatus(repo, nil, fixedNow)
	ctx := context.Background()

	if _, err := uc.Execute(ctx, ap.ID, ChangeStatusInput{Status: "completed"}); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("pending -> completed must be rejected, got %v", err)
	}

	for _, st := range []string{"confirmed", "in_progress", "completed"} {
		got, err := uc.Execute(ctx, ap.ID, ChangeStatusInput{Status: st})
		if err != nil {
			t.Fatalf("-> %s: %v", st, err)
		}
		if got.Status != st {
			t.Fatalf("expected %s, got %s", st, got.Status)
		}
	}

	if repo.appts[ap.ID].CompletedAt == nil {
		t.Fatal("completed_at not stamped")
	}

	if _, err := uc.Execute(ctx, ap.ID, ChangeStatusInput{Status: "cancelled"}); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("terminal state must be final, got %v", err)
	}
}

func TestChangeStatus_CancelWithNotes(t *testing.T) {
	repo := seededRepo()
	ap := bookOne(t, repo)
	notes := "client called"

	got, err := NewChangeStatus(repo, nil, fixedNow).Execute(context.Background(), ap.ID, ChangeStatusInput{
		Status: "cancelled",
		Notes:  &notes,
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Notes != notes || got.CancelledAt == nil {
		t.Fatalf("unexpected appointment %+v", got)
	}
}

func TestChangeStatus_Errors(t *testing.T) {
	repo := seededRepo()
	uc := NewChangeStatus(repo, nil, fixedNow)

	if _, err := uc.Execute(context.Background(), 42, ChangeStatusInput{Status: "confirmed"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), 42, ChangeStatusInput{Status: "done"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
}

func TestReschedule_RecomputesEndWithoutAvailabilityCheck(t *testing.T) {
	repo := seededRepo()
	ap := bookOne(t, repo)

	other := validCreate()
	other.ClientID = 2
	other.StartTime = "15:00"
	if _, err := NewCreateAppointment(repo, nil, fixedNow).Execute(context.Background(), other); err != nil {
		t.Fatalf("create other: %v", err)
	}

	got, err := NewReschedule(repo, nil, fixedNow).Execute(context.Background(), ap.ID, RescheduleInput{
		Date:      "2024-06-01",
		StartTime: "15:00",
	})
	if err != nil {
		t.Fatalf("reschedule must not re-check availability: %v", err)
	}
	if got.StartTime != "15:00" || got.EndTime != "16:00" {
		t.Fatalf("unexpected times %s-%s", got.StartTime, got.EndTime)
	}
}

func TestReschedule_Validation(t *testing.T) {
	repo := seededRepo()
	ap := bookOne(t, repo)
	uc := NewReschedule(repo, nil, fixedNow)

	_, err := uc.Execute(context.Background(), ap.ID, RescheduleInput{Date: "2024-01-01", StartTime: "10:00"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	stylist := uint(99)
	_, err = uc.Execute(context.Background(), ap.ID, RescheduleInput{Date: "2024-06-02", StartTime: "10:00", StylistID: &stylist})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for unknown stylist, got %v", err)
	}
}

func TestUpdateAppointment_ReplacesServices(t *testing.T) {
	repo := seededRepo()
	ap := bookOne(t, repo)

	got, err := NewUpdateAppointment(repo, nil, fixedNow).Execute(context.Background(), ap.ID, UpdateAppointmentInput{
		Services: []ServiceLine{
			{ServiceID: 101, Price: dec("10"), Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !got.TotalAmount.Equal(dec("30")) || got.EndTime != "10:30" {
		t.Fatalf("unexpected totals %s end %s", got.TotalAmount, got.EndTime)
	}
	if len(got.Details) != 1 || got.Details[0].ServiceID != 101 {
		t.Fatalf("details not replaced: %+v", got.Details)
	}
}

func TestUpdateAppointment_MoveIntoTakenSlot(t *testing.T) {
	repo := seededRepo()
	ap := bookOne(t, repo)

	other := validCreate()
	other.StartTime = "12:00"
	if _, err := NewCreateAppointment(repo, nil, fixedNow).Execute(context.Background(), other); err != nil {
		t.Fatalf("create other: %v", err)
	}

	start := "12:00"
	_, err := NewUpdateAppointment(repo, nil, fixedNow).Execute(context.Background(), ap.ID, UpdateAppointmentInput{StartTime: &start})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if repo.appts[ap.ID].StartTime != "10:00" {
		t.Fatal("failed update must not persist")
	}

	// Keeping its own slot is not a conflict.
	same := "10:00"
	if _, err := NewUpdateAppointment(repo, nil, fixedNow).Execute(context.Background(), ap.ID, UpdateAppointmentInput{StartTime: &same}); err != nil {
		t.Fatalf("own slot: %v", err)
	}
}

func TestUpdateAppointment_StatusThroughMachine(t *testing.T) {
	repo := seededRepo()
	ap := bookOne(t, repo)
	st := "completed"

	_, err := NewUpdateAppointment(repo, nil, fixedNow).Execute(context.Background(), ap.ID, UpdateAppointmentInput{Status: &st})
	if !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestDeleteAppointment(t *testing.T) {
	repo := seededRepo()
	ap := bookOne(t, repo)
	uc := NewDeleteAppointment(repo, nil)

	repo.appts[ap.ID].Status = string(domain.StatusCompleted)
	if err := uc.Execute(context.Background(), nil, ap.ID); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state for completed, got %v", err)
	}

	repo.appts[ap.ID].Status = string(domain.StatusCancelled)
	if err := uc.Execute(context.Background(), nil, ap.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.appts[ap.ID]; ok {
		t.Fatal("appointment still stored")
	}
	if err := uc.Execute(context.Background(), nil, ap.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMarkNoShows(t *testing.T) {
	repo := seededRepo()
	repo.appts[1] = &models.Appointment{ID: 1, UserID: 10, AppointmentDate: "2024-05-30", StartTime: "10:00", Status: "pending"}
	repo.appts[2] = &models.Appointment{ID: 2, UserID: 10, AppointmentDate: "2024-05-30", StartTime: "11:00", Status: "completed"}
	repo.appts[3] = &models.Appointment{ID: 3, UserID: 10, AppointmentDate: "2024-05-31", StartTime: "10:00", Status: "confirmed"}
	repo.appts[4] = &models.Appointment{ID: 4, UserID: 10, AppointmentDate: "2024-05-29", StartTime: "10:00", Status: "confirmed"}

	n, err := NewMarkNoShows(repo, nil, fixedNow).Execute(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 marked, got %d", n)
	}
	if repo.appts[1].Status != "no_show" || repo.appts[4].Status != "no_show" {
		t.Fatal("overdue appointments not marked")
	}
	if repo.appts[2].Status != "completed" || repo.appts[3].Status != "confirmed" {
		t.Fatal("sweep touched appointments it should not")
	}
}

func TestWritersKeepReconciledPaymentStatus(t *testing.T) {
	notes := "bring the blue dye"
	cases := []struct {
		name string
		run  func(repo *mockApptRepo, id uint) error
	}{
		{"update notes", func(repo *mockApptRepo, id uint) error {
			_, err := NewUpdateAppointment(repo, nil, fixedNow).Execute(context.Background(), id, UpdateAppointmentInput{Notes: &notes})
			return err
		}},
		{"reschedule", func(repo *mockApptRepo, id uint) error {
			_, err := NewReschedule(repo, nil, fixedNow).Execute(context.Background(), id, RescheduleInput{Date: "2024-06-04", StartTime: "11:00"})
			return err
		}},
		{"change status", func(repo *mockApptRepo, id uint) error {
			_, err := NewChangeStatus(repo, nil, fixedNow).Execute(context.Background(), id, ChangeStatusInput{Status: "completed"})
			return err
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := seededRepo()
			ap := bookOne(t, repo)

			stored := repo.appts[ap.ID]
			stored.Status = string(domain.StatusInProgress)
			stored.PaymentStatus = "partial"
			repo.staleReads = map[uint]*models.Appointment{ap.ID: cloneAppt(stored)}

			// A payment reconciled the row after the stale snapshot was taken.
			stored.PaymentStatus = "paid"

			if err := tc.run(repo, ap.ID); err != nil {
				t.Fatalf("%s: %v", tc.name, err)
			}
			if got := repo.appts[ap.ID].PaymentStatus; got != "paid" {
				t.Fatalf("payment_status overwritten with %q", got)
			}
		})
	}
}
