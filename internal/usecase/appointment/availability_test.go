package appointment

import (
	"context"
	"reflect"
	"testing"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

func TestGetAvailability_RemovesBookedStarts(t *testing.T) {
	repo := seededRepo()
	repo.appts[1] = &models.Appointment{ID: 1, UserID: 10, AppointmentDate: "2024-06-01", StartTime: "09:30", Status: "confirmed"}
	repo.appts[2] = &models.Appointment{ID: 2, UserID: 10, AppointmentDate: "2024-06-01", StartTime: "10:00", Status: "cancelled"}

	uc := NewGetAvailability(repo, domain.WorkingHours{Start: "09:00", End: "11:00", SlotMinutes: 30}, fixedNow)
	res, err := uc.Execute(context.Background(), domain.AvailabilityInput{StylistID: 10, Date: "2024-06-01"})
	if err != nil {
		t.Fatalf("availability: %v", err)
	}

	want := []string{"09:00", "10:00", "10:30"}
	if !reflect.DeepEqual(res.AvailableSlots, want) {
		t.Fatalf("expected %v, got %v", want, res.AvailableSlots)
	}
}

func TestGetAvailability_WeekdayOverride(t *testing.T) {
	repo := seededRepo()
	// 2024-06-01 is a Saturday.
	repo.hours[[2]uint{10, 6}] = &models.WorkingHours{UserID: 10, Weekday: 6, Active: true, StartTime: "10:00", EndTime: "12:00", SlotMinutes: 60}
	repo.hours[[2]uint{12, 6}] = &models.WorkingHours{UserID: 12, Weekday: 6, Active: false}

	uc := NewGetAvailability(repo, domain.DefaultWorkingHours, fixedNow)

	res, err := uc.Execute(context.Background(), domain.AvailabilityInput{StylistID: 10, Date: "2024-06-01"})
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if !reflect.DeepEqual(res.AvailableSlots, []string{"10:00", "11:00"}) {
		t.Fatalf("unexpected slots %v", res.AvailableSlots)
	}

	res, err = uc.Execute(context.Background(), domain.AvailabilityInput{StylistID: 12, Date: "2024-06-01"})
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(res.AvailableSlots) != 0 {
		t.Fatalf("day off should have no slots, got %v", res.AvailableSlots)
	}
}

func TestGetAvailability_QueryOverrideWins(t *testing.T) {
	uc := NewGetAvailability(seededRepo(), domain.DefaultWorkingHours, fixedNow)
	res, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		StylistID: 10,
		Date:      "2024-06-01",
		Hours:     &domain.WorkingHours{Start: "17:00", End: "18:00", SlotMinutes: 15},
	})
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(res.AvailableSlots) != 4 || res.AvailableSlots[3] != "17:45" {
		t.Fatalf("unexpected slots %v", res.AvailableSlots)
	}
}

func TestGetAvailability_Validation(t *testing.T) {
	uc := NewGetAvailability(seededRepo(), domain.DefaultWorkingHours, fixedNow)

	if _, err := uc.Execute(context.Background(), domain.AvailabilityInput{StylistID: 99, Date: "2024-06-01"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation for unknown stylist, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), domain.AvailabilityInput{StylistID: 10, Date: "2024-05-01"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation for past date, got %v", err)
	}
}

func TestCheckAvailability_ExactStartOnly(t *testing.T) {
	repo := seededRepo()
	repo.appts[1] = &models.Appointment{ID: 1, UserID: 10, AppointmentDate: "2024-06-01", StartTime: "10:00", EndTime: "11:00", Status: "pending"}
	uc := NewCheckAvailability(repo)
	ctx := context.Background()

	free, err := uc.Execute(ctx, domain.CheckInput{StylistID: 10, Date: "2024-06-01", StartTime: "10:00"})
	if err != nil || free {
		t.Fatalf("10:00 must be taken, got free=%v err=%v", free, err)
	}

	free, err = uc.Execute(ctx, domain.CheckInput{StylistID: 10, Date: "2024-06-01", StartTime: "10:15"})
	if err != nil || !free {
		t.Fatalf("10:15 must be free, got free=%v err=%v", free, err)
	}

	free, err = uc.Execute(ctx, domain.CheckInput{StylistID: 10, Date: "2024-06-01", StartTime: "10:00", ExcludeID: 1})
	if err != nil || !free {
		t.Fatalf("excluded row must not count, got free=%v err=%v", free, err)
	}
}

func TestSearchAndToday(t *testing.T) {
	repo := seededRepo()
	repo.appts[1] = &models.Appointment{ID: 1, ClientID: 1, UserID: 10, AppointmentDate: "2024-05-31", StartTime: "15:00", Status: "pending"}
	repo.appts[2] = &models.Appointment{ID: 2, ClientID: 2, UserID: 10, AppointmentDate: "2024-05-31", StartTime: "09:00", Status: "pending"}

	items, total, f, err := NewSearchAppointments(repo).Execute(context.Background(), "  ana ", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 || items[0].ID != 1 || f.PerPage != 15 || f.SortOrder != "desc" {
		t.Fatalf("unexpected search result %v %d %+v", items, total, f)
	}

	if _, _, _, err := NewSearchAppointments(repo).Execute(context.Background(), " ", 1); !apperr.HasCode(err, "search_term_required") {
		t.Fatalf("expected search_term_required, got %v", err)
	}

	today, err := NewTodayAppointments(repo, fixedNow).Execute(context.Background(), 10, "")
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if len(today) != 2 || today[0].StartTime != "09:00" {
		t.Fatalf("unexpected today list %+v", today)
	}
}

func TestNormalizeFilter(t *testing.T) {
	f := NormalizeFilter(domain.ListFilter{PerPage: 1000, SortBy: "drop table", SortOrder: "DESC"})
	if f.Page != 1 || f.PerPage != 100 || f.SortBy != "appointment_date" || f.SortOrder != "desc" {
		t.Fatalf("unexpected filter %+v", f)
	}
}
