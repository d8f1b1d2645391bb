package appointment

import (
	"reflect"
	"testing"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

func TestComputeEndTime(t *testing.T) {
	cases := []struct {
		start     string
		durations []int
		want      string
	}{
		{"10:00", []int{60}, "11:00"},
		{"09:30", []int{30, 45, 15}, "11:00"},
		{"10:00", nil, "10:00"},
		{"23:00", []int{60}, "24:00"},
	}

	for _, tc := range cases {
		got, err := ComputeEndTime(tc.start, tc.durations)
		if err != nil {
			t.Fatalf("%s %v: %v", tc.start, tc.durations, err)
		}
		if got != tc.want {
			t.Errorf("%s %v: expected %s, got %s", tc.start, tc.durations, tc.want, got)
		}
	}
}

func TestComputeEndTimeRejects(t *testing.T) {
	if _, err := ComputeEndTime("23:30", []int{45}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected overflow validation error, got %v", err)
	}
	if _, err := ComputeEndTime("9:00", []int{30}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected malformed clock validation error, got %v", err)
	}
}

func TestGenerateSlotsDefault(t *testing.T) {
	slots, err := GenerateSlots(DefaultWorkingHours, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(slots) != 18 {
		t.Fatalf("expected 18 slots, got %d", len(slots))
	}
	if slots[0] != "09:00" || slots[len(slots)-1] != "17:30" {
		t.Fatalf("unexpected bounds %s..%s", slots[0], slots[len(slots)-1])
	}
}

func TestGenerateSlotsExcludesExactStarts(t *testing.T) {
	wh := WorkingHours{Start: "09:00", End: "11:00", SlotMinutes: 30}

	// 10:15 is off-grid and removes nothing.
	slots, err := GenerateSlots(wh, []string{"09:30", "10:15"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	want := []string{"09:00", "10:00", "10:30"}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("expected %v, got %v", want, slots)
	}
}

func TestGenerateSlotsIsRestartable(t *testing.T) {
	wh := WorkingHours{Start: "09:00", End: "10:00", SlotMinutes: 20}
	a, _ := GenerateSlots(wh, []string{"09:20"})
	b, _ := GenerateSlots(wh, []string{"09:20"})
	if !reflect.DeepEqual(a, b) || !reflect.DeepEqual(a, []string{"09:00", "09:40"}) {
		t.Fatalf("unexpected slots %v / %v", a, b)
	}
}

func TestWorkingHoursValidate(t *testing.T) {
	err := WorkingHours{Start: "18:00", End: "09:00", SlotMinutes: 0}.Validate()
	ae, ok := apperr.As(err)
	if !ok {
		t.Fatalf("expected typed error, got %v", err)
	}
	if ae.Fields["end"] == "" || ae.Fields["slot_duration"] == "" {
		t.Fatalf("unexpected fields %v", ae.Fields)
	}
}

func TestFromModel(t *testing.T) {
	if _, ok := FromModel(&models.WorkingHours{Active: false}, DefaultWorkingHours); ok {
		t.Fatal("inactive weekday must not be bookable")
	}

	wh, ok := FromModel(&models.WorkingHours{Active: true, StartTime: "10:00"}, DefaultWorkingHours)
	if !ok || wh.Start != "10:00" || wh.End != "18:00" || wh.SlotMinutes != 30 {
		t.Fatalf("unexpected override %+v", wh)
	}

	if wh, ok := FromModel(nil, DefaultWorkingHours); !ok || wh != DefaultWorkingHours {
		t.Fatalf("expected default hours, got %+v", wh)
	}
}
