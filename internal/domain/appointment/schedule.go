package appointment

import (
	"fmt"
	"time"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

const minutesPerDay = 24 * 60

// WorkingHours is the bookable window of one stylist day.
type WorkingHours struct {
	Start       string
	End         string
	SlotMinutes int
}

var DefaultWorkingHours = WorkingHours{Start: "09:00", End: "18:00", SlotMinutes: 30}

func (wh WorkingHours) Validate() error {
	fields := map[string]string{}

	start, err := ParseClock(wh.Start)
	if err != nil {
		fields["start"] = "must be HH:MM"
	}
	end, err := ParseClock(wh.End)
	if err != nil {
		fields["end"] = "must be HH:MM"
	}
	if len(fields) == 0 && end <= start {
		fields["end"] = "must be after start"
	}
	if wh.SlotMinutes <= 0 {
		fields["slot_duration"] = "must be a positive number of minutes"
	}

	if len(fields) > 0 {
		return apperr.ValidationFields(fields)
	}
	return nil
}

// FromModel resolves the stylist override for a weekday. ok is false when
// the stylist does not work that day.
func FromModel(wh *models.WorkingHours, fallback WorkingHours) (out WorkingHours, ok bool) {
	if wh == nil {
		return fallback, true
	}
	if !wh.Active {
		return WorkingHours{}, false
	}

	out = fallback
	if wh.StartTime != "" {
		out.Start = wh.StartTime
	}
	if wh.EndTime != "" {
		out.End = wh.EndTime
	}
	if wh.SlotMinutes > 0 {
		out.SlotMinutes = wh.SlotMinutes
	}
	return out, true
}

// ParseClock converts "HH:MM" (24h) into minutes after midnight.
func ParseClock(hm string) (int, error) {
	t, err := time.Parse("15:04", hm)
	if err != nil || len(hm) != 5 {
		return 0, fmt.Errorf("invalid clock %q", hm)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ComputeEndTime adds every service line's duration to start. Lines run
// back to back; quantity never stretches a line.
func ComputeEndTime(start string, durations []int) (string, error) {
	m, err := ParseClock(start)
	if err != nil {
		return "", apperr.ValidationFields(map[string]string{"start_time": "must be HH:MM"})
	}

	for _, d := range durations {
		m += d
	}

	if m > minutesPerDay {
		return "", apperr.Validation("end_time_overflow", "services run past midnight")
	}
	if m == minutesPerDay {
		return "24:00", nil
	}
	return FormatClock(m), nil
}

// GenerateSlots lists every boundary in [Start, End) stepped by SlotMinutes
// that is not exactly a booked start time.
func GenerateSlots(wh WorkingHours, booked []string) ([]string, error) {
	if err := wh.Validate(); err != nil {
		return nil, err
	}

	start, _ := ParseClock(wh.Start)
	end, _ := ParseClock(wh.End)

	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}

	slots := make([]string, 0, (end-start)/wh.SlotMinutes+1)
	for cur := start; cur < end; cur += wh.SlotMinutes {
		hm := FormatClock(cur)
		if _, ok := taken[hm]; ok {
			continue
		}
		slots = append(slots, hm)
	}
	return slots, nil
}
