package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

// DateRange is an inclusive range of civil dates.
type DateRange struct {
	From models.Date `json:"start"`
	To   models.Date `json:"end"`
}

// MaxRangeDays caps a requested range, both ends included.
const MaxRangeDays = 366

func NewRange(from, to models.Date) (DateRange, error) {
	start, err := from.In(time.UTC)
	if err != nil {
		return DateRange{}, apperr.ValidationFields(map[string]string{"start_date": "must be YYYY-MM-DD"})
	}
	end, err := to.In(time.UTC)
	if err != nil {
		return DateRange{}, apperr.ValidationFields(map[string]string{"end_date": "must be YYYY-MM-DD"})
	}

	if end.Before(start) {
		return DateRange{}, apperr.ValidationFields(map[string]string{"end_date": "must not be before start_date"})
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > MaxRangeDays {
		return DateRange{}, apperr.ValidationFields(map[string]string{
			"end_date": fmt.Sprintf("range must not exceed %d days", MaxRangeDays),
		})
	}
	return DateRange{From: from, To: to}, nil
}

func (r DateRange) Contains(d models.Date) bool {
	return !d.Before(r.From) && !r.To.Before(d)
}

// Days lists every date of r in order.
func (r DateRange) Days() []models.Date {
	var out []models.Date
	for d := r.From; !r.To.Before(d); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

func (r DateRange) Len() int {
	return len(r.Days())
}

// PeriodRange resolves day|week|month|year around anchor. Weeks run Monday
// to Sunday; anything unknown falls back to month.
func PeriodRange(period string, anchor time.Time) (DateRange, string) {
	y, m, d := anchor.Date()
	loc := anchor.Location()

	switch period {
	case "day":
		day := models.NewDate(anchor)
		return DateRange{From: day, To: day}, period
	case "week":
		offset := (int(anchor.Weekday()) + 6) % 7
		start := time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
		return DateRange{From: models.NewDate(start), To: models.NewDate(start.AddDate(0, 0, 6))}, period
	case "year":
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		end := time.Date(y, time.December, 31, 0, 0, 0, 0, loc)
		return DateRange{From: models.NewDate(start), To: models.NewDate(end)}, period
	default:
		return MonthRange(y, m, loc), "month"
	}
}

func MonthRange(year int, month time.Month, loc *time.Location) DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, -1)
	return DateRange{From: models.NewDate(start), To: models.NewDate(end)}
}

// Rate is part/total as a percentage with two decimals; 0 when total is 0.
func Rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round(float64(part)/float64(total)*100, 2)
}

func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
