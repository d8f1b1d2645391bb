package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
	searchPerPage  = 15
)

var sortColumns = map[string]bool{
	"appointment_date": true,
	"start_time":       true,
	"created_at":       true,
	"status":           true,
	"total_amount":     true,
}

// NormalizeFilter applies paging and ordering defaults.
func NormalizeFilter(f domain.ListFilter) domain.ListFilter {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PerPage <= 0 {
		f.PerPage = defaultPerPage
	}
	if f.PerPage > maxPerPage {
		f.PerPage = maxPerPage
	}
	if !sortColumns[f.SortBy] {
		f.SortBy = "appointment_date"
	}
	if o := strings.ToLower(f.SortOrder); o == "desc" {
		f.SortOrder = "desc"
	} else {
		f.SortOrder = "asc"
	}
	return f
}

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

func (uc *ListAppointments) Execute(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Appointment, int64, domain.ListFilter, error) {
	f = NormalizeFilter(f)
	items, total, err := uc.repo.ListAppointments(ctx, f)
	return items, total, f, err
}

// SearchAppointments finds appointments whose client name, email or phone
// contains the term, newest first.
type SearchAppointments struct {
	repo domain.Repository
}

func NewSearchAppointments(repo domain.Repository) *SearchAppointments {
	return &SearchAppointments{repo: repo}
}

func (uc *SearchAppointments) Execute(
	ctx context.Context,
	term string,
	page int,
) ([]models.Appointment, int64, domain.ListFilter, error) {

	term = strings.TrimSpace(term)
	if term == "" {
		return nil, 0, domain.ListFilter{}, apperr.Validation("search_term_required", "a search term is required")
	}

	f := NormalizeFilter(domain.ListFilter{
		Search:    term,
		SortBy:    "appointment_date",
		SortOrder: "desc",
		Page:      page,
		PerPage:   searchPerPage,
	})
	items, total, err := uc.repo.ListAppointments(ctx, f)
	return items, total, f, err
}

type TodayAppointments struct {
	repo domain.Repository
	now  func() time.Time
}

func NewTodayAppointments(repo domain.Repository, now func() time.Time) *TodayAppointments {
	return &TodayAppointments{repo: repo, now: now}
}

// Execute lists a stylist's day ordered by start time. An empty date means
// today in the salon timezone.
func (uc *TodayAppointments) Execute(
	ctx context.Context,
	stylistID uint,
	date models.Date,
) ([]models.Appointment, error) {
	if date.IsZero() {
		date = models.NewDate(uc.now())
	}
	return uc.repo.ListForStylistDay(ctx, stylistID, date)
}

type GetAppointment struct {
	repo domain.Repository
}

func NewGetAppointment(repo domain.Repository) *GetAppointment {
	return &GetAppointment{repo: repo}
}

func (uc *GetAppointment) Execute(ctx context.Context, id uint) (*models.Appointment, error) {
	return loadAppointment(ctx, uc.repo, id)
}
