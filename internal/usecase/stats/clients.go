package stats

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

type FavouriteService struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type ClientStats struct {
	ClientID              uint                `json:"client_id"`
	TotalAppointments     int                 `json:"total_appointments"`
	CompletedAppointments int                 `json:"completed_appointments"`
	TotalSpent            decimal.Decimal     `json:"total_spent"`
	LastAppointment       *models.Appointment `json:"last_appointment"`
	FavouriteServices     []FavouriteService  `json:"favorite_services"`
}

type GetClientStats struct {
	repo Repository
}

func NewGetClientStats(repo Repository) *GetClientStats {
	return &GetClientStats{repo: repo}
}

func (uc *GetClientStats) Execute(ctx context.Context, clientID uint) (*ClientStats, error) {
	if _, err := uc.repo.GetClient(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("client_not_found", "client not found")
		}
		return nil, err
	}

	apps, err := uc.repo.Appointments(ctx, AppointmentQuery{ClientID: clientID, Newest: true})
	if err != nil {
		return nil, err
	}

	out := &ClientStats{
		ClientID:          clientID,
		TotalAppointments: len(apps),
		TotalSpent:        decimal.Zero,
		FavouriteServices: favouriteServices(apps, 3),
	}
	for _, ap := range apps {
		if ap.Status == statusCompleted {
			out.CompletedAppointments++
			out.TotalSpent = out.TotalSpent.Add(ap.TotalAmount)
		}
	}
	if len(apps) > 0 {
		last := apps[0]
		out.LastAppointment = &last
	}
	return out, nil
}

// favouriteServices counts detail lines by service name across every
// appointment regardless of status.
func favouriteServices(apps []models.Appointment, limit int) []FavouriteService {
	counts := map[string]int{}
	for _, ap := range apps {
		for _, d := range ap.Details {
			if d.Service != nil {
				counts[d.Service.Name]++
			}
		}
	}

	out := make([]FavouriteService, 0, len(counts))
	for name, n := range counts {
		out = append(out, FavouriteService{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

type GenderCount struct {
	Gender string `json:"gender"`
	Count  int    `json:"count"`
}

type ClientOverview struct {
	TotalClients        int           `json:"total_clients"`
	ActiveClients       int           `json:"active_clients"`
	InactiveClients     int           `json:"inactive_clients"`
	NewClientsThisMonth int           `json:"new_clients_this_month"`
	TopClients          []ClientRank  `json:"top_clients"`
	ClientsByGender     []GenderCount `json:"clients_by_gender"`
	ClientsByMonth      []MonthCount  `json:"clients_by_month"`
}

type GetClientOverview struct {
	repo Repository
	now  func() time.Time
}

func NewGetClientOverview(repo Repository, now func() time.Time) *GetClientOverview {
	return &GetClientOverview{repo: repo, now: now}
}

func (uc *GetClientOverview) Execute(ctx context.Context) (*ClientOverview, error) {
	now := uc.now()
	loc := now.Location()

	clients, err := uc.repo.Clients(ctx)
	if err != nil {
		return nil, err
	}
	completed, err := uc.repo.Appointments(ctx, AppointmentQuery{Statuses: []string{statusCompleted}})
	if err != nil {
		return nil, err
	}

	out := &ClientOverview{TotalClients: len(clients)}

	genders := map[string]int{}
	months := map[int]int{}
	for _, c := range clients {
		if c.IsActive {
			out.ActiveClients++
		}
		genders[c.Gender]++

		created := c.CreatedAt.In(loc)
		if created.Year() == now.Year() {
			months[int(created.Month())]++
			if created.Month() == now.Month() {
				out.NewClientsThisMonth++
			}
		}
	}
	out.InactiveClients = out.TotalClients - out.ActiveClients

	for g, n := range genders {
		out.ClientsByGender = append(out.ClientsByGender, GenderCount{Gender: g, Count: n})
	}
	sort.Slice(out.ClientsByGender, func(i, j int) bool {
		return out.ClientsByGender[i].Gender < out.ClientsByGender[j].Gender
	})

	for m, n := range months {
		out.ClientsByMonth = append(out.ClientsByMonth, MonthCount{Year: now.Year(), Month: m, Count: n})
	}
	sort.Slice(out.ClientsByMonth, func(i, j int) bool {
		return out.ClientsByMonth[i].Month < out.ClientsByMonth[j].Month
	})

	out.TopClients = topClientsBySpend(completed, 5)
	return out, nil
}

type GetPopularServices struct {
	repo Repository
	now  func() time.Time
}

func NewGetPopularServices(repo Repository, now func() time.Time) *GetPopularServices {
	return &GetPopularServices{repo: repo, now: now}
}

// Execute ranks active services by detail lines on completed appointments
// of the last three months. Services never booked are still listed.
func (uc *GetPopularServices) Execute(ctx context.Context, limit int) ([]ServiceRank, error) {
	if limit <= 0 {
		limit = 5
	}
	now := uc.now()

	services, err := uc.repo.ActiveServices(ctx)
	if err != nil {
		return nil, err
	}

	r := DateRange{From: models.NewDate(now.AddDate(0, -3, 0)), To: models.NewDate(now)}
	apps, err := uc.repo.Appointments(ctx, AppointmentQuery{Range: &r, Statuses: []string{statusCompleted}})
	if err != nil {
		return nil, err
	}

	ranks := make(map[uint]*ServiceRank, len(services))
	for _, s := range services {
		ranks[s.ID] = &ServiceRank{ServiceID: s.ID, Name: s.Name, Revenue: decimal.Zero}
	}
	for _, ap := range apps {
		for _, d := range ap.Details {
			if rk, ok := ranks[d.ServiceID]; ok {
				rk.Count++
				rk.Revenue = rk.Revenue.Add(d.Subtotal)
			}
		}
	}
	return rankServices(ranks, limit), nil
}
