package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/peluqueria-anita/salon-api/internal/models"
)

type DayCount struct {
	Date  models.Date `json:"date"`
	Count int         `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type ServiceRank struct {
	ServiceID uint            `json:"service_id"`
	Name      string          `json:"name"`
	Count     int             `json:"count"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type ClientRank struct {
	ClientID          uint            `json:"client_id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	AppointmentsCount int             `json:"appointments_count"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
}

type StylistRank struct {
	UserID  uint            `json:"id"`
	Name    string          `json:"name"`
	Count   int             `json:"appointments_count"`
	Revenue decimal.Decimal `json:"total_revenue"`
}

const statusCompleted = "completed"

func countByStatus(apps []models.Appointment) map[string]int {
	out := map[string]int{}
	for _, ap := range apps {
		out[ap.Status]++
	}
	return out
}

// statusList renders counts sorted by status name.
func statusList(counts map[string]int) []StatusCount {
	out := make([]StatusCount, 0, len(counts))
	for s, n := range counts {
		out = append(out, StatusCount{Status: s, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out
}

func completedRevenue(apps []models.Appointment) decimal.Decimal {
	sum := decimal.Zero
	for _, ap := range apps {
		if ap.Status == statusCompleted {
			sum = sum.Add(ap.TotalAmount)
		}
	}
	return sum
}

func perDay(apps []models.Appointment) []DayCount {
	counts := map[models.Date]int{}
	for _, ap := range apps {
		counts[ap.AppointmentDate]++
	}
	out := make([]DayCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, DayCount{Date: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// topServicesByDetails ranks services by detail rows among completed
// appointments. Ties are broken by name.
func topServicesByDetails(apps []models.Appointment, limit int) []ServiceRank {
	ranks := map[uint]*ServiceRank{}
	for _, ap := range apps {
		if ap.Status != statusCompleted {
			continue
		}
		for _, d := range ap.Details {
			r, ok := ranks[d.ServiceID]
			if !ok {
				r = &ServiceRank{ServiceID: d.ServiceID}
				if d.Service != nil {
					r.Name = d.Service.Name
				}
				ranks[d.ServiceID] = r
			}
			r.Count++
			r.Revenue = r.Revenue.Add(d.Subtotal)
		}
	}
	return rankServices(ranks, limit)
}

func rankServices(ranks map[uint]*ServiceRank, limit int) []ServiceRank {
	out := make([]ServiceRank, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ServiceID < out[j].ServiceID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// topClientsBySpend ranks clients by the total of their completed
// appointments.
func topClientsBySpend(apps []models.Appointment, limit int) []ClientRank {
	ranks := map[uint]*ClientRank{}
	for _, ap := range apps {
		if ap.Status != statusCompleted {
			continue
		}
		r, ok := ranks[ap.ClientID]
		if !ok {
			r = &ClientRank{ClientID: ap.ClientID}
			if ap.Client != nil {
				r.Name, r.Email, r.Phone = ap.Client.Name, ap.Client.Email, ap.Client.Phone
			}
			ranks[ap.ClientID] = r
		}
		r.AppointmentsCount++
		r.TotalSpent = r.TotalSpent.Add(ap.TotalAmount)
	}

	out := make([]ClientRank, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalSpent.Cmp(out[j].TotalSpent); c != 0 {
			return c > 0
		}
		return out[i].ClientID < out[j].ClientID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// stylistPerformance reports completed counts and revenue for every
// stylist, including those with nothing completed.
func stylistPerformance(stylists []models.User, apps []models.Appointment) []StylistRank {
	idx := make(map[uint]int, len(stylists))
	out := make([]StylistRank, len(stylists))
	for i, u := range stylists {
		out[i] = StylistRank{UserID: u.ID, Name: u.Name, Revenue: decimal.Zero}
		idx[u.ID] = i
	}
	for _, ap := range apps {
		if ap.Status != statusCompleted {
			continue
		}
		if i, ok := idx[ap.UserID]; ok {
			out[i].Count++
			out[i].Revenue = out[i].Revenue.Add(ap.TotalAmount)
		}
	}
	return out
}

func sumPayments(ps []models.Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range ps {
		sum = sum.Add(p.Amount)
	}
	return sum
}
