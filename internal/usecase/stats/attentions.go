package stats

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/peluqueria-anita/salon-api/internal/models"
)

var satisfactionScores = map[string]int{
	"very_unsatisfied": 1,
	"unsatisfied":      2,
	"neutral":          3,
	"satisfied":        4,
	"very_satisfied":   5,
}

func SatisfactionScore(level string) (int, bool) {
	s, ok := satisfactionScores[level]
	return s, ok
}

type AttentionStylistRank struct {
	UserID          uint            `json:"user_id"`
	Name            string          `json:"name"`
	TotalAttentions int             `json:"total_attentions"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
}

type MonthCount struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

type AttentionStats struct {
	TotalAttentions      int `json:"total_attentions"`
	CompletedAttentions  int `json:"completed_attentions"`
	InProgressAttentions int `json:"in_progress_attentions"`
	StartedAttentions    int `json:"started_attentions"`
	CancelledAttentions  int `json:"cancelled_attentions"`

	AttentionsThisMonth int             `json:"attentions_this_month"`
	CompletedThisMonth  int             `json:"completed_this_month"`
	RevenueThisMonth    decimal.Decimal `json:"revenue_this_month"`
	AverageSatisfaction float64         `json:"average_satisfaction"`

	TopStylists       []AttentionStylistRank `json:"top_stylists"`
	PopularServices   []ServiceRank          `json:"popular_services"`
	AttentionsByMonth []MonthCount           `json:"attentions_by_month"`
}

type GetAttentionStats struct {
	repo Repository
	now  func() time.Time
}

func NewGetAttentionStats(repo Repository, now func() time.Time) *GetAttentionStats {
	return &GetAttentionStats{repo: repo, now: now}
}

// Execute reports on every attention; topN bounds the service ranking.
func (uc *GetAttentionStats) Execute(ctx context.Context, topN int) (*AttentionStats, error) {
	if topN <= 0 {
		topN = 5
	}

	rows, err := uc.repo.Attentions(ctx, AttentionQuery{})
	if err != nil {
		return nil, err
	}

	return SummarizeAttentions(rows, uc.now(), topN), nil
}

func SummarizeAttentions(rows []models.Attention, now time.Time, topN int) *AttentionStats {
	month := MonthRange(now.Year(), now.Month(), now.Location())
	sixMonthsAgo := models.NewDate(now.AddDate(0, -6, 0))

	out := &AttentionStats{RevenueThisMonth: decimal.Zero}

	scoreSum, scored := 0, 0
	stylists := map[uint]*AttentionStylistRank{}
	services := map[uint]*ServiceRank{}
	months := map[[2]int]int{}

	for _, a := range rows {
		out.TotalAttentions++
		switch a.Status {
		case "completed":
			out.CompletedAttentions++
		case "in_progress":
			out.InProgressAttentions++
		case "started":
			out.StartedAttentions++
		case "cancelled":
			out.CancelledAttentions++
		}

		if month.Contains(a.AttentionDate) {
			out.AttentionsThisMonth++
			if a.Status == statusCompleted {
				out.CompletedThisMonth++
				out.RevenueThisMonth = out.RevenueThisMonth.Add(a.ServicePrice)
			}
		}

		if !a.AttentionDate.Before(sixMonthsAgo) {
			if t, err := a.AttentionDate.In(time.UTC); err == nil {
				months[[2]int{t.Year(), int(t.Month())}]++
			}
		}

		if a.Status != statusCompleted {
			continue
		}

		if a.ClientSatisfaction != nil {
			if s, ok := SatisfactionScore(*a.ClientSatisfaction); ok {
				scoreSum += s
				scored++
			}
		}

		st, ok := stylists[a.UserID]
		if !ok {
			st = &AttentionStylistRank{UserID: a.UserID}
			if a.Stylist != nil {
				st.Name = a.Stylist.Name
			}
			stylists[a.UserID] = st
		}
		st.TotalAttentions++
		st.TotalRevenue = st.TotalRevenue.Add(a.ServicePrice)

		sv, ok := services[a.ServiceID]
		if !ok {
			sv = &ServiceRank{ServiceID: a.ServiceID}
			if a.Service != nil {
				sv.Name = a.Service.Name
			}
			services[a.ServiceID] = sv
		}
		sv.Count++
		sv.Revenue = sv.Revenue.Add(a.ServicePrice)
	}

	if scored > 0 {
		out.AverageSatisfaction = Round(float64(scoreSum)/float64(scored), 2)
	}

	out.TopStylists = make([]AttentionStylistRank, 0, len(stylists))
	for _, s := range stylists {
		out.TopStylists = append(out.TopStylists, *s)
	}
	sort.Slice(out.TopStylists, func(i, j int) bool {
		a, b := out.TopStylists[i], out.TopStylists[j]
		if a.TotalAttentions != b.TotalAttentions {
			return a.TotalAttentions > b.TotalAttentions
		}
		return a.UserID < b.UserID
	})
	if len(out.TopStylists) > 5 {
		out.TopStylists = out.TopStylists[:5]
	}

	out.PopularServices = rankServices(services, topN)

	out.AttentionsByMonth = make([]MonthCount, 0, len(months))
	for k, n := range months {
		out.AttentionsByMonth = append(out.AttentionsByMonth, MonthCount{Year: k[0], Month: k[1], Count: n})
	}
	sort.Slice(out.AttentionsByMonth, func(i, j int) bool {
		a, b := out.AttentionsByMonth[i], out.AttentionsByMonth[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		return a.Month > b.Month
	})

	return out
}
