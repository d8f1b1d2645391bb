package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/peluqueria-anita/salon-api/internal/models"
)

// ReportFilter narrows the Reportería reports. The range applies only when
// both ends are set.
type ReportFilter struct {
	From   models.Date
	To     models.Date
	Status string
}

func (f ReportFilter) dateRange() (*DateRange, error) {
	if f.From.IsZero() || f.To.IsZero() {
		return nil, nil
	}
	r, err := NewRange(f.From, f.To)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

type ClientRef struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

func clientRef(c *models.Client) ClientRef {
	if c == nil {
		return ClientRef{}
	}
	return ClientRef{ID: c.ID, FullName: c.Name, Email: c.Email, Phone: c.Phone}
}

type AppointmentLine struct {
	ID          uint            `json:"id"`
	Date        models.Date     `json:"date"`
	StartTime   string          `json:"start_time"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type AttentionLine struct {
	ID              uint            `json:"id"`
	AppointmentID   uint            `json:"appointment_id"`
	AppointmentDate models.Date     `json:"appointment_date,omitempty"`
	Date            models.Date     `json:"attention_date"`
	Service         string          `json:"service"`
	Price           decimal.Decimal `json:"price"`
}

func attentionLine(a models.Attention, apptDate models.Date) AttentionLine {
	l := AttentionLine{
		ID:              a.ID,
		AppointmentID:   a.AppointmentID,
		AppointmentDate: apptDate,
		Date:            a.AttentionDate,
		Price:           a.ServicePrice,
	}
	if a.Service != nil {
		l.Service = a.Service.Name
	}
	return l
}

// Report A

type ClientAppointments struct {
	ClientRef
	TotalAppointments int               `json:"total_appointments"`
	Appointments      []AppointmentLine `json:"appointments"`
}

type ClientsByAppointmentReport struct {
	Data         []ClientAppointments `json:"data"`
	TotalClients int                  `json:"total_clients"`
}

// Report B

type ClientAttentions struct {
	ClientRef
	TotalAttentions int             `json:"total_attentions"`
	Attentions      []AttentionLine `json:"attentions"`
}

type ClientsAttentionsReport struct {
	Data         []ClientAttentions `json:"data"`
	TotalClients int                `json:"total_clients"`
}

// Report C

type ClientSales struct {
	ClientRef
	TotalAppointments int             `json:"total_appointments"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	AveragePerVisit   decimal.Decimal `json:"average_per_appointment"`
}

type ClientSalesReport struct {
	Data         []ClientSales   `json:"data"`
	TotalClients int             `json:"total_clients"`
	TotalSales   decimal.Decimal `json:"total_sales"`
}

// Report D

type AppointmentAttentions struct {
	AppointmentLine
	Client     ClientRef       `json:"client"`
	Attentions []AttentionLine `json:"attentions"`
}

type AppointmentsAttentionsReport struct {
	Data              []AppointmentAttentions `json:"data"`
	TotalAppointments int                     `json:"total_appointments"`
	TotalServices     decimal.Decimal         `json:"total_services"`
}

type Reports struct {
	repo  Repository
	cache Cache
	now   func() time.Time
}

// NewReports builds the Reportería use cases. cache may be nil.
func NewReports(repo Repository, cache Cache, now func() time.Time) *Reports {
	return &Reports{repo: repo, cache: cache, now: now}
}

func lineOf(ap models.Appointment) AppointmentLine {
	return AppointmentLine{
		ID:          ap.ID,
		Date:        ap.AppointmentDate,
		StartTime:   ap.StartTime,
		Status:      ap.Status,
		TotalAmount: ap.TotalAmount,
	}
}

func statusFilter(status string) []string {
	if status == "" {
		return nil
	}
	return []string{status}
}

// ClientsByAppointment lists every client with their appointments, newest
// first. Clients without appointments in range are kept.
func (r *Reports) ClientsByAppointment(ctx context.Context, f ReportFilter) (*ClientsByAppointmentReport, error) {
	rng, err := f.dateRange()
	if err != nil {
		return nil, err
	}

	clients, err := r.repo.Clients(ctx)
	if err != nil {
		return nil, err
	}
	apps, err := r.repo.Appointments(ctx, AppointmentQuery{Range: rng, Statuses: statusFilter(f.Status), Newest: true})
	if err != nil {
		return nil, err
	}

	byClient := map[uint][]AppointmentLine{}
	for _, ap := range apps {
		byClient[ap.ClientID] = append(byClient[ap.ClientID], lineOf(ap))
	}

	out := &ClientsByAppointmentReport{Data: make([]ClientAppointments, 0, len(clients))}
	for i := range clients {
		lines := byClient[clients[i].ID]
		if lines == nil {
			lines = []AppointmentLine{}
		}
		out.Data = append(out.Data, ClientAppointments{
			ClientRef:         clientRef(&clients[i]),
			TotalAppointments: len(lines),
			Appointments:      lines,
		})
	}
	out.TotalClients = len(out.Data)
	return out, nil
}

// ClientsAttentions lists clients having at least one attention on an
// appointment in range.
func (r *Reports) ClientsAttentions(ctx context.Context, f ReportFilter) (*ClientsAttentionsReport, error) {
	rng, err := f.dateRange()
	if err != nil {
		return nil, err
	}

	apps, err := r.repo.Appointments(ctx, AppointmentQuery{Range: rng})
	if err != nil {
		return nil, err
	}

	out := &ClientsAttentionsReport{Data: []ClientAttentions{}}
	if len(apps) == 0 {
		return out, nil
	}

	ids := make([]uint, len(apps))
	dates := make(map[uint]models.Date, len(apps))
	clients := map[uint]*models.Client{}
	for i, ap := range apps {
		ids[i] = ap.ID
		dates[ap.ID] = ap.AppointmentDate
		if ap.Client != nil {
			clients[ap.ClientID] = ap.Client
		}
	}

	rows, err := r.repo.Attentions(ctx, AttentionQuery{AppointmentIDs: ids})
	if err != nil {
		return nil, err
	}

	byClient := map[uint][]AttentionLine{}
	for _, a := range rows {
		byClient[a.ClientID] = append(byClient[a.ClientID], attentionLine(a, dates[a.AppointmentID]))
		if _, ok := clients[a.ClientID]; !ok && a.Client != nil {
			clients[a.ClientID] = a.Client
		}
	}

	for id, lines := range byClient {
		ref := clientRef(clients[id])
		ref.ID = id
		out.Data = append(out.Data, ClientAttentions{ClientRef: ref, TotalAttentions: len(lines), Attentions: lines})
	}
	sort.Slice(out.Data, func(i, j int) bool { return out.Data[i].ID < out.Data[j].ID })
	out.TotalClients = len(out.Data)
	return out, nil
}

// ClientSales totals completed appointments per client.
func (r *Reports) ClientSales(ctx context.Context, f ReportFilter) (*ClientSalesReport, error) {
	rng, err := f.dateRange()
	if err != nil {
		return nil, err
	}

	apps, err := r.repo.Appointments(ctx, AppointmentQuery{Range: rng, Statuses: []string{statusCompleted}})
	if err != nil {
		return nil, err
	}

	rows := map[uint]*ClientSales{}
	for _, ap := range apps {
		row, ok := rows[ap.ClientID]
		if !ok {
			ref := clientRef(ap.Client)
			ref.ID = ap.ClientID
			row = &ClientSales{ClientRef: ref, TotalSales: decimal.Zero}
			rows[ap.ClientID] = row
		}
		row.TotalAppointments++
		row.TotalSales = row.TotalSales.Add(ap.TotalAmount)
	}

	out := &ClientSalesReport{Data: make([]ClientSales, 0, len(rows)), TotalSales: decimal.Zero}
	for _, row := range rows {
		row.AveragePerVisit = row.TotalSales.Div(decimal.NewFromInt(int64(row.TotalAppointments))).Round(2)
		out.Data = append(out.Data, *row)
		out.TotalSales = out.TotalSales.Add(row.TotalSales)
	}
	sort.Slice(out.Data, func(i, j int) bool { return out.Data[i].ID < out.Data[j].ID })
	out.TotalClients = len(out.Data)
	return out, nil
}

// AppointmentsAttentions lists appointments newest first with the
// attentions performed under each.
func (r *Reports) AppointmentsAttentions(ctx context.Context, f ReportFilter) (*AppointmentsAttentionsReport, error) {
	rng, err := f.dateRange()
	if err != nil {
		return nil, err
	}

	apps, err := r.repo.Appointments(ctx, AppointmentQuery{Range: rng, Statuses: statusFilter(f.Status), Newest: true})
	if err != nil {
		return nil, err
	}

	out := &AppointmentsAttentionsReport{Data: make([]AppointmentAttentions, 0, len(apps)), TotalServices: decimal.Zero}
	if len(apps) == 0 {
		return out, nil
	}

	ids := make([]uint, len(apps))
	for i, ap := range apps {
		ids[i] = ap.ID
	}
	rows, err := r.repo.Attentions(ctx, AttentionQuery{AppointmentIDs: ids})
	if err != nil {
		return nil, err
	}
	byAppt := map[uint][]AttentionLine{}
	for _, a := range rows {
		byAppt[a.AppointmentID] = append(byAppt[a.AppointmentID], attentionLine(a, ""))
	}

	for _, ap := range apps {
		lines := byAppt[ap.ID]
		if lines == nil {
			lines = []AttentionLine{}
		}
		out.Data = append(out.Data, AppointmentAttentions{
			AppointmentLine: lineOf(ap),
			Client:          clientRef(ap.Client),
			Attentions:      lines,
		})
		out.TotalServices = out.TotalServices.Add(ap.TotalAmount)
	}
	out.TotalAppointments = len(out.Data)
	return out, nil
}

type ConsolidatedPeriod struct {
	StartDate models.Date `json:"start_date"`
	EndDate   models.Date `json:"end_date"`
	Days      int         `json:"days"`
}

type ClientMetrics struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Inactive    int `json:"inactive"`
	NewInPeriod int `json:"new_in_period"`
}

type AppointmentMetrics struct {
	Total            int            `json:"total"`
	Completed        int            `json:"completed"`
	Cancelled        int            `json:"cancelled"`
	CompletionRate   float64        `json:"completion_rate"`
	CancellationRate float64        `json:"cancellation_rate"`
	ByStatus         map[string]int `json:"by_status"`
}

type AttentionMetrics struct {
	Total         int     `json:"total"`
	AveragePerDay float64 `json:"average_per_day"`
}

type RevenueMetrics struct {
	Total                 decimal.Decimal `json:"total"`
	AveragePerAppointment decimal.Decimal `json:"average_per_appointment"`
	AveragePerDay         decimal.Decimal `json:"average_per_day"`
}

type Consolidated struct {
	Period  ConsolidatedPeriod `json:"period"`
	Metrics struct {
		Clients      ClientMetrics      `json:"clients"`
		Appointments AppointmentMetrics `json:"appointments"`
		Attentions   AttentionMetrics   `json:"attentions"`
		Revenue      RevenueMetrics     `json:"revenue"`
	} `json:"metrics"`
	Rankings struct {
		TopServices []ServiceRank `json:"top_services"`
		TopClients  []ClientRank  `json:"top_clients"`
	} `json:"rankings"`
	Trends struct {
		DailyRevenue      []DailyRevenue `json:"daily_revenue"`
		DailyAppointments []DayCount     `json:"daily_appointments"`
	} `json:"trends"`
}

// Consolidated is the Reportería dashboard. Without a full range it covers
// the last month up to today.
func (r *Reports) Consolidated(ctx context.Context, f ReportFilter) (*Consolidated, error) {
	now := r.now()
	rng, err := f.dateRange()
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = &DateRange{From: models.NewDate(now.AddDate(0, -1, 0)), To: models.NewDate(now)}
	}

	key := fmt.Sprintf("stats:consolidated:%s:%s", rng.From, rng.To)
	out := &Consolidated{}
	if cacheGet(ctx, r.cache, key, out) {
		return out, nil
	}

	out, err = r.consolidate(ctx, *rng, now.Location())
	if err != nil {
		return nil, err
	}
	cacheSet(ctx, r.cache, key, out)
	return out, nil
}

func (r *Reports) consolidate(ctx context.Context, rng DateRange, loc *time.Location) (*Consolidated, error) {
	clients, err := r.repo.Clients(ctx)
	if err != nil {
		return nil, err
	}
	apps, err := r.repo.Appointments(ctx, AppointmentQuery{Range: &rng})
	if err != nil {
		return nil, err
	}
	atts, err := r.repo.Attentions(ctx, AttentionQuery{Range: &rng})
	if err != nil {
		return nil, err
	}

	out := &Consolidated{}
	days := rng.Len()
	out.Period = ConsolidatedPeriod{StartDate: rng.From, EndDate: rng.To, Days: days}

	cm := &out.Metrics.Clients
	cm.Total = len(clients)
	for _, c := range clients {
		if c.IsActive {
			cm.Active++
		}
	}
	cm.Inactive = cm.Total - cm.Active
	cm.NewInPeriod = countCreated(clients, rng, loc)

	byStatus := countByStatus(apps)
	am := &out.Metrics.Appointments
	am.Total = len(apps)
	am.Completed = byStatus[statusCompleted]
	am.Cancelled = byStatus["cancelled"]
	am.CompletionRate = Rate(am.Completed, am.Total)
	am.CancellationRate = Rate(am.Cancelled, am.Total)
	am.ByStatus = byStatus

	out.Metrics.Attentions.Total = len(atts)
	if days > 0 {
		out.Metrics.Attentions.AveragePerDay = Round(float64(len(atts))/float64(days), 2)
	}

	revenue := completedRevenue(apps)
	rm := &out.Metrics.Revenue
	rm.Total = revenue
	rm.AveragePerAppointment = average(revenue, am.Total)
	rm.AveragePerDay = average(revenue, days)

	services := map[uint]*ServiceRank{}
	for _, a := range atts {
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
	out.Rankings.TopServices = rankServices(services, 10)
	out.Rankings.TopClients = topClientsByVisits(apps, 10)

	revenueByDay := map[models.Date]decimal.Decimal{}
	for _, ap := range apps {
		if ap.Status == statusCompleted {
			revenueByDay[ap.AppointmentDate] = revenueByDay[ap.AppointmentDate].Add(ap.TotalAmount)
		}
	}
	for _, d := range rng.Days() {
		t, _ := d.In(time.UTC)
		out.Trends.DailyRevenue = append(out.Trends.DailyRevenue, DailyRevenue{
			Date:    d,
			Revenue: revenueByDay[d],
			DayName: t.Weekday().String(),
		})
	}
	out.Trends.DailyAppointments = perDay(apps)

	return out, nil
}

func average(sum decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n))).Round(2)
}

// topClientsByVisits ranks clients by appointment count in any status;
// spend still counts completed appointments only.
func topClientsByVisits(apps []models.Appointment, limit int) []ClientRank {
	ranks := map[uint]*ClientRank{}
	for _, ap := range apps {
		rk, ok := ranks[ap.ClientID]
		if !ok {
			rk = &ClientRank{ClientID: ap.ClientID, TotalSpent: decimal.Zero}
			if ap.Client != nil {
				rk.Name, rk.Email, rk.Phone = ap.Client.Name, ap.Client.Email, ap.Client.Phone
			}
			ranks[ap.ClientID] = rk
		}
		rk.AppointmentsCount++
		if ap.Status == statusCompleted {
			rk.TotalSpent = rk.TotalSpent.Add(ap.TotalAmount)
		}
	}

	out := make([]ClientRank, 0, len(ranks))
	for _, rk := range ranks {
		out = append(out, *rk)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AppointmentsCount != out[j].AppointmentsCount {
			return out[i].AppointmentsCount > out[j].AppointmentsCount
		}
		return out[i].ClientID < out[j].ClientID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
