package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/peluqueria-anita/salon-api/internal/httperr"
	"github.com/peluqueria-anita/salon-api/internal/httpresp"
	"github.com/peluqueria-anita/salon-api/internal/usecase/stats"
)

// DashboardHandler serves the read-only rollups.
type DashboardHandler struct {
	dashboard    *stats.GetDashboard
	quick        *stats.GetQuickStats
	monthly      *stats.GetMonthlyOverview
	appointments *stats.GetAppointmentStats
}

// NewDashboardHandler builds the rollups. cache may be nil.
func NewDashboardHandler(repo stats.Repository, cache stats.Cache, now func() time.Time) *DashboardHandler {
	return &DashboardHandler{
		dashboard:    stats.NewGetDashboard(repo, cache, now),
		quick:        stats.NewGetQuickStats(repo, now),
		monthly:      stats.NewGetMonthlyOverview(repo, now),
		appointments: stats.NewGetAppointmentStats(repo, now),
	}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	dates, ok := queryDates(c, "date")
	if !ok {
		return
	}

	d, err := h.dashboard.Execute(c.Request.Context(), stats.DashboardInput{
		Period: c.DefaultQuery("period", "month"),
		Date:   dates[0],
		TopN:   queryInt(c, "top", 5),
	})
	if err != nil {
		httperr.Respond(c, err, "dashboard_stats_failed")
		return
	}

	httpresp.OK(c, d)
}

func (h *DashboardHandler) QuickStats(c *gin.Context) {
	q, err := h.quick.Execute(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err, "quick_stats_failed")
		return
	}

	httpresp.OK(c, q)
}

func (h *DashboardHandler) MonthlyOverview(c *gin.Context) {
	m, err := h.monthly.Execute(c.Request.Context(), queryInt(c, "year", 0), queryInt(c, "month", 0))
	if err != nil {
		httperr.Respond(c, err, "monthly_overview_failed")
		return
	}

	httpresp.OK(c, m)
}

// AppointmentStats backs GET /appointments/stats.
func (h *DashboardHandler) AppointmentStats(c *gin.Context) {
	dates, ok := queryDates(c, "start_date", "end_date")
	if !ok {
		return
	}

	s, err := h.appointments.Execute(c.Request.Context(), stats.AppointmentStatsInput{
		From:      dates[0],
		To:        dates[1],
		StylistID: queryUint(c, "user_id"),
	})
	if err != nil {
		httperr.Respond(c, err, "appointment_stats_failed")
		return
	}

	httpresp.OK(c, s)
}
