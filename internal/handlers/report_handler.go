package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/peluqueria-anita/salon-api/internal/audit"
	"github.com/peluqueria-anita/salon-api/internal/httperr"
	"github.com/peluqueria-anita/salon-api/internal/httpresp"
	"github.com/peluqueria-anita/salon-api/internal/report"
	"github.com/peluqueria-anita/salon-api/internal/usecase/stats"
)

const csvContentType = "text/csv; charset=utf-8"

type ReportHandler struct {
	reports  *stats.Reports
	exporter *report.Exporter
	store    ObjectStore
	audit    *audit.Dispatcher
	now      func() time.Time
}

// NewReportHandler serves the Reportería reports. cache and store may be
// nil; without a store the upload endpoint answers storage_disabled.
func NewReportHandler(
	repo stats.Repository,
	cache stats.Cache,
	store ObjectStore,
	d *audit.Dispatcher,
	now func() time.Time,
) *ReportHandler {
	reports := stats.NewReports(repo, cache, now)
	return &ReportHandler{
		reports:  reports,
		exporter: report.NewExporter(reports),
		store:    store,
		audit:    d,
		now:      now,
	}
}

// reportFilter reads start_date, end_date and status.
func reportFilter(c *gin.Context) (stats.ReportFilter, bool) {
	dates, ok := queryDates(c, "start_date", "end_date")
	if !ok {
		return stats.ReportFilter{}, false
	}
	return stats.ReportFilter{From: dates[0], To: dates[1], Status: c.Query("status")}, true
}

// serve runs one report function and writes its result.
func serve[T any](c *gin.Context, code string, fn func(*gin.Context, stats.ReportFilter) (*T, error)) {
	f, ok := reportFilter(c)
	if !ok {
		return
	}

	out, err := fn(c, f)
	if err != nil {
		httperr.Respond(c, err, code)
		return
	}

	httpresp.OK(c, out)
}

func (h *ReportHandler) ClientsByAppointment(c *gin.Context) {
	serve(c, "report_failed", func(c *gin.Context, f stats.ReportFilter) (*stats.ClientsByAppointmentReport, error) {
		return h.reports.ClientsByAppointment(c.Request.Context(), f)
	})
}

func (h *ReportHandler) ClientsAttentions(c *gin.Context) {
	serve(c, "report_failed", func(c *gin.Context, f stats.ReportFilter) (*stats.ClientsAttentionsReport, error) {
		return h.reports.ClientsAttentions(c.Request.Context(), f)
	})
}

func (h *ReportHandler) ClientSales(c *gin.Context) {
	serve(c, "report_failed", func(c *gin.Context, f stats.ReportFilter) (*stats.ClientSalesReport, error) {
		return h.reports.ClientSales(c.Request.Context(), f)
	})
}

func (h *ReportHandler) AppointmentsAttentions(c *gin.Context) {
	serve(c, "report_failed", func(c *gin.Context, f stats.ReportFilter) (*stats.AppointmentsAttentionsReport, error) {
		return h.reports.AppointmentsAttentions(c.Request.Context(), f)
	})
}

func (h *ReportHandler) Consolidated(c *gin.Context) {
	serve(c, "report_failed", func(c *gin.Context, f stats.ReportFilter) (*stats.Consolidated, error) {
		return h.reports.Consolidated(c.Request.Context(), f)
	})
}

// Export downloads report A, B, C or D (query "type") as CSV.
func (h *ReportHandler) Export(c *gin.Context) {
	f, ok := reportFilter(c)
	if !ok {
		return
	}

	exp, err := h.exporter.Export(c.Request.Context(), c.DefaultQuery("type", "A"), f)
	if err != nil {
		httperr.Respond(c, err, "report_export_failed")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exp.Filename))
	c.Data(http.StatusOK, csvContentType, exp.Data)
}

// Upload renders the same CSV and stores it, answering with its URL.
func (h *ReportHandler) Upload(c *gin.Context) {
	if h.store == nil {
		httperr.Write(c, http.StatusServiceUnavailable, "storage_disabled", "File storage is not configured.")
		return
	}

	f, ok := reportFilter(c)
	if !ok {
		return
	}

	exp, err := h.exporter.Export(c.Request.Context(), c.DefaultQuery("type", "A"), f)
	if err != nil {
		httperr.Respond(c, err, "report_export_failed")
		return
	}

	now := h.now()
	key := fmt.Sprintf("reports/%s/%d_%s", now.Format("2006-01-02"), now.Unix(), exp.Filename)
	url, err := h.store.Put(c.Request.Context(), key, csvContentType, exp.Data)
	if err != nil {
		httperr.Respond(c, err, "report_upload_failed")
		return
	}

	writeAudit(h.audit, c, "report_exported", "report", nil, map[string]string{"key": key})
	httpresp.Created(c, gin.H{
		"filename": exp.Filename,
		"key":      key,
		"url":      url,
		"size":     len(exp.Data),
	}, "Report uploaded.")
}
