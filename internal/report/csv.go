package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/usecase/stats"
)

// Source is the subset of stats.Reports the exporter renders.
type Source interface {
	ClientsByAppointment(ctx context.Context, f stats.ReportFilter) (*stats.ClientsByAppointmentReport, error)
	ClientsAttentions(ctx context.Context, f stats.ReportFilter) (*stats.ClientsAttentionsReport, error)
	ClientSales(ctx context.Context, f stats.ReportFilter) (*stats.ClientSalesReport, error)
	AppointmentsAttentions(ctx context.Context, f stats.ReportFilter) (*stats.AppointmentsAttentionsReport, error)
}

type Export struct {
	Filename string
	Data     []byte
}

var filenames = map[string]string{
	"A": "report_clients_by_appointment.csv",
	"B": "report_clients_attentions_services.csv",
	"C": "report_client_sales.csv",
	"D": "report_appointments_attentions.csv",
}

type Exporter struct {
	src Source
}

func NewExporter(src Source) *Exporter {
	return &Exporter{src: src}
}

// Export renders report A, B, C or D as CSV.
func (e *Exporter) Export(ctx context.Context, kind string, f stats.ReportFilter) (*Export, error) {
	kind = strings.ToUpper(strings.TrimSpace(kind))
	name, ok := filenames[kind]
	if !ok {
		return nil, apperr.Validation("invalid_report_type", "report type must be one of A, B, C, D")
	}

	var rows [][]string
	switch kind {
	case "A":
		r, err := e.src.ClientsByAppointment(ctx, f)
		if err != nil {
			return nil, err
		}
		rows = clientsByAppointmentRows(r)
	case "B":
		r, err := e.src.ClientsAttentions(ctx, f)
		if err != nil {
			return nil, err
		}
		rows = clientsAttentionsRows(r)
	case "C":
		r, err := e.src.ClientSales(ctx, f)
		if err != nil {
			return nil, err
		}
		rows = clientSalesRows(r)
	case "D":
		r, err := e.src.AppointmentsAttentions(ctx, f)
		if err != nil {
			return nil, err
		}
		rows = appointmentsAttentionsRows(r)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return &Export{Filename: name, Data: buf.Bytes()}, nil
}

func id(v uint) string { return strconv.FormatUint(uint64(v), 10) }

func clientCols(c stats.ClientRef) []string {
	return []string{id(c.ID), c.FullName, c.Email, c.Phone}
}

// One row per appointment; clients without appointments get one row with
// blank appointment columns.
func clientsByAppointmentRows(r *stats.ClientsByAppointmentReport) [][]string {
	rows := [][]string{{
		"client_id", "full_name", "email", "phone", "total_appointments",
		"appointment_id", "date", "start_time", "status", "total_amount",
	}}
	for _, c := range r.Data {
		head := append(clientCols(c.ClientRef), strconv.Itoa(c.TotalAppointments))
		if len(c.Appointments) == 0 {
			rows = append(rows, append(head, "", "", "", "", ""))
			continue
		}
		for _, a := range c.Appointments {
			rows = append(rows, append(append([]string(nil), head...),
				id(a.ID), a.Date.String(), a.StartTime, a.Status, a.TotalAmount.StringFixed(2)))
		}
	}
	return rows
}

func clientsAttentionsRows(r *stats.ClientsAttentionsReport) [][]string {
	rows := [][]string{{
		"client_id", "full_name", "email", "phone",
		"appointment_id", "appointment_date", "attention_date", "service", "price",
	}}
	for _, c := range r.Data {
		for _, a := range c.Attentions {
			rows = append(rows, append(clientCols(c.ClientRef),
				id(a.AppointmentID), a.AppointmentDate.String(), a.Date.String(), a.Service, a.Price.StringFixed(2)))
		}
	}
	return rows
}

func clientSalesRows(r *stats.ClientSalesReport) [][]string {
	rows := [][]string{{
		"client_id", "full_name", "email", "phone",
		"total_appointments", "total_sales", "average_per_appointment",
	}}
	for _, c := range r.Data {
		rows = append(rows, append(clientCols(c.ClientRef),
			strconv.Itoa(c.TotalAppointments), c.TotalSales.StringFixed(2), c.AveragePerVisit.StringFixed(2)))
	}
	return rows
}

func appointmentsAttentionsRows(r *stats.AppointmentsAttentionsReport) [][]string {
	rows := [][]string{{
		"appointment_id", "date", "start_time", "status", "total_amount",
		"client_id", "full_name", "attentions", "services",
	}}
	for _, a := range r.Data {
		services := make([]string, 0, len(a.Attentions))
		for _, at := range a.Attentions {
			services = append(services, at.Service)
		}
		rows = append(rows, []string{
			id(a.ID), a.Date.String(), a.StartTime, a.Status, a.TotalAmount.StringFixed(2),
			id(a.Client.ID), a.Client.FullName, strconv.Itoa(len(a.Attentions)), strings.Join(services, "; "),
		})
	}
	return rows
}
