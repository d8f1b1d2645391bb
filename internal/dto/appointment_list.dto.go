package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/peluqueria-anita/salon-api/internal/models"
)

type AppointmentListDTO struct {
	ID            uint            `json:"id"`
	Date          models.Date     `json:"appointment_date"`
	StartTime     string          `json:"start_time"`
	EndTime       string          `json:"end_time"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ClientName    string          `json:"client_name"`
	ClientPhone   string          `json:"client_phone"`
	ServiceNames  string          `json:"service_names"`
}

func NewAppointmentListDTO(ap models.Appointment) AppointmentListDTO {
	out := AppointmentListDTO{
		ID:            ap.ID,
		Date:          ap.AppointmentDate,
		StartTime:     ap.StartTime,
		EndTime:       ap.EndTime,
		Status:        ap.Status,
		PaymentStatus: ap.PaymentStatus,
		TotalAmount:   ap.TotalAmount,
	}
	if ap.Client != nil {
		out.ClientName = ap.Client.Name
		out.ClientPhone = ap.Client.Phone
	}

	names := make([]string, 0, len(ap.Details))
	for _, d := range ap.Details {
		if d.Service != nil {
			names = append(names, d.Service.Name)
		}
	}
	out.ServiceNames = strings.Join(names, ", ")

	return out
}

func NewAppointmentList(items []models.Appointment) []AppointmentListDTO {
	out := make([]AppointmentListDTO, 0, len(items))
	for _, ap := range items {
		out = append(out, NewAppointmentListDTO(ap))
	}
	return out
}
