package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/httperr"
	"github.com/peluqueria-anita/salon-api/internal/httpresp"
	"github.com/peluqueria-anita/salon-api/internal/models"
	"github.com/peluqueria-anita/salon-api/internal/usecase/appointment"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler is the unauthenticated, read-only catalogue clients browse
// before calling the salon.
type PublicHandler struct {
	db    *gorm.DB
	slots *appointment.GetAvailability
}

func NewPublicHandler(
	db *gorm.DB,
	repo domain.Repository,
	hours domain.WorkingHours,
	now func() time.Time,
) *PublicHandler {
	return &PublicHandler{
		db:    db,
		slots: appointment.NewGetAvailability(repo, hours, now),
	}
}

type PublicService struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Duration    int    `json:"duration"`
	Category    string `json:"category"`
}

////////////////////////////////////////////////////////
// SERVICES
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Where("is_active = ?", true)

	if category := strings.TrimSpace(strings.ToLower(c.Query("category"))); category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}
	if query := strings.TrimSpace(strings.ToLower(c.Query("query"))); query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.Order("name ASC").Find(&services).Error; err != nil {
		httperr.Respond(c, err, "services_list_failed")
		return
	}

	out := make([]PublicService, 0, len(services))
	for _, s := range services {
		out = append(out, PublicService{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Price:       s.Price.StringFixed(2),
			Duration:    s.Duration,
			Category:    s.Category,
		})
	}
	httpresp.List(c, out)
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

// AvailableSlots lists the free start times of one stylist day.
func (h *PublicHandler) AvailableSlots(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	dates, ok := queryDates(c, "date")
	if !ok {
		return
	}

	res, err := h.slots.Execute(c.Request.Context(), domain.AvailabilityInput{
		StylistID: id,
		Date:      dates[0],
	})
	if err != nil {
		httperr.Respond(c, err, "available_slots_failed")
		return
	}

	httpresp.OK(c, res)
}
