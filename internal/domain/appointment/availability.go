package appointment

import (
	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

type AvailabilityInput struct {
	StylistID uint
	Date      models.Date

	// Hours overrides the stylist schedule when set.
	Hours *WorkingHours
}

type AvailabilityResult struct {
	Date           models.Date `json:"date"`
	UserID         uint        `json:"user_id"`
	AvailableSlots []string    `json:"available_slots"`
}

type CheckInput struct {
	StylistID uint
	Date      models.Date
	StartTime string
	ExcludeID uint
}

// SlotConflict is returned when the stylist already has an active
// appointment starting at the requested date and time.
func SlotConflict() error {
	return apperr.Conflict(
		"scheduling_conflict",
		"the stylist is not available at that date and time",
	)
}
