package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/audit"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/httperr"
	"github.com/peluqueria-anita/salon-api/internal/httpresp"
	"github.com/peluqueria-anita/salon-api/internal/middleware"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

type WorkingHoursHandler struct {
	db       *gorm.DB
	audit    *audit.Dispatcher
	defaults domain.WorkingHours
}

func NewWorkingHoursHandler(db *gorm.DB, d *audit.Dispatcher, defaults domain.WorkingHours) *WorkingHoursHandler {
	return &WorkingHoursHandler{db: db, audit: d, defaults: defaults}
}

type WorkingDayConfig struct {
	Weekday     *int   `json:"weekday" binding:"required,min=0,max=6"`
	Active      bool   `json:"active"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	SlotMinutes int    `json:"slot_minutes" binding:"min=0"`
}

type WorkingHoursUpdateRequest struct {
	Days []WorkingDayConfig `json:"days" binding:"required,max=7,dive"`
}

// stylistID is user_id from the query for admins, otherwise the caller.
func stylistID(c *gin.Context) uint {
	if c.GetString(middleware.ContextUserRole) == models.RoleAdmin {
		if id := queryUint(c, "user_id"); id != 0 {
			return id
		}
	}
	return middleware.UserID(c)
}

// validateWeek checks every active day against the salon defaults it
// overrides and rejects repeated weekdays.
func validateWeek(days []WorkingDayConfig, defaults domain.WorkingHours) error {
	fields := map[string]string{}
	seen := map[int]bool{}

	for i, d := range days {
		key := fmt.Sprintf("days.%d", i)
		if seen[*d.Weekday] {
			fields[key+".weekday"] = "is repeated"
			continue
		}
		seen[*d.Weekday] = true

		hours, works := domain.FromModel(&models.WorkingHours{
			StartTime:   d.StartTime,
			EndTime:     d.EndTime,
			SlotMinutes: d.SlotMinutes,
			Active:      d.Active,
		}, defaults)
		if !works {
			continue
		}
		if err := hours.Validate(); err != nil {
			if ae, ok := apperr.As(err); ok {
				for k, v := range ae.Fields {
					fields[key+"."+k] = v
				}
			}
		}
	}

	if len(fields) > 0 {
		return apperr.ValidationFields(fields)
	}
	return nil
}

func (h *WorkingHoursHandler) Get(c *gin.Context) {
	var hours []models.WorkingHours
	if err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", stylistID(c)).
		Order("weekday ASC").
		Find(&hours).Error; err != nil {
		httperr.Respond(c, err, "failed_to_get_working_hours")
		return
	}

	httpresp.OK(c, gin.H{
		"defaults": gin.H{
			"start_time":   h.defaults.Start,
			"end_time":     h.defaults.End,
			"slot_minutes": h.defaults.SlotMinutes,
		},
		"days": hours,
	})
}

// Update replaces the whole weekly override set of a stylist.
func (h *WorkingHoursHandler) Update(c *gin.Context) {
	var req WorkingHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	if err := validateWeek(req.Days, h.defaults); err != nil {
		httperr.Respond(c, err, "")
		return
	}

	userID := stylistID(c)

	toCreate := make([]models.WorkingHours, 0, len(req.Days))
	for _, d := range req.Days {
		toCreate = append(toCreate, models.WorkingHours{
			UserID:      userID,
			Weekday:     *d.Weekday,
			Active:      d.Active,
			StartTime:   d.StartTime,
			EndTime:     d.EndTime,
			SlotMinutes: d.SlotMinutes,
		})
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}
		if len(toCreate) == 0 {
			return nil
		}
		return tx.Create(&toCreate).Error
	})
	if err != nil {
		httperr.Respond(c, err, "failed_to_save_working_hours")
		return
	}

	writeAudit(h.audit, c, "working_hours_updated", "user", &userID, map[string]int{"days": len(toCreate)})
	httpresp.OK(c, gin.H{"days": toCreate})
}
