package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/peluqueria-anita/salon-api/internal/dto"
	"github.com/peluqueria-anita/salon-api/internal/httperr"
	"github.com/peluqueria-anita/salon-api/internal/httpresp"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

type StylistHandler struct {
	db *gorm.DB
}

func NewStylistHandler(db *gorm.DB) *StylistHandler {
	return &StylistHandler{db: db}
}

// List returns the active accounts appointments can be booked with.
func (h *StylistHandler) List(c *gin.Context) {
	var users []models.User
	if err := h.db.WithContext(c.Request.Context()).
		Where("role IN ? AND is_active = ?", []string{models.RoleStylist, models.RoleAdmin}, true).
		Order("name ASC").
		Find(&users).Error; err != nil {
		httperr.Respond(c, err, "stylists_list_failed")
		return
	}

	out := make([]dto.UserDTO, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserDTO(&users[i]))
	}
	httpresp.List(c, out)
}
