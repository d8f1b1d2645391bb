package dto

import "github.com/peluqueria-anita/salon-api/internal/models"

// UserDTO is the public view of an account.
type UserDTO struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar"`
	IsActive bool   `json:"is_active"`
}

func NewUserDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
		Avatar:   u.Avatar,
		IsActive: u.IsActive,
	}
}
