package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/audit"
	"github.com/peluqueria-anita/salon-api/internal/dto"
	"github.com/peluqueria-anita/salon-api/internal/httperr"
	"github.com/peluqueria-anita/salon-api/internal/httpresp"
	"github.com/peluqueria-anita/salon-api/internal/middleware"
	"github.com/peluqueria-anita/salon-api/internal/models"
	"github.com/peluqueria-anita/salon-api/internal/validators"
)

const MinPasswordLength = 8

type AuthHandler struct {
	db         *gorm.DB
	secret     string
	audit      *audit.Dispatcher
	now        func() time.Time
	checkEmail func(string) bool
}

func NewAuthHandler(db *gorm.DB, secret string, d *audit.Dispatcher, now func() time.Time) *AuthHandler {
	return &AuthHandler{
		db:         db,
		secret:     secret,
		audit:      d,
		now:        now,
		checkEmail: validators.IsEmailDomainValid,
	}
}

// --------- Requests ---------

type RegisterRequest struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
	Phone                string `json:"phone" binding:"max=20"`
	Role                 string `json:"role" binding:"omitempty,oneof=stylist client"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User        dto.UserDTO `json:"user"`
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
}

// HashPassword bcrypt-hashes a plain password.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *AuthHandler) emailTaken(c *gin.Context, email string, selfID uint) (bool, error) {
	var n int64
	q := h.db.WithContext(c.Request.Context()).Model(&models.User{}).Where("email = ?", email)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *models.User, msg string) {
	token, err := middleware.IssueToken(h.secret, user, h.now())
	if err != nil {
		httperr.Respond(c, err, "failed_to_generate_token")
		return
	}

	c.JSON(status, httpresp.DataResponse{
		Data: AuthResponse{
			User:        dto.NewUserDTO(user),
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(middleware.TokenTTL.Seconds()),
		},
		Message: msg,
	})
}

// --------- Handlers ---------

// Register creates a stylist or client account. Admins are only created
// from the command line.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	email := normalizeEmail(req.Email)

	if !h.checkEmail(email) {
		httperr.Respond(c, apperr.ValidationFields(map[string]string{
			"email": "the email domain does not look valid",
		}), "")
		return
	}

	taken, err := h.emailTaken(c, email, 0)
	if err != nil {
		httperr.Respond(c, err, "register_failed")
		return
	}
	if taken {
		httperr.Respond(c, apperr.ValidationFields(map[string]string{"email": "has already been taken"}), "")
		return
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		httperr.Respond(c, err, "failed_to_hash_password")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleClient
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hashed,
		Phone:        req.Phone,
		Role:         role,
		IsActive:     true,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		httperr.Respond(c, err, "failed_to_create_user")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &user.ID,
		Action:   "user_registered",
		Entity:   "user",
		EntityID: &user.ID,
		Metadata: map[string]string{"role": role},
	})

	h.respondWithToken(c, http.StatusCreated, &user, "User registered.")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).
		Where("email = ?", normalizeEmail(req.Email)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "invalid_credentials", "Invalid credentials.")
			return
		}
		httperr.Respond(c, err, "login_failed")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Invalid credentials.")
		return
	}

	if !user.IsActive {
		httperr.Forbidden(c, "user_inactive", "The account is inactive.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &user.ID,
		Action:   "user_logged_in",
		Entity:   "user",
		EntityID: &user.ID,
	})

	h.respondWithToken(c, http.StatusOK, &user, "Logged in.")
}

// Logout is stateless; tokens simply expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	writeAudit(h.audit, c, "user_logged_out", "user", actorID(c), nil)
	httpresp.Message(c, "Logged out.")
}
