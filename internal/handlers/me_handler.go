package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
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
	"github.com/peluqueria-anita/salon-api/internal/imaging"
	"github.com/peluqueria-anita/salon-api/internal/middleware"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

// ObjectStore uploads a blob and returns its public URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type MeHandler struct {
	db    *gorm.DB
	store ObjectStore
	audit *audit.Dispatcher
	now   func() time.Time
}

// NewMeHandler serves the current account. store may be nil, which turns
// avatar uploads off.
func NewMeHandler(db *gorm.DB, store ObjectStore, d *audit.Dispatcher, now func() time.Time) *MeHandler {
	return &MeHandler{db: db, store: store, audit: d, now: now}
}

type UpdateProfileRequest struct {
	Name                 string  `json:"name" binding:"required,max=255"`
	Email                string  `json:"email" binding:"required,email,max=255"`
	Phone                *string `json:"phone" binding:"omitempty,max=20"`
	CurrentPassword      string  `json:"current_password" binding:"required_with=Password"`
	Password             string  `json:"password" binding:"omitempty,min=8"`
	PasswordConfirmation string  `json:"password_confirmation" binding:"eqfield=Password"`
}

func (h *MeHandler) current(c *gin.Context) (*models.User, bool) {
	var user models.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, middleware.UserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "user_not_found", "The account no longer exists.")
			return nil, false
		}
		httperr.Respond(c, err, "user_fetch_failed")
		return nil, false
	}
	return &user, true
}

func (h *MeHandler) GetMe(c *gin.Context) {
	user, ok := h.current(c)
	if !ok {
		return
	}
	httpresp.OK(c, gin.H{"user": dto.NewUserDTO(user)})
}

// UpdateProfile changes name, email and phone. A new password needs the
// current one.
func (h *MeHandler) UpdateProfile(c *gin.Context) {
	user, ok := h.current(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Binding(c, err)
		return
	}

	email := normalizeEmail(req.Email)

	var n int64
	if err := h.db.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("email = ? AND id <> ?", email, user.ID).
		Count(&n).Error; err != nil {
		httperr.Respond(c, err, "profile_update_failed")
		return
	}
	if n > 0 {
		httperr.Respond(c, apperr.ValidationFields(map[string]string{"email": "has already been taken"}), "")
		return
	}

	if req.Password != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			httperr.BadRequest(c, "invalid_current_password", "The current password is incorrect.")
			return
		}
		hashed, err := HashPassword(req.Password)
		if err != nil {
			httperr.Respond(c, err, "failed_to_hash_password")
			return
		}
		user.PasswordHash = hashed
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Email = email
	if req.Phone != nil {
		user.Phone = *req.Phone
	}

	if err := h.db.WithContext(c.Request.Context()).Save(user).Error; err != nil {
		httperr.Respond(c, err, "profile_update_failed")
		return
	}

	writeAudit(h.audit, c, "profile_updated", "user", &user.ID, nil)
	c.JSON(http.StatusOK, httpresp.DataResponse{
		Data:    gin.H{"user": dto.NewUserDTO(user)},
		Message: "Profile updated.",
	})
}

// UploadAvatar takes a multipart "avatar" image, stores it as a
// WebP thumbnail and saves the URL on the account.
func (h *MeHandler) UploadAvatar(c *gin.Context) {
	if h.store == nil {
		httperr.Write(c, http.StatusServiceUnavailable, "storage_disabled", "File storage is not configured.")
		return
	}

	user, ok := h.current(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, imaging.MaxUploadSize+1<<20)
	fh, err := c.FormFile("avatar")
	if err != nil {
		httperr.Respond(c, apperr.ValidationFields(map[string]string{"avatar": "an image file is required"}), "")
		return
	}
	if fh.Size > imaging.MaxUploadSize {
		httperr.Respond(c, apperr.ValidationFields(map[string]string{"avatar": "must be at most 5MB"}), "")
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.Respond(c, err, "avatar_read_failed")
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		httperr.Respond(c, err, "avatar_read_failed")
		return
	}

	webp, err := imaging.NormalizeAvatar(raw)
	if err != nil {
		httperr.Respond(c, apperr.ValidationFields(map[string]string{"avatar": "must be a JPEG, PNG or WebP image"}), "")
		return
	}

	key := fmt.Sprintf("avatars/%d/%d.webp", user.ID, h.now().Unix())
	url, err := h.store.Put(c.Request.Context(), key, "image/webp", webp)
	if err != nil {
		httperr.Respond(c, err, "avatar_upload_failed")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(user).
		Update("avatar", url).Error; err != nil {
		httperr.Respond(c, err, "avatar_upload_failed")
		return
	}
	user.Avatar = url

	writeAudit(h.audit, c, "avatar_updated", "user", &user.ID, map[string]string{"key": key})
	httpresp.OK(c, gin.H{"user": dto.NewUserDTO(user)})
}
