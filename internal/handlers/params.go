package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/httperr"
	"github.com/peluqueria-anita/salon-api/internal/middleware"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

// pathID reads a numeric path parameter. A malformed id answers 404 and
// returns false.
func pathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		httperr.NotFound(c, "not_found", "Resource not found.")
		return 0, false
	}
	return uint(v), true
}

// actorID is the authenticated user, nil on public routes.
func actorID(c *gin.Context) *uint {
	id := middleware.UserID(c)
	if id == 0 {
		return nil
	}
	return &id
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return def
	}
	return v
}

func queryUint(c *gin.Context, key string) uint {
	v, err := strconv.ParseUint(strings.TrimSpace(c.Query(key)), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

// queryDates parses the named YYYY-MM-DD query parameters. Missing ones stay
// zero; a malformed one answers 422 and returns false.
func queryDates(c *gin.Context, keys ...string) ([]models.Date, bool) {
	out := make([]models.Date, len(keys))
	fields := map[string]string{}
	for i, k := range keys {
		raw := strings.TrimSpace(c.Query(k))
		if raw == "" {
			continue
		}
		d, err := models.ParseDate(raw)
		if err != nil {
			fields[k] = "must be a date formatted YYYY-MM-DD"
			continue
		}
		out[i] = d
	}
	if len(fields) > 0 {
		httperr.Respond(c, apperr.ValidationFields(fields), "invalid_request")
		return nil, false
	}
	return out, true
}

func queryBool(c *gin.Context, key string) *bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(key))) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}
