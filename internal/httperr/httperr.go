package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
)

type HTTPError struct {
	Code    string            `json:"error_code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func Unprocessable(c *gin.Context, code, message string) {
	Write(c, http.StatusUnprocessableEntity, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// StatusFor maps an error kind to the HTTP status the API answers with.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindConflict, apperr.KindInvalidState, apperr.KindOverpayment:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err. Typed rule failures keep their code; anything else is
// logged and answered as a 500 with fallbackCode.
func Respond(c *gin.Context, err error, fallbackCode string) {
	if ae, ok := apperr.As(err); ok {
		c.JSON(StatusFor(ae.Kind), HTTPError{
			Code:    ae.Code,
			Message: ae.Message,
			Errors:  ae.Fields,
		})
		return
	}

	zerolog.Ctx(c.Request.Context()).Error().
		Err(err).
		Str("error_code", fallbackCode).
		Msg("unexpected failure")

	Internal(c, fallbackCode, "Unexpected error.")
}

// Binding answers a request whose body or query failed gin binding.
func Binding(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, HTTPError{
		Code:    "invalid_request",
		Message: err.Error(),
	})
}
