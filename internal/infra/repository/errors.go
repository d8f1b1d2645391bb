package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	activeSlotIndex = "ux_appointments_active_slot"
)

// mapWriteError turns a collision on the active slot index into the same
// conflict the availability check reports.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == activeSlotIndex {
		return domain.SlotConflict()
	}
	return err
}

// IsForeignKeyViolation reports a delete or write blocked by a row that
// still references the target.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

func offset(page, perPage int) int {
	if page <= 1 {
		return 0
	}
	return (page - 1) * perPage
}
