package handlers

import (
	"gorm.io/gorm"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/infra/repository"
)

// deleteUnreferenced removes row when refs counts nothing pointing at it.
// A reference that lands after the count is caught by the foreign key and
// reported as the same inUse error.
func deleteUnreferenced(db *gorm.DB, row any, refs *gorm.DB, inUse *apperr.Error) error {
	var n int64
	if err := refs.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return inUse
	}

	err := db.Delete(row).Error
	if repository.IsForeignKeyViolation(err) {
		return inUse
	}
	return err
}

// createWithActive inserts row and, in the same transaction, writes an
// explicit is_active=false that the column default would otherwise swallow.
func createWithActive(db *gorm.DB, row any, active *bool) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		if active == nil || *active {
			return nil
		}
		return tx.Model(row).Update("is_active", false).Error
	})
}
