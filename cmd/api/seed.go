package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/peluqueria-anita/salon-api/internal/handlers"
	"github.com/peluqueria-anita/salon-api/internal/infra/cache"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

type seedUser struct {
	Name  string
	Email string
	Role  string
}

var seedUsers = []seedUser{
	{Name: "Anita", Email: "admin@peluqueria-anita.local", Role: models.RoleAdmin},
	{Name: "Carla Estilista", Email: "carla@peluqueria-anita.local", Role: models.RoleStylist},
}

var seedServices = []models.Service{
	{Name: "Corte de Cabello", Description: "Corte clásico o moderno", Price: decimal.RequireFromString("15.00"), Duration: 30, Category: "corte"},
	{Name: "Lavado y Peinado", Description: "Lavado con productos profesionales", Price: decimal.RequireFromString("12.00"), Duration: 45, Category: "peinado"},
	{Name: "Tinte Completo", Description: "Coloración de raíz a puntas", Price: decimal.RequireFromString("45.00"), Duration: 120, Category: "color"},
	{Name: "Manicure", Description: "Limpieza y esmaltado", Price: decimal.RequireFromString("10.00"), Duration: 45, Category: "uñas"},
	{Name: "Tratamiento Capilar", Description: "Hidratación profunda", Price: decimal.RequireFromString("25.00"), Duration: 60, Category: "tratamiento"},
}

var seedClients = []models.Client{
	{Name: "María López", Email: "maria.lopez@example.com", Phone: "0991234567", Gender: "female"},
	{Name: "Juan Pérez", Email: "juan.perez@example.com", Phone: "0987654321", Gender: "male"},
	{Name: "Lucía Torres", Email: "lucia.torres@example.com", Phone: "0971112233", Gender: "female"},
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo staff, services and clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			if len(password) < handlers.MinPasswordLength {
				return fmt.Errorf("--password must have at least %d characters", handlers.MinPasswordLength)
			}

			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			if err := seed(db, password); err != nil {
				return err
			}

			if cfg.RedisURL != "" {
				ctx := context.Background()
				client, err := cache.Open(ctx, cfg.RedisURL)
				if err != nil {
					log.Warn().Err(err).Msg("redis unavailable, cache not flushed")
				} else {
					defer client.Close()
					if err := cache.NewRedisCache(client, statsCachePrefix, cfg.StatsCacheTTL).Flush(ctx); err != nil {
						log.Warn().Err(err).Msg("cache flush failed")
					}
				}
			}

			log.Info().Msg("seed completed")
			return nil
		},
	}
	cmd.Flags().String("password", "password123", "Password for seeded staff accounts")
	return cmd
}

// seed is idempotent: rows are matched on their unique column.
func seed(db *gorm.DB, password string) error {
	hashed, err := handlers.HashPassword(password)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, u := range seedUsers {
			user := models.User{
				Name:         u.Name,
				Email:        u.Email,
				PasswordHash: hashed,
				Role:         u.Role,
				IsActive:     true,
			}
			if err := tx.Where(models.User{Email: u.Email}).FirstOrCreate(&user).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", u.Email, err)
			}
		}

		for _, s := range seedServices {
			s.IsActive = true
			if err := tx.Where(models.Service{Name: s.Name}).FirstOrCreate(&s).Error; err != nil {
				return fmt.Errorf("seed service %s: %w", s.Name, err)
			}
		}

		for _, cl := range seedClients {
			cl.IsActive = true
			if err := tx.Where(models.Client{Email: cl.Email}).FirstOrCreate(&cl).Error; err != nil {
				return fmt.Errorf("seed client %s: %w", cl.Email, err)
			}
		}
		return nil
	})
}
