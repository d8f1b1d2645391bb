package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/peluqueria-anita/salon-api/internal/audit"
	"github.com/peluqueria-anita/salon-api/internal/config"
	dbpkg "github.com/peluqueria-anita/salon-api/internal/db"
	"github.com/peluqueria-anita/salon-api/internal/handlers"
	"github.com/peluqueria-anita/salon-api/internal/infra/cache"
	"github.com/peluqueria-anita/salon-api/internal/infra/checkout"
	infraRepo "github.com/peluqueria-anita/salon-api/internal/infra/repository"
	"github.com/peluqueria-anita/salon-api/internal/infra/storage"
	"github.com/peluqueria-anita/salon-api/internal/jobs"
	"github.com/peluqueria-anita/salon-api/internal/logger"
	"github.com/peluqueria-anita/salon-api/internal/middleware"
	"github.com/peluqueria-anita/salon-api/internal/models"
	"github.com/peluqueria-anita/salon-api/internal/routes"
	"github.com/peluqueria-anita/salon-api/internal/timezone"
	"github.com/peluqueria-anita/salon-api/internal/usecase/appointment"
	"github.com/peluqueria-anita/salon-api/internal/usecase/payment"
	"github.com/peluqueria-anita/salon-api/internal/usecase/stats"
)

const statsCachePrefix = "anita:"

func main() {
	rootCmd := &cobra.Command{
		Use:   "salon-api",
		Short: "Peluquería Anita administration API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(createUserCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads config, builds the logger and opens the database.
func bootstrap() (*config.Config, zerolog.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}

	log := logger.New(cfg.Env)

	db, err := dbpkg.Open(cfg, log)
	if err != nil {
		return nil, log, nil, err
	}
	return cfg, log, db, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			if err := dbpkg.Migrate(db); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}
}

func createUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")

			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			if len(password) < handlers.MinPasswordLength {
				return fmt.Errorf("--password must have at least %d characters", handlers.MinPasswordLength)
			}
			switch role {
			case models.RoleAdmin, models.RoleStylist, models.RoleClient:
			default:
				return fmt.Errorf("--role must be admin, stylist or client")
			}
			if name == "" {
				name = email
			}

			_, log, db, err := bootstrap()
			if err != nil {
				return err
			}

			hashed, err := handlers.HashPassword(password)
			if err != nil {
				return err
			}

			user := models.User{
				Name:         name,
				Email:        email,
				PasswordHash: hashed,
				Role:         role,
				IsActive:     true,
			}
			if err := db.Create(&user).Error; err != nil {
				return fmt.Errorf("create user: %w", err)
			}

			log.Info().Uint("user_id", user.ID).Str("role", role).Msg("user created")
			return nil
		},
	}
	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().String("email", "", "Login email")
	cmd.Flags().String("password", "", "Plain password")
	cmd.Flags().String("role", models.RoleAdmin, "admin | stylist | client")
	return cmd
}

// optionalServices connects what is configured. Unset interfaces stay nil
// so handlers can tell the feature is off.
func optionalServices(ctx context.Context, cfg *config.Config, log zerolog.Logger) (stats.Cache, handlers.ObjectStore, payment.CheckoutProvider) {
	var (
		statsCache stats.Cache
		store      handlers.ObjectStore
		provider   payment.CheckoutProvider
	)

	if cfg.RedisURL != "" {
		client, err := cache.Open(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, statistics are not cached")
		} else {
			statsCache = cache.NewRedisCache(client, statsCachePrefix, cfg.StatsCacheTTL)
			log.Info().Dur("ttl", cfg.StatsCacheTTL).Msg("statistics cache enabled")
		}
	}

	if cfg.S3Bucket != "" {
		s3Store, err := storage.NewS3Store(storage.Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Warn().Err(err).Msg("object storage disabled")
		} else {
			store = s3Store
			log.Info().Str("bucket", cfg.S3Bucket).Msg("object storage enabled")
		}
	}

	if cfg.MercadoPagoToken != "" {
		mp, err := checkout.NewMercadoPago(cfg.MercadoPagoToken)
		if err != nil {
			log.Warn().Err(err).Msg("online checkout disabled")
		} else {
			provider = mp
			log.Info().Msg("online checkout enabled")
		}
	}

	return statsCache, store, provider
}

func runServer() error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		log.Error().Err(err).Msg("failed to start")
		return err
	}

	if err := dbpkg.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	ctx := context.Background()
	now := timezone.Clock(cfg.Timezone)

	// ------------------------------
	// Audit
	// ------------------------------
	dispatcher := audit.NewDispatcher(audit.New(db), log)
	defer dispatcher.Close()

	statsCache, store, provider := optionalServices(ctx, cfg, log)

	// ------------------------------
	// Jobs
	// ------------------------------
	scheduler := jobs.New(timezone.Location(cfg.Timezone), log)
	noShows := appointment.NewMarkNoShows(infraRepo.NewAppointmentGormRepository(db), dispatcher, now)
	if err := scheduler.Register("no_show_sweep", cfg.NoShowCron, noShows); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule jobs")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// ------------------------------
	// HTTP
	// ------------------------------
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewRateLimiter(cfg.LoginRatePerMin)
	go func() {
		t := time.NewTicker(5 * time.Minute)
		defer t.Stop()
		for range t.C {
			limiter.Cleanup(10 * time.Minute)
		}
	}()

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		DB:       db,
		Config:   cfg,
		Audit:    dispatcher,
		Limiter:  limiter,
		Cache:    statsCache,
		Store:    store,
		Checkout: provider,
		Now:      now,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("timezone", cfg.Timezone).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
