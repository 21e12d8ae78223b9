package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/review-system/internal"
	"github.com/frahmantamala/review-system/internal/auth"
	authPostgres "github.com/frahmantamala/review-system/internal/auth/postgres"
	"github.com/frahmantamala/review-system/internal/core/events"
	"github.com/frahmantamala/review-system/internal/department"
	deptPostgres "github.com/frahmantamala/review-system/internal/department/postgres"
	"github.com/frahmantamala/review-system/internal/organization"
	orgPostgres "github.com/frahmantamala/review-system/internal/organization/postgres"
	"github.com/frahmantamala/review-system/internal/transport"
	"github.com/frahmantamala/review-system/internal/transport/rest"
	"github.com/frahmantamala/review-system/internal/user"
	userPostgres "github.com/frahmantamala/review-system/internal/user/postgres"
	"github.com/frahmantamala/review-system/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm shares the sqlx connection pool instead of opening its own.
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	bus := events.NewEventBus(appLogger)
	events.RegisterAuditLogger(bus, appLogger)

	tokenGen := auth.NewJWTTokenGenerator(config.Security.TokenSecret, config.Security.TokenTTL)
	authService := auth.NewService(authPostgres.NewRepository(db), tokenGen, config.Security.BCryptCost, appLogger)
	authHandler := auth.NewHandler(authService)

	base := transport.NewBaseHandler(appLogger)

	orgService := organization.NewService(orgPostgres.NewOrganizationRepository(gormDB), bus, appLogger)
	orgHandler := organization.NewHandler(base, orgService)

	deptService := department.NewService(
		deptPostgres.NewDepartmentRepository(gormDB),
		deptPostgres.NewOrganizationDirectory(gormDB),
		deptPostgres.NewManagerDirectory(gormDB),
		bus,
		appLogger,
	)
	deptHandler := department.NewHandler(base, deptService)

	userService := user.NewService(
		userPostgres.NewUserRepository(gormDB),
		userPostgres.NewDepartmentDirectory(gormDB),
		bus,
		appLogger,
		config.Security.BCryptCost,
	)
	userHandler := user.NewHandler(base, userService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, authHandler, orgHandler, deptHandler, userHandler, appLogger, config.Server.AllowedOrigins)

	return &Dependencies{
		Config: config,
		Logger: appLogger,
		DB:     db,
		Router: router,
	}, nil
}

// initDB opens the database connection through the pgx stdlib driver.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
