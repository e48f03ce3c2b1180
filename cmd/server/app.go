package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/events"
	"github.com/phrazzld/task-manager-api/internal/platform/postgres"
	"github.com/phrazzld/task-manager-api/internal/platform/rabbitmq"
	"github.com/phrazzld/task-manager-api/internal/redact"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// notifierFlushTimeout bounds how long shutdown waits for pending
// notifications.
const notifierFlushTimeout = 5 * time.Second

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Service interfaces
	userService service.UserService
	taskService service.TaskService

	// Event system; broker is nil when notifications are only logged
	notifier *events.AsyncEmitter
	broker   *rabbitmq.Client
}

// newApplication creates a new application instance with all dependencies initialized.
// The database connection must already be established.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	hasher := auth.NewBcryptHasher(cfg.Auth.BCryptCost)

	// Initialize stores
	userStore := postgres.NewPostgresUserStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	transactor := store.NewSQLTransactor(db)

	// Initialize event emitter
	dispatcher := events.NewInMemoryEventEmitter(logger)
	if cfg.Notify.AMQPURL != "" {
		app.broker, err = rabbitmq.NewClient(cfg.Notify, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to message broker: %w", err)
		}
		dispatcher.RegisterHandler(app.broker)
		logger.Info("Account notifications published to queue", "queue", cfg.Notify.Queue)
	} else {
		dispatcher.RegisterHandler(events.NewLogHandler(logger))
		logger.Info("Account notifications are logged only")
	}
	app.notifier = events.NewAsyncEmitter(dispatcher, events.AsyncConfig{
		Workers:   cfg.Notify.Workers,
		QueueSize: cfg.Notify.QueueSize,
	}, logger)

	app.userService, err = service.NewUserService(
		userStore,
		taskStore,
		transactor,
		hasher,
		jwtService,
		app.notifier,
		logger,
	)
	if err != nil {
		app.closeBroker()
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.taskService, err = service.NewTaskService(taskStore, transactor, logger)
	if err != nil {
		app.closeBroker()
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup flushes pending notifications and closes the broker and database
// connections, in that order.
func (app *application) cleanup() {
	if app.notifier != nil {
		ctx, cancel := context.WithTimeout(context.Background(), notifierFlushTimeout)
		if err := app.notifier.Close(ctx); err != nil {
			app.logger.Warn("Pending notifications dropped at shutdown", "error", redact.Error(err))
		}
		cancel()
	}

	app.closeBroker()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", redact.Error(err))
		}
	}
}

func (app *application) closeBroker() {
	if app.broker == nil {
		return
	}
	if err := app.broker.Close(); err != nil {
		app.logger.Error("Error closing message broker connection", "error", redact.Error(err))
	}
}
