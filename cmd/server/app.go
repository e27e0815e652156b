package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskhive/internal/config"
	"github.com/phrazzld/taskhive/internal/events"
	"github.com/phrazzld/taskhive/internal/jobs"
	"github.com/phrazzld/taskhive/internal/platform/postgres"
	"github.com/phrazzld/taskhive/internal/platform/todos"
	"github.com/phrazzld/taskhive/internal/realtime"
	"github.com/phrazzld/taskhive/internal/service"
	"github.com/phrazzld/taskhive/internal/service/auth"
	"github.com/phrazzld/taskhive/internal/store"
)

// application holds the shared application dependencies to simplify
// wiring and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore         store.UserStore
	companyStore      store.CompanyStore
	taskStore         store.TaskStore
	notificationStore store.NotificationStore
	jobStore          jobs.JobStore

	// Services
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	taskService      *service.TaskService
	todosClient      *todos.Client

	// Realtime fanout
	registry    *realtime.Registry
	broadcaster *realtime.Broadcaster
	publisher   *realtime.Publisher
	wsHandler   *realtime.Handler

	// Background jobs and events
	eventEmitter *events.InMemoryEventEmitter
	jobRunner    *jobs.Runner
}

// newApplication creates an application instance with all dependencies
// initialized and the background job runner started.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	// Stores
	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost)
	app.companyStore = postgres.NewPostgresCompanyStore(db)
	app.taskStore = postgres.NewPostgresTaskStore(db)
	app.notificationStore = postgres.NewPostgresNotificationStore(db)

	// Background jobs: the email notification factory doubles as the
	// reconstructor for jobs recovered from the database.
	jobFactory := jobs.NewEmailNotificationJobFactory(
		app.taskStore,
		app.userStore,
		app.companyStore,
		app.notificationStore,
		logger,
	)
	app.jobStore = postgres.NewPostgresJobStore(db, jobFactory)

	app.jobRunner = jobs.NewRunner(app.jobStore, jobs.RunnerConfig{
		QueueSize:   cfg.Jobs.QueueSize,
		WorkerCount: cfg.Jobs.WorkerCount,
		StuckJobAge: time.Duration(cfg.Jobs.StuckJobAgeMinutes) * time.Minute,
	}, logger)
	if err := app.jobRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start job runner: %w", err)
	}

	// Event system: task creation fans out to the notification job.
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(
		jobs.NewNotificationEventHandler(jobFactory, app.jobRunner, logger),
	)

	// Realtime fanout
	app.registry = realtime.NewRegistry(logger)
	app.broadcaster = realtime.NewBroadcaster(app.registry, logger)
	app.publisher = realtime.NewPublisher(app.broadcaster, logger)

	tokenValidator := realtime.NewJWTTokenValidator(
		app.jwtService,
		app.userStore,
		app.companyStore,
	)
	app.wsHandler = realtime.NewHandler(
		tokenValidator,
		app.registry,
		cfg.Realtime.SendBufferSize,
		cfg.Realtime.AllowedOrigins,
		logger,
	)

	// Task service with both post-commit side effects wired in.
	app.taskService = service.NewTaskService(
		app.taskStore,
		app.userStore,
		app.publisher,
		app.eventEmitter,
	)

	app.todosClient = todos.NewClient(
		cfg.External.TodosURL,
		time.Duration(cfg.External.TimeoutSeconds)*time.Second,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.jobRunner != nil {
		app.jobRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
