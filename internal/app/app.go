package app

import (
	"context"
	"fmt"
	"net/http"

	"cosmonotes/internal/config"
	"cosmonotes/internal/handlers"
	"cosmonotes/internal/logger"
	appmw "cosmonotes/internal/middleware"
	"cosmonotes/internal/repository"
	"cosmonotes/internal/repository/inmemory"
	"cosmonotes/internal/repository/postgres"
	"cosmonotes/internal/service"
	"cosmonotes/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type App struct {
	config    *config.Config
	server    *http.Server
	worker    *worker.OverdueWorker
	shutdowns []func()
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development, a.config.Logging.Level); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: flushing logs")
		logger.Sync()
	})

	repo, err := a.initRepository(ctx)
	if err != nil {
		return err
	}

	taskService := service.NewTaskService(repo, a.config.Server.BaseURL)
	overdueService := service.NewOverdueService(repo)
	a.worker = worker.NewOverdueWorker(&overdueService, a.config.Overdue.Interval)

	taskHandler := handlers.NewTaskHandler(&taskService, &overdueService)

	a.server = &http.Server{
		Addr:    a.config.ServerAddr(),
		Handler: a.router(&taskHandler),
	}

	return nil
}

func (a *App) initRepository(ctx context.Context) (repository.TaskRepository, error) {
	switch a.config.Repository.Type {
	case "inmemory":
		logger.Info("App: using in-memory storage")
		return inmemory.NewTaskStorage(), nil

	case "postgres":
		if err := postgres.Migrate(a.config.Database.URL); err != nil {
			return nil, fmt.Errorf("running migrations: %w", err)
		}

		storage, err := postgres.New(ctx, a.config.Database.URL, postgres.PoolConfig{
			MaxConns:    a.config.Database.MaxConnections,
			MinConns:    a.config.Database.MinConnections,
			IdleTimeout: a.config.Database.IdleTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
		}

		a.shutdowns = append(a.shutdowns, storage.Close)
		return storage, nil

	default:
		return nil, fmt.Errorf("unknown repository type %q", a.config.Repository.Type)
	}
}

func (a *App) router(h *handlers.TaskHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(appmw.RequestID)
	r.Use(appmw.Logging)
	r.Use(appmw.RateLimit(100))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.ListTasks)
			r.Post("/", h.CreateTask)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetTaskByID)
				r.Put("/", h.UpdateTaskByID)
				r.Delete("/", h.DeleteTaskByID)

				r.Post("/share", h.ShareTask)
				r.Delete("/share", h.UnshareTask)
			})
		})

		r.Get("/shared/{shareId}", h.GetSharedTask)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/overdue", h.GetOverdueTasks)
			r.Post("/overdue/update", h.TriggerOverdueUpdate)
			r.Post("/overdue/send", h.SendOverdueNotifications)
		})
	})

	r.Get("/health", h.HealthCheck)

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// runs the shutdown functions in reverse registration order.
func (a *App) Run(ctx context.Context) error {
	if a.config.Overdue.Scheduled {
		a.worker.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.shutdown()
		return fmt.Errorf("serving HTTP: %w", err)
	case <-ctx.Done():
	}

	logger.Info("App: shutting down")
	a.worker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: HTTP shutdown failed", err)
	}

	a.shutdown()
	return nil
}

func (a *App) shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
