package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	domain "github.com/example/tasks-api/domain/task"
	"github.com/example/tasks-api/modules/activity"
	"github.com/example/tasks-api/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Config holds the HTTP server settings.
type Config struct {
	Port         int
	ListDelay    time.Duration
	AllowOrigins string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// APIModule is the driving adapter that exposes the task REST endpoints.
// It calls into the core domain (task module) via the TaskPort interface.
type APIModule struct {
	cfg          Config
	app          *fiber.App
	taskPort     task.TaskPort
	activityPort activity.ActivityPort
	logger       types.Logger

	// shutdown is closed when Stop begins, releasing pending list delays.
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(cfg Config, logger types.Logger) *APIModule {
	if cfg.AllowOrigins == "" {
		cfg.AllowOrigins = "*"
	}
	return &APIModule{
		cfg:      cfg,
		logger:   logger,
		shutdown: make(chan struct{}),
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
// The framework will call SetDependencyServiceContainer for each dependency.
func (m *APIModule) Dependencies() []string {
	return []string{"task", "activity"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "task":
		m.taskPort = task.NewTaskAdapter(container)
	case "activity":
		m.activityPort = activity.NewActivityAdapter(container)
	}
}

// Start builds the Fiber app and starts listening.
// Returns an error if required dependencies are not set or the port cannot be bound.
func (m *APIModule) Start(_ context.Context) error {
	if m.taskPort == nil {
		return fmt.Errorf("taskPort dependency not set")
	}
	if m.activityPort == nil {
		return fmt.Errorf("activityPort dependency not set")
	}

	m.app = m.newApp()
	addr := fmt.Sprintf(":%d", m.cfg.Port)

	// Start server in goroutine with startup error detection
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			errCh <- err
		}
	}()

	// Wait briefly to catch immediate startup errors (port in use, permission denied)
	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "addr", addr, "list_delay", m.cfg.ListDelay.String())
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	m.shutdownOnce.Do(func() { close(m.shutdown) })

	if m.app != nil {
		m.logger.Info("Shutting down HTTP server")
		if err := m.app.ShutdownWithContext(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}
	m.logger.Info("HTTP server stopped")
	return nil
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.cfg.Port,
		},
	}
}

// bodyLimit caps request bodies; text within domain.MaxTextLength always fits,
// even with JSON escaping.
const bodyLimit = 8 * domain.MaxTextLength

// newApp creates the Fiber app with middleware and the task routes.
func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Tasks API",
		DisableStartupMessage: true,
		UnescapePath:          true,
		BodyLimit:             bodyLimit,
		ReadTimeout:           m.cfg.ReadTimeout,
		WriteTimeout:          m.cfg.WriteTimeout,
		ErrorHandler:          m.errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: m.cfg.AllowOrigins,
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	for _, r := range m.routes() {
		app.Add(r.method, r.path, r.handler)
	}
	return app
}
