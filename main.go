package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/tasks-api/modules/activity"
	"github.com/example/tasks-api/modules/api"
	"github.com/example/tasks-api/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	// Load configuration from environment
	httpPort := getEnvInt("HTTP_PORT", 3000)
	listDelay := getEnvDuration("LIST_DELAY", 3*time.Second)
	allowOrigins := getEnv("CORS_ALLOWED_ORIGINS", "*")
	activitySize := getEnvInt("ACTIVITY_LOG_SIZE", activity.DefaultCapacity)
	shutdownTimeout := getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)
	logLevel := getEnv("LOG_LEVEL", "info")

	storeConfig := task.StoreConfig{
		Driver:      getEnv("STORE_DRIVER", task.DriverMemory),
		SQLitePath:  getEnv("DB_PATH", "tasks.db"),
		SQLiteDebug: getEnvBool("DB_DEBUG", false),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPrefix: getEnv("REDIS_PREFIX", "tasks:"),
		PostgresURL: getEnv("DATABASE_URL", "postgres://localhost:5432/tasks?sslmode=disable"),
	}

	log.Println("=== Tasks API ===")
	log.Printf("HTTP Port: %d", httpPort)
	log.Printf("Store: %s", storeConfig.Driver)
	log.Printf("List Delay: %s", listDelay)

	logLevelOption := mono.WithLogLevel(mono.LogLevelInfo)
	if strings.EqualFold(logLevel, "error") {
		logLevelOption = mono.WithLogLevel(mono.LogLevelError)
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		logLevelOption,
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	store, err := task.OpenStore(context.Background(), storeConfig)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", storeConfig.Driver, err)
	}

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - activity: Event consumer (subscribes to task events)
	// - task: Core domain (owns the store, emits events)
	// - api: Driving adapter (Fiber HTTP server, depends on task)
	app.Register(activity.NewModule(activitySize, app.Logger().WithModule("activity")))
	app.Register(task.NewModule(store, storeConfig.Driver, app.Logger().WithModule("task")))
	app.Register(api.NewModule(api.Config{
		Port:         httpPort,
		ListDelay:    listDelay,
		AllowOrigins: allowOrigins,
		ReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
	}, app.Logger().WithModule("api")))

	// Start application
	if err := app.Start(context.Background()); err != nil {
		_ = store.Close()
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(httpPort)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(port int) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", port)
	log.Println("  GET    /tasks                    - List all tasks (slow)")
	log.Println("  POST   /tasks                    - Create a task")
	log.Println("  GET    /tasks/completed          - List completed tasks")
	log.Println("  POST   /tasks/:id                - Update task text")
	log.Println("  DELETE /tasks/:id                - Delete a task")
	log.Println("  POST   /tasks/:id/complete       - Mark a task complete")
	log.Println("  POST   /tasks/:id/incomplete     - Mark a task incomplete")
	log.Println("  GET    /health                   - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
