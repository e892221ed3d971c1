package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/iehaus/buildboard/internal/authz"
	"github.com/iehaus/buildboard/internal/config"
	"github.com/iehaus/buildboard/internal/dashboard"
	"github.com/iehaus/buildboard/internal/employee"
	employeerepo "github.com/iehaus/buildboard/internal/employee/repositoryimpl"
	"github.com/iehaus/buildboard/internal/event"
	"github.com/iehaus/buildboard/internal/eventbus"
	"github.com/iehaus/buildboard/internal/project"
	projectrepo "github.com/iehaus/buildboard/internal/project/repositoryimpl"
	"github.com/iehaus/buildboard/internal/pushnotification"
	"github.com/iehaus/buildboard/internal/pushsubscription"
	pushsubrepo "github.com/iehaus/buildboard/internal/pushsubscription/repositoryimpl"
	"github.com/iehaus/buildboard/internal/task"
	taskrepo "github.com/iehaus/buildboard/internal/task/repositoryimpl"
	"github.com/iehaus/buildboard/internal/taskcatalog"
	"github.com/iehaus/buildboard/pkg/clog"
	"github.com/iehaus/buildboard/pkg/storage"

	server "github.com/iehaus/buildboard/internal"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewHTTPTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	loc, err := time.LoadLocation(env.Timezone)
	if err != nil {
		slog.Error("failed to load timezone", "timezone", env.Timezone, "error", err)
		os.Exit(1)
	}

	// Setup database
	if dir := filepath.Dir(env.DSN); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("failed to create database directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}
	db, err := gorm.Open(sqlite.Open(env.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		slog.Error("failed to open database", "dsn", env.DSN, "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&employee.Employee{},
		&project.Project{},
		&task.Task{},
		&pushsubscription.Subscription{},
	); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Setup catalog source
	catalogEnv := config.CatalogEnvFromEnv(env)
	var source storage.Source
	var watchDir string
	switch catalogEnv.Type {
	case "s3":
		source, err = storage.NewS3Source(context.Background(), catalogEnv.S3Bucket, catalogEnv.S3Prefix, catalogEnv.S3Region)
		if err != nil {
			slog.Error("failed to create S3 catalog source", "error", err)
			os.Exit(1)
		}
	default:
		local, err := storage.NewLocalSource(catalogEnv.BaseDir)
		if err != nil {
			slog.Error("failed to create local catalog source", "error", err)
			os.Exit(1)
		}
		source = local
		watchDir = local.BasePath()
	}

	// Setup event bus
	bus := eventbus.New()

	// Setup repositories
	employeeRepo := employeerepo.NewGormRepository(db)
	projectRepo := projectrepo.NewGormRepository(db)
	taskRepo := taskrepo.NewGormRepository(db)
	pushSubRepo := pushsubrepo.NewGormRepository(db)

	// Setup catalog
	catalog := taskcatalog.New(source)
	if err := catalog.Load(context.Background()); err != nil {
		slog.Error("failed to load task catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("task catalog loaded", "templates", catalog.Len())

	// Setup authorization and servers
	evaluator := authz.NewEvaluator()
	employeeServer := employee.NewServer(employeeRepo, evaluator)
	projectServer := project.NewServer(projectRepo, employeeRepo, evaluator, taskRepo, bus)
	regenerator := task.NewRegenerator(projectRepo, catalog, taskRepo, bus, nil)
	taskServer := task.NewServer(taskRepo, projectRepo, employeeRepo, evaluator, regenerator, bus, nil)
	catalogServer := taskcatalog.NewServer(catalog, employeeRepo, evaluator)

	builder := dashboard.NewBuilder(projectRepo, employeeRepo, taskRepo, evaluator, loc, nil)
	refresher := dashboard.NewRefresher(builder, bus)
	dashboardServer := dashboard.NewServer(builder, refresher, employeeRepo)
	eventServer := event.NewServer(bus)

	// Setup push notification
	vapidEnv := config.VAPIDEnvFromEnv(env)
	pushSender := pushnotification.NewSender(vapidEnv, pushSubRepo)
	pushNotificationServer := pushnotification.NewServer(vapidEnv, pushSubRepo, pushSender)
	pushDispatcher := pushnotification.NewDispatcher(bus, projectRepo, taskRepo, pushSender, env.DigestAt, loc)

	srv := server.NewServer(
		env,
		employeeServer,
		projectServer,
		taskServer,
		catalogServer,
		dashboardServer,
		eventServer,
		pushNotificationServer,
	)

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	go refresher.Run(ctx)
	go pushDispatcher.Start(ctx)
	if watchDir != "" {
		watcher := taskcatalog.NewWatcher(catalog, watchDir, bus)
		go func() {
			if err := watcher.Start(ctx); err != nil {
				slog.Error("catalog watcher failed", "error", err)
			}
		}()
	}

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
