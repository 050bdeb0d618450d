package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/awakra/to-do-list/internal/config"
	"github.com/awakra/to-do-list/internal/handlers"
	"github.com/awakra/to-do-list/internal/logger"
	"github.com/awakra/to-do-list/internal/mailer"
	"github.com/awakra/to-do-list/internal/repository/postgres"
	taskmem "github.com/awakra/to-do-list/internal/repository/task/inmemory"
	taskpg "github.com/awakra/to-do-list/internal/repository/task/postgres"
	usermem "github.com/awakra/to-do-list/internal/repository/user/inmemory"
	userpg "github.com/awakra/to-do-list/internal/repository/user/postgres"
	"github.com/awakra/to-do-list/internal/service"
	"github.com/awakra/to-do-list/internal/session"
	"github.com/awakra/to-do-list/internal/worker"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const requestTimeout = 30 * time.Second

type App struct {
	config    *config.Config
	server    *http.Server
	router    http.Handler
	tasks     service.TaskRepository
	users     service.UserRepository
	sessions  *session.Store
	worker    *worker.ReminderWorker
	shutdowns []func() error // освобождение ресурсов в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func() error, 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() error {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
		return nil
	})

	if err := a.initRepositories(ctx); err != nil {
		return err
	}
	if err := a.initSessions(ctx); err != nil {
		return err
	}

	sender, err := a.initMailer()
	if err != nil {
		return err
	}

	tokens := service.NewTokenSigner(a.config.SecretKey, a.config.ResetToken.TTL)
	authService := service.NewAuthService(a.users, tokens, sender, a.config.Server.BaseURL)
	taskService := service.NewTaskService(a.tasks)

	if a.config.Reminder.Enabled {
		hour, minute, err := a.config.Reminder.Clock()
		if err != nil {
			return err
		}
		a.worker = worker.NewReminderWorker(a.tasks, a.users, sender, hour, minute,
			a.config.Server.BaseURL+"/dashboard")
	}

	health := handlers.NewHealthHandler(map[string]handlers.HealthChecker{
		"database": taskService,
		"sessions": a.sessions,
	})
	a.router = handlers.NewRouter(
		handlers.RouterConfig{
			AllowedOrigins: a.config.Server.AllowedOrigins,
			RateLimit:      a.config.Server.RateLimit,
			Timeout:        requestTimeout,
		},
		handlers.NewTaskHandler(taskService),
		handlers.NewAuthHandler(authService, a.sessions, handlers.CookieConfig{
			TTL:              a.config.Session.TTL,
			RememberDuration: a.config.Session.RememberDuration,
			Secure:           a.config.Session.SecureCookie,
		}),
		health,
	)

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           otelhttp.NewHandler(a.router, "todo-api"),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
	}

	return nil
}

func (a *App) initRepositories(ctx context.Context) error {
	switch a.config.Repository.Type {
	case config.RepositoryInMemory:
		logger.Info("Используется хранилище в памяти")
		a.tasks = taskmem.NewTaskStorage()
		a.users = usermem.NewUserStorage()
		return nil
	default:
		// миграции идут после Connect: он дожидается базы с повторами
		pool, err := postgres.Connect(ctx, a.config.Database)
		if err != nil {
			return fmt.Errorf("подключение к БД: %w", err)
		}
		a.shutdowns = append(a.shutdowns, func() error {
			pool.Close()
			return nil
		})
		if err := postgres.Migrate(a.config.Database.URL); err != nil {
			return fmt.Errorf("миграции: %w", err)
		}
		a.tasks = taskpg.New(pool)
		a.users = userpg.New(pool)
		return nil
	}
}

// в режиме inmemory сессии живут во встроенном miniredis
func (a *App) initSessions(ctx context.Context) error {
	var client *redis.Client
	if a.config.Repository.Type == config.RepositoryInMemory {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("запуск встроенного Redis: %w", err)
		}
		a.shutdowns = append(a.shutdowns, func() error {
			mr.Close()
			return nil
		})
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	} else {
		var err error
		client, err = session.NewClient(ctx, a.config.Redis)
		if err != nil {
			return err
		}
	}

	a.shutdowns = append(a.shutdowns, client.Close)
	a.sessions = session.NewStore(client)
	return nil
}

func (a *App) initMailer() (service.Mailer, error) {
	if !a.config.MailEnabled() {
		logger.Warn("SMTP не настроен, письма пишутся в лог")
		return mailer.LogSender{}, nil
	}
	sender, err := mailer.NewSMTPSender(a.config.Mail)
	if err != nil {
		return nil, fmt.Errorf("инициализация почты: %w", err)
	}
	return sender, nil
}

// Run блокируется до SIGINT/SIGTERM или ошибки сервера
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP сервер: %w", err)
		}
		return nil
	})

	if a.worker != nil {
		g.Go(func() error {
			a.worker.Start(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Получен сигнал остановки")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("остановка HTTP сервера: %w", err)
		}
		return nil
	})

	err := g.Wait()
	return multierr.Append(err, a.Close())
}

// Close освобождает ресурсы после остановки сервера и воркера
func (a *App) Close() error {
	var err error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.shutdowns[i]())
	}
	a.shutdowns = nil
	return err
}

func (a *App) Router() http.Handler {
	return a.router
}
