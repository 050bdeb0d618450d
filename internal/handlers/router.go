package handlers

import (
	"net/http"
	"time"

	"github.com/awakra/to-do-list/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AllowedOrigins []string
	RateLimit      int
	Timeout        time.Duration
}

func NewRouter(cfg RouterConfig, tasks *TaskHandler, auth *AuthHandler, health *HealthHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	if cfg.Timeout > 0 {
		r.Use(chimw.Timeout(cfg.Timeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", health.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimit))
		}

		r.Post("/signup", auth.Signup)
		r.Post("/signin", auth.Signin)
		r.Get("/logout", auth.Logout)
		r.Post("/reset_password", auth.RequestReset)
		r.Get("/reset_password/{token}", auth.CheckResetToken)
		r.Post("/reset_password/{token}", auth.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(auth.Sessions))

			r.Get("/dashboard", tasks.Dashboard)
			r.Get("/completed_todos", tasks.Completed)
			r.Get("/api/todos_calendar", tasks.Calendar)

			r.Route("/todo", func(r chi.Router) {
				r.Post("/new", tasks.CreateTask)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", tasks.GetTask)
					r.Post("/update", tasks.UpdateTask)
					r.Post("/delete", tasks.DeleteTask)
					r.Post("/complete", tasks.CompleteTask)
					r.Post("/restore", tasks.RestoreTask)
				})
			})
		})
	})

	return r
}
