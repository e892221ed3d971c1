package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/iehaus/buildboard/internal/config"
	"github.com/iehaus/buildboard/internal/dashboard"
	"github.com/iehaus/buildboard/internal/employee"
	"github.com/iehaus/buildboard/internal/event"
	"github.com/iehaus/buildboard/internal/project"
	"github.com/iehaus/buildboard/internal/pushnotification"
	"github.com/iehaus/buildboard/internal/task"
	"github.com/iehaus/buildboard/internal/taskcatalog"
	"github.com/iehaus/buildboard/pkg/cerr"
	"github.com/iehaus/buildboard/pkg/clog"
)

type Server struct {
	server                 *http.Server
	env                    *config.Env
	employeeServer         *employee.Server
	projectServer          *project.Server
	taskServer             *task.Server
	catalogServer          *taskcatalog.Server
	dashboardServer        *dashboard.Server
	eventServer            *event.Server
	pushNotificationServer *pushnotification.Server
}

func NewServer(
	env *config.Env,
	employeeServer *employee.Server,
	projectServer *project.Server,
	taskServer *task.Server,
	catalogServer *taskcatalog.Server,
	dashboardServer *dashboard.Server,
	eventServer *event.Server,
	pushNotificationServer *pushnotification.Server,
) *Server {
	return &Server{
		env:                    env,
		employeeServer:         employeeServer,
		projectServer:          projectServer,
		taskServer:             taskServer,
		catalogServer:          catalogServer,
		dashboardServer:        dashboardServer,
		eventServer:            eventServer,
		pushNotificationServer: pushNotificationServer,
	}
}

// ListenAndServe starts the HTTP server. The provided context is used as the
// base context for all incoming requests via http.Server.BaseContext, so
// cancelling it (e.g. on shutdown signal) also cancels in-flight request
// contexts.
func (s *Server) ListenAndServe(ctx context.Context) error {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(clog.SlogChiMiddleware())

		// The SSE stream writes its own response, so it stays outside the
		// JSON response middleware.
		s.eventServer.Routes(r)

		r.Group(func(r chi.Router) {
			r.Use(cerr.NewJSONResponseChiMiddleware())
			s.employeeServer.Routes(r)
			s.projectServer.Routes(r)
			s.taskServer.Routes(r)
			s.catalogServer.Routes(r)
			s.dashboardServer.Routes(r)
			s.pushNotificationServer.Routes(r)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"NotFound","message":"not found"}`))
		})
	})

	mux := http.NewServeMux()
	mux.Handle("/health", &HealthChecker{})
	mux.Handle("/api/", r)

	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr: addr,
		Handler: h2c.NewHandler(cors.New(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}).Handler(s.apiKeyMiddleware(mux)), &http2.Server{}),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip API key check for the health endpoint.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			apiKey = r.Header.Get("Authorization")
			if len(apiKey) > 7 && apiKey[:7] == "Bearer " {
				apiKey = apiKey[7:]
			}
		}
		if apiKey != s.env.APIKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
