package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/taskcourse/apiserver/config"
	"github.com/taskcourse/apiserver/internal/auth"
	"github.com/taskcourse/apiserver/internal/db"
	"github.com/taskcourse/apiserver/internal/events"
	"github.com/taskcourse/apiserver/internal/handlers"
	"github.com/taskcourse/apiserver/internal/mq"
	"github.com/taskcourse/apiserver/internal/ratelimit"
	"github.com/taskcourse/apiserver/internal/services"
	"github.com/taskcourse/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	queue      *mq.MQ
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queue, err := mq.NewFromConfig(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	publisher := events.NewPublisher(queue)

	userRepo := store.NewUserRepository(dbConn)
	taskRepo := store.NewTaskRepository(dbConn)
	courseRepo := store.NewCourseRepository(dbConn)

	creds := auth.NewCredentials(cfg.JWTSecret, cfg.TokenTTL)
	userService := services.NewUserService(userRepo, creds)
	authService := services.NewAuthService(userRepo, creds, publisher)
	taskService := services.NewTaskService(taskRepo)
	courseService := services.NewCourseService(courseRepo, userRepo, publisher)

	loginLimiter := ratelimit.NewFixedWindow(cfg.LoginLimit.Attempts, cfg.LoginLimit.Window)
	authMiddleware := handlers.RequireAuth(creds, userService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)

	limitWindowMinutes := int(cfg.LoginLimit.Window.Round(time.Minute) / time.Minute)
	router.Route("/"+strings.Trim(cfg.APIPrefix, "/"), func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, authService, loginLimiter, limitWindowMinutes)
		})
		r.Route("/tasks", func(r chi.Router) {
			handlers.TaskRouter(r, taskService, authMiddleware)
		})
		r.Route("/courses", func(r chi.Router) {
			handlers.CourseRouter(r, courseService, authMiddleware)
		})
		r.Route("/users", func(r chi.Router) {
			handlers.UserRouter(r, userService, authMiddleware)
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		queue:      queue,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
