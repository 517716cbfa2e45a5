package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/edusurvey/apiserver/config"
	"github.com/edusurvey/apiserver/internal/db"
	"github.com/edusurvey/apiserver/internal/handlers"
	"github.com/edusurvey/apiserver/internal/mq"
	"github.com/edusurvey/apiserver/internal/services"
	"github.com/edusurvey/apiserver/internal/storage"
	"github.com/edusurvey/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *mq.Events
}

// New constructs a Server with the full survey API wired up. The event
// broker and snapshot store are optional: an empty backend selector
// disables them without changing any endpoint behavior.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	events, err := newEvents(cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	snapshots, err := newSnapshotStore(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		_ = events.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	studentRepo := store.NewStudentSurveyRepository(dbConn)
	teacherRepo := store.NewTeacherSurveyRepository(dbConn)

	userService := services.NewUserService(userRepo)
	studentService := services.NewStudentSurveyService(studentRepo, events)
	teacherService := services.NewTeacherSurveyService(teacherRepo, events)
	exportService := services.NewExportService(studentService, teacherService, snapshots)

	authMiddleware := handlers.Authenticate(userService, cfg.JWT.Secret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, cfg.JWT.Secret, cfg.JWT.TokenTTL, authMiddleware)
	})
	router.Route("/users", func(r chi.Router) {
		r.Use(authMiddleware)
		handlers.UserRouter(r, userService)
	})
	router.Route("/student-surveys", func(r chi.Router) {
		r.Use(authMiddleware)
		handlers.StudentSurveyRouter(r, studentService)
	})
	router.Route("/teacher-surveys", func(r chi.Router) {
		r.Use(authMiddleware)
		handlers.TeacherSurveyRouter(r, teacherService)
	})
	router.Route("/export", func(r chi.Router) {
		r.Use(authMiddleware)
		handlers.ExportRouter(r, exportService)
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
		events:     events,
	}, nil
}

// newEvents builds the survey-event publisher for the configured
// broker; nil (disabled) when no backend is selected.
func newEvents(cfg config.Config) (*mq.Events, error) {
	switch cfg.MQBackend {
	case "":
		return nil, nil
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		return mq.NewEvents(mq.New(client)), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(context.Background(), cfg.PubSub)
		if err != nil {
			return nil, fmt.Errorf("connect pubsub: %w", err)
		}
		return mq.NewEvents(mq.New(client)), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQBackend)
	}
}

// newSnapshotStore builds the export-snapshot store for the configured
// backend; nil (disabled) when no backend is selected.
func newSnapshotStore(ctx context.Context, cfg config.Config) (*storage.SnapshotStore, error) {
	var backend storage.ObjectStorage
	switch cfg.StorageBackend {
	case "":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("connect minio: %w", err)
		}
		backend = client
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("connect gcs: %w", err)
		}
		backend = client
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	snapshots := storage.NewSnapshotStore(backend)
	if err := snapshots.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure snapshot bucket: %w", err)
	}
	return snapshots, nil
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
	if s.db != nil {
		_ = s.db.Close()
	}
	if err := s.events.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close event publisher: %v\n", err)
	}
	return s.httpServer.Close()
}
