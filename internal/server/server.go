// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/handlers"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"

	"github.com/beeguardai/hub/api"
	"github.com/beeguardai/hub/api/middleware"
	"github.com/beeguardai/hub/api/resources"
	"github.com/beeguardai/hub/internal/alerting"
	"github.com/beeguardai/hub/internal/config"
	"github.com/beeguardai/hub/internal/database"
	"github.com/beeguardai/hub/internal/hubservice"
	"github.com/beeguardai/hub/internal/monitoring"
	"github.com/beeguardai/hub/internal/mqtt"
	"github.com/beeguardai/hub/internal/notify"
	"github.com/beeguardai/hub/internal/reporting"
	"github.com/beeguardai/hub/internal/repository"
	"github.com/beeguardai/hub/internal/repository/cooldown"
	"github.com/beeguardai/hub/internal/repository/postgres"
	"github.com/beeguardai/hub/internal/repository/timescale"
	"github.com/beeguardai/hub/internal/scheduler"
)

// Server owns the HTTP listener, the scheduler runtime and the optional
// MQTT uplink listener, and shuts all of them down together.
type Server struct {
	config     *config.Config
	srv        *http.Server
	runtime    *scheduler.Runtime
	listener   *mqtt.Listener
	hubservice *hubservice.HubService
	monitoring *monitoring.Service

	tsdb  database.DB
	appdb database.DB
	redis *redis.Client
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{config: cfg}
}

// Start connects the stores, wires the services and scheduler cycles,
// and blocks until an interrupt triggers a graceful shutdown.
func (s *Server) Start() error {
	if err := s.initialize(); err != nil {
		return err
	}

	s.runtime.Start()
	nuts.L.Infof("[Server] Scheduler runtime started (alerts every %s, reports every %s)",
		s.config.Alerting.CheckInterval, s.config.Reporting.CheckInterval)

	if s.listener != nil {
		if err := s.listener.Start(); err != nil {
			nuts.L.Errorf("[Server] MQTT listener failed to start: %v", err)
			return err
		}
	}

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

func (s *Server) initialize() error {
	tsdb, err := database.NewTimescaleDB(s.config.Database.TimescaleDB)
	if err != nil {
		return fmt.Errorf("failed to connect to timescaledb: %w", err)
	}
	s.tsdb = tsdb

	appdb, err := database.NewPostgresDB(s.config.Database.AppDB)
	if err != nil {
		return fmt.Errorf("failed to connect to app database: %w", err)
	}
	s.appdb = appdb

	store, err := timescale.NewReadingRepository(tsdb)
	if err != nil {
		return fmt.Errorf("failed to initialize reading store: %w", err)
	}
	directory, err := postgres.NewDirectoryRepository(appdb)
	if err != nil {
		return fmt.Errorf("failed to initialize tenant directory: %w", err)
	}

	s.monitoring = monitoring.NewService()
	s.hubservice = hubservice.New(directory, store, s.monitoring)
	if err := s.hubservice.Validate(); err != nil {
		return err
	}

	cooldowns := s.buildCooldownStore()
	mailer := notify.NewMailer(s.config.SMTP)
	renderer := notify.NewPDFRenderer()

	evaluator := alerting.NewEvaluator(directory, store, cooldowns, mailer, s.monitoring, s.config.Alerting)
	reporter := reporting.NewReporter(directory, store, renderer, mailer, s.monitoring, s.config.Reporting)

	s.runtime = scheduler.NewRuntime(s.monitoring)
	s.runtime.Every(s.config.Alerting.CheckInterval, "alerts", evaluator.RunCycle)
	s.runtime.Every(s.config.Reporting.CheckInterval, "reports", reporter.RunCycle)

	if s.config.MQTT.Enabled {
		s.listener = mqtt.NewListener(s.config.MQTT, s.hubservice)
	}

	rs := resources.NewResources(s.hubservice, s.monitoring)
	auth := middleware.NewAPIKeyMiddleware(s.config.API.IngestKey)
	router := api.NewRouter(rs, auth, s.monitoring)

	handler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-API-Key"}),
	)(router)
	handler = handlers.CombinedLoggingHandler(os.Stdout, handler)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      handler,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	return nil
}

// buildCooldownStore picks Redis when configured so cooldown state
// survives restarts; otherwise alerts fall back to in-process state.
func (s *Server) buildCooldownStore() repository.CooldownStore {
	if !s.config.Redis.Enabled {
		nuts.L.Infof("[Server] Using in-memory alert cooldown store")
		return cooldown.NewMemoryStore()
	}

	s.redis = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", s.config.Redis.Host, s.config.Redis.Port),
		Password: s.config.Redis.Password,
		DB:       s.config.Redis.DB,
	})
	nuts.L.Infof("[Server] Using redis alert cooldown store at %s:%d",
		s.config.Redis.Host, s.config.Redis.Port)
	return cooldown.NewRedisStore(s.redis, s.config.Alerting.Cooldown)
}

// waitForShutdown waits for interrupt signal and gracefully shuts down
// the listeners, the scheduler and the store connections.
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	if s.listener != nil {
		s.listener.Stop()
	}
	s.runtime.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	if s.redis != nil {
		s.redis.Close()
	}
	s.tsdb.Close()
	s.appdb.Close()

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}
