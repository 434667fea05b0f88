package server

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/emotewire/emotewire/internal/config"
	"github.com/emotewire/emotewire/internal/database"
	"github.com/emotewire/emotewire/internal/domain"
	apperrors "github.com/emotewire/emotewire/internal/errors"
	"github.com/emotewire/emotewire/internal/relay"
)

type Server struct {
	echo       *echo.Echo
	config     *config.Config
	registry   *relay.Registry
	pipeline   *relay.Pipeline
	classifier domain.Classifier
	stats      *database.StatsRepository
	redis      goredis.UniversalClient
	db         *pgxpool.Pool
	limits     *ConnectionLimits
	startTime  time.Time
}

// NewServer wires the echo instance. stats, redis, and db may be nil when
// the corresponding backends are not configured; the affected routes and
// health checks degrade accordingly.
func NewServer(cfg *config.Config, registry *relay.Registry, pipeline *relay.Pipeline, classifier domain.Classifier, stats *database.StatsRepository, redis goredis.UniversalClient, db *pgxpool.Pool) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:       e,
		config:     cfg,
		registry:   registry,
		pipeline:   pipeline,
		classifier: classifier,
		stats:      stats,
		redis:      redis,
		db:         db,
		limits:     NewConnectionLimits(cfg.MaxConnections, cfg.MaxPerIP, cfg.ConnectsPerSecond, int(cfg.ConnectsPerSecond)),
		startTime:  time.Now(),
	}

	srv.registerRoutes()

	return srv
}

// Start begins serving on the configured port. Blocks until shutdown.
func (s *Server) Start() error {
	return s.echo.Start(":" + s.config.Port)
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
