package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gosuda/seguro/internal/auth"
	"github.com/gosuda/seguro/internal/config"
	"github.com/gosuda/seguro/internal/domain"
	"github.com/gosuda/seguro/internal/metrics"
	"github.com/gosuda/seguro/internal/notify"
	"github.com/gosuda/seguro/internal/orchestrator"
	"github.com/gosuda/seguro/internal/premium"
	"github.com/gosuda/seguro/internal/report"
	"github.com/gosuda/seguro/internal/server"
	"github.com/gosuda/seguro/internal/store/memory"
	mongostore "github.com/gosuda/seguro/internal/store/mongo"
	"github.com/gosuda/seguro/internal/store/postgres"
	redisstore "github.com/gosuda/seguro/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

// backend is the entity store picked by SEGURO_STORE_DRIVER.
type backend struct {
	store   domain.EntityStore
	users   domain.UserRepository
	reports report.Source
	pinger  server.Pinger
	close   func()
}

func run() error {
	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.Log)

	be, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.close()

	recorder, closeRecorder, err := openRecorder(ctx, cfg.Audit)
	if err != nil {
		return err
	}
	defer closeRecorder()

	// Create auth service and bootstrap the admin account.
	authSvc := auth.NewService(be.users, cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	if cfg.Admin.Username != "" {
		created, err := authSvc.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		log.Info().Str("username", cfg.Admin.Username).Bool("created", created).Msg("admin account ready")
	}

	opts := []orchestrator.Option{
		orchestrator.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
		orchestrator.WithMirrorOps(cfg.Audit.MirrorOps),
		orchestrator.WithAuditTimeout(cfg.Audit.Timeout),
		orchestrator.WithAlerter(notifier(cfg.Slack)),
	}
	if recorder != nil {
		opts = append(opts, orchestrator.WithRecorder(recorder))
	}
	orch := orchestrator.New(be.store, premium.New(), opts...)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, server.Deps{
		Insurance: orch,
		Reports:   report.New(be.reports),
		Auth:      authSvc,
		Store:     be.pinger,
		Gatherer:  prometheus.DefaultGatherer,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		// Block until shutdown signal or server failure.
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().Msg("stopped")
	return nil
}

func setupLogging(c config.LogConfig) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.Format == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*backend, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn().Msg("using in-memory entity store; data is lost on restart")
		s := memory.New()
		return &backend{store: s, users: s.Users(), reports: s, pinger: s, close: func() {}}, nil
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return nil, fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL.
	s, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
	}
	return &backend{store: s, users: s.Users(), reports: s.Reports(), pinger: s, close: s.Close}, nil
}

// openRecorder connects the secondary audit store. A nil recorder means the
// secondary write is disabled.
func openRecorder(ctx context.Context, c config.AuditConfig) (domain.AuditRecorder, func(), error) {
	kind, err := c.Backend()
	if err != nil {
		return nil, nil, err
	}

	switch kind {
	case config.AuditMongo:
		r, err := mongostore.New(ctx, c.URI, c.Database, c.Collection)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("database", c.Database).Str("collection", c.Collection).Msg("audit recorder: mongodb")
		return r, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := r.Close(closeCtx); err != nil {
				log.Warn().Err(err).Msg("audit recorder close")
			}
		}, nil
	case config.AuditRedis:
		r, err := redisstore.New(ctx, c.URI, c.Collection, c.MaxLen)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("stream", c.Collection).Msg("audit recorder: redis")
		return r, func() {
			if err := r.Close(); err != nil {
				log.Warn().Err(err).Msg("audit recorder close")
			}
		}, nil
	case config.AuditMemory:
		log.Warn().Msg("audit recorder: in-memory; secondary copies are lost on restart")
		return memory.NewRecorder(), func() {}, nil
	case config.AuditDisabled:
		log.Warn().Msg("audit recorder disabled; mutations are audited in the entity store only")
		return nil, func() {}, nil
	default:
		return nil, nil, errors.New("audit recorder: unknown backend " + kind)
	}
}

func notifier(c config.SlackConfig) *notify.Notifier {
	if c.BotToken == "" {
		return notify.New(nil, "")
	}
	log.Info().Str("channel", c.AlertChannel).Msg("slack alerts enabled")
	return notify.NewSlack(c.BotToken, c.AlertChannel)
}
