package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"ico-builder-go/internal/domain/artifact"
	artifactstore "ico-builder-go/internal/domain/artifact/store"
	"ico-builder-go/internal/domain/eventbus"
	"ico-builder-go/internal/domain/icon"
	platformconfig "ico-builder-go/internal/platform/config"
	platformerrors "ico-builder-go/internal/platform/errors"
	platformlogging "ico-builder-go/internal/platform/logging"
	platformobservability "ico-builder-go/internal/platform/observability"
	platformstorage "ico-builder-go/internal/platform/storage"
	httptransport "ico-builder-go/internal/transport/http"
	httphealth "ico-builder-go/internal/transport/http/health"
	httpicons "ico-builder-go/internal/transport/http/icons"
)

const shutdownTimeout = 15 * time.Second

// Options controls where configuration comes from.
type Options struct {
	// ConfigPath overrides ICO_CONFIG and the default .config.yaml.
	ConfigPath string
	// SkipDotEnv disables loading .env from the working directory.
	SkipDotEnv bool
}

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	opts                  Options
	config                *platformconfig.Config
	configPath            string
	logger                *platformlogging.Logger
	slogger               *slog.Logger
	observabilityShutdown platformobservability.ShutdownFunc
	db                    *gorm.DB
	bus                   *eventbus.Bus
	artifacts             *artifact.Manager
	tokens                *artifact.DownloadToken
	builder               *icon.Service
}

// Run loads configuration, wires dependencies and serves HTTP until ctx is
// canceled or SIGINT/SIGTERM arrives.
func Run(ctx context.Context, opts Options) error {
	state := &appState{opts: opts}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		state.close()
		return err
	}
	defer state.close()

	logger := state.logger
	logBootstrapGraph(steps, logger)

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)
	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	return waitForShutdown(signalCtx, cancel, logger, group)
}

func logBootstrapGraph(steps []initStep, logger *platformlogging.Logger) {
	logger.InfoTag("Bootstrap", "init graph:")
	for _, step := range steps {
		deps := "-"
		if len(step.DependsOn) > 0 {
			deps = strings.Join(step.DependsOn, ", ")
		}
		logger.InfoTag("Bootstrap", "  %s (%s) <- %s", step.ID, step.Title, deps)
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(platformerrors.KindBootstrap, "execute init steps", "nil bootstrap state")
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(platformerrors.KindBootstrap, step.ID, fmt.Sprintf("dependency %s not satisfied", dep))
			}
		}
		if step.Execute == nil {
			return platformerrors.New(platformerrors.KindBootstrap, step.ID, "missing execute function")
		}
		if err := ctx.Err(); err != nil {
			return platformerrors.Wrap(platformerrors.KindBootstrap, step.ID, "bootstrap canceled", err)
		}
		if err := step.Execute(ctx, state); err != nil {
			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

// InitGraph lists init steps in execution order.
func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "init logger",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindConfig,
			Execute:   initLoggingStep,
		},
		{
			ID:        "observability:setup-hooks",
			Title:     "install span and metric hooks",
			DependsOn: []string{"logging:init-provider"},
			Execute:   setupObservabilityStep,
		},
		{
			ID:        "storage:open-database",
			Title:     "open sqlite database",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindStorage,
			Execute:   openDatabaseStep,
		},
		{
			ID:        "events:init-bus",
			Title:     "start event bus",
			DependsOn: []string{"logging:init-provider"},
			Execute:   initEventBusStep,
		},
		{
			ID:        "artifact:init-manager",
			Title:     "init artifact store",
			DependsOn: []string{"storage:open-database", "events:init-bus"},
			Kind:      platformerrors.KindStorage,
			Execute:   initArtifactStep,
		},
		{
			ID:        "icon:init-service",
			Title:     "init icon builder",
			DependsOn: []string{"observability:setup-hooks", "events:init-bus"},
			Kind:      platformerrors.KindDomain,
			Execute:   initIconServiceStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	loader := platformconfig.NewLoader().WithDotEnv(!state.opts.SkipDotEnv)
	if state.opts.ConfigPath != "" {
		loader = loader.WithPath(state.opts.ConfigPath)
	}
	res, err := loader.Load()
	if err != nil {
		return err
	}
	state.config = res.Config
	state.configPath = res.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	cfg := state.config.Log
	logger, err := platformlogging.New(platformlogging.Config{
		Level:    cfg.Level,
		Dir:      cfg.Dir,
		Filename: cfg.File,
	})
	if err != nil {
		return err
	}
	state.logger = logger
	state.slogger = logger.Slog()
	logger.InfoTag("Config", "loaded from %s", state.configPath)
	return nil
}

func setupObservabilityStep(ctx context.Context, state *appState) error {
	shutdown, err := platformobservability.Setup(ctx, platformobservability.Config{
		Enabled:   state.config.Log.Spans,
		SpanLevel: slog.LevelDebug,
	}, state.slogger)
	if err != nil {
		return err
	}
	state.observabilityShutdown = shutdown
	return nil
}

func openDatabaseStep(_ context.Context, state *appState) error {
	if state.config.Store.Driver != artifactstore.DriverSQLite {
		return nil
	}
	db, err := platformstorage.Open(state.config.Store.SQLite.DSN)
	if err != nil {
		return err
	}
	state.db = db
	state.logger.InfoTag("Store", "sqlite database ready at %s", state.config.Store.SQLite.DSN)
	return nil
}

func initEventBusStep(_ context.Context, state *appState) error {
	bus := eventbus.New(0, 0, state.logger)
	if err := eventbus.RegisterLogHandlers(bus, state.logger); err != nil {
		return err
	}
	bus.Start()
	state.bus = bus
	return nil
}

func initArtifactStep(_ context.Context, state *appState) error {
	cfg := state.config
	storeCfg := artifactstore.Config{
		Driver: cfg.Store.Driver,
		TTL:    cfg.Store.TTL.Duration,
	}
	if cfg.Store.Driver == artifactstore.DriverRedis {
		storeCfg.Redis = &artifactstore.RedisConfig{
			Addr:     cfg.Store.Redis.Addr,
			Username: cfg.Store.Redis.Username,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			Prefix:   cfg.Store.Redis.Prefix,
		}
	}
	s, err := artifactstore.New(storeCfg, artifactstore.Dependencies{SQLiteDB: state.db})
	if err != nil {
		return err
	}
	manager, err := artifact.NewManager(artifact.Options{
		Store:  s,
		Events: state.bus,
		Logger: state.logger,
	})
	if err != nil {
		_ = s.Close(context.Background())
		return err
	}
	state.artifacts = manager
	state.tokens = artifact.NewDownloadToken(cfg.Server.TokenSecret).WithTTL(cfg.Server.TokenTTL.Duration)
	if !state.tokens.Enabled() {
		state.logger.WarnTag("Store", "token_secret not set, download links are unsigned")
	}
	state.logger.InfoTag("Store", "artifact store driver=%s ttl=%s", storeCfg.Driver, storeCfg.TTL)
	return nil
}

func initIconServiceStep(_ context.Context, state *appState) error {
	cfg := state.config.Icon
	state.builder = icon.NewService(icon.Options{
		Limits: icon.Limits{
			MaxFileSize: cfg.MaxFileSize,
			MaxEntries:  cfg.MaxEntries,
		},
		LoadConcurrency: cfg.LoadConcurrency,
		DefaultName:     cfg.DefaultName,
		Events:          state.bus,
		Logger:          state.logger,
	})
	return nil
}

// buildRouter assembles the gin engine with every HTTP service registered.
func buildRouter(ctx context.Context, state *appState) (*gin.Engine, error) {
	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: state.config,
		Logger: state.logger,
	})
	if err != nil {
		return nil, err
	}
	router := httpRouter.Engine

	staticIndex := filepath.Join(state.config.Web.StaticDir, "index.html")
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			httptransport.RespondError(c, http.StatusNotFound, "api not found", gin.H{})
			return
		}
		if _, err := os.Stat(staticIndex); err == nil {
			c.File(staticIndex)
			return
		}
		c.Status(http.StatusNotFound)
	})

	iconsService, err := httpicons.NewService(httpicons.Options{
		Builder:     state.builder,
		Artifacts:   state.artifacts,
		Tokens:      state.tokens,
		MaxFileSize: state.config.Icon.MaxFileSize,
		MaxFiles:    state.config.Icon.MaxEntries,
		Logger:      state.logger,
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "icons:new-service", "failed to create icons service", err)
	}
	if err := iconsService.Register(ctx, httpRouter.API); err != nil {
		return nil, err
	}
	if err := httphealth.NewService(state.artifacts, state.logger).Register(ctx, httpRouter.API); err != nil {
		return nil, err
	}
	return router, nil
}

func startHTTPServer(state *appState, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	router, err := buildRouter(groupCtx, state)
	if err != nil {
		return nil, err
	}

	cfg := state.config.Server
	logger := state.logger
	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.IP, strconv.Itoa(cfg.Port)),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "listening on http://%s", httpServer.Addr)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "shutdown failed: %v", err)
			} else {
				logger.InfoTag("HTTP", "server stopped")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "listen failed: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(ctx context.Context, cancel context.CancelFunc, logger *platformlogging.Logger, g *errgroup.Group) error {
	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		// A server goroutine failed before any signal arrived.
		cancel()
		return err
	case <-ctx.Done():
	}

	logger.InfoTag("Bootstrap", "shutting down: %v", context.Cause(ctx))
	cancel()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("Bootstrap", "shutdown finished with error: %v", err)
			return err
		}
		logger.InfoTag("Bootstrap", "all services stopped")
		return nil
	case <-time.After(shutdownTimeout):
		logger.ErrorTag("Bootstrap", "shutdown timed out after %s", shutdownTimeout)
		return errors.New("shutdown timed out")
	}
}

// close releases whatever the init steps created, in reverse order.
func (s *appState) close() {
	if s.bus != nil {
		s.bus.Stop()
	}
	if s.artifacts != nil {
		if err := s.artifacts.Close(context.Background()); err != nil {
			s.logger.ErrorTag("Store", "artifact store close failed: %v", err)
		}
	}
	if s.db != nil {
		if err := platformstorage.Close(s.db); err != nil {
			s.logger.ErrorTag("Store", "database close failed: %v", err)
		}
	}
	if s.observabilityShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.observabilityShutdown(ctx); err != nil {
			s.logger.WarnTag("Bootstrap", "observability shutdown failed: %v", err)
		}
	}
	if s.logger != nil {
		_ = s.logger.Close()
	}
}
