// Package server wires configuration, storage, vendor clients and the HTTP
// API together and runs them until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/aiinterview/internal/logging"
	"github.com/dmitrijs2005/aiinterview/internal/server/ai/heygen"
	"github.com/dmitrijs2005/aiinterview/internal/server/ai/openai"
	"github.com/dmitrijs2005/aiinterview/internal/server/config"
	"github.com/dmitrijs2005/aiinterview/internal/server/credentials"
	"github.com/dmitrijs2005/aiinterview/internal/server/denylist"
	"github.com/dmitrijs2005/aiinterview/internal/server/httpapi"
	"github.com/dmitrijs2005/aiinterview/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/aiinterview/internal/server/services"
	"github.com/redis/go-redis/v9"
)

const (
	startupTimeout = 30 * time.Second
	purgeInterval  = time.Hour
)

// purger drops expired denylist entries. Only the PostgreSQL backend needs it.
type purger interface {
	Purge(ctx context.Context, now time.Time) (int64, error)
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client
	purger purger
	http   *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	logger, err := logging.New(cfg.LogFormat, cfg.Debug)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: cfg, logger: logger, db: db}

	var dl services.Denylist
	if cfg.RedisURL != "" {
		client, err := denylist.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		app.redis = client
		dl = denylist.NewRedis(client)
	} else {
		pg := denylist.NewPostgres(db, m)
		app.purger = pg
		dl = pg
	}

	vendorClient := &http.Client{Timeout: cfg.VendorTimeout}
	openAIKeys := credentials.NewStore(cfg.OpenAIAPIKey, func(key string) *openai.Client {
		return openai.New(key, cfg.OpenAIBaseURL, vendorClient)
	}, cfg.ProbeTimeout)

	// Proxied avatar streams can run long, so only the wait for headers is bounded.
	streamClient := &http.Client{Transport: &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: cfg.VendorTimeout,
	}}

	app.http = httpapi.NewServer(cfg, logger, httpapi.Deps{
		Auth:       services.NewAuthService(db, m, dl, cfg),
		Interviews: services.NewInterviewService(db, m),
		Resumes:    services.NewResumeService(db, m, cfg),
		OpenAI:     openAIKeys,
		HeygenKey:  credentials.NewKeyStore(cfg.HeygenAPIKey),
		Heygen:     heygen.New(cfg.HeygenBaseURL, streamClient, cfg.HeygenProxyHosts),
		DB:         db,
	})

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) runPurger(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := app.purger.Purge(ctx, now)
			if err != nil {
				app.logger.Error(ctx, "denylist purge failed", "error", err)
				continue
			}
			app.logger.Debug(ctx, "denylist purged", "rows", n)
		}
	}
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(ctx, "closing redis", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
}

// Run blocks until a termination signal arrives or the HTTP server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.purger != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.runPurger(ctx)
		}()
	}

	wg.Wait()
	app.close(context.Background())
	app.logger.Info(context.Background(), "App stopped")
}
