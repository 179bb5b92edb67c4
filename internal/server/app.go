// Package server wires the firewatch backend together: database, session
// store, object storage, services, the HTTP API and the session janitor.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/firewatch/internal/logging"
	"github.com/dmitrijs2005/firewatch/internal/server/config"
	"github.com/dmitrijs2005/firewatch/internal/server/httpapi"
	"github.com/dmitrijs2005/firewatch/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/firewatch/internal/server/services"
	"github.com/dmitrijs2005/firewatch/internal/server/storage"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	redis      *redis.Client
	httpServer *httpapi.HTTPServer
	janitor    *services.SessionJanitor
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	var opts []repomanager.Option
	if c.SessionStore == config.SessionStoreRedis {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			app.close()
			return nil, fmt.Errorf("redis ping error: %w", err)
		}
		opts = append(opts, repomanager.WithRedisSessions(app.redis))
	}

	rm := repomanager.NewPostgresRepositoryManager(opts...)
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := storage.NewS3Store(ctx, c)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("s3 init error: %w", err)
	}

	us := services.NewUserService(db, rm, c)
	vs := services.NewVideoService(db, rm, store, c)
	ps := services.NewPredictionService()

	app.httpServer = httpapi.NewHTTPServer(c.EndpointAddrHTTP, logger, httpapi.NewMetrics(), us, vs, ps, c.MaxUploadSize)
	app.janitor = services.NewSessionJanitor(db, rm, c.SessionPurgeInterval, logger)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "session_store", app.config.SessionStore)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.SessionStore != config.SessionStoreRedis {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.janitor.Run(ctx)
		}()
	}

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}
