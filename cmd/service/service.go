// @title                      Expense Ledger API
// @version                    1.0
// @description                Read access to recorded expenses and their statistics, plus document uploads.
// @host                       localhost:8080
// @BasePath                   /api
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expense-ledger/internal/cache"
	"expense-ledger/internal/config"
	"expense-ledger/internal/database"
	"expense-ledger/internal/filestore"
	"expense-ledger/internal/handler/auth"
	"expense-ledger/internal/logger"
	"expense-ledger/internal/metrics"
	"expense-ledger/internal/router"
	"expense-ledger/internal/service"
	"expense-ledger/internal/session"
	"expense-ledger/internal/ui"
	"expense-ledger/internal/validation"
	"expense-ledger/internal/worker"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// version is stamped at build time and doubles as the asset version the
// client side router compares against.
var version = "dev"

var (
	loadConfig      = config.Load
	newLogger       = logger.New
	newPgxPool      = database.NewPgxPool
	newRedisClient  = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	newFileStore    = func(root string, maxBytes int64) (filestore.Store, error) {
		return filestore.NewDisk(root, "/storage", maxBytes)
	}
	startServer   = func(e *echo.Echo, addr string) error { return e.Start(addr) }
	newWorkerPool = worker.NewPool
	signalContext = func() (context.Context, context.CancelFunc) {
		return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	}
	exitFunc = os.Exit
)

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lg, err := newLogger(logger.Options{Production: cfg.IsProduction(), Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = lg.Sync() }()
	lg.Info("starting", append(cfg.LogFields(), zap.String("version", version))...)

	db, err := newPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	rdb, err := newRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()

	if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	files, err := newFileStore(cfg.StorageDir, cfg.UploadMaxBytes)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	wp := newWorkerPool(cfg.WorkerCount, 64, lg)
	defer wp.Stop()

	renderer, err := ui.NewRenderer("Expense Ledger", version)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.IPExtractor = ipExtractor(cfg.TrustedProxies)

	httpMetrics := metrics.NewHTTPMetrics("ledger")
	e.Use(logger.Middleware(lg))
	e.Use(middleware.Recover())
	e.Use(httpMetrics.Middleware())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", cfg.UploadMaxBytes/1024+512)))

	router.Setup(e, router.Deps{
		DB:         db,
		Cache:      rdb,
		Sessions:   session.NewStore(rdb, cfg.SessionTTL, cfg.SessionCookieSecure),
		Renderer:   renderer,
		Expenses:   service.NewExpenses(db, files, wp, lg),
		FileURL:    files.URL,
		OAuth:      service.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL),
		Metrics:    httpMetrics,
		Tokens:     auth.TokenTTL{Access: cfg.AccessTokenTTL, Refresh: cfg.RefreshTokenTTL},
		StorageDir: cfg.StorageDir,
	})

	ctx, stop := signalContext()
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			lg.Warn("shutdown", zap.Error(err))
		}
	}()

	if err := startServer(e, cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	lg.Info("stopped")
	return nil
}

// ipExtractor trusts X-Forwarded-For only from the configured proxies.
func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := make([]echo.TrustOption, 0, len(trusted))
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

func main() {
	if err := run(); err != nil {
		log.Print(err)
		exitFunc(1)
	}
}
