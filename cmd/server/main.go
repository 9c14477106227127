package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/authd/internal/api"
	"github.com/mmynk/authd/internal/auth"
	"github.com/mmynk/authd/internal/config"
	"github.com/mmynk/authd/internal/metrics"
	"github.com/mmynk/authd/internal/middleware"
	"github.com/mmynk/authd/internal/service"
	"github.com/mmynk/authd/internal/storage"
	"github.com/mmynk/authd/internal/storage/memory"
	"github.com/mmynk/authd/internal/storage/mongo"
	"github.com/mmynk/authd/internal/storage/sqlite"
	"github.com/mmynk/authd/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "driver", cfg.DBDriver)

	verifier, err := auth.NewGoogleVerifier(ctx, cfg.GoogleClientID)
	if err != nil {
		return fmt.Errorf("initialize google verifier: %w", err)
	}

	authenticator := auth.NewAuthenticator(
		store,
		auth.NewBcryptHasher(auth.PasswordCost),
		auth.NewJWTManager(cfg.AccessTokenSecret, auth.TokenDuration),
		verifier,
		logger,
	)
	m := metrics.New()

	rpcPath, rpcHandler := service.NewAuthServiceHandler(
		service.NewAuthService(authenticator, m, logger),
		connect.WithInterceptors(middleware.LoggingInterceptor(logger)),
	)

	router := api.NewRouter(api.RouterConfig{
		Authenticator:  authenticator,
		Metrics:        m,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		RPCPath:        rpcPath,
		RPCHandler:     rpcHandler,
	})

	// h2c serves Connect's HTTP/2 clients without TLS.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return mongo.New(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	case config.DriverSQLite:
		return sqlite.New(cfg.SQLitePath)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.DBDriver)
	}
}
