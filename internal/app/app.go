// Package app initializes and runs the catalog API.
// It configures logging, storage, the OpenAPI gate and routing,
// starts the optional gRPC health server and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/apidemo/internal/apispec"
	"github.com/patric-chuzhbe/apidemo/internal/config"
	"github.com/patric-chuzhbe/apidemo/internal/db/memorystorage"
	"github.com/patric-chuzhbe/apidemo/internal/db/seedfile"
	"github.com/patric-chuzhbe/apidemo/internal/grpcserver"
	"github.com/patric-chuzhbe/apidemo/internal/logger"
	"github.com/patric-chuzhbe/apidemo/internal/models"
	"github.com/patric-chuzhbe/apidemo/internal/router"
	"github.com/patric-chuzhbe/apidemo/internal/service"
)

// App holds the configuration, the storage and the servers.
type App struct {
	cfg          *config.Config
	db           *memorystorage.MemoryStorage
	httpHandler  http.Handler
	healthServer *grpcserver.Server
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - building the storage from the built-in or file seed
// - loading the OpenAPI document
// - setting up the router and middleware
// - listening for gRPC health checks when an address is configured
func New(optionsProto ...config.InitOption) (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New(optionsProto...)
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	storageOptions := []memorystorage.InitOption{
		memorystorage.WithProductIDPolicy(models.ProductIDPolicy(app.cfg.ProductIDPolicy)),
	}
	if app.cfg.SeedFile != "" {
		seed, err := seedfile.Load(app.cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		storageOptions = append(storageOptions, memorystorage.WithSeed(seed.Users, seed.Products))
		logger.Log.Infoln("seed loaded", "file", app.cfg.SeedFile, "users", len(seed.Users), "products", len(seed.Products))
	}

	app.db, err = memorystorage.New(storageOptions...)
	if err != nil {
		return nil, err
	}

	spec, err := apispec.Load(
		context.Background(),
		apispec.WithRequestValidation(app.cfg.ValidateRequests),
		apispec.WithResponseValidation(app.cfg.ValidateResponses),
	)
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.New(service.New(app.db), spec)

	if app.cfg.GRPCAddr != "" {
		app.healthServer, err = grpcserver.New(app.cfg.GRPCAddr, app.db)
		if err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Run starts the servers with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln(
		"server running",
		"RunAddr", a.cfg.RunAddr,
		"ProductIDPolicy", a.db.ProductIDPolicy(),
		"ValidateRequests", a.cfg.ValidateRequests,
		"ValidateResponses", a.cfg.ValidateResponses,
	)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 2)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	if a.healthServer != nil {
		go func() {
			if err := a.healthServer.Serve(ctx); err != nil {
				serverErrCh <- fmt.Errorf("gRPC: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Draining requests and exiting...")
		return a.shutdown(server)

	case err := <-serverErrCh:
		if shutdownErr := a.shutdown(server); shutdownErr != nil {
			logger.Log.Errorln("shutdown after a server failure", zap.Error(shutdownErr))
		}
		return fmt.Errorf("server error: %w", err)
	}
}

func (a *App) shutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if a.healthServer != nil {
		a.healthServer.Stop()
	}

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	return a.db.Close()
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.httpHandler
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}
