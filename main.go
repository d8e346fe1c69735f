package main

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rolstat/internal"
	"rolstat/internal/config"
	"rolstat/internal/container"
	"rolstat/ui"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load environment variables from .env file
	config.LoadDotEnv()

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)
	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Log.Level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(ctx, appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	uiApp, err := ui.NewApp(ui.Deps{
		Workbench: appContainer.Workbench,
		Charts:    appContainer.Charts,
		Importer:  appContainer.Importer,
		Hub:       appContainer.Hub,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create UI: %v", err)
	}

	server := &http.Server{
		Addr:              appConfig.Addr(),
		Handler:           uiApp,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("serving on %s (%s store)", server.Addr, appConfig.Store.Backend)
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return appContainer.Watch(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
	logger.Info("server stopped")
}
