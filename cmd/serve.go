package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/interview-evaluator/internal/secrets"
	"github.com/spigell/interview-evaluator/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the evaluator over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "listen address (default is server.addr)")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config := setup()

	store, err := loadRubric(config)
	if err != nil {
		logger.Fatal("loading rubric", zap.Error(err))
	}

	scorer, err := newScorer(ctx, config, store, logger)
	if err != nil {
		logger.Fatal("building scorer", zap.Error(err))
	}

	cfg := server.Config{Session: *sessionConfig(config)}
	if config.Server != nil {
		cfg.Addr = config.Server.Addr
		cfg.APIToken, err = secrets.Optional(secrets.Source{Name: "api token", File: config.Server.APITokenFile})
		if err != nil {
			logger.Fatal("loading api token", zap.Error(err))
		}
	}

	analyzer, err := newSpeechAnalyzer(config)
	if err != nil {
		logger.Fatal("building speech analyzer", zap.Error(err))
	}

	srv, err := server.New(cfg, server.Deps{
		Logger: logger,
		Store:  store,
		Scorer: scorer,
		Speech: analyzer,
	})
	if err != nil {
		logger.Fatal("building server", zap.Error(err))
	}

	httpServer := srv.HTTPServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", httpServer.Addr),
			zap.String("version", version),
			zap.Int("questions", store.Len()),
			zap.Bool("auth", cfg.APIToken != ""),
		)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}
	logger.Info("server stopped")
}
