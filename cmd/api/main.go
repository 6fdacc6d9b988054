package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/papi/backend/internal/config"
	"github.com/zhouzirui/papi/backend/internal/handler"
	"github.com/zhouzirui/papi/backend/internal/logging"
	"github.com/zhouzirui/papi/backend/internal/service/brain"
	"github.com/zhouzirui/papi/backend/internal/service/chat"
	"github.com/zhouzirui/papi/backend/internal/service/guardian"
	"github.com/zhouzirui/papi/backend/internal/service/launch"
	"github.com/zhouzirui/papi/backend/internal/service/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Debug("no .env file loaded, using system environment only", zap.Error(envErr))
	}

	moderator, err := guardian.FromLexicon(cfg.Guardian.LexiconPath, logger.Named("guardian"))
	if err != nil {
		logger.Fatal("guardian lexicon unavailable", zap.String("path", cfg.Guardian.LexiconPath), zap.Error(err))
	}

	policy, err := brain.NewPolicy(ctx, logger.Named("brain"))
	if err != nil {
		logger.Fatal("failed to compile reply templates", zap.Error(err))
	}

	var renderer chat.AudioRenderer
	if cfg.Audio.Enabled && cfg.Speech.Enabled {
		client := speech.NewVolcengineClient(cfg.Synthesis(), logger.Named("tts"))
		renderer = speech.NewRenderer(client, speech.RendererConfig{
			Language: cfg.Audio.Language,
			Timeout:  cfg.Audio.Timeout,
			Retries:  cfg.Audio.Retries,
		}, logger.Named("audio"))
		logger.Info("audio rendering enabled",
			zap.String("language", cfg.Audio.Language),
			zap.Bool("child", cfg.Audio.ChildEnabled))
	} else {
		logger.Info("audio rendering disabled; replies are text only",
			zap.Bool("audioEnabled", cfg.Audio.Enabled),
			zap.Bool("speechConfigured", cfg.Speech.Enabled))
	}

	pipeline := chat.NewPipeline(moderator, policy, renderer, chat.AudioPolicy{
		Enabled: cfg.Audio.Enabled,
		Child:   cfg.Audio.ChildEnabled,
	}, logger.Named("pipeline"))
	chatService := chat.NewService(pipeline, logger.Named("sessions"))
	simulator := launch.NewSimulator(cfg.Launch.StepDelay, logger.Named("launch"))

	router := handler.NewRouter(chatService, simulator, cfg.CORS.Origins, logger.Named("http"))

	startServer(ctx, cfg.Server, router, logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("PAPI backend listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
