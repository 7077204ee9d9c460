// fishbridge runs the bridge HTTP server standalone, for callers that want
// the synchronous synthesis endpoint without the desktop utility.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tttsvm/internal/api"
	"tttsvm/pkg/config"
	"tttsvm/pkg/fishaudio"
	"tttsvm/pkg/logging"
	"tttsvm/pkg/tts"
	"tttsvm/pkg/version"
)

var configPath = flag.String("config", "configs/tttsvm.yaml", "Path to config file")

func main() {
	flag.Parse()
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Bridge failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Fish.Key == "" {
		return errors.New("no vendor API key configured (set fish.key or FISH_AUDIO_API_KEY)")
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	tts.SetLogPath(cfg.Log.TTS.Path)
	tts.SetEnabled(cfg.Log.TTS.Path != "")

	svc := fishaudio.NewService(fishaudio.NewClient(fishaudio.SessionConfig(cfg.Fish)))
	handler := api.NewSynthesisHandler(svc, cfg.Fish, cfg.TTS.TempDir)

	addr := net.JoinHostPort(cfg.Fish.Server.Host, fmt.Sprint(cfg.Fish.Server.Port))
	srv := api.NewServer(addr, handler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	slog.Info("FishBridge started", "version", version.Version, "addr", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		slog.Info("FishBridge shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
