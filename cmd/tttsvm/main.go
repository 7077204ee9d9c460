package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tttsvm/internal/app"
	"tttsvm/pkg/audio"
	"tttsvm/pkg/config"
	"tttsvm/pkg/logging"
	"tttsvm/pkg/tray"
	"tttsvm/pkg/tts"
	"tttsvm/pkg/version"
)

const configPath = "configs/tttsvm.yaml"

var (
	initConfig  = flag.Bool("init-config", false, "Generate default config file and exit")
	listDevices = flag.Bool("list-devices", false, "List output audio devices and exit")
)

func main() {
	flag.Parse()

	// Secrets may live in a .env next to the binary.
	_ = godotenv.Load()

	if *initConfig {
		if err := config.GenerateDefault(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", configPath)
		return
	}

	if *listDevices {
		if err := printDevices(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list devices: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func printDevices() error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	devices, err := audio.OutputDevices()
	if err != nil {
		return err
	}
	for _, d := range devices {
		fmt.Printf("%3d  %s (%d ch)\n", d.ID, d.Name, d.Channels)
	}
	return nil
}

func run() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	tts.SetLogPath(cfg.Log.TTS.Path)
	tts.SetEnabled(cfg.Log.TTS.Path != "")

	slog.Info("Tttsvm started", "version", version.Version, "engine", cfg.TTS.Engine)

	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	if err := a.RegisterHotkeys(); err != nil {
		slog.Warn("Tttsvm: global hotkeys unavailable, tray menu still works", "error", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	trayApp := tray.New(a.Engine().String(), a.SpeakClipboard, nil)
	go func() {
		<-quit
		trayApp.Quit()
	}()

	// systray insists on the main thread; Run blocks until quit.
	trayApp.Run()
	return nil
}
