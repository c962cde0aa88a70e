package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jacobswearingen/FlipMouse/config"
	"github.com/jacobswearingen/FlipMouse/devices"
	"github.com/jacobswearingen/FlipMouse/engine"
	"github.com/jacobswearingen/FlipMouse/keymaps"
)

const defaultConfigPath = "/etc/flipmouse/config.toml"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", defaultConfigPath, "path to the configuration file")
	flag.Parse()

	cfg, cfgErr := config.LoadConfig(*configPath)

	log, logFile := newLogger(cfg.Log)
	if logFile != nil {
		defer logFile.Close()
	}
	if cfgErr != nil {
		log.Warn().Str("path", *configPath).Err(cfgErr).Msg("failed to load config, using defaults")
	}
	log.Info().Msg("FlipMouse starting up")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	provider := keymaps.CreateDefaultProvider()
	registry, err := devices.Scan(devices.ScanOptions{
		InputDir: cfg.Devices.InputDir,
		Allowed:  cfg.Devices.Allowed,
		Grab:     cfg.Devices.Grab,
		Capacity: cfg.Devices.MaxDevices,
	}, provider, log.With().Str("subsystem", "devices").Logger())
	if err != nil {
		log.Error().Err(err).Msg("device scan failed")
		return 1
	}
	defer registry.Close()

	pointer, err := devices.NewPointer(log.With().Str("subsystem", "pointer").Logger())
	if err != nil {
		log.Error().Err(err).Msg("virtual pointer init failed")
		return 1
	}
	defer pointer.Close()

	eng := engine.New(tunablesFrom(cfg), log.With().Str("subsystem", "engine").Logger())

	watcher, err := config.WatchConfig(*configPath, log.With().Str("subsystem", "config").Logger(), func(updated *config.Config) {
		eng.SetTunables(tunablesFrom(updated))
	})
	if err != nil {
		log.Warn().Err(err).Msg("config watching disabled")
	} else {
		defer watcher.Close()
	}

	router := engine.NewRouter(pointer, log.With().Str("subsystem", "router").Logger())

	sources := make([]engine.Source, 0, registry.Len())
	for _, dev := range registry.Devices() {
		sources = append(sources, dev)
	}

	loop := engine.NewLoop(sources, eng, router, log.With().Str("subsystem", "loop").Logger())
	if err := loop.Run(ctx); err != nil {
		log.Error().Err(err).Msg("event loop failed")
	}

	log.Info().Msg("FlipMouse shutting down")
	return 0
}

func tunablesFrom(cfg *config.Config) engine.Tunables {
	return engine.Tunables{
		MinSpeed:            cfg.Pointer.MinSpeed,
		DefaultSpeed:        cfg.Pointer.DefaultSpeed,
		WheelSlowdownFactor: cfg.Pointer.WheelSlowdownFactor,
	}
}

// newLogger builds the root logger. The log file is best effort: when it
// cannot be opened the daemon keeps running with stderr output only.
func newLogger(cfg config.LogConfig) (zerolog.Logger, *os.File) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}}

	var logFile *os.File
	if cfg.File != "" {
		if mkdirErr := os.MkdirAll(filepath.Dir(cfg.File), 0755); mkdirErr == nil {
			logFile, _ = os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		}
		if logFile != nil {
			writers = append(writers, logFile)
		}
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	if logFile == nil && cfg.File != "" {
		log.Warn().Str("file", cfg.File).Msg("log file unavailable, logging to stderr only")
	}
	return log, logFile
}
