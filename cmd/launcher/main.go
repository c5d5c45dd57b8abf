// Package main is the entry point for the RDO Map Overlay launcher.
// It resolves the install directory, loads configuration, sets up logging
// and the debug console, then hands control to the launcher sequence.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rdo-overlay/launcher/internal/autostart"
	"github.com/rdo-overlay/launcher/internal/config"
	"github.com/rdo-overlay/launcher/internal/console"
	"github.com/rdo-overlay/launcher/internal/install"
	"github.com/rdo-overlay/launcher/internal/launcher"
)

var (
	// version is set at build time via -ldflags.
	version = "dev"

	configPath   = flag.String("config", "", "Path to configuration file (default: launcher.yaml in the install directory)")
	debugFlag    = flag.Bool("debug", false, "Force debug mode (same as placing debug.txt in the install directory)")
	autostartCmd = flag.String("autostart", "", "Manage login autostart: install, remove, or status")
	showVersion  = flag.Bool("version", false, "Show version and exit")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if *showVersion {
		fmt.Printf("rdo-overlay-launcher %s\n", version)
		return 0
	}

	root, err := install.Root()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve install directory: %v\n", err)
		return launcher.ExitVerifyFailed
	}

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(root, "launcher.yaml")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return launcher.ExitVerifyFailed
	}

	layout := install.NewLayout(root, cfg.Paths)

	debug := *debugFlag || layout.DebugEnabled()
	if debug {
		if err := console.Attach(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to attach debug console: %v\n", err)
		}
		defer console.Detach()
		cfg.Logging.Level = "debug"
	}

	logger := initLogger(cfg)
	defer logger.Sync()

	logger.Info("starting RDO Map Overlay launcher",
		zap.String("version", version),
		zap.String("session", uuid.NewString()),
		zap.String("install_dir", root),
		zap.Bool("debug", debug))

	if *autostartCmd != "" {
		return runAutostart(logger, *autostartCmd)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return launcher.ExitVerifyFailed
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A signal aimed at the launcher tears the backend down through the
	// same cleanup path instead of orphaning it.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down",
			zap.String("signal", sig.String()))
		cancel()
	}()

	code := launcher.New(cfg, layout, logger, debug).Run(ctx)
	logger.Info("launcher stopped", zap.Int("exit_code", code))
	return code
}

// runAutostart handles the --autostart subcommands.
func runAutostart(logger *zap.Logger, cmd string) int {
	mgr := autostart.New()

	switch cmd {
	case "install":
		execPath, err := os.Executable()
		if err != nil {
			logger.Error("cannot resolve executable path", zap.Error(err))
			return 1
		}
		if err := mgr.Install(execPath); err != nil {
			logger.Error("autostart install failed", zap.Error(err))
			return 1
		}
		logger.Info("autostart installed", zap.String("name", mgr.Name()))
	case "remove":
		if err := mgr.Uninstall(); err != nil {
			logger.Error("autostart removal failed", zap.Error(err))
			return 1
		}
		logger.Info("autostart removed", zap.String("name", mgr.Name()))
	case "status":
		installed, err := mgr.IsInstalled()
		if err != nil {
			logger.Error("autostart status check failed", zap.Error(err))
			return 1
		}
		logger.Info("autostart status",
			zap.String("name", mgr.Name()),
			zap.Bool("installed", installed))
	default:
		fmt.Fprintf(os.Stderr, "Unknown autostart command %q (expected install, remove, or status)\n", cmd)
		return 1
	}
	return 0
}

// initLogger creates a zap logger based on the configuration.
// It outputs to the console (human-readable) and optionally a JSON log file.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
