// Package main runs the point-buy calculator server. It wires together
// configuration, homebrew cost tables, the Telnet acceptor and the optional
// WebSocket listener.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pointbuy/internal/config"
	"github.com/cory-johannsen/pointbuy/internal/frontend/handlers"
	"github.com/cory-johannsen/pointbuy/internal/frontend/telnet"
	"github.com/cory-johannsen/pointbuy/internal/frontend/websocket"
	"github.com/cory-johannsen/pointbuy/internal/game/ruleset"
	"github.com/cory-johannsen/pointbuy/internal/game/session"
	"github.com/cory-johannsen/pointbuy/internal/observability"
	"github.com/cory-johannsen/pointbuy/internal/scripting"
	"github.com/cory-johannsen/pointbuy/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (defaults and POINTBUY_* env when empty)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	edition, err := ruleset.ParseEdition(cfg.Calculator.DefaultEdition)
	if err != nil {
		logger.Fatal("default edition", zap.Error(err))
	}
	logger.Info("starting point-buy calculator",
		zap.String("edition", string(edition)),
		zap.Int("max_sessions", cfg.Calculator.MaxSessions),
	)

	tables, err := loadTables(cfg.Calculator, logger)
	if err != nil {
		logger.Fatal("loading cost tables", zap.Error(err))
	}

	sessions := session.NewManager(edition, cfg.Calculator.MaxSessions)
	calc := handlers.NewCalcHandler(sessions, tables, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add(telnet.NewAcceptor(cfg.Telnet, calc, logger))
	if cfg.WebSocket.Enabled {
		lifecycle.Add(websocket.NewServer(cfg.WebSocket, calc, logger))
	}

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.Bool("websocket", cfg.WebSocket.Enabled),
	)

	runErr := lifecycle.Run(context.Background())
	if open := sessions.IDs(); len(open) > 0 {
		logger.Warn("sessions still open at exit", zap.Strings("session_ids", open))
	}
	if runErr != nil {
		logger.Fatal("server error", zap.Error(runErr))
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Defaults()
	}
	return config.Load(path)
}

// loadTables registers the YAML and Lua cost tables found in the content
// directory. An empty directory setting yields an empty registry.
func loadTables(cfg config.CalculatorConfig, logger *zap.Logger) (*ruleset.TableRegistry, error) {
	reg := ruleset.NewTableRegistry()
	if cfg.ContentDir == "" {
		return reg, nil
	}

	loadStart := time.Now()
	static, err := ruleset.LoadCostTables(cfg.ContentDir)
	if err != nil {
		return nil, err
	}
	scripted, err := scripting.LoadCostScripts(cfg.ContentDir, cfg.ScriptInstructionLimit, logger)
	if err != nil {
		return nil, err
	}
	for _, t := range static {
		reg.Register(t)
	}
	for _, t := range scripted {
		reg.Register(t)
	}
	logger.Info("cost tables loaded",
		zap.String("dir", cfg.ContentDir),
		zap.Int("yaml", len(static)),
		zap.Int("lua", len(scripted)),
		zap.Duration("elapsed", time.Since(loadStart)),
	)
	return reg, nil
}
