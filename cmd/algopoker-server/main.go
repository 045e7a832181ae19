package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/algopoker/internal/server"
)

var CLI struct {
	Config   string `short:"c" default:"algopoker.hcl" help:"Path to HCL config file."`
	Addr     string `short:"a" help:"Listen address, overrides the config file."`
	LogLevel string `short:"l" help:"Log level (debug, info, warn, error)."`
	Seed     int64  `help:"Deck RNG seed, 0 means time-based."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("algopoker-server"),
		kong.Description("WebSocket no-limit hold'em tournament server for bots."),
	)

	cfg, err := server.LoadConfig(CLI.Config)
	if err != nil {
		kctx.FatalIfErrorf(err)
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	addr := cfg.Address()
	if CLI.Addr != "" {
		addr = CLI.Addr
	}

	seed := CLI.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	tournament := server.NewTournament(cfg, logger, quartz.NewReal(), rng)
	srv := server.New(addr, logger, tournament)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			logger.Error("shutdown failed", "err", err)
		}
	}()

	if err := srv.Start(); err != nil {
		logger.Fatal("server failed", "err", err)
	}
}
