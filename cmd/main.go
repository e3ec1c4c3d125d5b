// Command redbet runs the chat wager ledger daemon. It observes a casino
// chat feed over WebSocket, settles wagers from the croupier's announcements
// and serves a dashboard with the wager history.
//
// Usage:
//
//	redbet --config config.yaml
//	redbet --chat-url wss://host/chat (uses CLI arguments)
//	redbet --setup (interactive configuration wizard)
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vadiminshakov/redbet/config"
	"github.com/vadiminshakov/redbet/internal"
	"github.com/vadiminshakov/redbet/internal/setup"
	"github.com/vadiminshakov/redbet/internal/web"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	runSetup := flag.Bool("setup", false, "run the interactive configuration wizard")

	cfg, err := config.Get()
	if *runSetup {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	bot, err := internal.NewBot(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer bot.Close()

	server := web.NewServer(cfg.ListenAddr, cfg.PageSize, cfg.ShutdownTimeout, bot.History(), bot, bot.Events(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(ctx) })
	g.Go(func() error { return server.Start(ctx) })

	if err := g.Wait(); err != nil && !isContextErr(err) {
		logger.Fatal("daemon stopped", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
