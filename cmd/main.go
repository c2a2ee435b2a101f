package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"StandupBot/config"
	"StandupBot/logger"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/standup.yaml)")
	flag.Parse()

	config.LoadEnv()
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}
	logger.Init(cfg.Log)
	mainLog := logger.New("main")

	if err := cfg.Validate(); err != nil {
		mainLog.Crit("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		mainLog.Crit("startup failed", "err", err)
		os.Exit(1)
	}
	defer a.close()

	mainLog.Info("Standup Bot is running", "members", len(cfg.Standup.Members), "schedule", cfg.Standup.Schedule, "tz", cfg.Standup.Timezone)
	if err := a.run(ctx); err != nil {
		mainLog.Error("stopped with error", "err", err)
		return
	}
	mainLog.Info("shut down cleanly")
}
