package main

import (
	"flag"
	"log"
	"os"

	"github.com/davidromeo/tradeblocks-sub006/internal/di"
	"github.com/davidromeo/tradeblocks-sub006/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s store=%s sync_root=%s", cfg.Environment, cfg.Store.Path, cfg.Sync.Root)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
