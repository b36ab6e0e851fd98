package main

import (
	"flag"
	"log"
	"os"

	"ChainSight/internal/di"
	"ChainSight/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s symbols=%v", cfg.Environment, cfg.NSE.Symbols)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if cfg.ClickHouse.Enabled {
		log.Printf("clickhouse: connected and schema ready - db: %s", cfg.ClickHouse.Database)
	}
	if cfg.Kafka.Enabled {
		log.Printf("kafka: brokers=%v snapshots=%s signals=%s", cfg.Kafka.Brokers, cfg.Kafka.SnapshotsIn, cfg.Kafka.SignalsOut)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
