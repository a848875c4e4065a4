package main

import (
	"flag"
	"os"

	"github.com/oggyb/crush-radar/internal/config"
	"github.com/oggyb/crush-radar/internal/db"
	"github.com/oggyb/crush-radar/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a yaml config file (defaults to CONFIG_PATH or ./local.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger.InitFromConfig(cfg)

	if cfg.App.ENV == "production" {
		logger.Error("refusing to seed a production database")
		os.Exit(1)
	}

	database, err := db.NewDB(cfg)
	if err != nil {
		logger.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	if err := db.SeedTestData(database); err != nil {
		logger.Error("failed to seed", "err", err)
		os.Exit(1)
	}

	logger.Info("seeding completed", "dsn_host", cfg.DB.Host, "db", cfg.DB.Name)
}
