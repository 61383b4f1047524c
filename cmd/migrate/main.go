package main

import (
	"flag"
	"log"

	"github.com/famnudger/fam/backend/config"
	"github.com/famnudger/fam/backend/internal/database"
	"github.com/famnudger/fam/backend/internal/logger"
)

func main() {
	check := flag.Bool("check", false, "Only verify the database is reachable")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(string(cfg.Environment))
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLog.Sync()

	db, err := database.New(cfg, appLog)
	if err != nil {
		appLog.Fatal("Failed to connect to database", "error", err)
	}
	defer func() { _ = database.Close(db) }()

	if *check {
		appLog.Info("Database reachable", "driver", cfg.DBDriver)
		return
	}

	if err := database.RunMigrations(db, appLog); err != nil {
		appLog.Fatal("Migration failed", "error", err)
	}
	appLog.Info("Migrations complete", "driver", cfg.DBDriver)
}
