// Command seed loads the admin account, categories, coupons and starter
// products into the database. Rows that already exist are skipped, so it is
// safe to run on every deploy.
package main

import (
	"context"
	_ "embed"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/config"
	"github.com/Ashish5180/vibe-bites/logging"
	"github.com/Ashish5180/vibe-bites/models"
)

//go:embed seed.yaml
var defaultSeed []byte

func main() {
	file := flag.String("file", "", "seed YAML (defaults to the built-in catalogue)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	data := defaultSeed
	if *file != "" {
		if data, err = os.ReadFile(*file); err != nil {
			logger.Fatal("read seed file", zap.String("file", *file), zap.Error(err))
		}
	}
	f, err := parseSeed(data)
	if err != nil {
		logger.Fatal("invalid seed file", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := seed(ctx, db, f, time.Now(), logger); err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
}
