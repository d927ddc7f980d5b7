package main

import (
	"log"
	"math/rand"
	"os"
	"time"

	"simplelms/internal/config"
	"simplelms/internal/util"
	"simplelms/pkg/importer"
	"simplelms/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	loc, err := config.ParseTimezone(cfg.DefaultTimezone)
	if err != nil {
		log.Fatalf("failed to parse timezone: %v", err)
	}

	util.InitLogger("lms-importer", cfg.LogLevel)

	st, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	imp := importer.New(st, importer.Options{
		FixtureDir: cfg.FixtureDir,
		Out:        os.Stdout,
		Location:   loc,
		Rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	})
	if err := imp.Run(); err != nil {
		log.Fatalf("import failed: %v", err)
	}
}
