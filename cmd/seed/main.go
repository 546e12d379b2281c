package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/EduardoTrevino/udyam/internal/config"
	"github.com/EduardoTrevino/udyam/internal/logger"
	"github.com/EduardoTrevino/udyam/internal/storage"
	"github.com/EduardoTrevino/udyam/migrations"
)

type seedFile struct {
	Goals []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"goals"`
	Metrics []struct {
		Name    string   `yaml:"name"`
		Default float64  `yaml:"default"`
		Floor   *float64 `yaml:"floor"`
	} `yaml:"metrics"`
	DemoUser *struct {
		Name string `yaml:"name"`
	} `yaml:"demo_user"`
}

func main() {
	_ = godotenv.Load()

	seedPath := flag.String("file", "data/seed.yaml", "path to the seed YAML file")
	withDemoUser := flag.Bool("demo-user", false, "also create the demo learner from the seed file")
	flag.Parse()

	// The seed command only needs the database; a missing OPENAI_API_KEY
	// should not block it.
	if os.Getenv("OPENAI_API_KEY") == "" {
		os.Setenv("OPENAI_API_KEY", "seed-only")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logg := logger.Setup(cfg)

	raw, err := os.ReadFile(*seedPath)
	if err != nil {
		logg.Error("Failed to read seed file", "path", *seedPath, "error", err)
		os.Exit(1)
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		logg.Error("Failed to parse seed file", "path", *seedPath, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL, logg)
	if err != nil {
		logg.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.RunMigrations(ctx, migrations.FS); err != nil {
		logg.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	for _, g := range seed.Goals {
		if err := store.UpsertGoal(ctx, storage.Goal{
			ID:          uuid.New(),
			Name:        g.Name,
			Description: g.Description,
		}); err != nil {
			logg.Error("Failed to upsert goal", "name", g.Name, "error", err)
			os.Exit(1)
		}
		logg.Info("Seeded goal", "name", g.Name)
	}

	for _, m := range seed.Metrics {
		if err := store.EnsureMetric(ctx, m.Name, m.Default, m.Floor); err != nil {
			logg.Error("Failed to seed metric", "name", m.Name, "error", err)
			os.Exit(1)
		}
		logg.Info("Seeded metric", "name", m.Name, "default", m.Default)
	}

	if *withDemoUser && seed.DemoUser != nil {
		user := &storage.User{
			ID:   uuid.New(),
			Name: seed.DemoUser.Name,
		}
		if err := store.CreateUser(ctx, user); err != nil {
			logg.Error("Failed to create demo user", "error", err)
			os.Exit(1)
		}
		logg.Info("Seeded demo user", "id", user.ID, "name", user.Name)
		fmt.Println(user.ID)
	}

	logg.Info("Seed complete",
		"goals", len(seed.Goals),
		"metrics", len(seed.Metrics))
}
