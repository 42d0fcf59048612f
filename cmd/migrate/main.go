package main

import (
	"context"
	"flag"
	"log"

	"github.com/Satyam-Vyas/order-book/internal/infrastructure/postgresql/migrations"
	"github.com/Satyam-Vyas/order-book/pkg/config"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
	migration "github.com/Satyam-Vyas/order-book/pkg/migration-pg"
	"github.com/Satyam-Vyas/order-book/pkg/postgresql"
)

type migrateConfig struct {
	Postgres postgresql.Config `envPrefix:"POSTGRES_"`
}

func main() {
	var (
		direction = flag.String("direction", "up", "Migration direction: up, down or status")
		steps     = flag.Int("steps", 0, "Number of steps to migrate (0 = all, up only)")
	)
	flag.Parse()

	ctx := context.Background()

	cfg := &migrateConfig{}
	if err := config.Load(cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.NewLogger(logger.WithEncoding("console"))
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	pgClient, err := postgresql.NewClient(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()

	runner := migration.NewRunner(pgClient, zl, migration.Config{
		Source:    migrations.FS,
		Schema:    "public",
		TableName: "schema_migrations",
	})

	switch *direction {
	case "up":
		if err := runner.MigrateUp(ctx, *steps); err != nil {
			log.Fatalf("Failed to migrate up: %v", err)
		}
	case "down":
		if err := runner.MigrateDown(ctx, *steps); err != nil {
			log.Fatalf("Failed to migrate down: %v", err)
		}
	case "status":
		applied, all, err := runner.Status(ctx)
		if err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
		for _, m := range all {
			state := "pending"
			if applied[m.ID] {
				state = "applied"
			}
			log.Printf("%s: %s", m.ID, state)
		}
		return
	default:
		log.Fatalf("Invalid direction: %s. Use 'up', 'down' or 'status'", *direction)
	}

	log.Printf("Migration %s completed successfully", *direction)
}
