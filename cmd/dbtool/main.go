package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"shipment-dispatch-service/internal/adapters/repositories"
	"shipment-dispatch-service/internal/config"
	"shipment-dispatch-service/internal/platform/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the dbtool command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dbtool",
		Short:         "Manage the shipment dispatch database",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, revert or inspect schema migrations",
	}

	migrateUp := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd, func(conn *sql.DB, driver string) error {
				if err := repositories.Migrate(cmd.Context(), conn, driver); err != nil {
					return err
				}
				cmd.Println("Schema ready.")
				return nil
			})
		},
	}

	var steps int
	migrateDown := &cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			return withDB(cmd, func(conn *sql.DB, driver string) error {
				if err := repositories.Rollback(cmd.Context(), conn, driver, steps); err != nil {
					return err
				}
				cmd.Printf("Reverted up to %d migration(s).\n", steps)
				return nil
			})
		},
	}
	migrateDown.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert")

	migrateStatus := &cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd, func(conn *sql.DB, driver string) error {
				status, err := repositories.Status(cmd.Context(), conn, driver)
				if err != nil {
					return err
				}
				for _, s := range status {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					cmd.Printf("%05d  %-8s %s\n", s.Version, state, s.Source)
				}
				return nil
			})
		},
	}

	migrate.AddCommand(migrateUp, migrateDown, migrateStatus)

	var seedPath string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Load trucks and shipments from a YAML or JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := strings.TrimSpace(seedPath)
			if path == "" {
				path = config.Get("SEED_PATH", "data/seeds/fleet.yaml")
			}
			return withDB(cmd, func(conn *sql.DB, driver string) error {
				if err := repositories.Migrate(cmd.Context(), conn, driver); err != nil {
					return err
				}

				repo := repositories.NewSQLRepository(conn, driver)
				trucks, shipments, err := repo.SeedFromFile(cmd.Context(), path)
				if err != nil {
					return err
				}
				cmd.Printf("Seeded %d truck(s) and %d shipment(s) from %s.\n", trucks, shipments, path)
				return nil
			})
		},
	}
	seed.Flags().StringVar(&seedPath, "file", "", "seed file (defaults to SEED_PATH or data/seeds/fleet.yaml)")

	root.AddCommand(migrate, seed)
	return root
}

// withDB opens the configured database for the duration of fn.
func withDB(cmd *cobra.Command, fn func(conn *sql.DB, driver string) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	conn, err := db.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(conn, cfg.Database.Driver)
}
