// Package main is the recipebox admin CLI: index repair, consistency audits,
// schema migrations, and moving a store between backends. It talks to the
// same repo interfaces as the API server, so every operation works against
// either the file store or Postgres.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/pkordes/recipe-box/internal/domain"
	"github.com/pkordes/recipe-box/internal/filestore"
	"github.com/pkordes/recipe-box/internal/repo"
	"github.com/pkordes/recipe-box/internal/service"
	"github.com/pkordes/recipe-box/migrations"
)

var (
	dataDir     string
	databaseURL string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "recipebox",
		Short: "Admin tooling for the Recipe Box store",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", envOr("DATA_DIR", "data"), "file store root directory")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string (selects the Postgres backend)")

	rootCmd.AddCommand(rebuildCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(migrateDBCmd())
	rootCmd.AddCommand(copyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openBackend returns the repos for the selected backend plus a close func.
func openBackend() (repo.RecipeRepo, repo.TagIndex, func(), error) {
	if databaseURL != "" {
		pool, err := pgxpool.New(context.Background(), databaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open pool: %w", err)
		}
		if err := pool.Ping(context.Background()); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("ping: %w", err)
		}
		return repo.NewRecipeRepo(pool), repo.NewTagIndex(pool), pool.Close, nil
	}

	recipes, err := filestore.NewRecipeRepo(dataDir)
	if err != nil {
		return nil, nil, nil, err
	}
	index, err := filestore.NewTagIndex(dataDir)
	if err != nil {
		return nil, nil, nil, err
	}
	return recipes, index, func() {}, nil
}

func rebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild-index",
		Short: "Recompute the tag index from the recipe records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			recipes, index, closeFn, err := openBackend()
			if err != nil {
				return err
			}
			defer closeFn()

			svc := service.NewMaintenanceService(recipes, index)
			if err := svc.RebuildIndex(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("tag index rebuilt")
			return nil
		},
	}
}

func auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Report divergences between recipe records and the tag index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			recipes, index, closeFn, err := openBackend()
			if err != nil {
				return err
			}
			defer closeFn()

			svc := service.NewMaintenanceService(recipes, index)
			findings, err := svc.Audit(cmd.Context())
			if err != nil {
				return err
			}
			if len(findings) == 0 {
				fmt.Println("store is consistent")
				return nil
			}
			for _, f := range findings {
				if f.RecipeID != "" {
					fmt.Printf("%s  %s: %s\n", f.Tag, f.RecipeID, f.Detail)
					continue
				}
				fmt.Printf("%s: %s\n", f.Tag, f.Detail)
			}
			return fmt.Errorf("%w: %d findings (run rebuild-index to repair)", domain.ErrInconsistency, len(findings))
		},
	}
}

func migrateDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-db",
		Short: "Apply pending schema migrations to the Postgres backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url (or DATABASE_URL) is required")
			}

			db, err := sql.Open("pgx", databaseURL)
			if err != nil {
				return fmt.Errorf("open: %w", err)
			}
			defer db.Close()

			provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
			if err != nil {
				return fmt.Errorf("create goose provider: %w", err)
			}

			results, err := provider.Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			fmt.Printf("applied %d migrations\n", len(results))
			return nil
		},
	}
}

func copyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy",
		Short: "Copy every recipe from the file store into Postgres",
		Long: "Reads all recipes from --data-dir, writes them into the Postgres\n" +
			"backend at --database-url, and rebuilds the Postgres tag index.\n" +
			"Ids and timestamps are preserved; existing rows are overwritten.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url (or DATABASE_URL) is required")
			}

			src, err := filestore.NewRecipeRepo(dataDir)
			if err != nil {
				return err
			}

			pool, err := pgxpool.New(cmd.Context(), databaseURL)
			if err != nil {
				return fmt.Errorf("open pool: %w", err)
			}
			defer pool.Close()

			dst := repo.NewRecipeRepo(pool)
			dstIndex := repo.NewTagIndex(pool)

			recipes, err := src.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, rec := range recipes {
				if err := dst.Put(cmd.Context(), rec); err != nil {
					return fmt.Errorf("copy %s: %w", rec.ID, err)
				}
			}

			// Derive the index from the copied records rather than copying
			// the source index — the records are the source of truth.
			if err := service.NewMaintenanceService(dst, dstIndex).RebuildIndex(cmd.Context()); err != nil {
				return err
			}

			fmt.Printf("copied %d recipes\n", len(recipes))
			return nil
		},
	}
}

// envOr returns the environment variable value or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
