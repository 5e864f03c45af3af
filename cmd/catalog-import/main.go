// Command catalog-import loads CPT listings from a YAML file into the configured database.
// Listings are keyed by CPT code, so re-running an import refreshes existing rows.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/config"
	v1 "github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/services"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	catalogPath := flag.String("file", "config/catalog.sample.yaml", "path to the CPT catalog YAML file")
	timeout := flag.Duration("timeout", time.Minute, "maximum duration of the import")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(*catalogPath, *timeout); err != nil {
		slog.Error("Catalog import failed", "file", *catalogPath, "error", err)
		os.Exit(1)
	}
}

func run(catalogPath string, timeout time.Duration) error {
	listings, err := config.LoadCatalog(catalogPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	dbConfig := v1.NewDatabaseConfig()
	repo, closeDB, err := v1.OpenRepository(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", dbConfig.Type, err)
	}
	defer func() {
		if err := closeDB(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	count, err := services.NewCatalogService(repo).ImportListings(ctx, listings)
	if err != nil {
		return err
	}
	slog.Info("Catalog import complete", "file", catalogPath, "listings", count)
	return nil
}
