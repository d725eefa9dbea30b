// cmd/ingest/main.go
//
// Loads inventory and transfer CSV files into the snapshot store from the
// command line, so a dataset can be staged without going through the HTTP
// upload endpoint.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/retailpulse/backend-go/internal/domain"
	"github.com/retailpulse/backend-go/internal/ingest"
	"github.com/retailpulse/backend-go/internal/repository/postgres"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "ingest",
		Usage: "load inventory and transfer CSV files into the snapshot store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db-url",
				Usage:    "Database connection string",
				Required: true,
				EnvVars:  []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:     "inventory",
				Usage:    "Path to the inventory CSV file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "transfers",
				Usage: "Path to the transfer suggestions CSV file",
			},
			&cli.BoolFlag{
				Name:  "skip-invalid",
				Usage: "Drop and report malformed rows instead of aborting",
				Value: true,
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	db, err := sqlx.Connect("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := postgres.NewSnapshotRepository(postgres.Wrap(db))
	if err := repo.Migrate(c.Context); err != nil {
		return err
	}

	opts := ingest.Options{SkipInvalid: c.Bool("skip-invalid")}

	products, skippedProducts, err := parseProductsFile(c.String("inventory"), opts)
	if err != nil {
		return err
	}
	reportSkipped("inventory", skippedProducts)

	var transfers []domain.Transfer
	if path := c.String("transfers"); path != "" {
		var skippedTransfers []*ingest.RowError
		transfers, skippedTransfers, err = parseTransfersFile(path, opts)
		if err != nil {
			return err
		}
		reportSkipped("transfers", skippedTransfers)
	}

	start := time.Now()
	datasetID, err := repo.SaveDataset(c.Context, products, transfers)
	if err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}

	log.Printf("Saved dataset %d (%d products, %d transfers) in %v",
		datasetID, len(products), len(transfers), time.Since(start))

	return nil
}

func parseProductsFile(path string, opts ingest.Options) ([]domain.Product, []*ingest.RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	products, skipped, err := ingest.ParseProducts(f, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return products, skipped, nil
}

func parseTransfersFile(path string, opts ingest.Options) ([]domain.Transfer, []*ingest.RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	transfers, skipped, err := ingest.ParseTransfers(f, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return transfers, skipped, nil
}

func reportSkipped(file string, skipped []*ingest.RowError) {
	for _, rowErr := range skipped {
		log.Printf("Skipped %s row: %v", file, rowErr)
	}
}
