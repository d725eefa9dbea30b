package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/retailpulse/backend-go/internal/domain"
)

// SnapshotStore persists uploaded datasets so a restarted server can serve
// the last upload. Only the raw records are stored; workflow statuses and all
// derived metrics stay in memory by design.
type SnapshotStore interface {
	SaveDataset(ctx context.Context, products []domain.Product, transfers []domain.Transfer) (int64, error)
	LoadLatest(ctx context.Context) ([]domain.Product, []domain.Transfer, error)
}

// SnapshotRepository is the Postgres-backed SnapshotStore.
type SnapshotRepository struct {
	db *DB
}

func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

var _ SnapshotStore = (*SnapshotRepository)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS datasets (
	id         BIGSERIAL PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS product_snapshots (
	dataset_id               BIGINT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
	product_id               TEXT NOT NULL,
	product_name             TEXT NOT NULL,
	store_id                 TEXT NOT NULL,
	expiry_date              DATE NOT NULL,
	stock                    INT NOT NULL,
	mrp                      DOUBLE PRECISION NOT NULL,
	final_price              DOUBLE PRECISION NOT NULL,
	remaining_expected_sales DOUBLE PRECISION NOT NULL DEFAULT 0,
	position                 INT NOT NULL
);

CREATE TABLE IF NOT EXISTS transfer_snapshots (
	dataset_id     BIGINT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
	product_id     TEXT NOT NULL,
	from_store     TEXT NOT NULL,
	to_store       TEXT NOT NULL,
	quantity       INT NOT NULL,
	distance_km    DOUBLE PRECISION NOT NULL,
	days_to_expiry INT NOT NULL,
	position       INT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_product_snapshots_dataset ON product_snapshots(dataset_id);
CREATE INDEX IF NOT EXISTS idx_transfer_snapshots_dataset ON transfer_snapshots(dataset_id);
`

// Migrate creates the snapshot tables if they do not exist.
func (r *SnapshotRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate snapshot schema: %w", err)
	}
	return nil
}

// SaveDataset stores a complete dataset in one transaction and returns its id.
// The position column preserves upload order so a restore replays the exact
// collection the client sent.
func (r *SnapshotRepository) SaveDataset(ctx context.Context, products []domain.Product, transfers []domain.Transfer) (int64, error) {
	var datasetID int64

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, `INSERT INTO datasets DEFAULT VALUES RETURNING id`).Scan(&datasetID); err != nil {
			return fmt.Errorf("insert dataset: %w", err)
		}

		const insertProduct = `
			INSERT INTO product_snapshots
				(dataset_id, product_id, product_name, store_id, expiry_date, stock, mrp, final_price, remaining_expected_sales, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
		for i, p := range products {
			if _, err := tx.ExecContext(ctx, insertProduct,
				datasetID, p.ProductID, p.ProductName, p.StoreID, p.ExpiryDate, p.Stock, p.MRP, p.FinalPrice, p.RemainingExpectedSales, i); err != nil {
				return fmt.Errorf("insert product snapshot: %w", err)
			}
		}

		const insertTransfer = `
			INSERT INTO transfer_snapshots
				(dataset_id, product_id, from_store, to_store, quantity, distance_km, days_to_expiry, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		for i, t := range transfers {
			if _, err := tx.ExecContext(ctx, insertTransfer,
				datasetID, t.ProductID, t.FromStore, t.ToStore, t.Quantity, t.DistanceKM, t.DaysToExpiry, i); err != nil {
				return fmt.Errorf("insert transfer snapshot: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return datasetID, nil
}

// LoadLatest returns the most recent dataset's records in upload order. Both
// collections are fetched concurrently. A database with no datasets yields
// empty collections and no error.
func (r *SnapshotRepository) LoadLatest(ctx context.Context) ([]domain.Product, []domain.Transfer, error) {
	var datasetID int64
	err := r.db.GetContext(ctx, &datasetID, `SELECT id FROM datasets ORDER BY id DESC LIMIT 1`)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find latest dataset: %w", err)
	}

	var (
		products  []domain.Product
		transfers []domain.Transfer
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		const q = `
			SELECT product_id, product_name, store_id, expiry_date, stock, mrp, final_price, remaining_expected_sales
			FROM product_snapshots WHERE dataset_id = $1 ORDER BY position`
		if err := r.db.SelectContext(gctx, &products, q, datasetID); err != nil {
			return fmt.Errorf("load product snapshots: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		const q = `
			SELECT product_id, from_store, to_store, quantity, distance_km, days_to_expiry
			FROM transfer_snapshots WHERE dataset_id = $1 ORDER BY position`
		if err := r.db.SelectContext(gctx, &transfers, q, datasetID); err != nil {
			return fmt.Errorf("load transfer snapshots: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return products, transfers, nil
}
