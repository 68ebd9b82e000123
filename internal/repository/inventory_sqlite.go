package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"mc-bridge-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteInventoryRepository implements InventoryRepository using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteInventoryRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteInventoryRepository creates a new SQLite inventory repository.
// dbPath is the path to the SQLite database file (e.g., "./data/inventory.db")
func NewSQLiteInventoryRepository(dbPath string) (*SQLiteInventoryRepository, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createInventoryTable(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteInventoryRepository{db: db}, nil
}

func createInventoryTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS player_inventory (
		mc_uuid TEXT NOT NULL,
		item_id TEXT NOT NULL,
		item_name TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		metadata TEXT,
		updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (mc_uuid, item_id)
	);
	CREATE INDEX IF NOT EXISTS idx_inventory_owner ON player_inventory(mc_uuid);
	`
	_, err := db.Exec(query)
	return err
}

// GetItems returns a player's inventory ordered by item name.
func (r *SQLiteInventoryRepository) GetItems(ctx context.Context, mcUUID string) ([]model.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT item_id, item_name, quantity, metadata, updated_at
		FROM player_inventory WHERE mc_uuid = ? ORDER BY item_name ASC`

	rows, err := r.db.QueryContext(ctx, query, mcUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		var item model.InventoryItem
		var metadata sql.NullString
		if err := rows.Scan(&item.ItemID, &item.ItemName, &item.Quantity, &metadata, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		item.MCUUID = mcUUID
		if metadata.Valid {
			item.Metadata = []byte(metadata.String)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ReplaceAll atomically replaces a player's inventory. The delete and the
// inserts run in one transaction so readers never observe a half-replaced
// item set.
func (r *SQLiteInventoryRepository) ReplaceAll(ctx context.Context, mcUUID string, items []model.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM player_inventory WHERE mc_uuid = ?", mcUUID); err != nil {
		return fmt.Errorf("failed to clear inventory: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO player_inventory (mc_uuid, item_id, item_name, quantity, metadata, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if _, err := stmt.ExecContext(ctx, mcUUID, item.ItemID, item.ItemName, item.Quantity, metadataArg(item.Metadata)); err != nil {
			return fmt.Errorf("failed to insert item %s: %w", item.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// PatchItem upserts a single item, deleting the row when the quantity drops
// to zero or below.
func (r *SQLiteInventoryRepository) PatchItem(ctx context.Context, mcUUID string, item model.InventoryItem) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.Quantity <= 0 {
		_, err := r.db.ExecContext(ctx,
			"DELETE FROM player_inventory WHERE mc_uuid = ? AND item_id = ?", mcUUID, item.ItemID)
		if err != nil {
			return false, fmt.Errorf("failed to delete item: %w", err)
		}
		return true, nil
	}

	query := `
		INSERT INTO player_inventory (mc_uuid, item_id, item_name, quantity, metadata, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(mc_uuid, item_id) DO UPDATE SET
			quantity = excluded.quantity,
			item_name = CASE WHEN excluded.item_name != '' THEN excluded.item_name ELSE item_name END,
			metadata = COALESCE(excluded.metadata, metadata),
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query, mcUUID, item.ItemID, item.ItemName, item.Quantity, metadataArg(item.Metadata))
	if err != nil {
		return false, fmt.Errorf("failed to upsert item: %w", err)
	}
	return false, nil
}

// Close closes the database connection.
func (r *SQLiteInventoryRepository) Close() error {
	return r.db.Close()
}

// metadataArg maps empty metadata to NULL so COALESCE-based merges work.
func metadataArg(metadata []byte) interface{} {
	if len(metadata) == 0 {
		return nil
	}
	return string(metadata)
}

// Ensure SQLiteInventoryRepository implements InventoryRepository
var _ InventoryRepository = (*SQLiteInventoryRepository)(nil)
