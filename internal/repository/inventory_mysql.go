package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mc-bridge-api/internal/model"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLInventoryRepository implements InventoryRepository using MySQL.
// Used when several bridge instances share one inventory database.
type MySQLInventoryRepository struct {
	db *sql.DB
}

// NewMySQLInventoryRepository creates a new MySQL inventory repository.
// dsn is a go-sql-driver DSN, e.g. "user:pass@tcp(host:3306)/bridge?parseTime=true"
func NewMySQLInventoryRepository(dsn string) (*MySQLInventoryRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if err := createInventoryTableMySQL(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &MySQLInventoryRepository{db: db}, nil
}

func createInventoryTableMySQL(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS player_inventory (
		mc_uuid VARCHAR(36) NOT NULL,
		item_id VARCHAR(255) NOT NULL,
		item_name VARCHAR(255) NOT NULL,
		quantity BIGINT NOT NULL,
		metadata TEXT,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (mc_uuid, item_id)
	)`
	_, err := db.Exec(query)
	return err
}

// GetItems returns a player's inventory ordered by item name.
func (r *MySQLInventoryRepository) GetItems(ctx context.Context, mcUUID string) ([]model.InventoryItem, error) {
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

// ReplaceAll atomically replaces a player's inventory.
func (r *MySQLInventoryRepository) ReplaceAll(ctx context.Context, mcUUID string, items []model.InventoryItem) error {
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
		VALUES (?, ?, ?, ?, ?, NOW())`)
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
func (r *MySQLInventoryRepository) PatchItem(ctx context.Context, mcUUID string, item model.InventoryItem) (bool, error) {
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
		VALUES (?, ?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			quantity = VALUES(quantity),
			item_name = IF(VALUES(item_name) != '', VALUES(item_name), item_name),
			metadata = COALESCE(VALUES(metadata), metadata),
			updated_at = VALUES(updated_at)`

	_, err := r.db.ExecContext(ctx, query, mcUUID, item.ItemID, item.ItemName, item.Quantity, metadataArg(item.Metadata))
	if err != nil {
		return false, fmt.Errorf("failed to upsert item: %w", err)
	}
	return false, nil
}

// Close closes the database connection.
func (r *MySQLInventoryRepository) Close() error {
	return r.db.Close()
}

// Ensure MySQLInventoryRepository implements InventoryRepository
var _ InventoryRepository = (*MySQLInventoryRepository)(nil)
