package model

import (
	"encoding/json"
	"time"
)

// InventoryItem is one stack in a player's synced inventory, keyed by
// (mc_uuid, item_id). Rows with quantity <= 0 are never stored; a patch
// that drops the quantity to zero deletes the row instead.
type InventoryItem struct {
	MCUUID    string          `json:"-"`
	ItemID    string          `json:"item_id"`
	ItemName  string          `json:"item_name"`
	Quantity  int64           `json:"quantity"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}
