package repository

import (
	"context"
	"time"

	"mc-bridge-api/internal/model"
)

// BindingRepository defines player binding data access methods.
type BindingRepository interface {
	// GetByDiscordID returns the binding row for a Discord user, or nil.
	GetByDiscordID(ctx context.Context, discordID string) (*model.Binding, error)

	// GetByMCUUID returns the confirmed binding for a Minecraft UUID, or nil.
	GetByMCUUID(ctx context.Context, mcUUID string) (*model.Binding, error)

	// GetByBindCode returns the row holding the given code, or nil.
	GetByBindCode(ctx context.Context, code string) (*model.Binding, error)

	// UpsertPending creates or refreshes a pending binding for a Discord
	// user. A new code always overwrites any previous one.
	UpsertPending(ctx context.Context, discordID, discordName, mcName, code string, issuedAt time.Time) error

	// ClearBindCode removes an expired code so it cannot be replayed.
	ClearBindCode(ctx context.Context, id int64) error

	// Confirm completes a binding: sets the Minecraft identity, clears the
	// code, and stamps bound_at.
	Confirm(ctx context.Context, id int64, mcUUID, mcName string, boundAt time.Time) error

	// ListBound returns confirmed bindings newest-first.
	ListBound(ctx context.Context, limit, offset int) ([]model.Binding, error)

	// CountBound returns the number of confirmed bindings.
	CountBound(ctx context.Context) (int, error)
}

// MessageRepository defines relay message data access methods.
type MessageRepository interface {
	// InsertMessage stores a relay message and returns its ID.
	InsertMessage(ctx context.Context, source model.MessageSource, username, content string, delivered bool) (int64, error)

	// ListUndelivered returns undelivered messages from the given source
	// created after since, oldest first.
	ListUndelivered(ctx context.Context, source model.MessageSource, since time.Time, limit int) ([]model.RelayMessage, error)

	// MarkDelivered flips the delivered flag for the given IDs and returns
	// the number of rows updated.
	MarkDelivered(ctx context.Context, ids []int64) (int64, error)
}

// SettingRepository defines server settings data access methods.
type SettingRepository interface {
	// GetSetting returns a setting by key, or nil if absent.
	GetSetting(ctx context.Context, key string) (*model.Setting, error)

	// ListSettings returns all settings ordered by key.
	ListSettings(ctx context.Context) ([]model.Setting, error)

	// UpsertSetting inserts or overwrites a setting.
	UpsertSetting(ctx context.Context, key, value string) error

	// BatchUpsertSettings upserts several settings in one transaction.
	BatchUpsertSettings(ctx context.Context, entries map[string]string) error
}

// ChannelRepository defines sync channel registry data access methods.
type ChannelRepository interface {
	// GetChannel returns a registered channel, or nil if not registered.
	GetChannel(ctx context.Context, channelID string) (*model.SyncChannel, error)

	// ListChannels returns all registered channels, oldest first.
	ListChannels(ctx context.Context) ([]model.SyncChannel, error)

	// UpsertChannel registers a channel or refreshes its metadata and added_at.
	UpsertChannel(ctx context.Context, ch model.SyncChannel) error

	// DeleteChannel removes a channel. Returns false if it was not registered.
	DeleteChannel(ctx context.Context, channelID string) (bool, error)
}

// InventoryRepository defines player inventory data access methods.
type InventoryRepository interface {
	// GetItems returns a player's inventory ordered by item name.
	GetItems(ctx context.Context, mcUUID string) ([]model.InventoryItem, error)

	// ReplaceAll atomically replaces a player's inventory with the given
	// item set.
	ReplaceAll(ctx context.Context, mcUUID string, items []model.InventoryItem) error

	// PatchItem upserts a single item. A quantity <= 0 deletes the row;
	// the returned bool reports whether a delete happened.
	PatchItem(ctx context.Context, mcUUID string, item model.InventoryItem) (bool, error)

	// Close closes the repository connection.
	Close() error
}

// Pinger exposes a connectivity probe used by the /test slash command.
type Pinger interface {
	Ping(ctx context.Context) error
}
