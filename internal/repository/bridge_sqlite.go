package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"mc-bridge-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteBridgeStore holds the bridge's relational state: player bindings,
// the relay message queue, the server settings mirror and the sync channel
// registry. Thread-safe with WAL mode for high-concurrency reads.
type SQLiteBridgeStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteBridgeStore opens (or creates) the bridge database at dbPath.
func NewSQLiteBridgeStore(dbPath string) (*SQLiteBridgeStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createBridgeTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteBridgeStore{db: db}, nil
}

func createBridgeTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS player_bindings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		discord_id TEXT NOT NULL UNIQUE,
		discord_name TEXT NOT NULL DEFAULT '',
		mc_uuid TEXT,
		mc_name TEXT NOT NULL DEFAULT '',
		bind_code TEXT,
		bind_code_at DATETIME,
		bound_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_bindings_code ON player_bindings(bind_code);
	CREATE INDEX IF NOT EXISTS idx_bindings_mc_uuid ON player_bindings(mc_uuid);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		username TEXT NOT NULL,
		content TEXT NOT NULL,
		delivered INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT (datetime('now'))
	);
	CREATE INDEX IF NOT EXISTS idx_messages_pending ON messages(source, delivered, created_at);

	CREATE TABLE IF NOT EXISTS server_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS sync_channels (
		channel_id TEXT PRIMARY KEY,
		guild_id TEXT NOT NULL,
		guild_name TEXT NOT NULL DEFAULT '',
		channel_name TEXT NOT NULL DEFAULT '',
		added_by TEXT NOT NULL DEFAULT '',
		added_at DATETIME NOT NULL DEFAULT (datetime('now'))
	);
	`
	_, err := db.Exec(query)
	return err
}

// Ping probes the underlying database connection.
func (s *SQLiteBridgeStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteBridgeStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// BindingRepository
// ---------------------------------------------------------------------------

const bindingColumns = "id, discord_id, discord_name, mc_uuid, mc_name, bind_code, bind_code_at, bound_at"

func scanBinding(row interface{ Scan(...interface{}) error }) (*model.Binding, error) {
	var b model.Binding
	var mcUUID, bindCode sql.NullString
	var bindCodeAt, boundAt sql.NullTime

	err := row.Scan(&b.ID, &b.DiscordID, &b.DiscordName, &mcUUID, &b.MCName, &bindCode, &bindCodeAt, &boundAt)
	if err != nil {
		return nil, err
	}

	if mcUUID.Valid {
		b.MCUUID = &mcUUID.String
	}
	if bindCode.Valid {
		b.BindCode = &bindCode.String
	}
	if bindCodeAt.Valid {
		t := bindCodeAt.Time
		b.BindCodeAt = &t
	}
	if boundAt.Valid {
		t := boundAt.Time
		b.BoundAt = &t
	}
	return &b, nil
}

// GetByDiscordID returns the binding row for a Discord user, or nil.
func (s *SQLiteBridgeStore) GetByDiscordID(ctx context.Context, discordID string) (*model.Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + bindingColumns + " FROM player_bindings WHERE discord_id = ?"
	b, err := scanBinding(s.db.QueryRowContext(ctx, query, discordID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get binding by discord id: %w", err)
	}
	return b, nil
}

// GetByMCUUID returns the confirmed binding for a Minecraft UUID, or nil.
func (s *SQLiteBridgeStore) GetByMCUUID(ctx context.Context, mcUUID string) (*model.Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + bindingColumns + " FROM player_bindings WHERE mc_uuid = ?"
	b, err := scanBinding(s.db.QueryRowContext(ctx, query, mcUUID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get binding by mc uuid: %w", err)
	}
	return b, nil
}

// GetByBindCode returns the row holding the given code, or nil. If two rows
// ever hold the same code the oldest issue wins.
func (s *SQLiteBridgeStore) GetByBindCode(ctx context.Context, code string) (*model.Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + bindingColumns + " FROM player_bindings WHERE bind_code = ? ORDER BY bind_code_at ASC LIMIT 1"
	b, err := scanBinding(s.db.QueryRowContext(ctx, query, code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get binding by code: %w", err)
	}
	return b, nil
}

// UpsertPending creates or refreshes a pending binding for a Discord user.
func (s *SQLiteBridgeStore) UpsertPending(ctx context.Context, discordID, discordName, mcName, code string, issuedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO player_bindings (discord_id, discord_name, mc_name, bind_code, bind_code_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(discord_id) DO UPDATE SET
			discord_name = excluded.discord_name,
			mc_name = excluded.mc_name,
			bind_code = excluded.bind_code,
			bind_code_at = excluded.bind_code_at`

	_, err := s.db.ExecContext(ctx, query, discordID, discordName, mcName, code, issuedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert pending binding: %w", err)
	}
	return nil
}

// ClearBindCode removes an expired code so it cannot be replayed.
func (s *SQLiteBridgeStore) ClearBindCode(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE player_bindings SET bind_code = NULL, bind_code_at = NULL WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to clear bind code: %w", err)
	}
	return nil
}

// Confirm completes a binding.
func (s *SQLiteBridgeStore) Confirm(ctx context.Context, id int64, mcUUID, mcName string, boundAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE player_bindings
		SET mc_uuid = ?, mc_name = ?, bind_code = NULL, bind_code_at = NULL, bound_at = ?
		WHERE id = ?`

	_, err := s.db.ExecContext(ctx, query, mcUUID, mcName, boundAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to confirm binding: %w", err)
	}
	return nil
}

// ListBound returns confirmed bindings newest-first.
func (s *SQLiteBridgeStore) ListBound(ctx context.Context, limit, offset int) ([]model.Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + bindingColumns + ` FROM player_bindings
		WHERE mc_uuid IS NOT NULL ORDER BY bound_at DESC LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bound players: %w", err)
	}
	defer rows.Close()

	var bindings []model.Binding
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan binding: %w", err)
		}
		bindings = append(bindings, *b)
	}
	return bindings, rows.Err()
}

// CountBound returns the number of confirmed bindings.
func (s *SQLiteBridgeStore) CountBound(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM player_bindings WHERE mc_uuid IS NOT NULL").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bound players: %w", err)
	}
	return count, nil
}

// ---------------------------------------------------------------------------
// MessageRepository
// ---------------------------------------------------------------------------

// InsertMessage stores a relay message and returns its ID.
func (s *SQLiteBridgeStore) InsertMessage(ctx context.Context, source model.MessageSource, username, content string, delivered bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deliveredFlag := 0
	if delivered {
		deliveredFlag = 1
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (source, username, content, delivered) VALUES (?, ?, ?, ?)",
		string(source), username, content, deliveredFlag)
	if err != nil {
		return 0, fmt.Errorf("failed to insert message: %w", err)
	}
	return result.LastInsertId()
}

// ListUndelivered returns undelivered messages from the given source created
// after since, oldest first.
func (s *SQLiteBridgeStore) ListUndelivered(ctx context.Context, source model.MessageSource, since time.Time, limit int) ([]model.RelayMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, source, username, content, delivered, created_at
		FROM messages
		WHERE source = ? AND delivered = 0 AND created_at > ?
		ORDER BY created_at ASC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, string(source), since.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list undelivered messages: %w", err)
	}
	defer rows.Close()

	var messages []model.RelayMessage
	for rows.Next() {
		var m model.RelayMessage
		var delivered int
		if err := rows.Scan(&m.ID, &m.Source, &m.Username, &m.Content, &delivered, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Delivered = delivered != 0
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkDelivered flips the delivered flag for the given IDs.
func (s *SQLiteBridgeStore) MarkDelivered(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE messages SET delivered = 1 WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages delivered: %w", err)
	}
	return result.RowsAffected()
}

// ---------------------------------------------------------------------------
// SettingRepository
// ---------------------------------------------------------------------------

// GetSetting returns a setting by key, or nil if absent.
func (s *SQLiteBridgeStore) GetSetting(ctx context.Context, key string) (*model.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var setting model.Setting
	err := s.db.QueryRowContext(ctx,
		"SELECT key, value, updated_at FROM server_settings WHERE key = ?", key).
		Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	return &setting, nil
}

// ListSettings returns all settings ordered by key.
func (s *SQLiteBridgeStore) ListSettings(ctx context.Context) ([]model.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT key, value, updated_at FROM server_settings ORDER BY key ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var settings []model.Setting
	for rows.Next() {
		var setting model.Setting
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, setting)
	}
	return settings, rows.Err()
}

const upsertSettingQuery = `
	INSERT INTO server_settings (key, value, updated_at)
	VALUES (?, ?, datetime('now'))
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at`

// UpsertSetting inserts or overwrites a setting.
func (s *SQLiteBridgeStore) UpsertSetting(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, upsertSettingQuery, key, value); err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}
	return nil
}

// BatchUpsertSettings upserts several settings in one transaction.
func (s *SQLiteBridgeStore) BatchUpsertSettings(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertSettingQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for key, value := range entries {
		if _, err := stmt.ExecContext(ctx, key, value); err != nil {
			return fmt.Errorf("failed to upsert setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// ChannelRepository
// ---------------------------------------------------------------------------

// GetChannel returns a registered channel, or nil if not registered.
func (s *SQLiteBridgeStore) GetChannel(ctx context.Context, channelID string) (*model.SyncChannel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ch model.SyncChannel
	err := s.db.QueryRowContext(ctx,
		`SELECT channel_id, guild_id, guild_name, channel_name, added_by, added_at
		 FROM sync_channels WHERE channel_id = ?`, channelID).
		Scan(&ch.ChannelID, &ch.GuildID, &ch.GuildName, &ch.ChannelName, &ch.AddedBy, &ch.AddedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync channel: %w", err)
	}
	return &ch, nil
}

// ListChannels returns all registered channels, oldest first.
func (s *SQLiteBridgeStore) ListChannels(ctx context.Context) ([]model.SyncChannel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT channel_id, guild_id, guild_name, channel_name, added_by, added_at
		 FROM sync_channels ORDER BY added_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync channels: %w", err)
	}
	defer rows.Close()

	var channels []model.SyncChannel
	for rows.Next() {
		var ch model.SyncChannel
		if err := rows.Scan(&ch.ChannelID, &ch.GuildID, &ch.GuildName, &ch.ChannelName, &ch.AddedBy, &ch.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync channel: %w", err)
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// UpsertChannel registers a channel or refreshes its metadata. Last writer
// wins; added_at is refreshed on conflict.
func (s *SQLiteBridgeStore) UpsertChannel(ctx context.Context, ch model.SyncChannel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO sync_channels (channel_id, guild_id, guild_name, channel_name, added_by, added_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(channel_id) DO UPDATE SET
			guild_id = excluded.guild_id,
			guild_name = excluded.guild_name,
			channel_name = excluded.channel_name,
			added_by = excluded.added_by,
			added_at = excluded.added_at`

	_, err := s.db.ExecContext(ctx, query, ch.ChannelID, ch.GuildID, ch.GuildName, ch.ChannelName, ch.AddedBy)
	if err != nil {
		return fmt.Errorf("failed to upsert sync channel: %w", err)
	}
	return nil
}

// DeleteChannel removes a channel from the registry.
func (s *SQLiteBridgeStore) DeleteChannel(ctx context.Context, channelID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM sync_channels WHERE channel_id = ?", channelID)
	if err != nil {
		return false, fmt.Errorf("failed to delete sync channel: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Ensure SQLiteBridgeStore implements the store interfaces
var (
	_ BindingRepository = (*SQLiteBridgeStore)(nil)
	_ MessageRepository = (*SQLiteBridgeStore)(nil)
	_ SettingRepository = (*SQLiteBridgeStore)(nil)
	_ ChannelRepository = (*SQLiteBridgeStore)(nil)
	_ Pinger            = (*SQLiteBridgeStore)(nil)
)
