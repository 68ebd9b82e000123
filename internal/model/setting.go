package model

import "time"

// Setting is one key/value entry in the server settings mirror. Values are
// last-known state reported by the Minecraft server, not history.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known setting keys written by POST /api/mc/server/status and read by
// the /status slash command.
const (
	SettingServerStatus  = "server_status"
	SettingServerTPS     = "server_tps"
	SettingPlayersOnline = "server_players_online"
	SettingPlayersMax    = "server_players_max"
	SettingServerVersion = "server_version"
)
