package model

import "time"

// SyncChannel marks a Discord channel as a destination for Minecraft chat.
// Membership in the registry is what enables forwarding; the name fields are
// display metadata refreshed on every /setchannel.
type SyncChannel struct {
	ChannelID   string    `json:"channel_id"`
	GuildID     string    `json:"guild_id"`
	GuildName   string    `json:"guild_name"`
	ChannelName string    `json:"channel_name"`
	AddedBy     string    `json:"added_by"`
	AddedAt     time.Time `json:"added_at"`
}
