package model

import "time"

// MessageSource identifies which side of the bridge produced a message.
type MessageSource string

const (
	SourceDiscord   MessageSource = "discord"
	SourceMinecraft MessageSource = "minecraft"
)

// RelayMessage is a chat message mirrored between Discord and Minecraft.
// Messages from Minecraft are forwarded synchronously and stored with
// Delivered already true; messages from Discord wait in the store until the
// Minecraft mod pulls and acknowledges them.
type RelayMessage struct {
	ID        int64         `json:"id"`
	Source    MessageSource `json:"source"`
	Username  string        `json:"username"`
	Content   string        `json:"content"`
	Delivered bool          `json:"delivered"`
	CreatedAt time.Time     `json:"created_at"`
}
