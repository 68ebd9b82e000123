package model

import "time"

// Binding links a Discord account to a Minecraft account. A row is created
// when a player runs /bind in Discord and completed when the matching bind
// code is presented from the Minecraft side.
//
// Invariant: BindCode is set only while the binding is unconfirmed; once
// MCUUID is set the code and its timestamp are cleared.
type Binding struct {
	ID          int64      `json:"-"`
	DiscordID   string     `json:"discord_id"`
	DiscordName string     `json:"discord_name"`
	MCUUID      *string    `json:"mc_uuid,omitempty"`
	MCName      string     `json:"mc_name"`
	BindCode    *string    `json:"-"`
	BindCodeAt  *time.Time `json:"-"`
	BoundAt     *time.Time `json:"bound_at,omitempty"`
}

// Confirmed reports whether the binding has completed verification.
func (b *Binding) Confirmed() bool {
	return b.MCUUID != nil && *b.MCUUID != ""
}

// Pending reports whether a bind code is outstanding.
func (b *Binding) Pending() bool {
	return !b.Confirmed() && b.BindCode != nil
}
