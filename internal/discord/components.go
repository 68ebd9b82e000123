package discord

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// handlePlayersPage serves the pagination buttons under the player list.
// The target offset is encoded in the custom ID after the prefix; garbage
// offsets fall back to the first page.
func (d *Dispatcher) handlePlayersPage(ctx context.Context, ic *discordgo.Interaction, arg string) (*discordgo.InteractionResponse, error) {
	offset, err := strconv.Atoi(arg)
	if err != nil || offset < 0 {
		offset = 0
	}

	data, err := d.playersMessageData(ctx, offset)
	if err != nil {
		return nil, err
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	}, nil
}

// handleStatusRefresh rebuilds the status embed in place.
func (d *Dispatcher) handleStatusRefresh(ctx context.Context, ic *discordgo.Interaction, _ string) (*discordgo.InteractionResponse, error) {
	data, err := d.statusMessageData(ctx)
	if err != nil {
		return nil, err
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	}, nil
}

// handleTagRole toggles a role on the clicking member: members who have the
// role lose it, members who don't gain it.
func (d *Dispatcher) handleTagRole(ctx context.Context, ic *discordgo.Interaction, roleID string) (*discordgo.InteractionResponse, error) {
	if ic.GuildID == "" || ic.Member == nil || ic.Member.User == nil {
		return ephemeral("Role buttons only work inside a server"), nil
	}
	userID := ic.Member.User.ID

	hasRole := false
	for _, id := range ic.Member.Roles {
		if id == roleID {
			hasRole = true
			break
		}
	}

	if hasRole {
		if err := d.cfg.Client.RemoveMemberRole(ic.GuildID, userID, roleID); err != nil {
			return nil, err
		}
		return ephemeral(fmt.Sprintf("➖ Removed role <@&%s>", roleID)), nil
	}

	if err := d.cfg.Client.AddMemberRole(ic.GuildID, userID, roleID); err != nil {
		return nil, err
	}
	return ephemeral(fmt.Sprintf("➕ Added role <@&%s>", roleID)), nil
}
