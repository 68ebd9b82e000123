package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mc-bridge-api/internal/model"
	"mc-bridge-api/pkg/pagination"

	"github.com/bwmarrin/discordgo"
)

const (
	colorGreen   = 0x00ff00
	colorRed     = 0xff0000
	colorOrange  = 0xffa500
	colorBlurple = 0x5865f2
)

// PlayersPageSize is how many linked players one embed page shows.
const PlayersPageSize = 10

// statusMessageData builds the /status embed plus its refresh button from
// the mirrored server settings.
func (d *Dispatcher) statusMessageData(ctx context.Context) (*discordgo.InteractionResponseData, error) {
	settings, err := d.cfg.Settings.ListSettings(ctx)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(settings))
	for _, s := range settings {
		values[s.Key] = s.Value
	}

	get := func(key, fallback string) string {
		if v, ok := values[key]; ok && v != "" {
			return v
		}
		return fallback
	}

	status := get(model.SettingServerStatus, "unknown")
	isOnline := status == "online"

	statusLabel := "🔴 offline"
	color := colorRed
	if isOnline {
		statusLabel = "🟢 online"
		color = colorGreen
	}

	embed := &discordgo.MessageEmbed{
		Title: "🖥️ Minecraft server status",
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Status", Value: statusLabel, Inline: true},
			{Name: "Version", Value: get(model.SettingServerVersion, "unknown"), Inline: true},
			{Name: "Players", Value: fmt.Sprintf("%s / %s",
				get(model.SettingPlayersOnline, "0"), get(model.SettingPlayersMax, "0")), Inline: true},
			{Name: "TPS", Value: get(model.SettingServerTPS, "N/A"), Inline: true},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "🔄 Refresh",
						Style:    discordgo.SecondaryButton,
						CustomID: ComponentStatusRefresh,
					},
				},
			},
		},
	}, nil
}

// playersMessageData builds one page of the linked player list with
// previous/next buttons as the pagination engine dictates.
func (d *Dispatcher) playersMessageData(ctx context.Context, offset int) (*discordgo.InteractionResponseData, error) {
	total, err := d.cfg.Players.CountBound(ctx)
	if err != nil {
		return nil, err
	}

	players, err := d.cfg.Players.ListBound(ctx, PlayersPageSize, offset)
	if err != nil {
		return nil, err
	}

	page := pagination.Compute(total, PlayersPageSize, offset)

	description := "No linked players yet"
	if len(players) > 0 {
		var sb strings.Builder
		for i, p := range players {
			fmt.Fprintf(&sb, "**%d.** %s ↔ %s\n", offset+i+1, p.MCName, p.DiscordName)
		}
		description = strings.TrimRight(sb.String(), "\n")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "👥 Linked players",
		Description: description,
		Color:       colorBlurple,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d / %d · %d players", page.Number, page.TotalPages, total),
		},
	}

	var buttons []discordgo.MessageComponent
	if page.HasPrev {
		buttons = append(buttons, discordgo.Button{
			Label:    "◀ Previous",
			Style:    discordgo.PrimaryButton,
			CustomID: fmt.Sprintf("%s%d", ComponentPlayersPage, page.PrevOffset),
		})
	}
	if page.HasNext {
		buttons = append(buttons, discordgo.Button{
			Label:    "Next ▶",
			Style:    discordgo.PrimaryButton,
			CustomID: fmt.Sprintf("%s%d", ComponentPlayersPage, page.NextOffset),
		})
	}

	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	if len(buttons) > 0 {
		data.Components = []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: buttons},
		}
	} else {
		// UPDATE_MESSAGE keeps stale buttons unless they are overwritten
		data.Components = []discordgo.MessageComponent{}
	}

	return data, nil
}

// channelList renders the sync channel registry for an embed body.
func channelList(channels []model.SyncChannel) string {
	if len(channels) == 0 {
		return "*(none)*"
	}

	var sb strings.Builder
	for _, ch := range channels {
		fmt.Fprintf(&sb, "• **%s** #%s\n", ch.GuildName, ch.ChannelName)
	}
	return strings.TrimRight(sb.String(), "\n")
}
