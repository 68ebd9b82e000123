package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mc-bridge-api/internal/model"
	"mc-bridge-api/internal/service"

	"github.com/bwmarrin/discordgo"
)

// handleTest answers /test with bot liveness and a database round-trip.
func (d *Dispatcher) handleTest(ctx context.Context, ic *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
	dbStatus := "🔴 down"
	dbLatency := "N/A"

	start := time.Now()
	if err := d.cfg.DB.Ping(ctx); err == nil {
		dbLatency = time.Since(start).Round(time.Millisecond).String()
		dbStatus = "🟢 ok"
	}

	embed := &discordgo.MessageEmbed{
		Title: "🤖 Bridge status",
		Color: colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Bot", Value: "🟢 online", Inline: true},
			{Name: "Database", Value: fmt.Sprintf("%s (%s)", dbStatus, dbLatency), Inline: true},
			{Name: "Version", Value: d.cfg.Version, Inline: true},
			{Name: "Time", Value: time.Now().UTC().Format(time.RFC3339)},
		},
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	}, nil
}

// handleMC relays /mc <message> to the Minecraft side.
func (d *Dispatcher) handleMC(ctx context.Context, ic *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
	message := stringOption(ic.ApplicationCommandData(), "message")
	if message == "" {
		return ephemeral("Message must not be empty"), nil
	}
	username := displayName(interactionUser(ic))

	if err := d.cfg.Relay.RelayFromDiscord(ctx, username, message); err != nil {
		return nil, err
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("📨 **%s**: %s\n*(sent to Minecraft)*", username, message),
		},
	}, nil
}

// handleStatus answers /status with the mirrored server state.
func (d *Dispatcher) handleStatus(ctx context.Context, ic *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
	data, err := d.statusMessageData(ctx)
	if err != nil {
		return nil, err
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}, nil
}

// handlePlayers answers /players with the first page of linked players.
func (d *Dispatcher) handlePlayers(ctx context.Context, ic *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
	data, err := d.playersMessageData(ctx, 0)
	if err != nil {
		return nil, err
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}, nil
}

// handleBind starts the account linking flow for /bind <mc_username>.
func (d *Dispatcher) handleBind(ctx context.Context, ic *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
	mcUsername := stringOption(ic.ApplicationCommandData(), "mc_username")
	if mcUsername == "" {
		return ephemeral("Minecraft username must not be empty"), nil
	}

	user := interactionUser(ic)
	if user == nil {
		return ephemeral("Could not identify the invoking user"), nil
	}

	code, existing, err := d.cfg.Bindings.RequestBind(ctx, user.ID, displayName(user), mcUsername)
	if errors.Is(err, service.ErrAlreadyBound) {
		return ephemeral(fmt.Sprintf(
			"⚠️ Your Discord account is already linked to Minecraft account **%s**.", existing.MCName)), nil
	}
	if err != nil {
		return nil, err
	}

	content := fmt.Sprintf(
		"🔗 Linking started!\n\nRun this command in Minecraft to finish verification:\n```\n/verify %s\n```\n⏰ The code expires in %d minutes.",
		code, int(service.BindCodeTTL.Minutes()))
	return ephemeral(content), nil
}

// handleTag posts role-toggle buttons built from the /tag options.
func (d *Dispatcher) handleTag(ctx context.Context, ic *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
	if ic.GuildID == "" {
		return ephemeral("This command can only be used in a server"), nil
	}

	data := ic.ApplicationCommandData()
	title := stringOption(data, "title")
	if title == "" {
		title = "Choose your roles"
	}

	var buttons []discordgo.MessageComponent
	for _, opt := range data.Options {
		if opt.Type != discordgo.ApplicationCommandOptionRole {
			continue
		}
		roleID, ok := opt.Value.(string)
		if !ok || roleID == "" {
			continue
		}

		label := roleID
		if data.Resolved != nil {
			if role, ok := data.Resolved.Roles[roleID]; ok {
				label = role.Name
			}
		}

		buttons = append(buttons, discordgo.Button{
			Label:    label,
			Style:    discordgo.SecondaryButton,
			CustomID: ComponentTagRole + roleID,
		})
	}

	if len(buttons) == 0 {
		return ephemeral("No valid roles given"), nil
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("**%s**\nClick a button to get or remove the role.", title),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: buttons},
			},
		},
	}, nil
}

// handleSetChannel registers the current channel for chat sync.
func (d *Dispatcher) handleSetChannel(ctx context.Context, ic *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
	if ic.ChannelID == "" || ic.GuildID == "" {
		return ephemeral("This command can only be used in a server channel"), nil
	}

	user := interactionUser(ic)
	userID := ""
	if user != nil {
		userID = user.ID
	}

	// Name lookups are best-effort; the registry falls back to raw IDs.
	channelName, err := d.cfg.Client.ChannelName(ctx, ic.ChannelID)
	if err != nil {
		channelName = ic.ChannelID
	}
	guildName, err := d.cfg.Client.GuildName(ctx, ic.GuildID)
	if err != nil {
		guildName = ic.GuildID
	}

	err = d.cfg.Channels.UpsertChannel(ctx, model.SyncChannel{
		ChannelID:   ic.ChannelID,
		GuildID:     ic.GuildID,
		GuildName:   guildName,
		ChannelName: channelName,
		AddedBy:     userID,
	})
	if err != nil {
		return nil, err
	}

	channels, err := d.cfg.Channels.ListChannels(ctx)
	if err != nil {
		return nil, err
	}

	embed := &discordgo.MessageEmbed{
		Title: "✅ Sync channel added",
		Description: fmt.Sprintf("<#%s> now receives Minecraft chat.\n\n**Current sync channels:**\n%s",
			ic.ChannelID, channelList(channels)),
		Color: colorGreen,
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	}, nil
}

// handleRemoveChannel deregisters the current channel. Removing a channel
// that was never registered is reported, not treated as an error.
func (d *Dispatcher) handleRemoveChannel(ctx context.Context, ic *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
	if ic.ChannelID == "" {
		return ephemeral("This command can only be used in a server channel"), nil
	}

	existing, err := d.cfg.Channels.GetChannel(ctx, ic.ChannelID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return ephemeral("⚠️ This channel is not currently registered for chat sync"), nil
	}

	if _, err := d.cfg.Channels.DeleteChannel(ctx, ic.ChannelID); err != nil {
		return nil, err
	}

	remaining, err := d.cfg.Channels.ListChannels(ctx)
	if err != nil {
		return nil, err
	}

	embed := &discordgo.MessageEmbed{
		Title: "🗑️ Sync channel removed",
		Description: fmt.Sprintf("<#%s> no longer receives Minecraft chat.\n\n**Remaining sync channels:**\n%s",
			ic.ChannelID, channelList(remaining)),
		Color: colorOrange,
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	}, nil
}
