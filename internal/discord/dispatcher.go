package discord

import (
	"context"
	"strings"

	"mc-bridge-api/internal/repository"
	"mc-bridge-api/internal/service"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Config holds the dispatcher's injected collaborators. Everything a
// handler touches comes through here; nothing is read from globals.
type Config struct {
	Bindings *service.BindingService
	Relay    *service.RelayService
	Players  repository.BindingRepository
	Settings repository.SettingRepository
	Channels repository.ChannelRepository
	DB       repository.Pinger
	Client   Client
	Version  string
}

type commandHandler func(ctx context.Context, ic *discordgo.Interaction) (*discordgo.InteractionResponse, error)

// componentRoute matches a component custom ID. Exact routes compare the
// whole ID; prefix routes strip the prefix and pass on the remainder.
type componentRoute struct {
	prefix string
	exact  bool
	handle func(ctx context.Context, ic *discordgo.Interaction, arg string) (*discordgo.InteractionResponse, error)
}

// Dispatcher routes verified interactions to their handlers. The routing
// tables are built once at startup and never mutated afterwards.
type Dispatcher struct {
	cfg        Config
	commands   map[string]commandHandler
	components []componentRoute
}

// NewDispatcher builds the routing tables for all slash commands and
// message components.
func NewDispatcher(cfg Config) *Dispatcher {
	d := &Dispatcher{cfg: cfg}

	d.commands = map[string]commandHandler{
		CmdTest:          d.handleTest,
		CmdMC:            d.handleMC,
		CmdStatus:        d.handleStatus,
		CmdPlayers:       d.handlePlayers,
		CmdBind:          d.handleBind,
		CmdTag:           d.handleTag,
		CmdSetChannel:    d.handleSetChannel,
		CmdRemoveChannel: d.handleRemoveChannel,
	}

	d.components = []componentRoute{
		{prefix: ComponentPlayersPage, handle: d.handlePlayersPage},
		{prefix: ComponentStatusRefresh, exact: true, handle: d.handleStatusRefresh},
		{prefix: ComponentTagRole, handle: d.handleTagRole},
	}

	return d
}

// Dispatch routes a verified interaction and always produces a response.
// Handler failures never escape: they are logged and converted to a generic
// ephemeral error so the HTTP layer can keep its 200 contract.
func (d *Dispatcher) Dispatch(ctx context.Context, ic *discordgo.Interaction) *discordgo.InteractionResponse {
	switch ic.Type {
	case discordgo.InteractionPing:
		return &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong}

	case discordgo.InteractionApplicationCommand:
		return d.dispatchCommand(ctx, ic)

	case discordgo.InteractionMessageComponent:
		return d.dispatchComponent(ctx, ic)

	default:
		return ephemeral("Unknown interaction type")
	}
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, ic *discordgo.Interaction) *discordgo.InteractionResponse {
	name := ic.ApplicationCommandData().Name

	handler, ok := d.commands[name]
	if !ok {
		return ephemeral("Unknown command")
	}

	resp, err := handler(ctx, ic)
	if err != nil {
		logrus.WithError(err).WithField("command", name).Error("command handler failed")
		return ephemeral("Something went wrong, please try again later")
	}
	return resp
}

func (d *Dispatcher) dispatchComponent(ctx context.Context, ic *discordgo.Interaction) *discordgo.InteractionResponse {
	customID := ic.MessageComponentData().CustomID

	for _, route := range d.components {
		var arg string
		if route.exact {
			if customID != route.prefix {
				continue
			}
		} else {
			if !strings.HasPrefix(customID, route.prefix) {
				continue
			}
			arg = strings.TrimPrefix(customID, route.prefix)
		}

		resp, err := route.handle(ctx, ic, arg)
		if err != nil {
			logrus.WithError(err).WithField("custom_id", customID).Error("component handler failed")
			return ephemeral("Something went wrong, please try again later")
		}
		return resp
	}

	return ephemeral("Unknown interaction")
}

// ephemeral builds a plain ephemeral message response.
func ephemeral(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

// interactionUser returns the invoking user, whether the interaction came
// from a guild (Member set) or a DM (User set).
func interactionUser(ic *discordgo.Interaction) *discordgo.User {
	if ic.Member != nil && ic.Member.User != nil {
		return ic.Member.User
	}
	return ic.User
}

// displayName prefers the user's global display name over the username.
func displayName(u *discordgo.User) string {
	if u == nil {
		return "Unknown"
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// stringOption extracts a string option by name, or "".
func stringOption(data discordgo.ApplicationCommandInteractionData, name string) string {
	for _, opt := range data.Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}
