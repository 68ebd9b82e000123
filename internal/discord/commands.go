package discord

import "github.com/bwmarrin/discordgo"

// Slash command names. The dispatcher and the registration tool share these
// so the two cannot drift apart.
const (
	CmdTest          = "test"
	CmdMC            = "mc"
	CmdStatus        = "status"
	CmdPlayers       = "players"
	CmdBind          = "bind"
	CmdTag           = "tag"
	CmdSetChannel    = "setchannel"
	CmdRemoveChannel = "removechannel"
)

// Component custom ID prefixes. Pagination and role-toggle buttons encode
// their argument after the prefix.
const (
	ComponentPlayersPage   = "players_page_"
	ComponentStatusRefresh = "status_refresh"
	ComponentTagRole       = "tag_role_"
)

var (
	manageRolesPermission  int64 = discordgo.PermissionManageRoles
	manageServerPermission int64 = discordgo.PermissionManageServer
)

// Commands is the full slash command set, used by cmd/register to overwrite
// the application's registered commands.
var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        CmdTest,
		Description: "Check that the bridge bot is up",
	},
	{
		Name:        CmdMC,
		Description: "Send a chat message to the Minecraft server",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "message",
				Description: "Message content to send",
				Type:        discordgo.ApplicationCommandOptionString,
				Required:    true,
			},
		},
	},
	{
		Name:        CmdStatus,
		Description: "Show Minecraft server status",
	},
	{
		Name:        CmdPlayers,
		Description: "List players with linked accounts",
	},
	{
		Name:        CmdBind,
		Description: "Link your Discord account to a Minecraft account",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "mc_username",
				Description: "Minecraft username",
				Type:        discordgo.ApplicationCommandOptionString,
				Required:    true,
			},
		},
	},
	{
		Name:                     CmdTag,
		Description:              "Post role-toggle buttons members can click to join or leave roles",
		DefaultMemberPermissions: &manageRolesPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{Name: "role1", Description: "Role 1", Type: discordgo.ApplicationCommandOptionRole, Required: true},
			{Name: "role2", Description: "Role 2", Type: discordgo.ApplicationCommandOptionRole},
			{Name: "role3", Description: "Role 3", Type: discordgo.ApplicationCommandOptionRole},
			{Name: "role4", Description: "Role 4", Type: discordgo.ApplicationCommandOptionRole},
			{Name: "role5", Description: "Role 5", Type: discordgo.ApplicationCommandOptionRole},
			{Name: "title", Description: "Custom title for the button message", Type: discordgo.ApplicationCommandOptionString},
		},
	},
	{
		Name:                     CmdSetChannel,
		Description:              "Enable Minecraft chat sync for the current channel",
		DefaultMemberPermissions: &manageServerPermission,
	},
	{
		Name:                     CmdRemoveChannel,
		Description:              "Disable Minecraft chat sync for the current channel",
		DefaultMemberPermissions: &manageServerPermission,
	},
}
