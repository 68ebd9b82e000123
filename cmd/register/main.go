// Command register overwrites the application's slash commands with the
// current command set. Run it once after changing command definitions.
// With DISCORD_GUILD_ID set the commands are registered guild-scoped
// (instant, good for development); without it they are registered globally.
package main

import (
	"mc-bridge-api/internal/config"
	"mc-bridge-api/internal/discord"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.MustLoad()

	if cfg.Discord.ApplicationID == "" {
		logrus.Fatal("DISCORD_APPLICATION_ID is required")
	}

	session, err := discordgo.New("Bot " + cfg.Discord.BotToken)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create Discord session")
	}

	scope := "global"
	if cfg.Discord.GuildID != "" {
		scope = "guild " + cfg.Discord.GuildID
	}
	logrus.WithField("scope", scope).Info("registering slash commands")
	for _, cmd := range discord.Commands {
		logrus.Infof("  /%s: %s", cmd.Name, cmd.Description)
	}

	registered, err := session.ApplicationCommandBulkOverwrite(
		cfg.Discord.ApplicationID, cfg.Discord.GuildID, discord.Commands)
	if err != nil {
		logrus.WithError(err).Fatal("failed to register commands")
	}

	logrus.WithField("count", len(registered)).Info("commands registered")
}
