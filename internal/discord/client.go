package discord

import (
	"context"
	"fmt"
	"time"

	"mc-bridge-api/internal/cache"

	"github.com/bwmarrin/discordgo"
)

// Client is the slice of the Discord REST API the bridge uses. Narrowed to
// an interface so command handlers can be tested with a fake.
type Client interface {
	// SendChannelMessage posts a plain content message to a channel.
	SendChannelMessage(channelID, content string) error

	// ChannelName resolves a channel's display name. Results are cached.
	ChannelName(ctx context.Context, channelID string) (string, error)

	// GuildName resolves a guild's display name. Results are cached.
	GuildName(ctx context.Context, guildID string) (string, error)

	// AddMemberRole grants a role to a guild member.
	AddMemberRole(guildID, userID, roleID string) error

	// RemoveMemberRole revokes a role from a guild member.
	RemoveMemberRole(guildID, userID, roleID string) error
}

// RESTClient implements Client over a discordgo session. The session is
// used purely for REST calls; no gateway connection is opened.
type RESTClient struct {
	session *discordgo.Session
	cache   cache.Cache
	ttl     time.Duration
}

// NewRESTClient creates a REST-only Discord client. Name lookups are cached
// in c for ttl to keep /setchannel cheap under repeated use.
func NewRESTClient(botToken string, c cache.Cache, ttl time.Duration) (*RESTClient, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return &RESTClient{session: session, cache: c, ttl: ttl}, nil
}

// SendChannelMessage posts a plain content message to a channel.
func (c *RESTClient) SendChannelMessage(channelID, content string) error {
	_, err := c.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return fmt.Errorf("failed to send channel message: %w", err)
	}
	return nil
}

// ChannelName resolves a channel's display name, consulting the cache first.
func (c *RESTClient) ChannelName(ctx context.Context, channelID string) (string, error) {
	name, err := c.cache.GetOrSet(ctx, "channel_name:"+channelID, c.ttl, func() ([]byte, error) {
		channel, err := c.session.Channel(channelID)
		if err != nil {
			return nil, err
		}
		return []byte(channel.Name), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to resolve channel name: %w", err)
	}
	return string(name), nil
}

// GuildName resolves a guild's display name, consulting the cache first.
func (c *RESTClient) GuildName(ctx context.Context, guildID string) (string, error) {
	name, err := c.cache.GetOrSet(ctx, "guild_name:"+guildID, c.ttl, func() ([]byte, error) {
		guild, err := c.session.Guild(guildID)
		if err != nil {
			return nil, err
		}
		return []byte(guild.Name), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to resolve guild name: %w", err)
	}
	return string(name), nil
}

// AddMemberRole grants a role to a guild member.
func (c *RESTClient) AddMemberRole(guildID, userID, roleID string) error {
	return c.session.GuildMemberRoleAdd(guildID, userID, roleID)
}

// RemoveMemberRole revokes a role from a guild member.
func (c *RESTClient) RemoveMemberRole(guildID, userID, roleID string) error {
	return c.session.GuildMemberRoleRemove(guildID, userID, roleID)
}

// Ensure RESTClient implements Client
var _ Client = (*RESTClient)(nil)
