package service

import (
	"context"
	"fmt"
	"time"

	"mc-bridge-api/internal/model"
	"mc-bridge-api/internal/repository"

	"github.com/sirupsen/logrus"
)

// ChannelMessenger posts messages to Discord channels. Implemented by the
// discord client; narrowed to an interface so the relay is testable without
// a live session.
type ChannelMessenger interface {
	SendChannelMessage(channelID, content string) error
}

// MaxPullLimit caps how many pending messages the Minecraft mod can pull
// in one request.
const MaxPullLimit = 100

// RelayService moves chat messages across the bridge in both directions.
type RelayService struct {
	messages         repository.MessageRepository
	channels         repository.ChannelRepository
	messenger        ChannelMessenger
	defaultChannelID string
}

// NewRelayService creates a relay service. defaultChannelID is the fallback
// destination when no sync channels are registered; it may be empty.
func NewRelayService(messages repository.MessageRepository, channels repository.ChannelRepository, messenger ChannelMessenger, defaultChannelID string) *RelayService {
	return &RelayService{
		messages:         messages,
		channels:         channels,
		messenger:        messenger,
		defaultChannelID: defaultChannelID,
	}
}

// RelayFromMinecraft stores a Minecraft chat message and fans it out to
// every registered sync channel. The message is stored delivered because
// forwarding happens synchronously in this call; if every forward fails the
// stored row is kept and the error is returned for a 502.
//
// There is no retry once the row is persisted: a failed forward leaves a
// stored-but-unforwarded record behind.
func (s *RelayService) RelayFromMinecraft(ctx context.Context, username, message string) error {
	if _, err := s.messages.InsertMessage(ctx, model.SourceMinecraft, username, message, true); err != nil {
		return fmt.Errorf("store message: %w", err)
	}

	targets, err := s.forwardTargets(ctx)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no sync channel configured: %w", ErrNoForwardTarget)
	}

	content := fmt.Sprintf("**[MC] %s:** %s", username, message)
	delivered := 0
	for _, channelID := range targets {
		if err := s.messenger.SendChannelMessage(channelID, content); err != nil {
			logrus.WithError(err).WithField("channel_id", channelID).Warn("failed to forward message to Discord")
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return ErrForwardFailed
	}
	return nil
}

// RelayFromDiscord stores a Discord message for the Minecraft mod to pull.
func (s *RelayService) RelayFromDiscord(ctx context.Context, username, message string) error {
	if _, err := s.messages.InsertMessage(ctx, model.SourceDiscord, username, message, false); err != nil {
		return fmt.Errorf("store message: %w", err)
	}
	return nil
}

// PendingMessages returns undelivered Discord messages for the Minecraft
// mod, oldest first. limit is clamped to MaxPullLimit.
func (s *RelayService) PendingMessages(ctx context.Context, since time.Time, limit int) ([]model.RelayMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > MaxPullLimit {
		limit = MaxPullLimit
	}
	return s.messages.ListUndelivered(ctx, model.SourceDiscord, since, limit)
}

// Acknowledge marks the given message IDs as delivered and returns how many
// rows changed.
func (s *RelayService) Acknowledge(ctx context.Context, ids []int64) (int64, error) {
	return s.messages.MarkDelivered(ctx, ids)
}

// forwardTargets returns the channel IDs to forward to: every registered
// sync channel, or the configured default channel when the registry is empty.
func (s *RelayService) forwardTargets(ctx context.Context) ([]string, error) {
	channels, err := s.channels.ListChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sync channels: %w", err)
	}

	if len(channels) == 0 {
		if s.defaultChannelID == "" {
			return nil, nil
		}
		return []string{s.defaultChannelID}, nil
	}

	targets := make([]string, len(channels))
	for i, ch := range channels {
		targets[i] = ch.ChannelID
	}
	return targets, nil
}
