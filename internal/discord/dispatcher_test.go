package discord

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mc-bridge-api/internal/model"
	"mc-bridge-api/internal/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory fakes for every dispatcher collaborator.

type fakeBindingRepo struct {
	nextID   int64
	bindings []*model.Binding
}

func (f *fakeBindingRepo) find(discordID string) *model.Binding {
	for _, b := range f.bindings {
		if b.DiscordID == discordID {
			return b
		}
	}
	return nil
}

func (f *fakeBindingRepo) GetByDiscordID(_ context.Context, discordID string) (*model.Binding, error) {
	if b := f.find(discordID); b != nil {
		copied := *b
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeBindingRepo) GetByMCUUID(_ context.Context, mcUUID string) (*model.Binding, error) {
	for _, b := range f.bindings {
		if b.MCUUID != nil && *b.MCUUID == mcUUID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeBindingRepo) GetByBindCode(_ context.Context, code string) (*model.Binding, error) {
	for _, b := range f.bindings {
		if b.BindCode != nil && *b.BindCode == code {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeBindingRepo) UpsertPending(_ context.Context, discordID, discordName, mcName, code string, issuedAt time.Time) error {
	b := f.find(discordID)
	if b == nil {
		f.nextID++
		b = &model.Binding{ID: f.nextID, DiscordID: discordID}
		f.bindings = append(f.bindings, b)
	}
	b.DiscordName = discordName
	b.MCName = mcName
	b.BindCode = &code
	b.BindCodeAt = &issuedAt
	return nil
}

func (f *fakeBindingRepo) ClearBindCode(_ context.Context, id int64) error {
	for _, b := range f.bindings {
		if b.ID == id {
			b.BindCode = nil
			b.BindCodeAt = nil
		}
	}
	return nil
}

func (f *fakeBindingRepo) Confirm(_ context.Context, id int64, mcUUID, mcName string, boundAt time.Time) error {
	for _, b := range f.bindings {
		if b.ID == id {
			b.MCUUID = &mcUUID
			b.MCName = mcName
			b.BindCode = nil
			b.BindCodeAt = nil
			b.BoundAt = &boundAt
		}
	}
	return nil
}

func (f *fakeBindingRepo) ListBound(_ context.Context, limit, offset int) ([]model.Binding, error) {
	var bound []model.Binding
	for _, b := range f.bindings {
		if b.Confirmed() {
			bound = append(bound, *b)
		}
	}
	if offset >= len(bound) {
		return nil, nil
	}
	bound = bound[offset:]
	if len(bound) > limit {
		bound = bound[:limit]
	}
	return bound, nil
}

func (f *fakeBindingRepo) CountBound(_ context.Context) (int, error) {
	count := 0
	for _, b := range f.bindings {
		if b.Confirmed() {
			count++
		}
	}
	return count, nil
}

type fakeMessageRepo struct {
	messages []model.RelayMessage
}

func (f *fakeMessageRepo) InsertMessage(_ context.Context, source model.MessageSource, username, content string, delivered bool) (int64, error) {
	f.messages = append(f.messages, model.RelayMessage{
		ID:        int64(len(f.messages) + 1),
		Source:    source,
		Username:  username,
		Content:   content,
		Delivered: delivered,
	})
	return int64(len(f.messages)), nil
}

func (f *fakeMessageRepo) ListUndelivered(_ context.Context, source model.MessageSource, since time.Time, limit int) ([]model.RelayMessage, error) {
	return nil, nil
}

func (f *fakeMessageRepo) MarkDelivered(_ context.Context, ids []int64) (int64, error) {
	return 0, nil
}

type fakeSettingRepo struct {
	settings map[string]string
	err      error
}

func (f *fakeSettingRepo) GetSetting(_ context.Context, key string) (*model.Setting, error) {
	if v, ok := f.settings[key]; ok {
		return &model.Setting{Key: key, Value: v}, nil
	}
	return nil, nil
}

func (f *fakeSettingRepo) ListSettings(_ context.Context) ([]model.Setting, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Setting
	for k, v := range f.settings {
		out = append(out, model.Setting{Key: k, Value: v})
	}
	return out, nil
}

func (f *fakeSettingRepo) UpsertSetting(_ context.Context, key, value string) error {
	f.settings[key] = value
	return nil
}

func (f *fakeSettingRepo) BatchUpsertSettings(_ context.Context, entries map[string]string) error {
	for k, v := range entries {
		f.settings[k] = v
	}
	return nil
}

type fakeChannelRepo struct {
	channels []model.SyncChannel
}

func (f *fakeChannelRepo) GetChannel(_ context.Context, channelID string) (*model.SyncChannel, error) {
	for _, ch := range f.channels {
		if ch.ChannelID == channelID {
			copied := ch
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeChannelRepo) ListChannels(_ context.Context) ([]model.SyncChannel, error) {
	return f.channels, nil
}

func (f *fakeChannelRepo) UpsertChannel(_ context.Context, ch model.SyncChannel) error {
	f.channels = append(f.channels, ch)
	return nil
}

func (f *fakeChannelRepo) DeleteChannel(_ context.Context, channelID string) (bool, error) {
	for i, ch := range f.channels {
		if ch.ChannelID == channelID {
			f.channels = append(f.channels[:i], f.channels[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

type fakeClient struct {
	sent         map[string][]string
	addedRoles   []string
	removedRoles []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{sent: make(map[string][]string)}
}

func (f *fakeClient) SendChannelMessage(channelID, content string) error {
	f.sent[channelID] = append(f.sent[channelID], content)
	return nil
}

func (f *fakeClient) ChannelName(_ context.Context, channelID string) (string, error) {
	return "general", nil
}

func (f *fakeClient) GuildName(_ context.Context, guildID string) (string, error) {
	return "Test Guild", nil
}

func (f *fakeClient) AddMemberRole(guildID, userID, roleID string) error {
	f.addedRoles = append(f.addedRoles, roleID)
	return nil
}

func (f *fakeClient) RemoveMemberRole(guildID, userID, roleID string) error {
	f.removedRoles = append(f.removedRoles, roleID)
	return nil
}

type dispatcherFixture struct {
	dispatcher *Dispatcher
	bindings   *fakeBindingRepo
	messages   *fakeMessageRepo
	settings   *fakeSettingRepo
	channels   *fakeChannelRepo
	client     *fakeClient
}

func newDispatcherFixture() *dispatcherFixture {
	bindings := &fakeBindingRepo{}
	messages := &fakeMessageRepo{}
	settings := &fakeSettingRepo{settings: make(map[string]string)}
	channels := &fakeChannelRepo{}
	client := newFakeClient()

	cfg := Config{
		Bindings: service.NewBindingService(bindings),
		Relay:    service.NewRelayService(messages, channels, client, "default-chan"),
		Players:  bindings,
		Settings: settings,
		Channels: channels,
		DB:       &fakePinger{},
		Client:   client,
		Version:  "test",
	}
	return &dispatcherFixture{
		dispatcher: NewDispatcher(cfg),
		bindings:   bindings,
		messages:   messages,
		settings:   settings,
		channels:   channels,
		client:     client,
	}
}

func commandInteraction(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "guild-1",
		ChannelID: "chan-1",
		Member: &discordgo.Member{
			User: &discordgo.User{ID: "user-1", Username: "alice", GlobalName: "Alice"},
		},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: options,
		},
	}
}

func componentInteraction(customID string) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:      discordgo.InteractionMessageComponent,
		GuildID:   "guild-1",
		ChannelID: "chan-1",
		Member: &discordgo.Member{
			User: &discordgo.User{ID: "user-1", Username: "alice"},
		},
		Data: discordgo.MessageComponentInteractionData{
			CustomID:      customID,
			ComponentType: discordgo.ButtonComponent,
		},
	}
}

func stringOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func TestDispatchPing(t *testing.T) {
	f := newDispatcherFixture()

	resp := f.dispatcher.Dispatch(context.Background(), &discordgo.Interaction{Type: discordgo.InteractionPing})

	assert.Equal(t, discordgo.InteractionResponsePong, resp.Type)
}

func TestDispatchUnknownCommand(t *testing.T) {
	f := newDispatcherFixture()

	resp := f.dispatcher.Dispatch(context.Background(), commandInteraction("nosuchcommand"))

	require.NotNil(t, resp.Data)
	assert.Equal(t, "Unknown command", resp.Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
}

func TestDispatchUnknownComponent(t *testing.T) {
	f := newDispatcherFixture()

	resp := f.dispatcher.Dispatch(context.Background(), componentInteraction("nosuch_button"))

	require.NotNil(t, resp.Data)
	assert.Equal(t, "Unknown interaction", resp.Data.Content)
}

func TestDispatchHandlerErrorIsCaught(t *testing.T) {
	f := newDispatcherFixture()
	f.settings.err = errors.New("db gone")

	resp := f.dispatcher.Dispatch(context.Background(), commandInteraction(CmdStatus))

	require.NotNil(t, resp.Data)
	assert.Equal(t, "Something went wrong, please try again later", resp.Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
}

func TestHandleTest(t *testing.T) {
	f := newDispatcherFixture()

	resp := f.dispatcher.Dispatch(context.Background(), commandInteraction(CmdTest))

	require.NotNil(t, resp.Data)
	require.Len(t, resp.Data.Embeds, 1)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
}

func TestHandleMC(t *testing.T) {
	f := newDispatcherFixture()

	resp := f.dispatcher.Dispatch(context.Background(),
		commandInteraction(CmdMC, stringOpt("message", "hello from discord")))

	require.NotNil(t, resp.Data)
	assert.Contains(t, resp.Data.Content, "Alice")
	assert.Contains(t, resp.Data.Content, "hello from discord")

	require.Len(t, f.messages.messages, 1)
	assert.Equal(t, model.SourceDiscord, f.messages.messages[0].Source)
	assert.False(t, f.messages.messages[0].Delivered)
}

func TestHandleMCEmptyMessage(t *testing.T) {
	f := newDispatcherFixture()

	resp := f.dispatcher.Dispatch(context.Background(), commandInteraction(CmdMC))

	assert.Equal(t, "Message must not be empty", resp.Data.Content)
	assert.Empty(t, f.messages.messages)
}

func TestHandleBindIssuesCode(t *testing.T) {
	f := newDispatcherFixture()

	resp := f.dispatcher.Dispatch(context.Background(),
		commandInteraction(CmdBind, stringOpt("mc_username", "alice_mc")))

	require.NotNil(t, resp.Data)
	assert.Contains(t, resp.Data.Content, "/verify ")
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)

	stored := f.bindings.find("user-1")
	require.NotNil(t, stored)
	assert.True(t, stored.Pending())
}

func TestHandleBindAlreadyBound(t *testing.T) {
	f := newDispatcherFixture()
	svc := service.NewBindingService(f.bindings)
	code, _, err := svc.RequestBind(context.Background(), "user-1", "Alice", "alice_mc")
	require.NoError(t, err)
	_, err = svc.VerifyBind(context.Background(), "uuid-1", "alice_mc", code)
	require.NoError(t, err)

	resp := f.dispatcher.Dispatch(context.Background(),
		commandInteraction(CmdBind, stringOpt("mc_username", "other_mc")))

	assert.Contains(t, resp.Data.Content, "already linked")
	assert.Contains(t, resp.Data.Content, "alice_mc")
}

func TestHandleStatus(t *testing.T) {
	f := newDispatcherFixture()
	f.settings.settings[model.SettingServerStatus] = "online"
	f.settings.settings[model.SettingPlayersOnline] = "7"
	f.settings.settings[model.SettingPlayersMax] = "50"

	resp := f.dispatcher.Dispatch(context.Background(), commandInteraction(CmdStatus))

	require.NotNil(t, resp.Data)
	require.Len(t, resp.Data.Embeds, 1)
	embed := resp.Data.Embeds[0]
	assert.Equal(t, colorGreen, embed.Color)

	fields := make(map[string]string)
	for _, fld := range embed.Fields {
		fields[fld.Name] = fld.Value
	}
	assert.Equal(t, "🟢 online", fields["Status"])
	assert.Equal(t, "7 / 50", fields["Players"])

	// The refresh button rides along.
	require.Len(t, resp.Data.Components, 1)
}

func TestHandleStatusRefreshUpdatesInPlace(t *testing.T) {
	f := newDispatcherFixture()

	resp := f.dispatcher.Dispatch(context.Background(), componentInteraction(ComponentStatusRefresh))

	assert.Equal(t, discordgo.InteractionResponseUpdateMessage, resp.Type)
}

func TestHandlePlayersEmpty(t *testing.T) {
	f := newDispatcherFixture()

	resp := f.dispatcher.Dispatch(context.Background(), commandInteraction(CmdPlayers))

	require.Len(t, resp.Data.Embeds, 1)
	assert.Equal(t, "No linked players yet", resp.Data.Embeds[0].Description)
	assert.Equal(t, "Page 1 / 1 · 0 players", resp.Data.Embeds[0].Footer.Text)
	// No surviving pagination buttons.
	assert.Empty(t, resp.Data.Components)
}

func TestHandlePlayersPagination(t *testing.T) {
	f := newDispatcherFixture()
	svc := service.NewBindingService(f.bindings)
	for i := 0; i < 25; i++ {
		discordID := fmt.Sprintf("user-%d", i)
		mcName := fmt.Sprintf("player_%d", i)
		code, _, err := svc.RequestBind(context.Background(), discordID, "User "+discordID, mcName)
		require.NoError(t, err)
		_, err = svc.VerifyBind(context.Background(), fmt.Sprintf("uuid-%d", i), mcName, code)
		require.NoError(t, err)
	}

	// First page: next only.
	resp := f.dispatcher.Dispatch(context.Background(), commandInteraction(CmdPlayers))
	assert.Equal(t, "Page 1 / 3 · 25 players", resp.Data.Embeds[0].Footer.Text)
	row := resp.Data.Components[0].(discordgo.ActionsRow)
	require.Len(t, row.Components, 1)
	assert.Equal(t, ComponentPlayersPage+"10", row.Components[0].(discordgo.Button).CustomID)

	// Middle page: both buttons.
	resp = f.dispatcher.Dispatch(context.Background(), componentInteraction(ComponentPlayersPage+"10"))
	assert.Equal(t, discordgo.InteractionResponseUpdateMessage, resp.Type)
	assert.Equal(t, "Page 2 / 3 · 25 players", resp.Data.Embeds[0].Footer.Text)
	row = resp.Data.Components[0].(discordgo.ActionsRow)
	require.Len(t, row.Components, 2)
	assert.Equal(t, ComponentPlayersPage+"0", row.Components[0].(discordgo.Button).CustomID)
	assert.Equal(t, ComponentPlayersPage+"20", row.Components[1].(discordgo.Button).CustomID)

	// Last page: previous only.
	resp = f.dispatcher.Dispatch(context.Background(), componentInteraction(ComponentPlayersPage+"20"))
	assert.Equal(t, "Page 3 / 3 · 25 players", resp.Data.Embeds[0].Footer.Text)
	row = resp.Data.Components[0].(discordgo.ActionsRow)
	require.Len(t, row.Components, 1)
}

func TestHandlePlayersPageGarbageOffset(t *testing.T) {
	f := newDispatcherFixture()

	resp := f.dispatcher.Dispatch(context.Background(), componentInteraction(ComponentPlayersPage+"garbage"))

	// Falls back to the first page instead of failing.
	assert.Equal(t, discordgo.InteractionResponseUpdateMessage, resp.Type)
	assert.Equal(t, "Page 1 / 1 · 0 players", resp.Data.Embeds[0].Footer.Text)
}

func TestHandleSetChannel(t *testing.T) {
	f := newDispatcherFixture()

	resp := f.dispatcher.Dispatch(context.Background(), commandInteraction(CmdSetChannel))

	require.Len(t, resp.Data.Embeds, 1)
	assert.Contains(t, resp.Data.Embeds[0].Description, "<#chan-1>")
	assert.Contains(t, resp.Data.Embeds[0].Description, "Test Guild")
	assert.Contains(t, resp.Data.Embeds[0].Description, "#general")

	require.Len(t, f.channels.channels, 1)
	assert.Equal(t, "chan-1", f.channels.channels[0].ChannelID)
	assert.Equal(t, "user-1", f.channels.channels[0].AddedBy)
}

func TestHandleRemoveChannel(t *testing.T) {
	f := newDispatcherFixture()
	require.NoError(t, f.channels.UpsertChannel(context.Background(), model.SyncChannel{
		ChannelID: "chan-1", GuildID: "guild-1", GuildName: "Test Guild", ChannelName: "general",
	}))

	resp := f.dispatcher.Dispatch(context.Background(), commandInteraction(CmdRemoveChannel))

	require.Len(t, resp.Data.Embeds, 1)
	assert.Contains(t, resp.Data.Embeds[0].Description, "no longer receives")
	assert.Empty(t, f.channels.channels)
}

func TestHandleRemoveChannelUnregistered(t *testing.T) {
	f := newDispatcherFixture()

	resp := f.dispatcher.Dispatch(context.Background(), commandInteraction(CmdRemoveChannel))

	assert.Equal(t, "⚠️ This channel is not currently registered for chat sync", resp.Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
}

func TestHandleTag(t *testing.T) {
	f := newDispatcherFixture()

	ic := commandInteraction(CmdTag,
		stringOpt("title", "Pick a team"),
		&discordgo.ApplicationCommandInteractionDataOption{
			Name:  "role1",
			Type:  discordgo.ApplicationCommandOptionRole,
			Value: "role-111",
		},
	)
	data := ic.Data.(discordgo.ApplicationCommandInteractionData)
	data.Resolved = &discordgo.ApplicationCommandInteractionDataResolved{
		Roles: map[string]*discordgo.Role{"role-111": {ID: "role-111", Name: "Red Team"}},
	}
	ic.Data = data

	resp := f.dispatcher.Dispatch(context.Background(), ic)

	assert.Contains(t, resp.Data.Content, "Pick a team")
	require.Len(t, resp.Data.Components, 1)
	row := resp.Data.Components[0].(discordgo.ActionsRow)
	require.Len(t, row.Components, 1)
	button := row.Components[0].(discordgo.Button)
	assert.Equal(t, "Red Team", button.Label)
	assert.Equal(t, ComponentTagRole+"role-111", button.CustomID)
}

func TestHandleTagNoRoles(t *testing.T) {
	f := newDispatcherFixture()

	resp := f.dispatcher.Dispatch(context.Background(), commandInteraction(CmdTag))

	assert.Equal(t, "No valid roles given", resp.Data.Content)
}

func TestHandleTagRoleToggle(t *testing.T) {
	f := newDispatcherFixture()

	// Member without the role gains it.
	resp := f.dispatcher.Dispatch(context.Background(), componentInteraction(ComponentTagRole+"role-111"))
	assert.Contains(t, resp.Data.Content, "Added role")
	assert.Equal(t, []string{"role-111"}, f.client.addedRoles)

	// Member holding the role loses it.
	ic := componentInteraction(ComponentTagRole + "role-111")
	ic.Member.Roles = []string{"role-111"}
	resp = f.dispatcher.Dispatch(context.Background(), ic)
	assert.Contains(t, resp.Data.Content, "Removed role")
	assert.Equal(t, []string{"role-111"}, f.client.removedRoles)
}
