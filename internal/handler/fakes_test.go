package handler

import (
	"context"
	"time"

	"mc-bridge-api/internal/model"
)

// In-memory repository fakes shared by the handler tests.

type fakeBindingRepo struct {
	nextID   int64
	bindings map[string]*model.Binding
}

func newFakeBindingRepo() *fakeBindingRepo {
	return &fakeBindingRepo{bindings: make(map[string]*model.Binding)}
}

func (f *fakeBindingRepo) GetByDiscordID(_ context.Context, discordID string) (*model.Binding, error) {
	if b, ok := f.bindings[discordID]; ok {
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
	b, ok := f.bindings[discordID]
	if !ok {
		f.nextID++
		b = &model.Binding{ID: f.nextID, DiscordID: discordID}
		f.bindings[discordID] = b
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
	nextID   int64
	messages []model.RelayMessage
}

func (f *fakeMessageRepo) InsertMessage(_ context.Context, source model.MessageSource, username, content string, delivered bool) (int64, error) {
	f.nextID++
	f.messages = append(f.messages, model.RelayMessage{
		ID:        f.nextID,
		Source:    source,
		Username:  username,
		Content:   content,
		Delivered: delivered,
		CreatedAt: time.Now(),
	})
	return f.nextID, nil
}

func (f *fakeMessageRepo) ListUndelivered(_ context.Context, source model.MessageSource, since time.Time, limit int) ([]model.RelayMessage, error) {
	var out []model.RelayMessage
	for _, m := range f.messages {
		if m.Source != source || m.Delivered || !m.CreatedAt.After(since) {
			continue
		}
		if len(out) >= limit {
			break
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMessageRepo) MarkDelivered(_ context.Context, ids []int64) (int64, error) {
	var n int64
	for _, id := range ids {
		for i := range f.messages {
			if f.messages[i].ID == id && !f.messages[i].Delivered {
				f.messages[i].Delivered = true
				n++
			}
		}
	}
	return n, nil
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

type fakeMessenger struct {
	sent map[string][]string
	err  error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{sent: make(map[string][]string)}
}

func (f *fakeMessenger) SendChannelMessage(channelID, content string) error {
	if f.err != nil {
		return f.err
	}
	f.sent[channelID] = append(f.sent[channelID], content)
	return nil
}

type fakeSettingRepo struct {
	settings map[string]model.Setting
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{settings: make(map[string]model.Setting)}
}

func (f *fakeSettingRepo) GetSetting(_ context.Context, key string) (*model.Setting, error) {
	if s, ok := f.settings[key]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeSettingRepo) ListSettings(_ context.Context) ([]model.Setting, error) {
	var out []model.Setting
	for _, s := range f.settings {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSettingRepo) UpsertSetting(_ context.Context, key, value string) error {
	f.settings[key] = model.Setting{Key: key, Value: value, UpdatedAt: time.Now()}
	return nil
}

func (f *fakeSettingRepo) BatchUpsertSettings(_ context.Context, entries map[string]string) error {
	for key, value := range entries {
		f.settings[key] = model.Setting{Key: key, Value: value, UpdatedAt: time.Now()}
	}
	return nil
}

type fakeInventoryRepo struct {
	items map[string][]model.InventoryItem // keyed by mc_uuid
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{items: make(map[string][]model.InventoryItem)}
}

func (f *fakeInventoryRepo) GetItems(_ context.Context, mcUUID string) ([]model.InventoryItem, error) {
	return f.items[mcUUID], nil
}

func (f *fakeInventoryRepo) ReplaceAll(_ context.Context, mcUUID string, items []model.InventoryItem) error {
	kept := make([]model.InventoryItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		item.MCUUID = mcUUID
		kept = append(kept, item)
	}
	f.items[mcUUID] = kept
	return nil
}

func (f *fakeInventoryRepo) PatchItem(_ context.Context, mcUUID string, item model.InventoryItem) (bool, error) {
	existing := f.items[mcUUID]
	if item.Quantity <= 0 {
		for i, it := range existing {
			if it.ItemID == item.ItemID {
				f.items[mcUUID] = append(existing[:i], existing[i+1:]...)
				return true, nil
			}
		}
		return true, nil
	}
	for i, it := range existing {
		if it.ItemID == item.ItemID {
			existing[i] = item
			return false, nil
		}
	}
	item.MCUUID = mcUUID
	f.items[mcUUID] = append(existing, item)
	return false, nil
}

func (f *fakeInventoryRepo) Close() error { return nil }
