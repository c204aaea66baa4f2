package voice

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// FakeAPI is an in-memory API for tests. It is safe for concurrent use.
type FakeAPI struct {
	mu       sync.Mutex
	channels map[string][]ChannelInfo
	// Voice maps "guild/user" to the channel the member is connected to.
	voice  map[string]string
	nextID int

	MoveErr   error
	DeleteErr error

	Deleted []string
	Created []struct {
		Name      string
		ParentID  string
		UserLimit int
	}
}

// NewFakeAPI creates an empty FakeAPI.
func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		channels: make(map[string][]ChannelInfo),
		voice:    make(map[string]string),
	}
}

// AddChannel registers an existing voice channel.
func (f *FakeAPI) AddChannel(guildID, id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[guildID] = append(f.channels[guildID], ChannelInfo{ID: id, Name: name})
}

// Connect places a member in a voice channel.
func (f *FakeAPI) Connect(guildID, userID, channelID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.voice[guildID+"/"+userID] = channelID
}

func (f *FakeAPI) VoiceChannels(guildID string) ([]ChannelInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ChannelInfo(nil), f.channels[guildID]...), nil
}

func (f *FakeAPI) CreateVoiceChannel(guildID, name, parentID string, userLimit int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("vc-%d", f.nextID)
	f.channels[guildID] = append(f.channels[guildID], ChannelInfo{ID: id, Name: name})
	f.Created = append(f.Created, struct {
		Name      string
		ParentID  string
		UserLimit int
	}{name, parentID, userLimit})
	return id, nil
}

func (f *FakeAPI) DeleteChannel(channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for g, list := range f.channels {
		for i, ch := range list {
			if ch.ID == channelID {
				f.channels[g] = append(list[:i:i], list[i+1:]...)
				f.Deleted = append(f.Deleted, channelID)
				return nil
			}
		}
	}
	return ErrChannelGone
}

func (f *FakeAPI) MemberVoiceChannel(guildID, userID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.voice[guildID+"/"+userID]
}

// ChannelMembers returns the members of a channel sorted by id.
func (f *FakeAPI) ChannelMembers(guildID, channelID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for key, ch := range f.voice {
		user, ok := strings.CutPrefix(key, guildID+"/")
		if ok && ch == channelID {
			out = append(out, user)
		}
	}
	slices.Sort(out)
	return out
}

func (f *FakeAPI) MoveMember(guildID, userID, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MoveErr != nil {
		return f.MoveErr
	}
	f.voice[guildID+"/"+userID] = channelID
	return nil
}

// MockManager is a VoiceManager for tests.
type MockManager struct {
	mu sync.Mutex

	DeployFunc  func(ctx context.Context, req DeployRequest) (*DeployResult, error)
	DisbandFunc func(ctx context.Context, guildID int64) (int, error)
	SweepFunc   func(ctx context.Context, now time.Time) (int, error)

	DeployCalls  []DeployRequest
	DisbandCalls []int64
	SweepCalls   int
}

// NewMockManager creates a new mock instance.
func NewMockManager() *MockManager {
	return &MockManager{}
}

func (m *MockManager) Deploy(ctx context.Context, req DeployRequest) (*DeployResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeployCalls = append(m.DeployCalls, req)
	if m.DeployFunc != nil {
		return m.DeployFunc(ctx, req)
	}
	return &DeployResult{ChannelIDs: make([]string, len(req.Teams)), Created: len(req.Teams)}, nil
}

func (m *MockManager) Disband(ctx context.Context, guildID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DisbandCalls = append(m.DisbandCalls, guildID)
	if m.DisbandFunc != nil {
		return m.DisbandFunc(ctx, guildID)
	}
	return 0, nil
}

func (m *MockManager) Sweep(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SweepCalls++
	if m.SweepFunc != nil {
		return m.SweepFunc(ctx, now)
	}
	return 0, nil
}
