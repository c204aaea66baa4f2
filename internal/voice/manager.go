package voice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/squadroll/internal/metrics"
	"github.com/sourcegraph/conc/pool"
)

// ErrChannelGone is returned by an API when the channel no longer exists.
var ErrChannelGone = errors.New("channel no longer exists")

// maxConcurrentMoves bounds parallel member moves per deployment.
const maxConcurrentMoves = 4

// Manager creates, reuses and deletes team voice channels.
type Manager struct {
	api     API
	store   ChannelStore
	metrics metrics.Metrics
	now     func() time.Time
}

// NewManager creates a Manager.
func NewManager(api API, store ChannelStore, m metrics.Metrics) *Manager {
	return &Manager{api: api, store: store, metrics: m, now: time.Now}
}

var _ VoiceManager = (*Manager)(nil)

// Deploy resolves a "Team i" channel per team, creating missing ones, and moves
// connected members into them. Failed moves are counted, not returned.
func (m *Manager) Deploy(ctx context.Context, req DeployRequest) (*DeployResult, error) {
	if len(req.Teams) == 0 {
		return &DeployResult{}, nil
	}
	ttl := req.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	guild := strconv.FormatInt(req.GuildID, 10)

	existing, err := m.api.VoiceChannels(guild)
	if err != nil {
		return nil, fmt.Errorf("failed to list voice channels: %w", err)
	}
	byName := make(map[string]string, len(existing))
	for _, ch := range existing {
		if _, ok := byName[ch.Name]; !ok {
			byName[ch.Name] = ch.ID
		}
	}

	now := m.now().UTC()
	expires := now.Add(ttl)
	res := &DeployResult{ChannelIDs: make([]string, len(req.Teams))}
	for i, team := range req.Teams {
		name := TeamChannelName(i)
		if id, ok := byName[name]; ok {
			res.ChannelIDs[i] = id
			res.Reused++
			if _, err := m.store.Touch(id, expires); err != nil {
				return nil, err
			}
			continue
		}
		id, err := m.api.CreateVoiceChannel(guild, name, req.ParentID, len(team))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", name, err)
		}
		if err := m.store.Track(Channel{ChannelID: id, GuildID: req.GuildID, Name: name, CreatedAt: now, ExpiresAt: expires}); err != nil {
			return nil, err
		}
		res.ChannelIDs[i] = id
		res.Created++
	}

	var moved, skipped, failed atomic.Int64
	p := pool.New().WithMaxGoroutines(maxConcurrentMoves)
	for i, team := range req.Teams {
		dest := res.ChannelIDs[i]
		for _, member := range team {
			user := strconv.FormatInt(member, 10)
			p.Go(func() {
				if ctx.Err() != nil {
					failed.Add(1)
					return
				}
				current := m.api.MemberVoiceChannel(guild, user)
				if current == "" || current == dest {
					skipped.Add(1)
					return
				}
				if err := m.api.MoveMember(guild, user, dest); err != nil {
					log.Warn("Failed to move member", "guild", guild, "user", user, "channel", dest, "error", err)
					failed.Add(1)
					m.metrics.IncVoiceMoveFailures()
					return
				}
				moved.Add(1)
				m.metrics.IncVoiceMoves()
			})
		}
	}
	p.Wait()

	res.Moved, res.Skipped, res.Failed = int(moved.Load()), int(skipped.Load()), int(failed.Load())
	log.Info("Deployed teams to voice", "guild", req.GuildID, "created", res.Created, "reused", res.Reused,
		"moved", res.Moved, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

// Disband deletes every tracked channel of a guild and returns how many were removed.
func (m *Manager) Disband(ctx context.Context, guildID int64) (int, error) {
	channels, err := m.store.List(guildID)
	if err != nil {
		return 0, err
	}
	n := m.delete(ctx, channels)
	log.Info("Disbanded team channels", "guild", guildID, "deleted", n, "tracked", len(channels))
	return n, nil
}

// Sweep deletes expired channels across all guilds.
func (m *Manager) Sweep(ctx context.Context, now time.Time) (int, error) {
	channels, err := m.store.Expired(now)
	if err != nil {
		return 0, err
	}
	if len(channels) == 0 {
		return 0, nil
	}
	n := m.delete(ctx, channels)
	m.metrics.AddChannelsSwept(n)
	log.Info("Swept expired voice channels", "deleted", n, "expired", len(channels))
	return n, nil
}

// delete removes channels from the platform and forgets them. Channels the
// platform fails to delete stay tracked for the next sweep.
func (m *Manager) delete(ctx context.Context, channels []Channel) int {
	n := 0
	for _, ch := range channels {
		if ctx.Err() != nil {
			break
		}
		err := m.api.DeleteChannel(ch.ChannelID)
		if err != nil && !errors.Is(err, ErrChannelGone) {
			log.Error("Failed to delete voice channel", "channel", ch.ChannelID, "guild", ch.GuildID, "error", err)
			continue
		}
		if err := m.store.Remove(ch.ChannelID); err != nil {
			log.Error("Failed to forget voice channel", "channel", ch.ChannelID, "error", err)
			continue
		}
		n++
	}
	return n
}
