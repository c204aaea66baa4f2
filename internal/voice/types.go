package voice

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is how long a bot-created channel lives when no TTL is given.
const DefaultTTL = 90 * time.Minute

// ErrNotFound is returned when a channel is not tracked.
var ErrNotFound = errors.New("voice channel not tracked")

// Channel is an ownership record for a voice channel created by the bot.
type Channel struct {
	ChannelID string    `json:"channel_id"`
	GuildID   int64     `json:"guild_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the channel is due for deletion at now.
func (c Channel) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// TeamChannelName is the name of the voice channel of team i (0-based).
func TeamChannelName(i int) string {
	return fmt.Sprintf("Team %d", i+1)
}

// DeployRequest describes a set of teams to move into voice channels.
type DeployRequest struct {
	GuildID int64
	Teams   [][]int64
	TTL     time.Duration
	// ParentID places created channels under a category when set.
	ParentID string
}

// DeployResult summarizes a deployment.
type DeployResult struct {
	ChannelIDs []string
	Created    int
	Reused     int
	Moved      int
	// Skipped counts members that are not connected to voice or already in place.
	Skipped int
	Failed  int
}

type store struct {
	db *sql.DB
	mu sync.RWMutex
}
