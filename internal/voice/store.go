package voice

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// NewStore creates a new ChannelStore.
func NewStore(db *sql.DB) ChannelStore {
	return &store{
		db: db,
	}
}

// Track inserts or replaces an ownership record.
func (s *store) Track(ch Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO voice_channels (channel_id, guild_id, name, created_at, expires_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(channel_id) DO UPDATE SET name = excluded.name, expires_at = excluded.expires_at
	`, ch.ChannelID, ch.GuildID, ch.Name, ch.CreatedAt.Unix(), ch.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to track voice channel: %w", err)
	}
	log.Debug("Tracking voice channel", "channel", ch.ChannelID, "guild", ch.GuildID, "expires", ch.ExpiresAt)
	return nil
}

func (s *store) Touch(channelID string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE voice_channels SET expires_at = ? WHERE channel_id = ?", expiresAt.Unix(), channelID)
	if err != nil {
		return false, fmt.Errorf("failed to touch voice channel: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// List returns the tracked channels of a guild ordered by name.
func (s *store) List(guildID int64) ([]Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query("SELECT channel_id, guild_id, name, created_at, expires_at FROM voice_channels WHERE guild_id = ? ORDER BY name", guildID)
}

// Expired returns the channels of every guild whose expiry is not after now.
func (s *store) Expired(now time.Time) ([]Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query("SELECT channel_id, guild_id, name, created_at, expires_at FROM voice_channels WHERE expires_at <= ? ORDER BY expires_at", now.Unix())
}

func (s *store) Remove(channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM voice_channels WHERE channel_id = ?", channelID); err != nil {
		return fmt.Errorf("failed to remove voice channel: %w", err)
	}
	return nil
}

func (s *store) query(q string, args ...any) ([]Channel, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query voice channels: %w", err)
	}
	defer rows.Close()

	var out []Channel
	for rows.Next() {
		var ch Channel
		var created, expires int64
		if err := rows.Scan(&ch.ChannelID, &ch.GuildID, &ch.Name, &created, &expires); err != nil {
			return nil, fmt.Errorf("failed to scan voice channel: %w", err)
		}
		ch.CreatedAt = time.Unix(created, 0).UTC()
		ch.ExpiresAt = time.Unix(expires, 0).UTC()
		out = append(out, ch)
	}
	return out, rows.Err()
}
