package arena

// ArenaStore persists arenas. At most one arena per guild is running.
type ArenaStore interface {
	Create(a *Arena) error
	Get(id int64) (*Arena, error)
	GetActive(guildID int64) (*Arena, error)
	Save(a *Arena) error
}
