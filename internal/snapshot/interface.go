package snapshot

// SnapshotStore keeps the last assignment per guild.
type SnapshotStore interface {
	Set(snap *Snapshot) error
	Get(guildID int64) (*Snapshot, error)
}
