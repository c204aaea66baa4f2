package session

import "github.com/mauv0809/squadroll/internal/teams"

// SessionStore persists roll sessions, their teammate pair counts and the
// composition signatures already produced.
type SessionStore interface {
	GetOrCreate(guildID int64, name string) (*Session, error)
	Get(guildID int64, name string) (*Session, error)
	End(guildID int64, name string) (bool, error)
	PairCounts(sessionID int64) (map[teams.Pair]int, error)
	BumpPairCounts(sessionID int64, comp [][]int64) error
	Signatures(sessionID int64, scope Scope) (map[string]struct{}, error)
	AddSignature(sessionID int64, scope Scope, signature string) (bool, error)
	Commit(sessionID int64, scope Scope, comp [][]int64) (bool, error)
	ClearSignatures(sessionID int64, scope *Scope) (int, error)
	Coverage(sessionID int64, ids []int64) (seen int, possible int, err error)
}
