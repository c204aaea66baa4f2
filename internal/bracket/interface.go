package bracket

// TournamentStore persists tournaments, their participants and matches. A
// guild has at most one tournament in setup or running.
type TournamentStore interface {
	CreateTournament(t *Tournament) error
	GetTournament(id int64) (*Tournament, error)
	GetActiveTournament(guildID int64) (*Tournament, error)
	AddParticipants(tournamentID int64, competitors []Competitor) (int, error)
	ListParticipants(tournamentID int64) ([]Participant, error)
	Start(tournamentID int64) ([]Match, error)
	ListMatches(tournamentID int64) ([]Match, error)
	ReportMatch(tournamentID, matchID, winnerUserID int64, score1, score2 int) (*Outcome, error)
	Cancel(tournamentID int64) error
}
