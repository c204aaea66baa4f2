package riot

import "context"

// RiotClient fetches ranked standings from the Riot Games API.
type RiotClient interface {
	GetSummonerByName(ctx context.Context, platform, name string) (*Summoner, error)
	GetLeagueEntries(ctx context.Context, platform, summonerID string) ([]LeagueEntry, error)
	FetchRank(ctx context.Context, platform, name string) (*RankInfo, error)
}
