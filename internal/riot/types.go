package riot

import (
	"errors"
	"sort"
	"strings"
)

// QueueSoloDuo is the ranked queue preferred when a player has several entries.
const QueueSoloDuo = "RANKED_SOLO_5x5"

var (
	ErrNotFound      = errors.New("summoner not found")
	ErrNoRankedEntry = errors.New("summoner has no ranked entry")
	ErrUnknownRegion = errors.New("unknown region")
	ErrNoAPIKey      = errors.New("riot api key is not configured")
)

// PlatformMap maps the region names users type to Riot platform routing values.
var PlatformMap = map[string]string{
	"EUW":  "euw1",
	"EUNE": "eun1",
	"NA":   "na1",
	"KR":   "kr",
	"BR":   "br1",
	"JP":   "jp1",
	"LAN":  "la1",
	"LAS":  "la2",
	"OCE":  "oc1",
	"TR":   "tr1",
	"RU":   "ru",
}

// PlatformFor resolves a region name case-insensitively.
func PlatformFor(region string) (string, error) {
	p, ok := PlatformMap[strings.ToUpper(strings.TrimSpace(region))]
	if !ok {
		return "", ErrUnknownRegion
	}
	return p, nil
}

// Regions lists the accepted region names, sorted.
func Regions() []string {
	out := make([]string, 0, len(PlatformMap))
	for r := range PlatformMap {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Summoner is the subset of summoner-v4 the bot uses.
type Summoner struct {
	ID            string `json:"id"`
	PUUID         string `json:"puuid"`
	Name          string `json:"name"`
	SummonerLevel int64  `json:"summonerLevel"`
}

// LeagueEntry is one ranked queue standing from league-v4.
type LeagueEntry struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// RankInfo is the standing picked for a summoner.
type RankInfo struct {
	Tier     string `json:"tier"`
	Division string `json:"division,omitempty"`
	LP       int    `json:"lp"`
	Queue    string `json:"queue"`
}

// PickEntry prefers the solo/duo queue and otherwise takes the first entry.
func PickEntry(entries []LeagueEntry) (LeagueEntry, bool) {
	for _, e := range entries {
		if e.QueueType == QueueSoloDuo {
			return e, true
		}
	}
	if len(entries) > 0 {
		return entries[0], true
	}
	return LeagueEntry{}, false
}
