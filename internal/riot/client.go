package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// APIClient talks to the platform hosts of the Riot Games API.
type APIClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	// BaseURL replaces https://<platform>.api.riotgames.com when set.
	BaseURL string
}

// NewClient creates a Riot client allowed rps requests per second.
func NewClient(apiKey string, rps float64) *APIClient {
	if rps <= 0 {
		rps = 1
	}
	return &APIClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		apiKey:     apiKey,
	}
}

// Ensure APIClient implements the RiotClient interface.
var _ RiotClient = (*APIClient)(nil)

func (c *APIClient) host(platform string) string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return fmt.Sprintf("https://%s.api.riotgames.com", platform)
}

// GetSummonerByName looks a summoner up by display name.
func (c *APIClient) GetSummonerByName(ctx context.Context, platform, name string) (*Summoner, error) {
	endpoint := fmt.Sprintf("%s/lol/summoner/v4/summoners/by-name/%s", c.host(platform), url.PathEscape(name))
	var s Summoner
	if err := c.get(ctx, endpoint, &s); err != nil {
		return nil, err
	}
	if s.ID == "" {
		return nil, ErrNotFound
	}
	return &s, nil
}

// GetLeagueEntries lists the ranked queues of a summoner.
func (c *APIClient) GetLeagueEntries(ctx context.Context, platform, summonerID string) ([]LeagueEntry, error) {
	endpoint := fmt.Sprintf("%s/lol/league/v4/entries/by-summoner/%s", c.host(platform), url.PathEscape(summonerID))
	var entries []LeagueEntry
	if err := c.get(ctx, endpoint, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// FetchRank resolves a summoner name to its preferred ranked standing.
func (c *APIClient) FetchRank(ctx context.Context, platform, name string) (*RankInfo, error) {
	summoner, err := c.GetSummonerByName(ctx, platform, name)
	if err != nil {
		return nil, err
	}
	entries, err := c.GetLeagueEntries(ctx, platform, summoner.ID)
	if err != nil {
		return nil, err
	}
	entry, ok := PickEntry(entries)
	if !ok {
		return nil, ErrNoRankedEntry
	}
	info := &RankInfo{
		Tier:     strings.ToUpper(entry.Tier),
		Division: entry.Rank,
		LP:       entry.LeaguePoints,
		Queue:    entry.QueueType,
	}
	log.Info("Fetched ranked standing", "summoner", name, "platform", platform, "tier", info.Tier, "division", info.Division, "lp", info.LP)
	return info, nil
}

func (c *APIClient) get(ctx context.Context, endpoint string, out any) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Riot-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	log.Debug("Requesting Riot API", "url", endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("Received non-OK HTTP status from Riot API", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("received non-OK HTTP status: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
