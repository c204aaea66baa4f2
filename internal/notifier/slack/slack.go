package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/squadroll/internal/arena"
	"github.com/mauv0809/squadroll/internal/metrics"
	"github.com/mauv0809/squadroll/internal/notifier"
	"github.com/mauv0809/squadroll/internal/ratings"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier mirrors announcements to a Slack channel. The channel passed to
// the Send methods is ignored; everything goes to the configured one.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	trashTalk bool
	label     notifier.Labeler
}

// NewNotifier creates a new Notifier. names renders user ids; nil prints raw ids.
func NewNotifier(token, channelID string, metrics metrics.Metrics, trashTalk bool, names notifier.Labeler) *Notifier {
	api := slack.New(token)
	return NewNotifierWithAPI(api, channelID, metrics, trashTalk, names)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics, trashTalk bool, names notifier.Labeler) *Notifier {
	if names == nil {
		names = func(id int64) string { return "@" + strconv.FormatInt(id, 10) }
	}
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
		trashTalk: trashTalk,
		label:     names,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendRoster(_ string, view notifier.RosterView, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatRoster(view), dryRun)
	return err
}

func (s *Notifier) SendBracket(_ string, view notifier.BracketView, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatBracket(view), dryRun)
	return err
}

func (s *Notifier) SendArenaRound(_ string, a *arena.Arena, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatArenaRound(a), dryRun)
	return err
}

func (s *Notifier) SendStandings(_ string, a *arena.Arena, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatStandings(a), dryRun)
	return err
}

func (s *Notifier) SendPodium(_ string, a *arena.Arena, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatPodium(a), dryRun)
	return err
}

// FormatRosterResponse formats a roster as a Block Kit message.
func (s *Notifier) FormatRosterResponse(view notifier.RosterView) (any, error) {
	return s.formatRoster(view), nil
}

// FormatBracketResponse formats a bracket as a Block Kit message.
func (s *Notifier) FormatBracketResponse(view notifier.BracketView) (any, error) {
	return s.formatBracket(view), nil
}

func (s *Notifier) FormatArenaRoundResponse(a *arena.Arena) (any, error) {
	return s.formatArenaRound(a), nil
}

func (s *Notifier) FormatStandingsResponse(a *arena.Arena) (any, error) {
	return s.formatStandings(a), nil
}

func (s *Notifier) FormatPodiumResponse(a *arena.Arena) (any, error) {
	return s.formatPodium(a), nil
}

func (s *Notifier) FormatRanksResponse(view notifier.RanksView) (any, error) {
	blocks := []slack.Block{header(fmt.Sprintf("📈 Ratings (%s)", view.Scope))}
	if len(view.Entries) == 0 {
		return slack.NewBlockMessage(append(blocks, section("Nobody has a rating yet."))...), nil
	}
	lines := make([]string, len(view.Entries))
	for i, e := range view.Entries {
		lines[i] = fmt.Sprintf("%d. %s %.0f", i+1, s.label(e.UserID), e.Rating)
		if e.Rank != nil {
			lines[i] += " (" + e.Rank.String() + ")"
		}
	}
	blocks = append(blocks, section(strings.Join(lines, "\n")))
	blocks = append(blocks, contextLine(fmt.Sprintf("%d of %d, sorted by %s", len(view.Entries), view.Total, orderName(view.Order))))
	return slack.NewBlockMessage(blocks...), nil
}

func (s *Notifier) FormatHelpResponse() (any, error) {
	blocks := []slack.Block{header("📖 Commands")}
	for _, sec := range notifier.HelpSections {
		blocks = append(blocks, section(sec.Title+"\n"+strings.TrimSpace(sec.Body)))
	}
	return slack.NewBlockMessage(blocks...), nil
}

// formatRoster creates the Slack message for a team roll using Block Kit.
func (s *Notifier) formatRoster(view notifier.RosterView) slack.Message {
	title := view.Title
	if title == "" {
		title = "🎲 New teams rolled"
	}
	blocks := []slack.Block{header(title)}

	snap := view.Snapshot
	for i, team := range snap.Teams {
		text := fmt.Sprintf("Team %d (%.0f)\n%s", i+1, team.Total(), strings.Join(s.label.TeamLines(team), "\n"))
		blocks = append(blocks, section(text))
	}

	var notes []string
	if line := notifier.SearchLine(view.Search); line != "" {
		notes = append(notes, line)
	}
	notes = append(notes, s.label.RosterNotes(view)...)
	for _, n := range notes {
		blocks = append(blocks, contextLine(n))
	}
	return slack.NewBlockMessage(blocks...)
}

// formatBracket creates the Slack message for a bracket update.
func (s *Notifier) formatBracket(view notifier.BracketView) slack.Message {
	t := view.Tournament
	blocks := []slack.Block{header(fmt.Sprintf("🏆 %s (%s)", t.Name, t.State))}
	if t.Winner != nil {
		blocks = append(blocks, section("👑 Champion: "+s.label.Join(t.Winner.Members, " & ")))
	}
	rounds := notifier.Rounds(view.Matches)
	for r, matches := range rounds {
		lines := make([]string, len(matches))
		for i, m := range matches {
			lines[i] = s.label.MatchLine(m)
		}
		blocks = append(blocks, slack.NewDividerBlock(), section(notifier.RoundTitle(r+1, len(rounds))+"\n"+strings.Join(lines, "\n")))
	}
	if len(rounds) == 0 {
		blocks = append(blocks, section(fmt.Sprintf("%d participants registered", len(view.Participants))))
	}
	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatArenaRound(a *arena.Arena) slack.Message {
	if a.State != arena.StateRunning {
		return slack.NewBlockMessage(header(fmt.Sprintf("🧭 Arena %s", a.State)))
	}
	return slack.NewBlockMessage(
		header(fmt.Sprintf("🧭 Arena round %d/%d", a.CurrentRound, a.RoundsTotal)),
		section(strings.Join(s.label.DuoLines(a), "\n")),
	)
}

func (s *Notifier) formatStandings(a *arena.Arena) slack.Message {
	return slack.NewBlockMessage(
		header("📊 Arena standings"),
		section(strings.Join(s.label.StandingLines(a.Standings()), "\n")),
	)
}

func (s *Notifier) formatPodium(a *arena.Arena) slack.Message {
	podium := notifier.BuildPodium(a, s.trashTalk)
	blocks := []slack.Block{header("🏆 Arena podium")}
	medals := []string{"🥇", "🥈", "🥉"}
	lines := make([]string, len(podium.Top))
	for i, st := range podium.Top {
		lines[i] = fmt.Sprintf("%s %s, %d pts", medals[i], s.label(st.UserID), st.Points)
	}
	blocks = append(blocks, section(strings.Join(lines, "\n")))
	if podium.Loser != nil {
		blocks = append(blocks, contextLine(fmt.Sprintf("🖕 Loser Award: %s, %d pts. %s", s.label(podium.Loser.UserID), podium.Loser.Points, podium.Joke)))
	}
	return slack.NewBlockMessage(blocks...)
}

func header(text string) slack.Block {
	return slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", text, true, false))
}

func section(text string) slack.Block {
	return slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil)
}

func contextLine(text string) slack.Block {
	return slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", text, true, false))
}

func orderName(o ratings.Order) string {
	switch o {
	case ratings.OrderRatingAsc:
		return "rating, lowest first"
	case ratings.OrderID:
		return "user id"
	}
	return "rating, highest first"
}
