package discord

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"github.com/mauv0809/squadroll/internal/arena"
	"github.com/mauv0809/squadroll/internal/metrics"
	"github.com/mauv0809/squadroll/internal/notifier"
	"github.com/mauv0809/squadroll/internal/ratings"
	"github.com/mauv0809/squadroll/internal/teams"
)

// discordClient is an interface that contains the methods from the discordgo.Session that we use.
// This allows for easy mocking in tests.
type discordClient interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

const (
	colorBlurple = 0x5865F2
	colorGold    = 0xF1C40F
	colorGreen   = 0x57F287
	colorGrey    = 0x95A5A6

	// embedFieldLimit is the maximum length of an embed field value.
	embedFieldLimit = 1024
	// embedDescriptionLimit is the maximum length of an embed description.
	embedDescriptionLimit = 4096
)

var _ notifier.Notifier = &Notifier{}

// Notifier renders embeds and posts announcements to Discord channels.
type Notifier struct {
	api       discordClient
	metrics   metrics.Metrics
	usage     metrics.MetricsStore
	trashTalk bool
	label     notifier.Labeler
}

// NewNotifier creates a new Notifier posting through a discordgo session.
func NewNotifier(api discordClient, m metrics.Metrics, usage metrics.MetricsStore, trashTalk bool) *Notifier {
	return &Notifier{
		api:       api,
		metrics:   m,
		usage:     usage,
		trashTalk: trashTalk,
		label:     notifier.MentionLabel,
	}
}

func (d *Notifier) send(channelID string, embed *discordgo.MessageEmbed, dryRun bool) error {
	if channelID == "" {
		log.Debug("No channel for announcement, skipping", "title", embed.Title)
		return nil
	}
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(embed, "", "  ")
		log.Info("[Dry Run] Would send Discord message", "channel", channelID, "message", string(jsonMsg))
		return nil
	}

	msg, err := d.api.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:          []*discordgo.MessageEmbed{embed},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		d.metrics.IncNotifFailed()
		log.Error("Failed to send Discord message", "error", err, "channel", channelID)
		return fmt.Errorf("failed to post message: %w", err)
	}

	d.metrics.IncNotifSent()
	if d.usage != nil {
		d.usage.Increment(metrics.KeyNotificationsOut)
	}
	log.Info("Successfully sent Discord message", "channel", channelID, "message", msg.ID)
	return nil
}

// Implement the Notifier interface
func (d *Notifier) SendRoster(channelID string, view notifier.RosterView, dryRun bool) error {
	return d.send(channelID, d.rosterEmbed(view), dryRun)
}

func (d *Notifier) SendBracket(channelID string, view notifier.BracketView, dryRun bool) error {
	return d.send(channelID, d.bracketEmbed(view), dryRun)
}

func (d *Notifier) SendArenaRound(channelID string, a *arena.Arena, dryRun bool) error {
	return d.send(channelID, d.arenaRoundEmbed(a), dryRun)
}

func (d *Notifier) SendStandings(channelID string, a *arena.Arena, dryRun bool) error {
	return d.send(channelID, d.standingsEmbed(a), dryRun)
}

func (d *Notifier) SendPodium(channelID string, a *arena.Arena, dryRun bool) error {
	return d.send(channelID, d.podiumEmbed(a), dryRun)
}

func response(embeds ...*discordgo.MessageEmbed) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Embeds:          embeds,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
}

// FormatRosterResponse formats a roster for a slash command response.
func (d *Notifier) FormatRosterResponse(view notifier.RosterView) (any, error) {
	return response(d.rosterEmbed(view)), nil
}

// FormatBracketResponse formats a bracket for a slash command response.
func (d *Notifier) FormatBracketResponse(view notifier.BracketView) (any, error) {
	return response(d.bracketEmbed(view)), nil
}

func (d *Notifier) FormatArenaRoundResponse(a *arena.Arena) (any, error) {
	return response(d.arenaRoundEmbed(a)), nil
}

func (d *Notifier) FormatStandingsResponse(a *arena.Arena) (any, error) {
	return response(d.standingsEmbed(a)), nil
}

func (d *Notifier) FormatPodiumResponse(a *arena.Arena) (any, error) {
	return response(d.podiumEmbed(a)), nil
}

func (d *Notifier) FormatRanksResponse(view notifier.RanksView) (any, error) {
	return response(d.ranksEmbed(view)), nil
}

func (d *Notifier) FormatHelpResponse() (any, error) {
	embed := &discordgo.MessageEmbed{
		Title: "📖 Commands",
		Color: colorBlurple,
	}
	for _, s := range notifier.HelpSections {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  s.Title,
			Value: truncate(strings.TrimSpace(s.Body), embedFieldLimit),
		})
	}
	return response(embed), nil
}

func (d *Notifier) rosterEmbed(view notifier.RosterView) *discordgo.MessageEmbed {
	snap := view.Snapshot
	title := view.Title
	if title == "" {
		title = "🎲 Teams"
	}
	embed := &discordgo.MessageEmbed{
		Title:     title,
		Color:     colorBlurple,
		Timestamp: snap.CreatedAt.Format(time.RFC3339),
	}

	for i, team := range snap.Teams {
		total := team.Total()
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("Team %d · %.0f", i+1, total),
			Value:  truncate(joinOr(d.label.TeamLines(team), "_(empty)_"), embedFieldLimit),
			Inline: true,
		})
	}

	desc := []string{fmt.Sprintf("Mode **%s** · %d players · spread **%.0f**", snap.Mode, len(snap.Players()), teams.Assignment{Teams: snap.Teams}.Spread())}
	if line := notifier.SearchLine(view.Search); line != "" {
		desc = append(desc, line)
	}
	desc = append(desc, d.label.RosterNotes(view)...)
	embed.Description = truncate(strings.Join(desc, "\n"), embedDescriptionLimit)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Roll " + snap.RollID.String()[:8] + " · /go moves everyone to voice"}
	return embed
}

func (d *Notifier) bracketEmbed(view notifier.BracketView) *discordgo.MessageEmbed {
	t := view.Tournament
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🏆 %s", t.Name),
		Color: colorGold,
	}
	desc := fmt.Sprintf("%s tournament · %s · %d participants", t.Kind, t.State, len(view.Participants))
	if t.BestOf > 1 {
		desc += fmt.Sprintf(" · Bo%d", t.BestOf)
	}
	if t.Winner != nil {
		desc += "\n👑 Champion: " + d.label.Join(t.Winner.Members, " & ")
	}
	embed.Description = desc

	if len(view.Matches) == 0 {
		lines := make([]string, len(view.Participants))
		for i, p := range view.Participants {
			lines[i] = fmt.Sprintf("%d. %s · %.0f", p.Seed, d.label.Join(p.Members, " & "), p.Rating)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Participants",
			Value: truncate(joinOr(lines, "_(none yet)_"), embedFieldLimit),
		})
		return embed
	}

	rounds := notifier.Rounds(view.Matches)
	for r, matches := range rounds {
		lines := make([]string, len(matches))
		for i, m := range matches {
			line := d.label.MatchLine(m)
			if view.Highlight != 0 && m.ID == view.Highlight {
				line = "**" + line + "**"
			}
			lines[i] = line
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  notifier.RoundTitle(r+1, len(rounds)),
			Value: truncate(strings.Join(lines, "\n"), embedFieldLimit),
		})
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "/tournament report match:<id> winner:@player"}
	return embed
}

func (d *Notifier) arenaRoundEmbed(a *arena.Arena) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🧭 Arena · Round %d/%d", a.CurrentRound, a.RoundsTotal),
		Color: colorBlurple,
	}
	if a.State != arena.StateRunning {
		embed.Title = fmt.Sprintf("🧭 Arena · %s", a.State)
		embed.Color = colorGrey
		return embed
	}
	embed.Description = truncate(joinOr(d.label.DuoLines(a), "_(empty)_"), embedDescriptionLimit)
	if pending := a.Pending(); len(pending) > 0 && len(pending) < len(a.CurrentDuos()) {
		embed.Description += fmt.Sprintf("\nWaiting for duo(s) %s", joinInts(pending))
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Report: #1:1 | 3:6 | @A @B:7 (top 1..8)"}
	return embed
}

func (d *Notifier) standingsEmbed(a *arena.Arena) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "📊 Arena · Standings",
		Color:       colorGold,
		Description: truncate(joinOr(d.label.StandingLines(a.Standings()), "_(nobody)_"), embedDescriptionLimit),
	}
}

func (d *Notifier) podiumEmbed(a *arena.Arena) *discordgo.MessageEmbed {
	podium := notifier.BuildPodium(a, d.trashTalk)
	embed := &discordgo.MessageEmbed{
		Title: "🏆 Arena · Podium",
		Color: colorGreen,
	}
	medals := []string{"🥇", "🥈", "🥉"}
	for i, s := range podium.Top {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  medals[i],
			Value: fmt.Sprintf("%s · **%d** pts", d.label(s.UserID), s.Points),
		})
	}
	if podium.Loser != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🖕 Loser Award",
			Value: fmt.Sprintf("**%s** · %d pts\n*%s*", d.label(podium.Loser.UserID), podium.Loser.Points, podium.Joke),
		})
	}
	return embed
}

func (d *Notifier) ranksEmbed(view notifier.RanksView) *discordgo.MessageEmbed {
	lines := make([]string, len(view.Entries))
	for i, e := range view.Entries {
		lines[i] = ratings.FormatLine(i+1, e)
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📈 Ratings · %s", view.Scope),
		Color:       colorGold,
		Description: truncate(joinOr(lines, "_(nobody)_"), embedDescriptionLimit),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d of %d · sorted by %s · 🔗 linked account", len(view.Entries), view.Total, view.Order),
		},
	}
}

func joinOr(lines []string, empty string) string {
	if len(lines) == 0 {
		return empty
	}
	return strings.Join(lines, "\n")
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}

// truncate cuts s to at most limit runes, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
