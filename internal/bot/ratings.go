package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"github.com/mauv0809/squadroll/internal/notifier"
	"github.com/mauv0809/squadroll/internal/ratings"
	"github.com/mauv0809/squadroll/internal/riot"
	"github.com/mauv0809/squadroll/internal/teams"
)

type skillParams struct {
	User   int64   `opt:"user" validate:"required"`
	Rating float64 `opt:"rating" validate:"gte=0,lte=5000"`
}

type rankParams struct {
	User     int64  `opt:"user" validate:"required"`
	Tier     string `opt:"tier" validate:"required"`
	Division string `opt:"division" validate:"omitempty,oneof=I II III IV"`
	LP       int    `opt:"lp" validate:"gte=0,lte=100"`
}

type linkParams struct {
	User     int64  `opt:"user" validate:"required"`
	Summoner string `opt:"summoner" validate:"required,max=64"`
	Region   string `opt:"region" validate:"required"`
}

type ranksParams struct {
	Scope string `opt:"scope" validate:"oneof=auto voice server"`
	Sort  string `opt:"sort" validate:"oneof=rating_desc rating_asc id"`
}

func (b *Bot) setSkill(_ context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	params := skillParams{User: inv.Options.User("user"), Rating: inv.Options.Float("rating", -1)}
	if err := b.check(params); err != nil {
		return nil, err
	}
	if err := b.Ratings.SetRating(params.User, params.Rating); err != nil {
		return nil, err
	}
	log.Info("Set rating", "user", params.User, "rating", params.Rating, "by", inv.UserID)
	return ephemeral(fmt.Sprintf("✅ %s is now rated **%.0f**.", teams.Mention(params.User), params.Rating)), nil
}

func (b *Bot) setRank(_ context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	params := rankParams{
		User:     inv.Options.User("user"),
		Tier:     inv.Options.String("tier", ""),
		Division: strings.ToUpper(inv.Options.String("division", "")),
		LP:       inv.Options.Int("lp", 0),
	}
	if err := b.check(params); err != nil {
		return nil, err
	}
	tier, division, err := ratings.NormalizeRank(params.Tier, params.Division)
	if err != nil {
		return nil, err
	}
	rank := ratings.Rank{UserID: params.User, Source: ratings.SourceOffline, Tier: tier, Division: division, LP: params.LP}
	rating, err := b.Ratings.ApplyRank(rank)
	if err != nil {
		return nil, err
	}
	log.Info("Set rank", "user", params.User, "rank", rank.String(), "rating", rating)
	return ephemeral(fmt.Sprintf("✅ %s: %s, rated **%.0f**.", teams.Mention(params.User), rank.String(), rating)), nil
}

func (b *Bot) linkLoL(ctx context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	params := linkParams{
		User:     inv.Options.User("user"),
		Summoner: inv.Options.String("summoner", ""),
		Region:   strings.ToUpper(inv.Options.String("region", "")),
	}
	if err := b.check(params); err != nil {
		return nil, err
	}
	if _, err := riot.PlatformFor(params.Region); err != nil {
		return nil, fmt.Errorf("%w %q, use one of %s", err, params.Region, strings.Join(riot.Regions(), ", "))
	}
	link := ratings.Link{UserID: params.User, SummonerName: params.Summoner, Region: params.Region}
	if err := b.Ratings.SetLink(link); err != nil {
		return nil, err
	}
	linked := fmt.Sprintf("🔗 %s linked to **%s** (%s).", teams.Mention(params.User), params.Summoner, params.Region)
	if !b.Resolver.CanImport() {
		return message("%s No Riot API key is configured, set the rank with /setrank.", linked), nil
	}

	rank, rating, err := b.Resolver.Import(ctx, link)
	switch {
	case err == nil:
		return message("%s Imported %s, rated **%.0f**.", linked, rank.String(), rating), nil
	case errors.Is(err, riot.ErrNotFound), errors.Is(err, riot.ErrNoRankedEntry):
		return message("%s No ranked standing found: %v.", linked, err), nil
	}
	log.Warn("Riot import failed after linking", "user", params.User, "error", err)
	return message("%s The Riot import failed, try again later.", linked), nil
}

func (b *Bot) ranks(_ context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	params := ranksParams{
		Scope: strings.ToLower(inv.Options.String("scope", "auto")),
		Sort:  strings.ToLower(inv.Options.String("sort", string(ratings.OrderRatingDesc))),
	}
	if err := b.check(params); err != nil {
		return nil, err
	}

	var ids []int64
	scope := "Server"
	if params.Scope != "server" {
		ids = b.voiceMembers(inv)
		switch {
		case len(ids) > 0:
			scope = "Voice channel"
		case params.Scope == "voice":
			return nil, ErrNotInVoice
		}
	}
	entries, err := b.Ratings.ListEntries(ids)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return ephemeral("🗒️ Nothing to show for this scope."), nil
	}
	order := ratings.ParseOrder(params.Sort)
	ratings.Sort(entries, order)
	total := len(entries)
	if limit := ratings.ClampLimit(inv.Options.Int("limit", 0)); total > limit {
		entries = entries[:limit]
	}
	data, err := formatted(b.Notifier.FormatRanksResponse(notifier.RanksView{Scope: scope, Order: order, Entries: entries, Total: total}))
	if err != nil {
		return nil, err
	}
	data.Flags = discordgo.MessageFlagsEphemeral
	return data, nil
}

func (b *Bot) whoami(_ context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	lines := []string{fmt.Sprintf("🪪 %s · id `%d`", teams.Mention(inv.UserID), inv.UserID)}
	if inv.Admin {
		lines = append(lines, "🛡️ You can run admin commands.")
	}
	stored, err := b.Ratings.GetRatings([]int64{inv.UserID})
	if err != nil {
		return nil, err
	}
	if r, ok := stored[inv.UserID]; ok {
		lines = append(lines, fmt.Sprintf("📈 Rating **%.0f**", r))
	} else {
		lines = append(lines, fmt.Sprintf("📈 No rating yet, rolls use %.0f", teams.DefaultRating))
	}
	if link, err := b.Ratings.GetLink(inv.UserID); err == nil {
		lines = append(lines, fmt.Sprintf("🔗 %s (%s)", link.SummonerName, link.Region))
	} else if !errors.Is(err, ratings.ErrNotFound) {
		return nil, err
	}
	if rank, err := b.Ratings.GetRank(inv.UserID); err == nil {
		lines = append(lines, fmt.Sprintf("🏅 %s · %s", rank.String(), rank.Source))
	} else if !errors.Is(err, ratings.ErrNotFound) {
		return nil, err
	}
	return ephemeral(strings.Join(lines, "\n")), nil
}

func (b *Bot) help(_ context.Context, _ *Invocation) (*discordgo.InteractionResponseData, error) {
	data, err := formatted(b.Notifier.FormatHelpResponse())
	if err != nil {
		return nil, err
	}
	data.Flags = discordgo.MessageFlagsEphemeral
	return data, nil
}
