package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/mauv0809/squadroll/internal/ratings"
	"github.com/mauv0809/squadroll/internal/riot"
)

func choices(values ...string) []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, len(values))
	for i, v := range values {
		out[i] = &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v}
	}
	return out
}

func str(name, desc string, required bool, values ...string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: desc,
		Required:    required,
		Choices:     choices(values...),
	}
}

func integer(name, desc string, required bool, lo, hi float64) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: desc,
		Required:    required,
		MinValue:    &lo,
		MaxValue:    hi,
	}
}

func boolean(name, desc string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        name,
		Description: desc,
	}
}

func user(name, desc string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: desc,
		Required:    true,
	}
}

func sub(name, desc string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: desc,
		Options:     opts,
	}
}

var (
	optMode       = str("mode", "balanced or random", false, "balanced", "random")
	optTeamCount  = integer("team_count", "Number of teams", false, 2, 25)
	optSizes      = str("sizes", "Explicit team sizes, e.g. 3/3/2", false)
	optGroups     = str("with_groups", "Players kept together: @a @b; @c @d", false)
	optAvoid      = str("avoid_pairs", "Players kept apart: @a @b; @c @d", false)
	optMembers    = str("members", "Mentions of the players, defaults to your voice channel", false)
	optAutoImport = boolean("auto_import_riot", "Import missing ratings from Riot")
	optSession    = str("session", "Session name", false)
	optKind       = str("kind", "solo or team", false, "solo", "team")
	optBestOf     = integer("best_of", "Games per match", false, 1, 9)
)

// Commands returns the slash command definitions registered with Discord.
func Commands() []*discordgo.ApplicationCommand {
	guildOnly := false
	manageGuild := permManageGuild

	return []*discordgo.ApplicationCommand{
		{
			Name:         "team",
			Description:  "Roll balanced teams",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				optMode, optTeamCount, optSizes, optGroups, optAvoid, optMembers,
				boolean("create_voice", "Move the teams into their own voice channels"),
				integer("channel_ttl", "Minutes before created channels are removed", false, 1, 1440),
				optAutoImport,
			},
		},
		{
			Name:         "teamroll",
			Description:  "Roll teams that avoid repeating earlier line-ups",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				optMode, optTeamCount, optSizes, optGroups, optAvoid, optMembers, optSession,
				integer("attempts", "Candidate rolls to compare", false, 1, 2000),
				boolean("commit", "Remember this roll in the session"),
				optAutoImport,
			},
		},
		{
			Name:                     "teamroll_end",
			Description:              "End a roll session",
			DMPermission:             &guildOnly,
			DefaultMemberPermissions: &manageGuild,
			Options:                  []*discordgo.ApplicationCommandOption{optSession},
		},
		{
			Name:                     "teamroll_reset",
			Description:              "Forget the line-ups seen in a session",
			DMPermission:             &guildOnly,
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				optSession,
				boolean("for_current_snapshot", "Only forget line-ups of the current players"),
			},
		},
		{
			Name:         "teamroll_stats",
			Description:  "Show how many pairings the session has covered",
			DMPermission: &guildOnly,
			Options:      []*discordgo.ApplicationCommandOption{optSession},
		},
		{Name: "team_last", Description: "Show the last rolled teams", DMPermission: &guildOnly},
		{Name: "go", Description: "Move the last teams into voice channels", DMPermission: &guildOnly},
		{Name: "disbandteams", Description: "Delete the team voice channels", DMPermission: &guildOnly},
		{
			Name:         "tournament",
			Description:  "Single-elimination tournaments",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				sub("create", "Create a tournament", str("name", "Tournament name", true), optKind, optBestOf),
				sub("add", "Register players", optMembers, optAutoImport),
				sub("start", "Seed and start the bracket"),
				sub("view", "Show the bracket"),
				sub("report", "Report a match result",
					integer("match_id", "Match number", true, 1, 1<<20),
					user("winner", "A member of the winning side"),
					integer("p1_score", "Score of the first side", false, 0, 99),
					integer("p2_score", "Score of the second side", false, 0, 99),
				),
				sub("cancel", "Cancel the tournament"),
			},
		},
		{
			Name:         "tournament_use_last",
			Description:  "Create a tournament from the last rolled teams",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				str("name", "Tournament name", false), optKind, optBestOf,
				boolean("dry_run", "Preview without creating anything"),
			},
		},
		{
			Name:         "arena",
			Description:  "Arena duo rotations",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				sub("start", "Start an arena with your voice channel", optMembers,
					integer("rounds", "Number of rounds, 0 for a full rotation", false, 0, 15)),
				sub("round", "Show the current round"),
				sub("status", "Show the standings"),
				sub("report", "Report placements",
					str("placements", "Duo placements, e.g. #1:2 | #2:1", true)),
				sub("advance", "Move to the next round"),
				sub("stop", "Finish the arena and show the podium"),
				sub("cancel", "Cancel the arena"),
			},
		},
		{
			Name:        "setskill",
			Description: "Set a player's rating",
			Options: []*discordgo.ApplicationCommandOption{
				user("user", "Player"),
				{
					Type:        discordgo.ApplicationCommandOptionNumber,
					Name:        "rating",
					Description: "Rating between 0 and 5000",
					Required:    true,
				},
			},
		},
		{
			Name:        "setrank",
			Description: "Set a player's League of Legends rank",
			Options: []*discordgo.ApplicationCommandOption{
				user("user", "Player"),
				str("tier", "Ranked tier", true, ratings.Tiers...),
				str("division", "Division, empty for Master and above", false, ratings.Divisions...),
				integer("lp", "League points", false, 0, 100),
			},
		},
		{
			Name:        "linklol",
			Description: "Link a League of Legends account and import its rank",
			Options: []*discordgo.ApplicationCommandOption{
				user("user", "Player"),
				str("summoner", "Summoner name", true),
				str("region", "Region", true, riot.Regions()...),
			},
		},
		{
			Name:         "ranks",
			Description:  "List stored ratings",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				str("scope", "Whose ratings to list", false, "auto", "voice", "server"),
				str("sort", "Sort order", false, string(ratings.OrderRatingDesc), string(ratings.OrderRatingAsc), string(ratings.OrderID)),
				integer("limit", "Entries to show", false, ratings.MinLimit, ratings.MaxLimit),
			},
		},
		{Name: "whoami", Description: "Show what the bot knows about you"},
		{Name: "help", Description: "List the commands"},
	}
}
