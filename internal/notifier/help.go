package notifier

import "github.com/MakeNowJust/heredoc/v2"

// HelpSection is one block of the /help listing.
type HelpSection struct {
	Title string
	Body  string
}

// HelpSections documents the slash commands.
var HelpSections = []HelpSection{
	{
		Title: "🧩 Teams",
		Body: heredoc.Doc(`
			**/team** roll balanced or random teams from your voice channel or from mentions.
			Options: mode, team_count, sizes ("3/3/2"), with_groups ("@A @B | @C @D"), avoid_pairs ("@X @Y; @Z @W"), members, create_voice, channel_ttl, auto_import_riot.
			**/teamroll** roll a composition not seen yet in the session (default ` + "`auto-YYYYMMDD`" + `). Falls back to the last roster.
			**/team_last** show the last roster. **/go** move it to Team 1..K voice channels. **/disbandteams** delete those channels.
		`),
	},
	{
		Title: "♻️ Sessions",
		Body: heredoc.Doc(`
			**/teamroll_end** forget a session and its pair history.
			**/teamroll_reset** forget seen compositions, optionally only for the current roster.
			**/teamroll_stats** pair coverage of the current roster.
		`),
	},
	{
		Title: "🏆 Tournament",
		Body: heredoc.Doc(`
			**/tournament create | add | start | view | report | cancel** single elimination with byes, seeded by rating.
			**/tournament_use_last** register the last roster, team by team (dry_run to preview).
		`),
	},
	{
		Title: "🛡️ Arena",
		Body: heredoc.Doc(`
			**/arena start** round-robin duos, everyone partners everyone once.
			**/arena round | status | advance | stop | cancel** run the arena.
			**/arena report** "#1:2 | 3:6 | @A @B:7" gives duo 1 top 2, duo 3 top 6 and that pair top 7. Top 1 is worth 8 points, top 8 one point.
		`),
	},
	{
		Title: "📈 Ratings",
		Body: heredoc.Doc(`
			**/setskill** set a rating. **/setrank** set a rank by hand. **/linklol** link a League account and import its rank.
			**/ranks** list ratings for your voice channel or the server.
			**/whoami** show your own rating and rank.
		`),
	},
}
