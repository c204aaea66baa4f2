package bot

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/go-playground/validator/v10"
)

// Options indexes the options of an invocation by name.
type Options map[string]*discordgo.ApplicationCommandInteractionDataOption

func (o Options) Has(name string) bool {
	_, ok := o[name]
	return ok
}

// String returns a string option. Blank values count as missing.
func (o Options) String(name, fallback string) string {
	if opt, ok := o[name]; ok {
		if s, ok := opt.Value.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return fallback
}

// Int returns an integer option. Values decoded from JSON arrive as float64.
func (o Options) Int(name string, fallback int) int {
	opt, ok := o[name]
	if !ok {
		return fallback
	}
	switch v := opt.Value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func (o Options) Float(name string, fallback float64) float64 {
	opt, ok := o[name]
	if !ok {
		return fallback
	}
	switch v := opt.Value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return fallback
}

func (o Options) Bool(name string, fallback bool) bool {
	if opt, ok := o[name]; ok {
		if b, ok := opt.Value.(bool); ok {
			return b
		}
	}
	return fallback
}

// User returns the id of a user option, or 0.
func (o Options) User(name string) int64 {
	opt, ok := o[name]
	if !ok {
		return 0
	}
	s, _ := opt.Value.(string)
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}

// Parse turns an interaction into an Invocation. Subcommands are folded into
// the name.
func Parse(i *discordgo.Interaction, ownerID int64) (*Invocation, error) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil, fmt.Errorf("%w: interaction type %d", ErrUnknownCmd, i.Type)
	}
	data := i.ApplicationCommandData()
	inv := &Invocation{
		Name:      data.Name,
		ChannelID: i.ChannelID,
		Options:   Options{},
	}
	opts := data.Options
	if len(opts) == 1 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		inv.Name += " " + opts[0].Name
		opts = opts[0].Options
	}
	for _, opt := range opts {
		inv.Options[opt.Name] = opt
	}

	var perms int64
	switch {
	case i.Member != nil && i.Member.User != nil:
		inv.UserID, _ = strconv.ParseInt(i.Member.User.ID, 10, 64)
		perms = i.Member.Permissions
	case i.User != nil:
		inv.UserID, _ = strconv.ParseInt(i.User.ID, 10, 64)
	}
	if i.GuildID != "" {
		guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse guild id %q: %w", i.GuildID, err)
		}
		inv.GuildID = guildID
	}
	inv.Admin = (ownerID != 0 && inv.UserID == ownerID) ||
		perms&permAdministrator != 0 || perms&permManageGuild != 0
	return inv, nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report option names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("opt"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// check validates a parameter struct and turns failures into one readable error.
func (b *Bot) check(params any) error {
	err := b.validate.Struct(params)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("`%s` is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("`%s` must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "gte", "min":
			msgs = append(msgs, fmt.Sprintf("`%s` must be at least %s", fe.Field(), fe.Param()))
		case "lte", "max":
			msgs = append(msgs, fmt.Sprintf("`%s` must be at most %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("`%s` is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidOption, strings.Join(msgs, "; "))
}
