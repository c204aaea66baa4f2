package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"github.com/mauv0809/squadroll/internal/bot"
)

// Intents requested on the gateway. Voice states feed the session's state
// cache, which presence lookups read from.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

const handleTimeout = 10 * time.Second

// InteractionHandler answers a single interaction.
type InteractionHandler interface {
	Handle(ctx context.Context, i *discordgo.Interaction, dryRun bool) *discordgo.InteractionResponse
}

// interactionClient is the subset of *discordgo.Session used to answer
// interactions that arrive over the gateway.
type interactionClient interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionResponseDelete(interaction *discordgo.Interaction, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type commandRegistrar interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// NewSession creates a bot session with the intents the bot relies on. The
// session is not opened.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = Intents
	s.StateEnabled = true
	return s, nil
}

// RegisterCommands replaces the application's slash commands. An empty
// guildID registers them globally.
func RegisterCommands(api commandRegistrar, appID, guildID string) error {
	cmds := bot.Commands()
	registered, err := api.ApplicationCommandBulkOverwrite(appID, guildID, cmds)
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	log.Info("Registered slash commands", "count", len(registered), "guild", guildID)
	return nil
}

// Gateway keeps a websocket connection open so voice presence is tracked and,
// when no interactions endpoint is configured, commands are received.
type Gateway struct {
	session *discordgo.Session
	client  interactionClient
	handler InteractionHandler
	// Interactions is false when Discord posts interactions to the HTTP endpoint.
	Interactions bool
}

// NewGateway wraps an unopened session.
func NewGateway(s *discordgo.Session, handler InteractionHandler, interactions bool) *Gateway {
	return &Gateway{session: s, client: s, handler: handler, Interactions: interactions}
}

// Open registers the event handlers and connects.
func (g *Gateway) Open() error {
	g.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info("Gateway connected", "user", r.User.Username, "guilds", len(r.Guilds))
		if err := s.UpdateGameStatus(0, "/help"); err != nil {
			log.Warn("Failed to set status", "error", err)
		}
	})
	if g.Interactions {
		g.session.AddHandler(func(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
			ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
			defer cancel()
			g.deliver(ctx, ic.Interaction)
		})
	}
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (g *Gateway) Close() error {
	log.Info("Closing gateway")
	return g.session.Close()
}

// deliver acknowledges the interaction at once, runs the handler and then
// fills in the deferred reply. Ephemeral replies cannot replace a public
// deferral, so the placeholder is removed and a private followup sent.
func (g *Gateway) deliver(ctx context.Context, i *discordgo.Interaction) {
	if i.Type == discordgo.InteractionPing {
		return
	}
	deferred := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	if err := g.client.InteractionRespond(i, deferred); err != nil {
		log.Error("Failed to acknowledge interaction", "error", err, "id", i.ID)
		return
	}

	resp := g.handler.Handle(ctx, i, false)
	if resp == nil || resp.Data == nil {
		if err := g.client.InteractionResponseDelete(i); err != nil {
			log.Warn("Failed to delete empty response", "error", err)
		}
		return
	}

	if resp.Data.Flags&discordgo.MessageFlagsEphemeral != 0 {
		if err := g.client.InteractionResponseDelete(i); err != nil {
			log.Warn("Failed to delete deferred response", "error", err)
		}
		if _, err := g.client.FollowupMessageCreate(i, true, toFollowup(resp.Data)); err != nil {
			log.Error("Failed to send followup", "error", err, "id", i.ID)
		}
		return
	}

	if _, err := g.client.InteractionResponseEdit(i, toEdit(resp.Data)); err != nil {
		log.Error("Failed to edit deferred response", "error", err, "id", i.ID)
	}
}

func toEdit(data *discordgo.InteractionResponseData) *discordgo.WebhookEdit {
	edit := &discordgo.WebhookEdit{}
	if data.Content != "" {
		content := data.Content
		edit.Content = &content
	}
	if len(data.Embeds) > 0 {
		embeds := data.Embeds
		edit.Embeds = &embeds
	}
	if len(data.Components) > 0 {
		components := data.Components
		edit.Components = &components
	}
	if data.AllowedMentions != nil {
		edit.AllowedMentions = data.AllowedMentions
	}
	return edit
}

func toFollowup(data *discordgo.InteractionResponseData) *discordgo.WebhookParams {
	return &discordgo.WebhookParams{
		Content:         data.Content,
		Embeds:          data.Embeds,
		Components:      data.Components,
		AllowedMentions: data.AllowedMentions,
		Flags:           discordgo.MessageFlagsEphemeral,
	}
}
