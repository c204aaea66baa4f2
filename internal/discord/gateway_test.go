package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	responded  []*discordgo.InteractionResponse
	edits      []*discordgo.WebhookEdit
	deletes    int
	followups  []*discordgo.WebhookParams
	respondErr error
}

func (f *fakeClient) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.responded = append(f.responded, resp)
	return f.respondErr
}

func (f *fakeClient) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edits = append(f.edits, edit)
	return &discordgo.Message{}, nil
}

func (f *fakeClient) InteractionResponseDelete(_ *discordgo.Interaction, _ ...discordgo.RequestOption) error {
	f.deletes++
	return nil
}

func (f *fakeClient) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.followups = append(f.followups, data)
	return &discordgo.Message{}, nil
}

type handlerFunc func(ctx context.Context, i *discordgo.Interaction, dryRun bool) *discordgo.InteractionResponse

func (h handlerFunc) Handle(ctx context.Context, i *discordgo.Interaction, dryRun bool) *discordgo.InteractionResponse {
	return h(ctx, i, dryRun)
}

func reply(data *discordgo.InteractionResponseData) handlerFunc {
	return func(_ context.Context, _ *discordgo.Interaction, dryRun bool) *discordgo.InteractionResponse {
		if dryRun {
			panic("gateway interactions are never dry runs")
		}
		return &discordgo.InteractionResponse{Type: discordgo.InteractionResponseChannelMessageWithSource, Data: data}
	}
}

func command() *discordgo.Interaction {
	return &discordgo.Interaction{ID: "1", Type: discordgo.InteractionApplicationCommand}
}

func TestDeliverEditsDeferredResponse(t *testing.T) {
	client := &fakeClient{}
	embed := &discordgo.MessageEmbed{Title: "Teams"}
	g := &Gateway{client: client, handler: reply(&discordgo.InteractionResponseData{Content: "rolled", Embeds: []*discordgo.MessageEmbed{embed}})}

	g.deliver(context.Background(), command())

	require.Len(t, client.responded, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, client.responded[0].Type)
	require.Len(t, client.edits, 1)
	require.NotNil(t, client.edits[0].Content)
	assert.Equal(t, "rolled", *client.edits[0].Content)
	require.NotNil(t, client.edits[0].Embeds)
	assert.Equal(t, embed, (*client.edits[0].Embeds)[0])
	assert.Nil(t, client.edits[0].Components)
	assert.Zero(t, client.deletes)
	assert.Empty(t, client.followups)
}

func TestDeliverEphemeralUsesFollowup(t *testing.T) {
	client := &fakeClient{}
	g := &Gateway{client: client, handler: reply(&discordgo.InteractionResponseData{
		Content: "❌ not allowed",
		Flags:   discordgo.MessageFlagsEphemeral,
	})}

	g.deliver(context.Background(), command())

	assert.Equal(t, 1, client.deletes)
	assert.Empty(t, client.edits)
	require.Len(t, client.followups, 1)
	assert.Equal(t, "❌ not allowed", client.followups[0].Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, client.followups[0].Flags)
}

func TestDeliverStopsWhenAcknowledgeFails(t *testing.T) {
	client := &fakeClient{respondErr: errors.New("unknown interaction")}
	called := false
	g := &Gateway{client: client, handler: handlerFunc(func(context.Context, *discordgo.Interaction, bool) *discordgo.InteractionResponse {
		called = true
		return nil
	})}

	g.deliver(context.Background(), command())

	assert.False(t, called)
	assert.Empty(t, client.edits)
}

func TestDeliverIgnoresPing(t *testing.T) {
	client := &fakeClient{}
	g := &Gateway{client: client, handler: reply(&discordgo.InteractionResponseData{Content: "x"})}

	g.deliver(context.Background(), &discordgo.Interaction{Type: discordgo.InteractionPing})

	assert.Empty(t, client.responded)
}

type fakeRegistrar struct {
	appID, guildID string
	cmds           []*discordgo.ApplicationCommand
	err            error
}

func (f *fakeRegistrar) ApplicationCommandBulkOverwrite(appID, guildID string, cmds []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.appID, f.guildID, f.cmds = appID, guildID, cmds
	return cmds, f.err
}

func TestRegisterCommands(t *testing.T) {
	reg := &fakeRegistrar{}
	require.NoError(t, RegisterCommands(reg, "42", "7"))
	assert.Equal(t, "42", reg.appID)
	assert.Equal(t, "7", reg.guildID)
	assert.NotEmpty(t, reg.cmds)

	reg.err = errors.New("401")
	assert.ErrorContains(t, RegisterCommands(reg, "42", ""), "failed to register commands")
}

func TestNewSessionIntents(t *testing.T) {
	s, err := NewSession("token")
	require.NoError(t, err)
	assert.Equal(t, "Bot token", s.Token)
	assert.Equal(t, Intents, s.Identify.Intents)
}
