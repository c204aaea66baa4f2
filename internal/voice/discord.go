package voice

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// DiscordAPI implements API on a discordgo session. Voice membership is read
// from the gateway state cache, so MemberVoiceChannel only sees members while
// a gateway connection is open.
type DiscordAPI struct {
	session *discordgo.Session
}

// NewDiscordAPI wraps a discordgo session.
func NewDiscordAPI(s *discordgo.Session) *DiscordAPI {
	return &DiscordAPI{session: s}
}

var _ API = (*DiscordAPI)(nil)

func (d *DiscordAPI) VoiceChannels(guildID string) ([]ChannelInfo, error) {
	channels, err := d.session.GuildChannels(guildID)
	if err != nil {
		return nil, err
	}
	var out []ChannelInfo
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildVoice {
			out = append(out, ChannelInfo{ID: ch.ID, Name: ch.Name})
		}
	}
	return out, nil
}

func (d *DiscordAPI) CreateVoiceChannel(guildID, name, parentID string, userLimit int) (string, error) {
	ch, err := d.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:      name,
		Type:      discordgo.ChannelTypeGuildVoice,
		UserLimit: userLimit,
		ParentID:  parentID,
	})
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (d *DiscordAPI) DeleteChannel(channelID string) error {
	_, err := d.session.ChannelDelete(channelID)
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return ErrChannelGone
	}
	return err
}

func (d *DiscordAPI) MemberVoiceChannel(guildID, userID string) string {
	if d.session.State == nil {
		return ""
	}
	vs, err := d.session.State.VoiceState(guildID, userID)
	if err != nil || vs == nil {
		return ""
	}
	return vs.ChannelID
}

func (d *DiscordAPI) ChannelMembers(guildID, channelID string) []string {
	if d.session.State == nil || channelID == "" {
		return nil
	}
	g, err := d.session.State.Guild(guildID)
	if err != nil {
		return nil
	}
	d.session.State.RLock()
	defer d.session.State.RUnlock()
	var out []string
	for _, vs := range g.VoiceStates {
		if vs.ChannelID == channelID {
			out = append(out, vs.UserID)
		}
	}
	return out
}

func (d *DiscordAPI) MoveMember(guildID, userID, channelID string) error {
	return d.session.GuildMemberMove(guildID, userID, &channelID)
}
