package voice

import (
	"context"
	"time"
)

// ChannelStore persists ownership records of bot-created voice channels.
type ChannelStore interface {
	Track(ch Channel) error
	// Touch moves the expiry of a tracked channel. It reports whether the channel was tracked.
	Touch(channelID string, expiresAt time.Time) (bool, error)
	List(guildID int64) ([]Channel, error)
	Expired(now time.Time) ([]Channel, error)
	Remove(channelID string) error
}

// API is the subset of the chat platform used to manage voice channels.
type API interface {
	VoiceChannels(guildID string) ([]ChannelInfo, error)
	CreateVoiceChannel(guildID, name, parentID string, userLimit int) (string, error)
	DeleteChannel(channelID string) error
	// MemberVoiceChannel returns the channel a member is connected to, or "".
	MemberVoiceChannel(guildID, userID string) string
	// ChannelMembers lists the members connected to a voice channel.
	ChannelMembers(guildID, channelID string) []string
	MoveMember(guildID, userID, channelID string) error
}

// ChannelInfo is a voice channel as listed by the API.
type ChannelInfo struct {
	ID   string
	Name string
}

// VoiceManager deploys teams to voice channels and cleans up after them.
type VoiceManager interface {
	Deploy(ctx context.Context, req DeployRequest) (*DeployResult, error)
	Disband(ctx context.Context, guildID int64) (int, error)
	Sweep(ctx context.Context, now time.Time) (int, error)
}
