package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName  string `validate:"required"`
	Port    string `validate:"required,numeric"`
	OwnerID int64
	Discord DiscordConfig
	Turso   TursoConfig
	Riot    RiotConfig
	Slack   SlackConfig
	// ProjectID enables Google Pub/Sub. Events are dispatched in-process when empty.
	ProjectID string
	Features  FeatureConfig
}

type DiscordConfig struct {
	Token     string `validate:"required"`
	AppID     string `validate:"required,numeric"`
	PublicKey string `validate:"required,hexadecimal,len=64"`
	// GuildID registers commands for one guild instead of globally.
	GuildID string `validate:"omitempty,numeric"`
}

type TursoConfig struct {
	PrimaryURL string `validate:"required_with=AuthToken,omitempty,url"`
	AuthToken  string
}

type RiotConfig struct {
	APIKey string
	RPS    float64 `validate:"gt=0,lte=100"`
}

type SlackConfig struct {
	Token     string `validate:"required_with=ChannelID"`
	ChannelID string `validate:"required_with=Token"`
}

type FeatureConfig struct {
	TrashTalk    bool
	Gateway      bool
	VoiceTTL     time.Duration `validate:"gte=1m"`
	RollAttempts int           `validate:"gte=20,lte=5000"`
}
