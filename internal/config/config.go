package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	cfg, err := Parse(os.LookupEnv)
	if err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}
	return cfg
}

// Parse builds and validates a Config from a variable lookup function.
func Parse(lookup func(string) (string, bool)) (Config, error) {
	var missing []string
	// A helper function to get a required env var. Missing keys are collected and reported together.
	getEnv := func(key string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		missing = append(missing, key)
		return ""
	}
	optional := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}

	var parseErrs []string
	number := func(key, fallback string) float64 {
		raw := optional(key, fallback)
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			parseErrs = append(parseErrs, fmt.Sprintf("%s=%q is not a number", key, raw))
		}
		return v
	}
	flag := func(key string, fallback bool) bool {
		raw := optional(key, strconv.FormatBool(fallback))
		v, err := strconv.ParseBool(raw)
		if err != nil {
			parseErrs = append(parseErrs, fmt.Sprintf("%s=%q is not a boolean", key, raw))
		}
		return v
	}

	cfg := Config{
		DBName: getEnv("DB_NAME"),
		Port:   getEnv("PORT"),
		Discord: DiscordConfig{
			Token:     getEnv("DISCORD_BOT_TOKEN"),
			AppID:     getEnv("DISCORD_APP_ID"),
			PublicKey: getEnv("DISCORD_PUBLIC_KEY"),
			GuildID:   optional("DISCORD_GUILD_ID", ""),
		},
		OwnerID: int64(number("OWNER_ID", "0")),
		Turso: TursoConfig{
			PrimaryURL: optional("TURSO_PRIMARY_URL", ""),
			AuthToken:  optional("TURSO_AUTH_TOKEN", ""),
		},
		Riot: RiotConfig{
			APIKey: optional("RIOT_API_KEY", ""),
			RPS:    number("RIOT_RPS", "1"),
		},
		Slack: SlackConfig{
			Token:     optional("SLACK_BOT_TOKEN", ""),
			ChannelID: optional("SLACK_CHANNEL_ID", ""),
		},
		ProjectID: optional("GCP_PROJECT", ""),
		Features: FeatureConfig{
			TrashTalk:    flag("ENABLE_TRASH_TALK", true),
			Gateway:      flag("ENABLE_GATEWAY", true),
			VoiceTTL:     time.Duration(number("VOICE_TTL_MINUTES", "90")) * time.Minute,
			RollAttempts: int(number("ROLL_ATTEMPTS", "200")),
		},
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if len(parseErrs) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(parseErrs, "; "))
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("failed to validate config: %w", err)
	}
	return cfg, nil
}

// RemoteDB reports whether a libSQL primary is configured.
func (c Config) RemoteDB() bool {
	return c.Turso.PrimaryURL != ""
}
