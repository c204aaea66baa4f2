package config

import (
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPublicKey = "e0b1c3a5f4d2e6b7a8c9d0e1f2a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5"

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func baseEnv() map[string]string {
	return map[string]string{
		"DB_NAME":            "squadroll.db",
		"PORT":               "8080",
		"DISCORD_BOT_TOKEN":  "token",
		"DISCORD_APP_ID":     "123456789012345678",
		"DISCORD_PUBLIC_KEY": testPublicKey,
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(env(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, "squadroll.db", cfg.DBName)
	assert.Equal(t, 1.0, cfg.Riot.RPS)
	assert.True(t, cfg.Features.TrashTalk)
	assert.True(t, cfg.Features.Gateway)
	assert.Equal(t, 90*time.Minute, cfg.Features.VoiceTTL)
	assert.Equal(t, 200, cfg.Features.RollAttempts)
	assert.False(t, cfg.RemoteDB())
	assert.Empty(t, cfg.ProjectID)
}

func TestParseOptionalValues(t *testing.T) {
	vars := baseEnv()
	vars["OWNER_ID"] = "42"
	vars["RIOT_API_KEY"] = "RGAPI-x"
	vars["RIOT_RPS"] = "0.5"
	vars["ENABLE_TRASH_TALK"] = "false"
	vars["VOICE_TTL_MINUTES"] = "15"
	vars["ROLL_ATTEMPTS"] = "1000"
	vars["TURSO_PRIMARY_URL"] = "libsql://squadroll.turso.io"
	vars["TURSO_AUTH_TOKEN"] = "secret"
	vars["SLACK_BOT_TOKEN"] = "xoxb"
	vars["SLACK_CHANNEL_ID"] = "C123"

	cfg, err := Parse(env(vars))
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.OwnerID)
	assert.Equal(t, 0.5, cfg.Riot.RPS)
	assert.False(t, cfg.Features.TrashTalk)
	assert.Equal(t, 15*time.Minute, cfg.Features.VoiceTTL)
	assert.Equal(t, 1000, cfg.Features.RollAttempts)
	assert.True(t, cfg.RemoteDB())
}

func TestParseMissingRequired(t *testing.T) {
	vars := baseEnv()
	delete(vars, "DISCORD_BOT_TOKEN")
	delete(vars, "PORT")

	_, err := Parse(env(vars))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_BOT_TOKEN")
	assert.Contains(t, err.Error(), "PORT")
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"bad public key":   {"DISCORD_PUBLIC_KEY": "not-hex"},
		"bad number":       {"RIOT_RPS": "fast"},
		"bad bool":         {"ENABLE_GATEWAY": "maybe"},
		"attempts range":   {"ROLL_ATTEMPTS": "5"},
		"slack half set":   {"SLACK_BOT_TOKEN": "xoxb"},
		"turso token only": {"TURSO_AUTH_TOKEN": "secret"},
	}
	for name, overrides := range tests {
		t.Run(name, func(t *testing.T) {
			vars := baseEnv()
			for k, v := range overrides {
				vars[k] = v
			}
			_, err := Parse(env(vars))
			require.Error(t, err)
			var verrs validator.ValidationErrors
			if !strings.Contains(err.Error(), "invalid environment variables") {
				assert.ErrorAs(t, err, &verrs)
			}
		})
	}
}
