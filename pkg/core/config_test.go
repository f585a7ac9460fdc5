package core_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathwise/coachmem-go/pkg/core"
)

func TestDefaultChatConfig(t *testing.T) {
	cfg := core.DefaultChatConfig()

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 4000, cfg.MaxMessageLength)
	assert.Equal(t, 15, cfg.MaxConversationHistory)
	assert.Equal(t, 50, cfg.MaxMemoryInteractions)
	assert.Equal(t, 7, cfg.MeaningfulChatThreshold)
	assert.Equal(t, 30, cfg.ProfileUpdateDays)
	assert.Equal(t, 0.70, cfg.MinInsightConfidence)
	assert.Equal(t, 128000, cfg.ModelContextWindowTokens)
	assert.Equal(t, 2000, cfg.ReservedResponseTokens)
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	cfg := core.ChatConfig{MaxMessageLength: 100}
	cfg.Normalize()

	assert.Equal(t, 100, cfg.MaxMessageLength)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 7, cfg.MeaningfulChatThreshold)
	assert.Equal(t, 128000, cfg.ModelContextWindowTokens)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CHAT_TIMEOUT_MS", "5000")
	t.Setenv("MAX_MESSAGE_LENGTH", "2000")
	t.Setenv("MEANINGFUL_CHAT_THRESHOLD", "5")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("LLM_MODEL", "gpt-4o-mini")
	t.Setenv("DATABASE_PROVIDER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/coachmem_test.db")

	cfg, err := core.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Chat.Timeout)
	assert.Equal(t, 2000, cfg.Chat.MaxMessageLength)
	assert.Equal(t, 5, cfg.Chat.MeaningfulChatThreshold)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "sqlite", cfg.Storage.Provider)
	assert.Equal(t, "/tmp/coachmem_test.db", cfg.Storage.Config["db_path"])
}

func TestLoadConfigFromEnvPostgres(t *testing.T) {
	t.Setenv("DATABASE_PROVIDER", "postgres")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("POSTGRES_USER", "coach")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DATABASE", "coachmem")

	cfg, err := core.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Provider)
	assert.Equal(t, "db.internal", cfg.Storage.Config["host"])
	assert.Equal(t, 5433, cfg.Storage.Config["port"])
	assert.Equal(t, "coach", cfg.Storage.Config["user"])
	assert.Equal(t, "secret", cfg.Storage.Config["password"])
	assert.Equal(t, "coachmem", cfg.Storage.Config["db_name"])
	assert.Equal(t, "disable", cfg.Storage.Config["ssl_mode"])
}

func TestLoadConfigFromEnvMySQL(t *testing.T) {
	t.Setenv("DATABASE_PROVIDER", "mysql")
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_PORT", "3307")
	t.Setenv("MYSQL_USER", "coach")
	t.Setenv("MYSQL_DATABASE", "coachmem")

	cfg, err := core.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Storage.Provider)
	assert.Equal(t, "db.internal", cfg.Storage.Config["host"])
	assert.Equal(t, 3307, cfg.Storage.Config["port"])
	assert.Equal(t, "coach", cfg.Storage.Config["user"])
	assert.Equal(t, "coachmem", cfg.Storage.Config["db_name"])
}

func TestLoadConfigFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"chat": {"max_message_length": 2500},
		"llm": {"provider": "openai", "api_key": "test-key", "model": "gpt-4o"},
		"storage": {"provider": "sqlite", "config": {"db_path": "./test.db"}}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := core.LoadConfigFromJSON(path)
	require.NoError(t, err)

	assert.Equal(t, 2500, cfg.Chat.MaxMessageLength)
	// Omitted chat options are normalized to defaults.
	assert.Equal(t, 30*time.Second, cfg.Chat.Timeout)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sqlite", cfg.Storage.Provider)
	assert.Equal(t, "./test.db", cfg.Storage.Config["db_path"])
}

func TestLoadConfigFromJSONMissingFile(t *testing.T) {
	_, err := core.LoadConfigFromJSON(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := &core.Config{
		LLM:     core.LLMConfig{Provider: "openai"},
		Storage: core.StorageConfig{Provider: "sqlite"},
	}
	assert.NoError(t, valid.Validate())

	missingLLM := &core.Config{
		Storage: core.StorageConfig{Provider: "sqlite"},
	}
	assert.ErrorIs(t, missingLLM.Validate(), core.ErrInvalidConfig)

	missingStorage := &core.Config{
		LLM: core.LLMConfig{Provider: "openai"},
	}
	assert.ErrorIs(t, missingStorage.Validate(), core.ErrInvalidConfig)
}

func TestConfigStringRedactsSecrets(t *testing.T) {
	cfg := &core.Config{
		Chat: core.DefaultChatConfig(),
		LLM: core.LLMConfig{
			Provider: "openai",
			APIKey:   "sk-very-secret",
			Model:    "gpt-4o",
		},
		Storage: core.StorageConfig{Provider: "sqlite"},
	}

	s := cfg.String()
	assert.Contains(t, s, "sqlite")
	assert.Contains(t, s, "gpt-4o")
	assert.NotContains(t, s, "sk-very-secret")
}
