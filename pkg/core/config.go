// Package core provides the shared domain types, configuration, and error
// taxonomy for the coachmem conversational memory engine.
package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Default values for the recognized chat options.
const (
	DefaultChatTimeout              = 30 * time.Second
	DefaultMaxMessageLength         = 4000
	DefaultMaxConversationHistory   = 15
	DefaultMaxMemoryInteractions    = 50
	DefaultMeaningfulChatThreshold  = 7
	DefaultProfileUpdateDays        = 30
	DefaultMinInsightConfidence     = 0.70
	DefaultModelContextWindowTokens = 128000
	DefaultReservedResponseTokens   = 2000
)

// Config contains the complete configuration for the coachmem service.
//
// It is constructed once at process start and passed down to every
// component; nothing reads environment variables ad hoc at request time.
//
// Example:
//
//	config := &core.Config{
//	    Chat: core.DefaultChatConfig(),
//	    LLM: core.LLMConfig{
//	        Provider: "openai",
//	        APIKey:   "sk-...",
//	        Model:    "gpt-4o",
//	    },
//	    Storage: core.StorageConfig{
//	        Provider: "sqlite",
//	        Config: map[string]interface{}{
//	            "db_path": "./coachmem.db",
//	        },
//	    },
//	}
type Config struct {
	// Chat contains the chat pipeline options.
	Chat ChatConfig `json:"chat"`

	// LLM contains completion provider configuration.
	LLM LLMConfig `json:"llm"`

	// Storage contains persistence backend configuration.
	Storage StorageConfig `json:"storage"`
}

// ChatConfig contains the tunable options of the chat pipeline.
//
// Every option has a spec-level default; zero values are replaced by
// defaults in Normalize.
type ChatConfig struct {
	// Timeout is the hard deadline for a single completion call.
	Timeout time.Duration `json:"timeout"`

	// MaxMessageLength is the maximum accepted user message length in
	// characters. Longer messages are rejected, not truncated.
	MaxMessageLength int `json:"max_message_length"`

	// MaxConversationHistory is how many caller-supplied history entries
	// are considered per turn (most recent first).
	MaxConversationHistory int `json:"max_conversation_history"`

	// MaxMemoryInteractions caps the per-user interaction log.
	MaxMemoryInteractions int `json:"max_memory_interactions"`

	// MeaningfulChatThreshold is how many meaningful chats trigger a
	// profile update.
	MeaningfulChatThreshold int `json:"meaningful_chat_threshold"`

	// ProfileUpdateDays is the elapsed-time trigger for profile updates.
	ProfileUpdateDays int `json:"profile_update_days"`

	// MinInsightConfidence is the confidence gate for pending insights.
	MinInsightConfidence float64 `json:"min_insight_confidence"`

	// ModelContextWindowTokens is the model's context window size.
	ModelContextWindowTokens int `json:"model_context_window_tokens"`

	// ReservedResponseTokens is the context slice reserved for the response.
	ReservedResponseTokens int `json:"reserved_response_tokens"`
}

// LLMConfig contains configuration for the completion provider.
//
// Any OpenAI-compatible endpoint is supported via BaseURL.
type LLMConfig struct {
	// Provider is the completion provider name (currently "openai").
	Provider string `json:"provider"`

	// APIKey is the API key for the provider.
	APIKey string `json:"api_key"`

	// Model is the model name to use (e.g., "gpt-4o").
	Model string `json:"model"`

	// BaseURL is the base URL for the API (optional, uses provider default if empty).
	BaseURL string `json:"base_url,omitempty"`
}

// StorageConfig contains configuration for the persistence backend.
//
// Supported providers: sqlite, postgres, mysql
type StorageConfig struct {
	// Provider is the persistence backend name (sqlite, postgres, mysql).
	Provider string `json:"provider"`

	// Config contains provider-specific configuration.
	// For SQLite: db_path
	// For PostgreSQL: host, port, user, password, db_name, ssl_mode
	// For MySQL: host, port, user, password, db_name
	Config map[string]interface{} `json:"config"`
}

// DefaultChatConfig returns a ChatConfig populated with the default values.
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		Timeout:                  DefaultChatTimeout,
		MaxMessageLength:         DefaultMaxMessageLength,
		MaxConversationHistory:   DefaultMaxConversationHistory,
		MaxMemoryInteractions:    DefaultMaxMemoryInteractions,
		MeaningfulChatThreshold:  DefaultMeaningfulChatThreshold,
		ProfileUpdateDays:        DefaultProfileUpdateDays,
		MinInsightConfidence:     DefaultMinInsightConfidence,
		ModelContextWindowTokens: DefaultModelContextWindowTokens,
		ReservedResponseTokens:   DefaultReservedResponseTokens,
	}
}

// Normalize replaces zero-valued chat options with their defaults.
func (c *ChatConfig) Normalize() {
	def := DefaultChatConfig()
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.MaxMessageLength <= 0 {
		c.MaxMessageLength = def.MaxMessageLength
	}
	if c.MaxConversationHistory <= 0 {
		c.MaxConversationHistory = def.MaxConversationHistory
	}
	if c.MaxMemoryInteractions <= 0 {
		c.MaxMemoryInteractions = def.MaxMemoryInteractions
	}
	if c.MeaningfulChatThreshold <= 0 {
		c.MeaningfulChatThreshold = def.MeaningfulChatThreshold
	}
	if c.ProfileUpdateDays <= 0 {
		c.ProfileUpdateDays = def.ProfileUpdateDays
	}
	if c.MinInsightConfidence <= 0 {
		c.MinInsightConfidence = def.MinInsightConfidence
	}
	if c.ModelContextWindowTokens <= 0 {
		c.ModelContextWindowTokens = def.ModelContextWindowTokens
	}
	if c.ReservedResponseTokens <= 0 {
		c.ReservedResponseTokens = def.ReservedResponseTokens
	}
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for .env or .env.example files (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - CHAT_TIMEOUT_MS, MAX_MESSAGE_LENGTH, MAX_CONVERSATION_HISTORY,
//     MAX_MEMORY_INTERACTIONS, MEANINGFUL_CHAT_THRESHOLD,
//     PROFILE_UPDATE_DAYS, MIN_INSIGHT_CONFIDENCE,
//     MODEL_CONTEXT_WINDOW_TOKENS, RESERVED_RESPONSE_TOKENS
//   - LLM_PROVIDER, LLM_API_KEY, LLM_MODEL, LLM_BASE_URL
//   - DATABASE_PROVIDER (sqlite, postgres, mysql)
//   - SQLITE_PATH
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD,
//     POSTGRES_DATABASE, POSTGRES_SSLMODE
//   - MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASSWORD, MYSQL_DATABASE
//
// Returns a Config instance, or an error if loading fails.
func LoadConfigFromEnv() (*Config, error) {
	envPath, found := FindEnvFile()
	if found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	chat := DefaultChatConfig()
	if ms := getEnvInt("CHAT_TIMEOUT_MS", 0); ms > 0 {
		chat.Timeout = time.Duration(ms) * time.Millisecond
	}
	chat.MaxMessageLength = getEnvInt("MAX_MESSAGE_LENGTH", chat.MaxMessageLength)
	chat.MaxConversationHistory = getEnvInt("MAX_CONVERSATION_HISTORY", chat.MaxConversationHistory)
	chat.MaxMemoryInteractions = getEnvInt("MAX_MEMORY_INTERACTIONS", chat.MaxMemoryInteractions)
	chat.MeaningfulChatThreshold = getEnvInt("MEANINGFUL_CHAT_THRESHOLD", chat.MeaningfulChatThreshold)
	chat.ProfileUpdateDays = getEnvInt("PROFILE_UPDATE_DAYS", chat.ProfileUpdateDays)
	chat.MinInsightConfidence = getEnvFloat("MIN_INSIGHT_CONFIDENCE", chat.MinInsightConfidence)
	chat.ModelContextWindowTokens = getEnvInt("MODEL_CONTEXT_WINDOW_TOKENS", chat.ModelContextWindowTokens)
	chat.ReservedResponseTokens = getEnvInt("RESERVED_RESPONSE_TOKENS", chat.ReservedResponseTokens)

	provider := getEnvOrDefault("DATABASE_PROVIDER", "sqlite")
	storageConfig := make(map[string]interface{})

	switch provider {
	case "postgres":
		port, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))
		storageConfig = map[string]interface{}{
			"host":     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			"port":     port,
			"user":     getEnvOrDefault("POSTGRES_USER", "postgres"),
			"password": os.Getenv("POSTGRES_PASSWORD"),
			"db_name":  getEnvOrDefault("POSTGRES_DATABASE", "coachmem"),
			"ssl_mode": getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	case "mysql":
		port, _ := strconv.Atoi(getEnvOrDefault("MYSQL_PORT", "3306"))
		storageConfig = map[string]interface{}{
			"host":     getEnvOrDefault("MYSQL_HOST", "127.0.0.1"),
			"port":     port,
			"user":     getEnvOrDefault("MYSQL_USER", "root"),
			"password": os.Getenv("MYSQL_PASSWORD"),
			"db_name":  getEnvOrDefault("MYSQL_DATABASE", "coachmem"),
		}
	default:
		storageConfig = map[string]interface{}{
			"db_path": getEnvOrDefault("SQLITE_PATH", "./coachmem.db"),
		}
	}

	config := &Config{
		Chat: chat,
		LLM: LLMConfig{
			Provider: getEnvOrDefault("LLM_PROVIDER", "openai"),
			APIKey:   os.Getenv("LLM_API_KEY"),
			Model:    getEnvOrDefault("LLM_MODEL", "gpt-4o"),
			BaseURL:  os.Getenv("LLM_BASE_URL"),
		},
		Storage: StorageConfig{
			Provider: provider,
			Config:   storageConfig,
		},
	}

	return config, nil
}

// LoadConfigFromJSON loads configuration from a JSON file.
//
// Parameters:
//   - path: Path to the JSON configuration file
//
// Returns a Config instance, or an error if loading or parsing fails.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewCoachError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewCoachError("LoadConfigFromJSON", err)
	}
	config.Chat.Normalize()

	return &config, nil
}

// Validate validates the configuration.
//
// Checks that all required fields are set:
//   - LLM provider must be specified
//   - Storage provider must be specified
//
// Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if c.LLM.Provider == "" {
		return NewCoachError("Validate", ErrInvalidConfig)
	}
	if c.Storage.Provider == "" {
		return NewCoachError("Validate", ErrInvalidConfig)
	}
	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable or returns the default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// FindEnvFile searches for .env or .env.example files.
//
// The search:
//  1. Checks the current directory
//  2. Searches up to 5 directory levels up
//  3. Returns the first .env or .env.example file found
//
// Returns:
//   - path: Path to the found file (empty if not found)
//   - found: True if a file was found, false otherwise
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}

// String returns a redacted, human-readable summary of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("coachmem config: storage=%s llm=%s/%s timeout=%s",
		c.Storage.Provider, c.LLM.Provider, c.LLM.Model, c.Chat.Timeout)
}
