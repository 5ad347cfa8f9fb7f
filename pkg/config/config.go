// Package config loads companion configuration from the environment, with
// an optional YAML profile overriding the auto-approval policy knobs.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/quietdesk/companion/pkg/policy"
)

// Config holds orchestrator and executor configuration.
type Config struct {
	// LLM provider selection; empty disables the LLM entirely.
	LLMProvider      string
	OllamaBaseURL    string
	OllamaModel      string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	AnthropicModel   string
	// Requests per minute across all LLM calls; 0 disables limiting.
	LLMRatePerMinute int

	// Shared HMAC secret. Held in memory only; never written to queues or
	// the ledger. Empty disables auto-approval and aborts executor startup.
	ExecSecret string

	AutoApprove          bool
	AutoApprovePolicy    string
	SelfEmail            string
	AutoApproveTTLS      int
	EventWindowDays      int
	EventMaxDurationMin  int
	EventStartHour       int
	EventEndHour         int
	AutoCalendarID       string

	ForumEnabled         bool
	ForumBaseURL         string
	ForumCredentialsPath string
	ForumFeedSort        string
	ForumFeedLimit       int
}

func getBool(name string, def bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func getInt(name string, def int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func getStr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// Load reads configuration from environment variables, applying defaults.
func Load() *Config {
	return &Config{
		LLMProvider:      strings.ToLower(strings.TrimSpace(os.Getenv("COMPANION_LLM_PROVIDER"))),
		OllamaBaseURL:    getStr("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:      getStr("OLLAMA_MODEL", "llama3.1"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    getStr("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIModel:      getStr("OPENAI_MODEL", "gpt-4.1-mini"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicBaseURL: getStr("ANTHROPIC_API_BASE_URL", "https://api.anthropic.com"),
		AnthropicModel:   getStr("ANTHROPIC_MODEL", "claude-3-5-sonnet-latest"),
		LLMRatePerMinute: getInt("COMPANION_LLM_RATE_PER_MIN", 60),

		ExecSecret: os.Getenv("COMPANION_EXEC_SECRET"),

		AutoApprove:         getBool("COMPANION_AUTO_APPROVE", false),
		AutoApprovePolicy:   strings.ToLower(strings.TrimSpace(getStr("COMPANION_AUTO_APPROVE_POLICY", "conservative"))),
		SelfEmail:           strings.TrimSpace(os.Getenv("COMPANION_SELF_EMAIL")),
		AutoApproveTTLS:     getInt("COMPANION_AUTO_APPROVE_TTL_S", 600),
		EventWindowDays:     getInt("COMPANION_AUTO_APPROVE_EVENT_WINDOW_DAYS", 7),
		EventMaxDurationMin: getInt("COMPANION_AUTO_APPROVE_EVENT_MAX_DURATION_MIN", 120),
		EventStartHour:      getInt("COMPANION_AUTO_APPROVE_EVENT_START_HOUR", 8),
		EventEndHour:        getInt("COMPANION_AUTO_APPROVE_EVENT_END_HOUR", 20),
		AutoCalendarID:      getStr("COMPANION_AUTO_APPROVE_CALENDAR_ID", "primary"),

		ForumEnabled:         getBool("FORUM_ENABLED", false),
		ForumBaseURL:         getStr("FORUM_BASE_URL", "https://moltbook.com"),
		ForumCredentialsPath: getStr("FORUM_CREDENTIALS_PATH", "~/.config/moltbook/credentials.json"),
		ForumFeedSort:        getStr("FORUM_FEED_SORT", "hot"),
		ForumFeedLimit:       getInt("FORUM_FEED_LIMIT", 10),
	}
}

// SecretBytes returns the HMAC key, or nil when unset.
func (c *Config) SecretBytes() []byte {
	if c.ExecSecret == "" {
		return nil
	}
	return []byte(c.ExecSecret)
}

// PolicyConfig projects the auto-approval knobs for the policy predicates.
func (c *Config) PolicyConfig() policy.Config {
	return policy.Config{
		Policy:              c.AutoApprovePolicy,
		SelfEmail:           c.SelfEmail,
		AutoCalendarID:      c.AutoCalendarID,
		EventWindowDays:     c.EventWindowDays,
		EventMaxDurationMin: c.EventMaxDurationMin,
		EventStartHour:      c.EventStartHour,
		EventEndHour:        c.EventEndHour,
	}
}
