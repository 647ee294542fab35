package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by CONSILIUM_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("CONSILIUM_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func CerebrasAPIKey() string {
	return os.Getenv("CEREBRAS_API_KEY")
}

// LLMProvider returns the configured LLM provider.
// Defaults to "openai" if not set.
// Valid values: openai, anthropic, gemini, cerebras, mock
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

// LLMAPIKey returns the API key for the configured LLM provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "gemini":
		return GeminiAPIKey()
	case "cerebras":
		return CerebrasAPIKey()
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// EmbeddingProvider returns the configured embedding provider.
// Defaults to "openai" if not set.
// Valid values: openai, mock
func EmbeddingProvider() string {
	p := os.Getenv("EMBEDDING_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

// EmbeddingAPIKey returns the API key for the configured embedding provider.
func EmbeddingAPIKey() string {
	switch EmbeddingProvider() {
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// AgentProvider returns the configured agent transport.
// Defaults to "http" if not set.
// Valid values: http, mock
func AgentProvider() string {
	p := os.Getenv("AGENT_PROVIDER")
	if p == "" {
		return "http"
	}
	return p
}

// CacheSimilarityThreshold is the minimum cosine similarity for a cache
// lookup to count as a hit. Defaults to 0.95: strict enough that only
// true paraphrases reuse a result.
func CacheSimilarityThreshold() float64 {
	v, err := strconv.ParseFloat(os.Getenv("CACHE_SIMILARITY_THRESHOLD"), 64)
	if err != nil || v <= 0 || v > 1 {
		return 0.95
	}
	return v
}

// CacheMetric returns the vector similarity metric for cache lookups.
// Defaults to "cosine". Valid values: cosine, dot
func CacheMetric() string {
	m := os.Getenv("CACHE_METRIC")
	if m != "cosine" && m != "dot" {
		return "cosine"
	}
	return m
}

// CacheTTL is how long a cache entry stays eligible for lookup.
// Defaults to 24h.
func CacheTTL() time.Duration {
	d, err := time.ParseDuration(os.Getenv("CACHE_TTL"))
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// CacheExpiryInterval is how often expired cache entries are swept.
// Defaults to 1h.
func CacheExpiryInterval() time.Duration {
	d, err := time.ParseDuration(os.Getenv("CACHE_EXPIRY_INTERVAL"))
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// QueryTimeout bounds one research query end to end, agent calls included.
// Defaults to 120s.
func QueryTimeout() time.Duration {
	d, err := time.ParseDuration(os.Getenv("QUERY_TIMEOUT"))
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// AgentTimeout bounds a single agent invocation. Defaults to 60s.
func AgentTimeout() time.Duration {
	d, err := time.ParseDuration(os.Getenv("AGENT_TIMEOUT"))
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// TopicSimilarityThreshold is the minimum embedding similarity for two
// claims to count as same-topic during validation. Defaults to 0.80.
func TopicSimilarityThreshold() float64 {
	v, err := strconv.ParseFloat(os.Getenv("TOPIC_SIMILARITY_THRESHOLD"), 64)
	if err != nil || v <= 0 || v > 1 {
		return 0.80
	}
	return v
}

// AgentPriority returns the tie-break priority per capability, parsed from
// AGENT_PRIORITY in "academic=3,web=2,multimodal=1" form. Higher wins.
// Unparseable or missing entries keep their defaults.
func AgentPriority() map[string]int {
	priorities := map[string]int{
		"academic":   3,
		"web":        2,
		"multimodal": 1,
	}

	raw := os.Getenv("AGENT_PRIORITY")
	if raw == "" {
		return priorities
	}

	for _, part := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			continue
		}
		priorities[strings.TrimSpace(k)] = n
	}
	return priorities
}

// MaxConcurrentSubtasks caps how many subtasks of one query run at once.
// Defaults to 4.
func MaxConcurrentSubtasks() int {
	n, err := strconv.Atoi(os.Getenv("MAX_CONCURRENT_SUBTASKS"))
	if err != nil || n <= 0 {
		return 4
	}
	return n
}

// WebAgentURL is the tool server endpoint for the web research agent.
func WebAgentURL() string {
	u := os.Getenv("WEB_AGENT_URL")
	if u == "" {
		return "http://localhost:8000/agents/web"
	}
	return u
}

// AcademicAgentURL is the tool server endpoint for the academic research agent.
func AcademicAgentURL() string {
	u := os.Getenv("ACADEMIC_AGENT_URL")
	if u == "" {
		return "http://localhost:8000/agents/academic"
	}
	return u
}

// MediaAgentURL is the tool server endpoint for the multimodal research agent.
func MediaAgentURL() string {
	u := os.Getenv("MEDIA_AGENT_URL")
	if u == "" {
		return "http://localhost:8000/agents/multimodal"
	}
	return u
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}

// APIKey returns the static API key for the /v1 routes.
// When empty, authentication is disabled.
func APIKey() string {
	return os.Getenv("API_KEY")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
