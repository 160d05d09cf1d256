package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Host    string
	Port    string
	GinMode string

	// Document parser (LlamaParse)
	ParserAPIKey          string
	ParserBaseURL         string
	ParserPollInterval    time.Duration
	ParserMaxPollAttempts int

	// Vector DB (Qdrant)
	QdrantURL      string
	QdrantAPIKey   string
	CollectionName string

	// Embedding Service (OpenAI compatible)
	EmbeddingAPIKey     string
	EmbeddingBaseURL    string
	EmbeddingModel      string
	EmbeddingDimensions int

	// LLM (Groq, OpenAI compatible)
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	// Retrieval
	ChunkSize    int
	ChunkOverlap int
	TopK         int
}

func Load() *Config {
	return &Config{
		Host:    getEnv("HOST", "0.0.0.0"),
		Port:    getEnv("PORT", "8000"),
		GinMode: getEnv("GIN_MODE", "debug"),

		ParserAPIKey:          getEnv("LLAMA_CLOUD_API_KEY", ""),
		ParserBaseURL:         getEnv("LLAMA_CLOUD_BASE_URL", "https://api.cloud.llamaindex.ai/api/v1"),
		ParserPollInterval:    getEnvDuration("PARSER_POLL_INTERVAL", 2*time.Second),
		ParserMaxPollAttempts: getEnvInt("PARSER_MAX_POLL_ATTEMPTS", 150),

		QdrantURL:      getEnv("QDRANT_URL", ""),
		QdrantAPIKey:   getEnv("QDRANT_API_KEY", ""),
		CollectionName: getEnv("QDRANT_COLLECTION", "study-buddy-collection"),

		EmbeddingAPIKey:     getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingBaseURL:    getEnv("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
		EmbeddingModel:      getEnv("EMBEDDING_MODEL", "BAAI/bge-large-en-v1.5"),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 1024),

		LLMAPIKey:  getEnv("GROQ_API_KEY", ""),
		LLMBaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:   getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),
		TopK:         getEnvInt("SEARCH_TOP_K", 5),
	}
}

// Validate reports missing required credentials. Startup must abort on error;
// a request must never be the first thing to discover a missing key.
func (c *Config) Validate() error {
	var missing []string
	if c.ParserAPIKey == "" {
		missing = append(missing, "LLAMA_CLOUD_API_KEY")
	}
	if c.QdrantURL == "" {
		missing = append(missing, "QDRANT_URL")
	}
	if c.LLMAPIKey == "" {
		missing = append(missing, "GROQ_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", c.EmbeddingDimensions)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
