package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	APIPort  string
	LogLevel string

	GeminiBaseURL string
	GeminiAPIKey  string
	GeminiModel   string

	HFBaseURL    string
	HFToken      string
	HFNERModel   string
	HFLabelModel string

	SpeechEndpoint string
	SpeechOrigin   string
	AudioPath      string

	ChunkSize         int
	ClassifyChunkSize int

	ExecMaxConcurrent    int
	ExecPacingInterval   time.Duration
	ExecJitterMin        time.Duration
	ExecJitterMax        time.Duration
	ExecMaxAttempts      int
	ExecQuotaBackoffStep time.Duration
	ExecBreakerEnabled   bool

	SimplifyBatchSize        int
	SimplifyBatchMaxChars    int
	SimplifyCircuitThreshold int

	SpeechMaxTextLen       int
	SpeechMaxAttempts      int
	SpeechRetryDelay       time.Duration
	SpeechInterClauseDelay time.Duration
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		GeminiBaseURL: mustEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiAPIKey:  mustEnv("GEMINI_API_KEY", ""),
		GeminiModel:   mustEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		HFBaseURL:    mustEnv("HF_BASE_URL", "https://api-inference.huggingface.co"),
		HFToken:      mustEnv("HF_TOKEN", ""),
		HFNERModel:   mustEnv("HF_NER_MODEL", "dslim/bert-base-NER"),
		HFLabelModel: mustEnv("HF_LABEL_MODEL", "google/flan-t5-base"),

		SpeechEndpoint: mustEnv("SPEECH_ENDPOINT", "wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"),
		SpeechOrigin:   mustEnv("SPEECH_ORIGIN", "chrome-extension://jdiccldimpdaibmpdkjnbmckianbfold"),
		AudioPath:      mustEnv("AUDIO_PATH", "./data/audio"),

		ChunkSize:         mustEnvInt("CHUNK_SIZE", 3000),
		ClassifyChunkSize: mustEnvInt("CLASSIFY_CHUNK_SIZE", 4000),

		ExecMaxConcurrent:    mustEnvInt("EXEC_MAX_CONCURRENT", 5),
		ExecPacingInterval:   mustEnvDuration("EXEC_PACING_INTERVAL", 500*time.Millisecond),
		ExecJitterMin:        mustEnvDuration("EXEC_JITTER_MIN", 100*time.Millisecond),
		ExecJitterMax:        mustEnvDuration("EXEC_JITTER_MAX", 500*time.Millisecond),
		ExecMaxAttempts:      mustEnvInt("EXEC_MAX_ATTEMPTS", 3),
		ExecQuotaBackoffStep: mustEnvDuration("EXEC_QUOTA_BACKOFF_STEP", 4*time.Second),
		ExecBreakerEnabled:   mustEnvBool("EXEC_BREAKER_ENABLED", false),

		SimplifyBatchSize:        mustEnvInt("SIMPLIFY_BATCH_SIZE", 48),
		SimplifyBatchMaxChars:    mustEnvInt("SIMPLIFY_BATCH_MAX_CHARS", 9000),
		SimplifyCircuitThreshold: mustEnvInt("SIMPLIFY_CIRCUIT_THRESHOLD", 1),

		SpeechMaxTextLen:       mustEnvInt("SPEECH_MAX_TEXT_LEN", 3000),
		SpeechMaxAttempts:      mustEnvInt("SPEECH_MAX_ATTEMPTS", 3),
		SpeechRetryDelay:       mustEnvDuration("SPEECH_RETRY_DELAY", time.Second),
		SpeechInterClauseDelay: mustEnvDuration("SPEECH_INTER_CLAUSE_DELAY", 500*time.Millisecond),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
