package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "")
	t.Setenv("EXEC_MAX_CONCURRENT", "")
	t.Setenv("EXEC_PACING_INTERVAL", "")
	t.Setenv("SIMPLIFY_BATCH_SIZE", "")
	t.Setenv("SPEECH_MAX_TEXT_LEN", "")

	cfg := Load()
	if cfg.ChunkSize != 3000 {
		t.Fatalf("expected default chunk size 3000, got %d", cfg.ChunkSize)
	}
	if cfg.ExecMaxConcurrent != 5 {
		t.Fatalf("expected default concurrency 5, got %d", cfg.ExecMaxConcurrent)
	}
	if cfg.ExecPacingInterval != 500*time.Millisecond {
		t.Fatalf("expected default pacing 500ms, got %v", cfg.ExecPacingInterval)
	}
	if cfg.SimplifyBatchSize != 48 {
		t.Fatalf("expected default batch size 48, got %d", cfg.SimplifyBatchSize)
	}
	if cfg.SpeechMaxTextLen != 3000 {
		t.Fatalf("expected default speech text limit 3000, got %d", cfg.SpeechMaxTextLen)
	}
	if cfg.SimplifyCircuitThreshold != 1 {
		t.Fatalf("expected default circuit threshold 1, got %d", cfg.SimplifyCircuitThreshold)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "1500")
	t.Setenv("EXEC_MAX_CONCURRENT", "2")
	t.Setenv("EXEC_QUOTA_BACKOFF_STEP", "2s")
	t.Setenv("EXEC_BREAKER_ENABLED", "true")
	t.Setenv("SPEECH_RETRY_DELAY", "250ms")

	cfg := Load()
	if cfg.ChunkSize != 1500 {
		t.Fatalf("expected chunk size override, got %d", cfg.ChunkSize)
	}
	if cfg.ExecMaxConcurrent != 2 {
		t.Fatalf("expected concurrency override, got %d", cfg.ExecMaxConcurrent)
	}
	if cfg.ExecQuotaBackoffStep != 2*time.Second {
		t.Fatalf("expected backoff override, got %v", cfg.ExecQuotaBackoffStep)
	}
	if !cfg.ExecBreakerEnabled {
		t.Fatalf("expected breaker enabled")
	}
	if cfg.SpeechRetryDelay != 250*time.Millisecond {
		t.Fatalf("expected retry delay override, got %v", cfg.SpeechRetryDelay)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")
	t.Setenv("EXEC_PACING_INTERVAL", "soon")
	t.Setenv("EXEC_BREAKER_ENABLED", "maybe")

	cfg := Load()
	if cfg.ChunkSize != 3000 {
		t.Fatalf("expected fallback for malformed int, got %d", cfg.ChunkSize)
	}
	if cfg.ExecPacingInterval != 500*time.Millisecond {
		t.Fatalf("expected fallback for malformed duration, got %v", cfg.ExecPacingInterval)
	}
	if cfg.ExecBreakerEnabled {
		t.Fatalf("expected fallback for malformed bool")
	}
}
