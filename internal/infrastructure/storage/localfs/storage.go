// Package localfs stores synthesized audio artifacts on the local filesystem
// and maps them to the public static path served by the HTTP layer.
package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/clearclause/clearclause/internal/core/domain"
)

const publicPrefix = "/static/audio/"

type AudioStore struct {
	basePath string
}

func New(basePath string) (*AudioStore, error) {
	if basePath == "" {
		basePath = "./data/audio"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	return &AudioStore{basePath: basePath}, nil
}

// BasePath is the directory the static file server mounts.
func (s *AudioStore) BasePath() string {
	return s.basePath
}

// SaveAudio writes data under a unique name and returns its public path.
func (s *AudioStore) SaveAudio(_ context.Context, data []byte, voiceKey string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty audio payload", domain.ErrInvalidInput)
	}

	name := fmt.Sprintf("tts_%s_%s.mp3", uuid.NewString(), sanitizeVoiceKey(voiceKey))
	path := filepath.Join(s.basePath, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write audio file: %w", err)
	}
	return publicPrefix + name, nil
}

func sanitizeVoiceKey(voiceKey string) string {
	voiceKey = strings.ToLower(strings.TrimSpace(voiceKey))
	if voiceKey == "" {
		return "voice"
	}
	var sb strings.Builder
	for _, r := range voiceKey {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "voice"
	}
	return sb.String()
}
