// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file holds one secret: the filename is the key name and the trimmed
// file contents are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/talent-engine/internal/logger"
)

// Key files read by the talent engine.
const (
	AnthropicAPIKey = "anthropic-api-key"
	GeminiAPIKey    = "gemini-api-key"
	LightRAGAPIKey  = "lightrag-api-key"
	UnidocAPIKey    = "unidoc-api-key"
)

// envNames maps key files to the environment variables that may supply
// them instead.
var envNames = map[string]string{
	AnthropicAPIKey: "ANTHROPIC_API_KEY",
	GeminiAPIKey:    "GEMINI_API_KEY",
	LightRAGAPIKey:  "LIGHTRAG_API_KEY",
	UnidocAPIKey:    "UNIDOC_LICENSE_API_KEY",
}

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads all files in dir. A missing directory is not an error; Load
// returns an empty map. Unreadable files are logged and skipped.
func Load(dir string, log *zap.Logger) (Secrets, error) {
	log = logger.OrNop(log)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("key", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Get returns the first non-empty of explicit, the key file value, and the
// key's environment variable.
func (s Secrets) Get(key, explicit string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	if v, ok := s[key]; ok {
		return v
	}
	if env, ok := envNames[key]; ok {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}
