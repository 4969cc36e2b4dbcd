package secrets

import (
	"os"
	"strings"

	"github.com/jask/gemq/internal/config"
)

// KeySource yields the API key for the current request, or "" if unavailable.
// The orchestrator takes one of these rather than reading the environment
// directly so tests can substitute a fake.
type KeySource func() string

// Resolver builds the standard key resolution chain: the env var named by
// config, then the per-user key store, then the plain-text config fallback.
func Resolver(cfg config.Config) KeySource {
	return func() string {
		env := strings.TrimSpace(cfg.API.APIKeyEnv)
		if env == "" {
			env = "GEMINI_API_KEY"
		}
		if v := os.Getenv(env); v != "" {
			return v
		}
		if k, err := FetchAPIKey(); err == nil && k != "" {
			return k
		}
		return strings.TrimSpace(cfg.API.APIKey)
	}
}

// Static returns a KeySource that always yields key. Used in tests.
func Static(key string) KeySource {
	return func() string { return key }
}
