package ai

import (
	"os"
	"strings"
)

// Conventional key variables used when auth_env_var is not configured.
const (
	envOpenAIKey    = "OPENAI_API_KEY"
	envAnthropicKey = "ANTHROPIC_API_KEY"
	envGeminiKey    = "GEMINI_API_KEY"
)

func resolveAuth(primary string, fallback string) string {
	if primary != "" {
		if value := os.Getenv(primary); value != "" {
			return value
		}
	}
	if fallback == "" {
		return ""
	}
	return os.Getenv(fallback)
}

// AuthEnvVar names the variable that holds the key for a hosted backend.
func AuthEnvVar(backend, configured string) string {
	if configured != "" {
		return configured
	}
	switch backend {
	case "openai":
		return envOpenAIKey
	case "anthropic":
		return envAnthropicKey
	case "gemini":
		return envGeminiKey
	default:
		return ""
	}
}

func valueOrDefault(value string, def string) string {
	if value == "" {
		return def
	}
	return value
}

func withTrailingSlash(url string) string {
	if url == "" || strings.HasSuffix(url, "/") {
		return url
	}
	return url + "/"
}
