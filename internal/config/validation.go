package config

import (
	"fmt"
	"strings"
)

// ValidateAPIKey validates API key format
func ValidateAPIKey(apiKey string, keyType string) error {
	if apiKey == "" {
		return fmt.Errorf("%s API key is required", keyType)
	}

	switch keyType {
	case "OpenAI":
		if !strings.HasPrefix(apiKey, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format: must start with 'sk-'")
		}
		if len(apiKey) < 20 {
			return fmt.Errorf("invalid OpenAI API key format: too short")
		}
	case "Gemini":
		if !strings.HasPrefix(apiKey, "AIza") {
			return fmt.Errorf("invalid Gemini API key format: must start with 'AIza'")
		}
		if len(apiKey) < 30 {
			return fmt.Errorf("invalid Gemini API key format: too short")
		}
	}

	return nil
}

// RequireProviderKey checks that the key needed by an embedding or transcription provider is set.
func RequireProviderKey(keys *APIKeys, provider string) error {
	switch provider {
	case "openai":
		return ValidateAPIKey(keys.OpenAI, "OpenAI")
	case "gemini":
		return ValidateAPIKey(keys.Gemini, "Gemini")
	case "mock":
		return nil
	}
	return fmt.Errorf("unknown provider %q", provider)
}
