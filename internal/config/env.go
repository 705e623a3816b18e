package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// APIKeys holds all API keys loaded from environment
type APIKeys struct {
	OpenAI string
	Gemini string
}

var envPaths = []string{
	".env",
	".env.local",
	"../.env",
}

// LoadEnv loads the first .env file found and returns its path.
// A missing file is not an error; variables may be set system-wide.
func LoadEnv() (string, error) {
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return "", fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			return envPath, nil
		}
	}
	return "", nil
}

// GetAPIKeys retrieves and validates API keys from environment variables.
// Empty keys are allowed; malformed keys fail immediately.
func GetAPIKeys() (*APIKeys, error) {
	apiKeys := &APIKeys{
		OpenAI: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Gemini: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
	}

	if apiKeys.OpenAI != "" {
		if err := ValidateAPIKey(apiKeys.OpenAI, "OpenAI"); err != nil {
			return nil, fmt.Errorf("invalid OPENAI_API_KEY: %w", err)
		}
	}
	if apiKeys.Gemini != "" {
		if err := ValidateAPIKey(apiKeys.Gemini, "Gemini"); err != nil {
			return nil, fmt.Errorf("invalid GEMINI_API_KEY: %w", err)
		}
	}

	return apiKeys, nil
}

// Available lists the providers with a configured key.
func (k *APIKeys) Available() []string {
	var available []string
	if k.OpenAI != "" {
		available = append(available, "openai")
	}
	if k.Gemini != "" {
		available = append(available, "gemini")
	}
	return available
}

// Config bundles environment keys and file settings.
type Config struct {
	Keys     *APIKeys
	Settings *Settings
	EnvFile  string
}

// InitializeConfig loads .env, API keys and the settings file.
// This is the main entry point for configuration loading
func InitializeConfig(settingsPath string) (*Config, error) {
	envFile, err := LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	keys, err := GetAPIKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to get API keys: %w", err)
	}

	if settingsPath == "" {
		settingsPath = os.Getenv("VCS_CONFIG")
	}
	settings, err := LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	return &Config{Keys: keys, Settings: settings, EnvFile: envFile}, nil
}
