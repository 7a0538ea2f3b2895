package config

import (
	"os"
	"path/filepath"
)

const (
	appNameVar     = "APP_NAME"
	apiBaseURLVar  = "SCHOOLMED_API_URL"
	stateFileVar   = "SCHOOLMED_STATE_FILE"
	httpTimeoutVar = "SCHOOLMED_HTTP_TIMEOUT"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "SchoolMed")
}

func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8080")
}

// GetStateFile returns the credential file path, defaulting to a dotfile in
// the user's home directory.
func (EnvVars) GetStateFile() string {
	if v := os.Getenv(stateFileVar); v != "" {
		return v
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".schoolmed", "session.json")
	}
	return filepath.Join(home, ".schoolmed", "session.json")
}

func (EnvVars) GetHTTPTimeout() string {
	return GetEnv(httpTimeoutVar, "30s")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
