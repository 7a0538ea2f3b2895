package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DinhTQSE/schoolmed-client/internal/config"
)

func TestDefaults(t *testing.T) {
	c := config.New()

	require.Equal(t, "SchoolMed", c.GetAppName())
	require.Equal(t, "http://localhost:8080", c.GetAPIBaseURL())
	require.Equal(t, "30s", c.GetHTTPTimeout())
	require.Equal(t, "DEV", c.GetEnv())
	require.Contains(t, c.GetStateFile(), "session.json")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("APP_NAME", "SchoolMed Staging")
	t.Setenv("SCHOOLMED_API_URL", "https://staging.schoolmed.example")
	t.Setenv("SCHOOLMED_STATE_FILE", "/tmp/schoolmed-test/session.json")
	t.Setenv("SCHOOLMED_HTTP_TIMEOUT", "5s")
	t.Setenv("ENV", "STAGING")

	c := config.New()

	require.Equal(t, "SchoolMed Staging", c.GetAppName())
	require.Equal(t, "https://staging.schoolmed.example", c.GetAPIBaseURL())
	require.Equal(t, "/tmp/schoolmed-test/session.json", c.GetStateFile())
	require.Equal(t, "5s", c.GetHTTPTimeout())
	require.Equal(t, "STAGING", c.GetEnv())
}
