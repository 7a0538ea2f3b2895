package config

type Config interface {
	EnvConfig
}

type EnvConfig interface {
	GetAppName() string
	GetAPIBaseURL() string
	GetStateFile() string
	GetHTTPTimeout() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
