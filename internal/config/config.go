package config

import "github.com/joho/godotenv"

// Config is the process-wide configuration surface. It is constructed once in
// main and passed explicitly into constructors; nothing reads the environment
// after startup.
type Config interface {
	EnvConfig
	SecurityConfig
	StorageConfig
	LLMConfig
	TrackingConfig
	OidcConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Security
	Storage
	LLM
	Tracking
	Oidc
}

// New loads an optional .env file and returns the env-var backed configuration.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
