package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultMaxFileSize int64 = 2 * 1024 * 1024 * 1024
	defaultPort              = "5000"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App      AppConfig
	Telegram TelegramConfig
	Relay    RelayConfig
	Paths    PathsConfig
}

type AppConfig struct {
	Version   string
	Port      string
	Debug     bool
	BasePath  string
	BasicAuth []string
}

type TelegramConfig struct {
	APIID          int
	APIHash        string
	SessionName    string
	BotToken       string
	BotSessionName string
}

type RelayConfig struct {
	MaxFileSize int64
	// Target is where the bot uploads media: "self", "@username" or a numeric chat id.
	Target            string
	ArtifactMaxAgeMin int
}

type PathsConfig struct {
	Storages string
	Temp     string
}

// Global provides access to the loaded configuration globally
var Global *Config

// LoadConfig loads configuration from environment variables or defaults.
func LoadConfig() (*Config, error) {
	debug := getEnvBool("APP_DEBUG", false)

	var basicAuth []string
	if v := strings.TrimSpace(os.Getenv("APP_BASIC_AUTH")); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	// PORT is read for hosting platforms that inject it; APP_PORT wins when both are set.
	port := getEnv("PORT", defaultPort)
	port = getEnv("APP_PORT", port)

	appCfg := AppConfig{
		Version:   "v1.0.0",
		Port:      port,
		Debug:     debug,
		BasePath:  strings.TrimRight(getEnv("APP_BASE_PATH", ""), "/"),
		BasicAuth: basicAuth,
	}

	tgCfg := TelegramConfig{
		APIID:          getEnvInt("API_ID", 0),
		APIHash:        strings.TrimSpace(getEnv("API_HASH", "")),
		SessionName:    getEnv("SESSION_NAME", "user_session"),
		BotToken:       strings.TrimSpace(getEnv("BOT_TOKEN", "")),
		BotSessionName: getEnv("BOT_SESSION_NAME", "bot"),
	}

	relayCfg := RelayConfig{
		MaxFileSize:       getEnvInt64("MAX_FILE_SIZE", defaultMaxFileSize),
		Target:            getEnv("RELAY_TARGET", "self"),
		ArtifactMaxAgeMin: getEnvInt("ARTIFACT_MAX_AGE_MINUTES", 60),
	}
	if relayCfg.MaxFileSize <= 0 {
		relayCfg.MaxFileSize = defaultMaxFileSize
	}

	pathsCfg := PathsConfig{
		Storages: getEnv("APP_BASE_DIR", "storages"),
		Temp:     getEnv("PATH_TEMP", filepath.Join(os.TempDir(), "telebridge")),
	}

	cfg := &Config{
		App:      appCfg,
		Telegram: tgCfg,
		Relay:    relayCfg,
		Paths:    pathsCfg,
	}

	Global = cfg
	return cfg, nil
}

// Validate reports missing settings that the rest server cannot start without.
func (c *Config) Validate() []string {
	var missing []string
	if c.Telegram.APIID <= 0 {
		missing = append(missing, "API_ID")
	}
	if c.Telegram.APIHash == "" {
		missing = append(missing, "API_HASH")
	}
	if c.Telegram.BotToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	return missing
}
