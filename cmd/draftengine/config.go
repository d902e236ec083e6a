package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration. Values in the YAML file are the
// defaults; environment variables override them.
type Config struct {
	Port          string `yaml:"port"`
	PoolFile      string `yaml:"pool_file"`
	NATSUrl       string `yaml:"nats_url"`        // empty disables NATS publishing
	DatabaseURL   string `yaml:"database_url"`    // empty disables the Postgres archive
	MockDraftSeed int64  `yaml:"mock_draft_seed"` // 0 means seed from wall clock
	LogLevel      string `yaml:"log_level"`
	PrettyLog     bool   `yaml:"pretty_log"`
}

func defaultConfig() Config {
	return Config{
		Port:     "8080",
		PoolFile: "players.yaml",
		LogLevel: "info",
	}
}

func loadConfig(path string) (Config, error) {
	config := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.Port = getEnv("PORT", config.Port)
	config.PoolFile = getEnv("POOL_FILE", config.PoolFile)
	config.NATSUrl = getEnv("NATS_URL", config.NATSUrl)
	config.DatabaseURL = getEnv("DATABASE_URL", config.DatabaseURL)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)
	config.MockDraftSeed = int64(getEnvAsInt("MOCK_DRAFT_SEED", int(config.MockDraftSeed)))
	config.PrettyLog = getEnvAsBool("PRETTY_LOG", config.PrettyLog)

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
