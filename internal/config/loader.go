package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"milestones/pkg/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/milestones"
	configFileName = "config.yaml"
)

// Environment variables that override values from config.yaml.
const (
	EnvStoreDriver = "MILESTONES_STORE"
	EnvStorePath   = "MILESTONES_STORE_PATH"
	EnvPostgresDSN = "MILESTONES_PG_DSN"
	EnvLogLevel    = "MILESTONES_LOG_LEVEL"
	EnvMaxDeps     = "MILESTONES_MAX_DEPENDENCIES"
)

// osUserHomeDir is a variable so tests can point it at a temp directory.
var osUserHomeDir = os.UserHomeDir

// GetDefaultConfigPath returns ~/.config/milestones.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads configuration from a single directory. The directory may
// contain config.yaml and a .env file; both are optional. Values are applied
// in order: defaults, config.yaml, environment (including .env).
func LoadConfig(configPath string) (Config, error) {
	config := GetDefaultConfig()

	configFilePath := filepath.Join(configPath, configFileName)
	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return Config{}, &ConfigurationError{
			FilePath:  configFilePath,
			ErrorType: "io",
			Message:   err.Error(),
		}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, &ConfigurationError{
				FilePath:    configFilePath,
				ErrorType:   "parse",
				Message:     err.Error(),
				Suggestions: []string{"Check the YAML syntax of " + configFileName},
			}
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	// A missing .env is normal; godotenv never overrides variables that are
	// already set in the process environment.
	envFile := filepath.Join(configPath, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("ConfigLoader", "Ignoring unreadable env file %s: %v", envFile, err)
	}
	if err := applyEnv(&config); err != nil {
		return Config{}, err
	}

	if config.Store.Driver == StoreDriverFile && config.Store.Path == "" {
		config.Store.Path = filepath.Join(configPath, DefaultProjectsFile)
	}

	if errs := Validate(config); errs.HasErrors() {
		return Config{}, errs
	}
	return config, nil
}

func applyEnv(config *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvStoreDriver)); v != "" {
		config.Store.Driver = StoreDriver(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorePath)); v != "" {
		config.Store.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPostgresDSN)); v != "" {
		config.Store.DSN = v
		if os.Getenv(EnvStoreDriver) == "" {
			config.Store.Driver = StoreDriverPostgres
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		config.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMaxDeps)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigurationError{
				FilePath:  EnvMaxDeps,
				ErrorType: "env",
				Message:   fmt.Sprintf("not an integer: %q", v),
			}
		}
		config.Limits.MaxDependencies = n
	}
	return nil
}
