package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"pyro/logger"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(c)
}

// LoadConfig loads the configuration from the config.toml file and all service configs.
// It returns a pointer to the Config struct or an error if loading fails.
func LoadConfig() (*Config, error) {
	var config Config
	configPath := "config.toml"

	// Check if main config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	// Get absolute path for better error messages
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		absPath = configPath // fallback to relative path
	}

	_, err = toml.DecodeFile(configPath, &config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", absPath, err)
	}

	// Load service-specific configs
	if err := loadServiceConfigs(&config); err != nil {
		return nil, fmt.Errorf("error loading service configs: %w", err)
	}

	applyEnvOverrides(&config)
	applyDefaults(&config)

	// Validate the configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// loadServiceConfigs loads all individual service configuration files
func loadServiceConfigs(config *Config) error {
	serviceConfigs := map[string]interface{}{
		"settings/comfyui.toml": &config.ComfyUi,
		"settings/ollama.toml":  &config.Ollama,
		"settings/gemini.toml":  &config.Gemini,
		"settings/local.toml":   &config.Local,
		"settings/logging.toml": &config.Logging,
	}

	for configPath, configStruct := range serviceConfigs {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			// This is not a fatal error, just a warning
			continue
		}

		_, err := toml.DecodeFile(configPath, configStruct)
		if err != nil {
			return fmt.Errorf("error parsing service config file %s: %w", configPath, err)
		}
	}

	return nil
}

// applyEnvOverrides lets .env / environment values win over the toml files
// for secrets and machine-local paths.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Gemini.ApiKey = v
	}
	if v := os.Getenv("PYRO_VARS_DIR"); v != "" {
		config.Pyro.VarsDir = v
	}
	if v := os.Getenv("PYRO_OUTPUT_DIR"); v != "" {
		config.Pyro.OutputDir = v
	}
	if v := os.Getenv("PYRO_HISTORY_DB"); v != "" {
		config.Pyro.HistoryDb = v
	}
}

func applyDefaults(config *Config) {
	if config.Pyro.HistoryDb == "" {
		config.Pyro.HistoryDb = "pyro.db"
	}
	if config.Pyro.TextBackend == "" {
		config.Pyro.TextBackend = "ollama"
	}
	if config.Pyro.ImageBackend == "" {
		config.Pyro.ImageBackend = "comfyui"
	}
	if config.Local.Steps == 0 {
		config.Local.Steps = 9
	}
	if config.Gemini.Model == "" {
		config.Gemini.Model = "gemini-2.5-flash-lite-preview-06-17"
	}
	if config.Logging.Level == "" {
		config.Logging.Level = logger.LevelInfo
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}
}
