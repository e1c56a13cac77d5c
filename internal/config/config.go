package config

import (
	"errors"
	"fmt"

	"image-extractor/internal/types"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load builds the configuration from defaults, an optional config.yaml and the
// environment. A .env file in the working directory is loaded first when present.
func Load() (*types.Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := types.DefaultConfig()
	config.Port = v.GetString("port")
	config.LogLevel = v.GetString("log_level")
	config.BrowserPath = v.GetString("browser_path")
	config.Headless = v.GetBool("headless")
	config.NavigationTimeout = v.GetDuration("navigation_timeout")
	config.SettleDelay = v.GetDuration("settle_delay")
	config.APITimeout = v.GetDuration("api_timeout")
	config.APIRateLimit = v.GetFloat64("api_rate_limit")
	config.MaxTabs = v.GetInt("max_tabs")
	config.UserAgent = v.GetString("user_agent")

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults mirrors types.DefaultConfig so every key is known to viper
func setDefaults(v *viper.Viper) {
	defaults := types.DefaultConfig()

	v.SetDefault("port", defaults.Port)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("browser_path", "")
	v.SetDefault("headless", defaults.Headless)
	v.SetDefault("navigation_timeout", defaults.NavigationTimeout)
	v.SetDefault("settle_delay", defaults.SettleDelay)
	v.SetDefault("api_timeout", defaults.APITimeout)
	v.SetDefault("api_rate_limit", defaults.APIRateLimit)
	v.SetDefault("max_tabs", defaults.MaxTabs)
	v.SetDefault("user_agent", defaults.UserAgent)
}

func validate(config *types.Config) error {
	if config.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if config.NavigationTimeout <= 0 {
		return fmt.Errorf("NAVIGATION_TIMEOUT must be positive, got %v", config.NavigationTimeout)
	}
	if config.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got %v", config.APITimeout)
	}
	if config.SettleDelay < 0 {
		return fmt.Errorf("SETTLE_DELAY must not be negative, got %v", config.SettleDelay)
	}
	if config.MaxTabs < 1 {
		return fmt.Errorf("MAX_TABS must be at least 1, got %d", config.MaxTabs)
	}
	if config.APIRateLimit < 0 {
		return fmt.Errorf("API_RATE_LIMIT must not be negative, got %v", config.APIRateLimit)
	}
	return nil
}
