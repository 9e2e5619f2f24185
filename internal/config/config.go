package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App     App     `mapstructure:"app"`
	Central Central `mapstructure:"central"`
	Crypto  Crypto  `mapstructure:"crypto"`
	LLM     LLM     `mapstructure:"llm"`
	Search  Search  `mapstructure:"search"`
	Server  Server  `mapstructure:"server"`
	Scan    Scan    `mapstructure:"scan"`
}

// App holds general application configuration.
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// Central holds the coordination database connection.
type Central struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
	Timeout    string `mapstructure:"timeout"`
}

// Crypto holds the process-wide encryption key protecting stored credentials.
type Crypto struct {
	EncryptionKey string `mapstructure:"encryption_key"` // base64, 32 bytes decoded
}

// LLM holds platform-wide fallback provider keys and model knobs.
type LLM struct {
	OpenAI    ProviderConfig `mapstructure:"openai"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
}

// ProviderConfig holds one provider's platform credentials and model.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// Search holds Google Custom Search configuration.
type Search struct {
	APIKey   string `mapstructure:"api_key"`
	SearchID string `mapstructure:"search_id"`
	Timeout  string `mapstructure:"timeout"`
}

// Server holds the HTTP trigger surface configuration.
type Server struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	TickInterval string `mapstructure:"tick_interval"`
}

// Scan holds website-scanner knobs.
type Scan struct {
	HomepageTimeout string `mapstructure:"homepage_timeout"`
	PageTimeout     string `mapstructure:"page_timeout"`
	MaxNavPages     int    `mapstructure:"max_nav_pages"`
}

var globalConfig *Config

// Load loads the configuration from .env, environment variables, and an
// optional config file.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".seoforge")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")

	viper.SetDefault("central.timeout", "15s")

	viper.SetDefault("llm.openai.model", "gpt-4o")
	viper.SetDefault("llm.openai.timeout", "120s")
	viper.SetDefault("llm.anthropic.model", "claude-sonnet-4-20250514")
	viper.SetDefault("llm.anthropic.timeout", "120s")

	viper.SetDefault("search.timeout", "15s")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.tick_interval", "1h")

	viper.SetDefault("scan.homepage_timeout", "10s")
	viper.SetDefault("scan.page_timeout", "6s")
	viper.SetDefault("scan.max_nav_pages", 5)
}

// bindEnvironmentVariables sets up flexible environment variable binding.
func bindEnvironmentVariables() {
	bindEnvKeys("central.url", []string{
		"CENTRAL_SUPABASE_URL",
		"CENTRAL_DB_URL",
	})
	bindEnvKeys("central.service_key", []string{
		"CENTRAL_SUPABASE_SERVICE_KEY",
		"CENTRAL_DB_SERVICE_KEY",
	})
	bindEnvKeys("crypto.encryption_key", []string{
		"ENCRYPTION_KEY",
	})
	bindEnvKeys("llm.openai.api_key", []string{
		"PLATFORM_OPENAI_API_KEY",
		"OPENAI_API_KEY",
	})
	bindEnvKeys("llm.anthropic.api_key", []string{
		"PLATFORM_ANTHROPIC_API_KEY",
		"ANTHROPIC_API_KEY",
	})
	bindEnvKeys("search.api_key", []string{
		"GOOGLE_CUSTOM_SEARCH_API_KEY",
		"GOOGLE_CSE_API_KEY",
		"GOOGLE_SEARCH_API_KEY",
	})
	bindEnvKeys("search.search_id", []string{
		"GOOGLE_CUSTOM_SEARCH_ID",
		"GOOGLE_CSE_ID",
		"GOOGLE_SEARCH_ENGINE_ID",
	})
	bindEnvKeys("server.port", []string{
		"PORT",
	})
	bindEnvKeys("app.debug", []string{
		"DEBUG",
	})
	bindEnvKeys("app.log_level", []string{
		"LOG_LEVEL",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key.
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// validateConfig ensures required configuration is present.
func validateConfig(config *Config) error {
	var errors []string

	if config.Central.URL == "" {
		errors = append(errors, "central store URL is required. Set CENTRAL_SUPABASE_URL")
	}
	if config.Central.ServiceKey == "" {
		errors = append(errors, "central store service key is required. Set CENTRAL_SUPABASE_SERVICE_KEY")
	}
	if config.Crypto.EncryptionKey == "" {
		errors = append(errors, "encryption key is required. Set ENCRYPTION_KEY (base64, 32 bytes)")
	}

	durations := map[string]string{
		"central.timeout":       config.Central.Timeout,
		"llm.openai.timeout":    config.LLM.OpenAI.Timeout,
		"llm.anthropic.timeout": config.LLM.Anthropic.Timeout,
		"search.timeout":        config.Search.Timeout,
		"server.tick_interval":  config.Server.TickInterval,
		"scan.homepage_timeout": config.Scan.HomepageTimeout,
		"scan.page_timeout":     config.Scan.PageTimeout,
	}
	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				errors = append(errors, fmt.Sprintf("invalid duration for %s: %s", key, duration))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// HasGoogleSearch returns true if Google Custom Search is configured.
func HasGoogleSearch() bool {
	c := Get().Search
	return c.APIKey != "" && c.SearchID != ""
}

// Duration parses a configured duration string, falling back when empty or invalid.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Reset clears the global configuration (useful for testing).
func Reset() {
	globalConfig = nil
	viper.Reset()
}
