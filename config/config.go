package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/s0up4200/marquee/catalog"
)

// Load loads the configuration from file. A missing file is not an error
// when the API key is provided through the environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix("MARQUEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".marquee"))
		}

		// Check /etc
		v.AddConfigPath("/etc/marquee/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		if v.GetString("tmdb.api_key") == "" {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Library.Path == "" {
		cfg.Library.Path = defaultLibraryPath()
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func defaultLibraryPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".marquee", "library.db")
	}
	return "library.db"
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// TMDB defaults
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.image_base_url", "https://image.tmdb.org/t/p")
	v.SetDefault("tmdb.language", "en-US")
	v.SetDefault("tmdb.timeout", "10s")
	v.SetDefault("tmdb.retry_count", 2)

	// Browse defaults
	v.SetDefault("browse.initial_list", "popular")
	v.SetDefault("browse.prefetch_threshold", 0.75)
	v.SetDefault("browse.max_pages", 500)
	v.SetDefault("browse.workers", 4)
	v.SetDefault("browse.poster_size", 200)
	v.SetDefault("browse.detail_poster_size", 400)

	v.SetDefault("library.path", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.TMDB.APIKey == "" || cfg.TMDB.APIKey == "your-api-key-here" {
		return fmt.Errorf("tmdb.api_key must be set to a valid API key")
	}

	if cfg.TMDB.Timeout < 0 {
		return fmt.Errorf("tmdb.timeout must not be negative")
	}

	if cfg.TMDB.RetryCount < 0 {
		return fmt.Errorf("tmdb.retry_count must not be negative")
	}

	if _, err := catalog.ParseListKind(cfg.Browse.InitialList); err != nil {
		return fmt.Errorf("invalid browse.initial_list: %w", err)
	}

	if cfg.Browse.PrefetchThreshold <= 0 || cfg.Browse.PrefetchThreshold > 1 {
		return fmt.Errorf("browse.prefetch_threshold must be in (0, 1], got %v", cfg.Browse.PrefetchThreshold)
	}

	if cfg.Browse.MaxPages < 1 {
		return fmt.Errorf("browse.max_pages must be at least 1")
	}

	if cfg.Browse.Workers < 0 {
		return fmt.Errorf("browse.workers must not be negative")
	}

	if cfg.Browse.PosterSize < 0 || cfg.Browse.DetailPosterSize < 0 {
		return fmt.Errorf("browse poster sizes must not be negative")
	}

	for name, expr := range cfg.Filter {
		if strings.TrimSpace(expr) == "" {
			return fmt.Errorf("filter %q has an empty expression", name)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
