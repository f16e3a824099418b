package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	Browse  BrowseConfig  `mapstructure:"browse"`
	Library LibraryConfig `mapstructure:"library"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TMDBConfig holds TMDB API connection details
type TMDBConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	ImageBaseURL string        `mapstructure:"image_base_url"`
	Language     string        `mapstructure:"language"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RetryCount   int           `mapstructure:"retry_count"`
}

// BrowseConfig contains paging and prefetch settings
type BrowseConfig struct {
	InitialList       string  `mapstructure:"initial_list"`
	PrefetchThreshold float64 `mapstructure:"prefetch_threshold"`
	MaxPages          int     `mapstructure:"max_pages"`
	Workers           int     `mapstructure:"workers"`
	PosterSize        int     `mapstructure:"poster_size"`
	DetailPosterSize  int     `mapstructure:"detail_poster_size"`
}

// LibraryConfig points at the local movie register
type LibraryConfig struct {
	Path string `mapstructure:"path"`
}

// FilterConfig contains named filter expressions
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
