package config

import (
	"github.com/jinzhu/configor"
)

// Config - Application configuration
type Config struct {
	Server struct {
		Addr    string `yaml:"addr" default:":8080" env:"SERVER_ADDR"`
		Timeout int    `yaml:"timeout" default:"60" env:"SERVER_TIMEOUT"` // Per-request timeout in seconds
	} `yaml:"server"`

	Fetch struct {
		Timeout         int    `yaml:"timeout" default:"10" env:"FETCH_TIMEOUT"` // Timeout in seconds
		UserAgent       string `yaml:"user_agent" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36" env:"FETCH_USER_AGENT"`
		FollowRedirects bool   `yaml:"follow_redirects" default:"true" env:"FETCH_FOLLOW_REDIRECTS"`
		MaxBodyBytes    int64  `yaml:"max_body_bytes" default:"2097152" env:"FETCH_MAX_BODY_BYTES"`
	} `yaml:"fetch"`

	Batch struct {
		MaxURLs    int `yaml:"max_urls" default:"50" env:"BATCH_MAX_URLS"`       // Maximum URLs accepted per request
		PageSize   int `yaml:"page_size" default:"5" env:"BATCH_PAGE_SIZE"`      // URLs processed per paged-mode call
		MaxWorkers int `yaml:"max_workers" default:"8" env:"BATCH_MAX_WORKERS"`  // Concurrent fetches per request
	} `yaml:"batch"`

	Quota struct {
		FreeDailyLimit int `yaml:"free_daily_limit" default:"10" env:"QUOTA_FREE_DAILY_LIMIT"`
	} `yaml:"quota"`

	Log struct {
		Level string `yaml:"level" default:"info" env:"LOG_LEVEL"`
	} `yaml:"log"`
}

// LoadConfig - Load configuration file
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	loader := configor.New(&configor.Config{
		Debug:      false,
		Verbose:    false,
		Silent:     true,
		AutoReload: false,
	})
	var err error
	if path == "" {
		err = loader.Load(cfg)
	} else {
		err = loader.Load(cfg, path)
	}
	return cfg, err
}
