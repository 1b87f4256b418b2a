package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/folio-cli/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Global configuration structure.
type Global struct {
	// Local project store
	StorageBackend string `mapstructure:"storage_backend" yaml:"storage_backend"`
	StorePath      string `mapstructure:"store_path" yaml:"store_path"`
	RedisAddr      string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword  string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB        int    `mapstructure:"redis_db" yaml:"redis_db"`
	RedisKey       string `mapstructure:"redis_key" yaml:"redis_key"`

	// Publishing
	GitHubOwner  string `mapstructure:"github_owner" yaml:"github_owner"`
	GitHubRepo   string `mapstructure:"github_repo" yaml:"github_repo"`
	GitHubBranch string `mapstructure:"github_branch" yaml:"github_branch"`
	GitHubToken  string `mapstructure:"github_token" yaml:"github_token"`
	GitHubAPIURL string `mapstructure:"github_api_url" yaml:"github_api_url"`

	HTTPTimeoutSec int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.folio/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := utils.AppDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (FOLIO_*, including a local .env) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FOLIO")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("storage_backend", BackendFile)
	v.SetDefault("store_path", "")
	v.SetDefault("redis_addr", "127.0.0.1:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_key", "folio:projects:v1")
	v.SetDefault("github_owner", "")
	v.SetDefault("github_repo", "")
	v.SetDefault("github_branch", "main")
	v.SetDefault("github_token", "")
	v.SetDefault("github_api_url", "https://api.github.com")
	v.SetDefault("http_timeout_sec", 30)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("listen_addr", "127.0.0.1:8080")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := utils.AppDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	// Resolve store_path default: ~/.folio/projects.json
	if c.StorePath == "" {
		dir, err := utils.AppDir()
		if err != nil {
			return nil, err
		}
		c.StorePath = filepath.Join(dir, "projects.json")
	} else {
		p, err := utils.ExpandHome(c.StorePath)
		if err != nil {
			return nil, err
		}
		c.StorePath = p
	}
	return &c, nil
}

// Validate rejects settings no command could work with.
func (c *Global) Validate() error {
	switch c.StorageBackend {
	case BackendFile, BackendRedis:
	default:
		return fmt.Errorf("invalid storage_backend: %s (use file or redis)", c.StorageBackend)
	}
	if c.StorageBackend == BackendRedis && c.RedisAddr == "" {
		return fmt.Errorf("redis_addr is required for the redis backend")
	}
	if c.HTTPTimeoutSec < 0 {
		return fmt.Errorf("http_timeout_sec must not be negative")
	}
	return nil
}
