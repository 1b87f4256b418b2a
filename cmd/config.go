package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/folio-cli/internal/config"
	"github.com/KaramelBytes/folio-cli/internal/utils"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set folio configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "storage_backend: %s\n", cfg.StorageBackend)
		if cfg.StorageBackend == cfgpkg.BackendRedis {
			fmt.Fprintf(out, "redis_addr: %s\n", cfg.RedisAddr)
			fmt.Fprintf(out, "redis_db: %d\n", cfg.RedisDB)
			fmt.Fprintf(out, "redis_key: %s\n", cfg.RedisKey)
		} else {
			fmt.Fprintf(out, "store_path: %s\n", cfg.StorePath)
		}
		fmt.Fprintf(out, "github_owner: %s\n", cfg.GitHubOwner)
		fmt.Fprintf(out, "github_repo: %s\n", cfg.GitHubRepo)
		fmt.Fprintf(out, "github_branch: %s\n", cfg.GitHubBranch)
		fmt.Fprintf(out, "github_token: %s\n", mask(cfg.GitHubToken))
		if cfg.GitHubAPIURL != "" {
			fmt.Fprintf(out, "github_api_url: %s\n", cfg.GitHubAPIURL)
		}
		fmt.Fprintf(out, "http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "listen_addr: %s\n", cfg.ListenAddr)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "storage_backend":
			switch val {
			case "file", "File", "FILE":
				cfg.StorageBackend = cfgpkg.BackendFile
			case "redis", "Redis", "REDIS":
				cfg.StorageBackend = cfgpkg.BackendRedis
			default:
				return fmt.Errorf("invalid storage_backend: %s (use file or redis)", val)
			}
		case "store_path":
			p, err := utils.ExpandHome(val)
			if err != nil {
				return err
			}
			cfg.StorePath = p
		case "redis_addr":
			cfg.RedisAddr = val
		case "redis_password":
			cfg.RedisPassword = val
		case "redis_db":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for redis_db: %v", val)
			}
			cfg.RedisDB = i
		case "redis_key":
			cfg.RedisKey = val
		case "github_owner":
			cfg.GitHubOwner = val
		case "github_repo":
			cfg.GitHubRepo = val
		case "github_branch":
			cfg.GitHubBranch = val
		case "github_token":
			cfg.GitHubToken = val
		case "github_api_url":
			cfg.GitHubAPIURL = val
		case "http_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
			}
			cfg.HTTPTimeoutSec = i
		case "log_level":
			cfg.LogLevel = val
		case "log_format":
			cfg.LogFormat = val
		case "listen_addr":
			cfg.ListenAddr = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
