package cmd

import (
	"fmt"

	cfgpkg "github.com/KaramelBytes/folio-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	initOwner  string
	initRepo   string
	initBranch string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local project store and save publish defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		changed := false
		if initOwner != "" {
			c.GitHubOwner = initOwner
			changed = true
		}
		if initRepo != "" {
			c.GitHubRepo = initRepo
			changed = true
		}
		if initBranch != "" {
			c.GitHubBranch = initBranch
			changed = true
		}
		if changed {
			if err := cfgpkg.Save(c, cfgFile); err != nil {
				return err
			}
		}
		repo, closeFn, err := openRepository(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		out := cmd.OutOrStdout()
		if c.StorageBackend == cfgpkg.BackendRedis {
			fmt.Fprintf(out, "✓ Store ready: redis %s key %s (%d projects)\n", c.RedisAddr, c.RedisKey, len(repo.List()))
		} else {
			fmt.Fprintf(out, "✓ Store ready: %s (%d projects)\n", c.StorePath, len(repo.List()))
		}
		if changed {
			fmt.Fprintf(out, "✓ Publish target saved: %s/%s@%s\n", c.GitHubOwner, c.GitHubRepo, c.GitHubBranch)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initOwner, "owner", "", "GitHub user or organization to publish to")
	initCmd.Flags().StringVar(&initRepo, "repo", "", "GitHub repository to publish to")
	initCmd.Flags().StringVar(&initBranch, "branch", "", "branch to commit to (default main)")
}
