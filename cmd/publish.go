package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/folio-cli/internal/publish"
	"github.com/spf13/cobra"
)

var (
	pubOwner  string
	pubRepo   string
	pubBranch string
	pubToken  string
)

var publishCmd = &cobra.Command{
	Use:   "publish <id>",
	Short: "Publish one project to GitHub under _projects/",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		repo, closeFn, err := openRepository(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		p, ok := repo.Get(args[0])
		if !ok {
			return fmt.Errorf("project %s not found", args[0])
		}
		target := publish.Target{
			Owner:  firstSet(pubOwner, c.GitHubOwner),
			Repo:   firstSet(pubRepo, c.GitHubRepo),
			Branch: firstSet(pubBranch, c.GitHubBranch),
		}
		if debug {
			fmt.Fprintf(cmd.ErrOrStderr(), "Publishing %s to %s/%s@%s\n", publish.RemotePath(p), target.Owner, target.Repo, target.Branch)
		}
		res, err := newPublisher(c).Publish(cmd.Context(), p, target, resolveToken(pubToken, c))
		status := publish.StatusMessage(res, err)
		if err != nil {
			return errors.New(status)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", status)
		return nil
	},
}

func firstSet(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().StringVar(&pubOwner, "owner", "", "GitHub user or organization (overrides config)")
	publishCmd.Flags().StringVar(&pubRepo, "repo", "", "GitHub repository (overrides config)")
	publishCmd.Flags().StringVar(&pubBranch, "branch", "", "target branch (overrides config)")
	publishCmd.Flags().StringVar(&pubToken, "token", "", "personal access token (overrides config and $GITHUB_TOKEN)")
}
