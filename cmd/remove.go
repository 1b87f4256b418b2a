package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/folio-cli/internal/project"
	"github.com/spf13/cobra"
)

var removeYes bool

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm", "delete"},
	Short:   "Delete a project from the local store (published copies stay)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeFn, err := openRepository(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		id := args[0]
		confirm := project.Confirmer(project.Confirmed)
		if !removeYes {
			confirm = promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout(), repo)
		}
		removed, err := repo.Delete(cmd.Context(), id, confirm)
		if errors.Is(err, project.ErrDeleteDeclined) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled; nothing deleted.")
			return nil
		}
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintf(cmd.OutOrStdout(), "No project with id %s; nothing to delete.\n", id)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s locally\n", id)
		return nil
	},
}

// promptConfirm asks on out and reads a y/N answer from in.
func promptConfirm(in io.Reader, out io.Writer, repo *project.Repository) project.Confirmer {
	return func(id string) bool {
		label := id
		if p, ok := repo.Get(id); ok {
			label = fmt.Sprintf("%q (%s)", p.Title, id)
		}
		fmt.Fprintf(out, "Delete project %s from the local store only? [y/N]: ", label)
		answer, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && answer == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

func init() {
	rootCmd.AddCommand(removeCmd)
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "skip the confirmation prompt")
}
