package cmd

import (
	"fmt"

	"github.com/KaramelBytes/folio-cli/internal/project"
	"github.com/spf13/cobra"
)

var (
	addDesc string
	addFile string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a project to the local store",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := project.NewProject{Description: addDesc}
		if len(args) == 1 {
			in.Title = args[0]
		}
		if addFile != "" {
			in.File = project.FileAttachment(addFile)
		}
		repo, closeFn, err := openRepository(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		p, err := repo.Create(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Project saved locally: %s (%s)\n", p.Title, p.ID)
		fmt.Fprintln(cmd.OutOrStdout(), "  Run `folio publish "+p.ID+"` to push it to GitHub.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addDesc, "desc", "d", "", "project description")
	addCmd.Flags().StringVarP(&addFile, "file", "f", "", "file to attach")
}
