package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/folio-cli/internal/dataurl"
	"github.com/KaramelBytes/folio-cli/internal/project"
	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write a project's attached file back to disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeFn, err := openRepository(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		p, ok := repo.Get(args[0])
		if !ok {
			return fmt.Errorf("project %s not found", args[0])
		}
		if !p.HasFile() {
			return fmt.Errorf("project %s has no file to export", p.ID)
		}
		_, data, err := dataurl.Decode(p.FileData)
		if err != nil {
			return fmt.Errorf("decode file: %w", err)
		}
		dest := exportOut
		if dest == "" {
			dest = exportName(p)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("write file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %s (%d bytes)\n", dest, len(data))
		return nil
	},
}

// exportName picks the default output file: the stored filename, else the
// title, else the id.
func exportName(p project.Project) string {
	for _, name := range []string{p.Filename, p.Title} {
		base := filepath.Base(strings.TrimSpace(name))
		switch base {
		case "", ".", "..", string(filepath.Separator):
			continue
		}
		return base
	}
	return p.ID
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path (default: the stored filename)")
}
