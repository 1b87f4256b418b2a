package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/KaramelBytes/folio-cli/internal/project"
	"github.com/KaramelBytes/folio-cli/internal/publish"
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeFn, err := openRepository(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		ps := repo.List()
		out := cmd.OutOrStdout()
		if listJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(ps)
		}
		if len(ps) == 0 {
			fmt.Fprintln(out, "(no projects)")
			return nil
		}
		for _, p := range ps {
			file := "no file"
			if p.HasFile() {
				file = p.Filename
			}
			fmt.Fprintf(out, "- %s: %s [%s] %s\n", p.ID, p.Title, file, p.CreatedAt.Local().Format(time.DateTime))
		}
		fmt.Fprintf(out, "%d project(s)\n", len(ps))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one project",
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
		printProject(cmd, p)
		return nil
	},
}

func printProject(cmd *cobra.Command, p project.Project) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "id:          %s\n", p.ID)
	fmt.Fprintf(out, "title:       %s\n", p.Title)
	if p.Description != "" {
		fmt.Fprintf(out, "description: %s\n", p.Description)
	}
	if p.HasFile() {
		fmt.Fprintf(out, "file:        %s (%d bytes encoded)\n", p.Filename, len(p.FileData))
	}
	fmt.Fprintf(out, "created:     %s\n", p.CreatedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(out, "remote path: %s\n", publish.RemotePath(p))
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print the collection as JSON")
}
