package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var docGenerators = map[string]func(root *cobra.Command, dir string) error{
	"markdown": doc.GenMarkdownTree,
	"rest":     doc.GenReSTTree,
	"yaml":     doc.GenYamlTree,
	"man": func(root *cobra.Command, dir string) error {
		return doc.GenManTree(root, &doc.GenManHeader{Title: "BIOMATRIX", Section: "1", Source: "biomatrix"}, dir)
	},
}

func NewGenDocsCommand() *cobra.Command {
	var (
		outDir string
		format string
	)

	cmd := &cobra.Command{
		Use:   "gendocs",
		Short: "Write reference pages for the biomatrix command tree",
		Long: `Write one reference page per biomatrix command, covering the query,
export, http and system trees with their flags and examples.

Pages go to ./docs/cli unless --outdir is set. --format picks markdown
(default), rest, yaml or man.`,
		Example: `  biomatrix system gendocs
  biomatrix system gendocs --format man --outdir /usr/local/share/man/man1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, ok := docGenerators[format]
			if !ok {
				return fmt.Errorf("unknown docs format %q (want markdown, rest, yaml or man)", format)
			}

			dir, err := filepath.Abs(outDir)
			if err != nil {
				return fmt.Errorf("resolve %q: %w", outDir, err)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create docs directory %q: %w", dir, err)
			}

			root := cmd.Root()
			root.DisableAutoGenTag = true
			if err := gen(root, dir); err != nil {
				return fmt.Errorf("generate %s docs: %w", format, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s docs written to %s\n", format, dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "outdir", "docs/cli", "Directory the pages are written to")
	cmd.Flags().StringVar(&format, "format", "markdown", "Page format: markdown, rest, yaml or man")

	return cmd
}
