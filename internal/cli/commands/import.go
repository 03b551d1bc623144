package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/drift/internal/catalog"
	"github.com/leapstack-labs/drift/internal/cli/output"
)

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import [dir]",
		Short: "Import asset definitions into the catalog",
		Long: `Load table, segment and card definitions from YAML files into the
catalog. Without arguments the configured assets directory is imported;
pass a directory argument or --file to import something else.

Re-importing is safe: definitions are matched by name and updated in
place.`,
		Example: `  # Import the configured assets directory
  drift import

  # Import one file
  drift import --file assets/segments.yaml

  # Import a different directory
  drift import ./definitions`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args, file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Import a single definitions file")

	return cmd
}

type importedFile struct {
	Path     string `json:"path"`
	Tables   int    `json:"tables"`
	Segments int    `json:"segments"`
	Cards    int    `json:"cards"`
}

type importOutput struct {
	Files    []importedFile `json:"files"`
	Tables   int            `json:"tables"`
	Segments int            `json:"segments"`
	Cards    int            `json:"cards"`
}

func runImport(cmd *cobra.Command, args []string, file string) error {
	cctx, cleanup, err := NewCommandContextWithoutSource(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	paths, err := importPaths(cctx, args, file)
	if err != nil {
		return err
	}

	r := cctx.Renderer
	textMode := r.EffectiveMode() != output.ModeJSON && r.EffectiveMode() != output.ModeMarkdown

	var out importOutput
	var total catalog.ImportStats
	for _, path := range paths {
		stats, err := cctx.Catalog.ImportFile(path)
		if err != nil {
			if textMode {
				r.StatusLine(filepath.Base(path), "failed", "")
			}
			return err
		}
		total.Add(stats)
		out.Files = append(out.Files, importedFile{
			Path:     path,
			Tables:   stats.Tables,
			Segments: stats.Segments,
			Cards:    stats.Cards,
		})
		if textMode {
			r.StatusLine(filepath.Base(path), "success", importDetail(stats))
		}
	}
	out.Tables = total.Tables
	out.Segments = total.Segments
	out.Cards = total.Cards

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		return importMarkdown(r, out)
	default:
		r.Println("")
		r.Success(fmt.Sprintf("Imported %s", importDetail(total)))
		return nil
	}
}

// importPaths resolves the set of definition files to load, in name order.
func importPaths(cctx *CommandContext, args []string, file string) ([]string, error) {
	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("definitions file not found: %s", file)
		}
		return []string{file}, nil
	}

	dir := cctx.Cfg.AssetsDir
	if len(args) > 0 {
		dir = args[0]
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("assets directory not found: %s\nHint: run 'drift init' to scaffold one, or pass --file", dir)
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no definition files in %s", dir)
	}
	return paths, nil
}

func importDetail(stats catalog.ImportStats) string {
	return fmt.Sprintf("%d tables, %d segments, %d cards", stats.Tables, stats.Segments, stats.Cards)
}

func importMarkdown(r *output.Renderer, out importOutput) error {
	r.Println(output.FormatHeader(1, "Import Results"))
	r.Println("")
	r.Println(output.FormatKeyValue("Tables", fmt.Sprintf("%d", out.Tables)))
	r.Println(output.FormatKeyValue("Segments", fmt.Sprintf("%d", out.Segments)))
	r.Println(output.FormatKeyValue("Cards", fmt.Sprintf("%d", out.Cards)))
	r.Println("")
	for _, f := range out.Files {
		r.Printf("- %s\n", f.Path)
	}
	return nil
}
