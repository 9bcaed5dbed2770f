// internal/cli/export.go
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/artcrawl/internal/checkpoint"
	"github.com/law-makers/artcrawl/internal/ui"
	"github.com/law-makers/artcrawl/internal/utils/output"
)

func newExportCmd(e *env) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Convert a results file to CSV or YAML",
		Long: `Reads a results file written by "artcrawl run" and writes it in another format.

CSV output has one row per artwork. List sections are joined with " | " and
every attribute key becomes an "attributes.<key>" column.

The format defaults to the extension of --output, then to CSV.`,
		Example: `  # Spreadsheet-friendly copy of a run
  artcrawl export artworks.json -o artworks.csv

  # YAML on stdout
  artcrawl export artworks.json --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exportFormat(format, out)
			if err != nil {
				return usagef("%v", err)
			}

			records, err := checkpoint.Load(args[0])
			if err != nil {
				return failed(err)
			}

			if out == "" {
				return failed(output.Write(e.stdout, f, records))
			}
			if err := writeFile(out, func(w io.Writer) error { return output.Write(w, f, records) }); err != nil {
				return failed(err)
			}

			log.Debug().Str("file", out).Str("format", string(f)).Int("records", len(records)).Msg("Export written")
			fmt.Fprintf(e.stderr, "%s %d records to %s\n", ui.Success("Exported"), len(records), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: csv, yaml or json")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func exportFormat(flag, out string) (output.Format, error) {
	if flag != "" {
		return output.ParseFormat(flag)
	}
	switch strings.ToLower(filepath.Ext(out)) {
	case ".yaml", ".yml":
		return output.FormatYAML, nil
	case ".json":
		return output.FormatJSON, nil
	}
	return output.FormatCSV, nil
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
