// internal/cli/sites.go
package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/law-makers/artcrawl/internal/adapter"
)

func newSitesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List the available site adapters",
		Long:  `Lists the built-in site adapters and those loaded from the adapter files named in the configuration.`,
		Example: `  # Show every adapter
  artcrawl sites

  # Include adapters defined in local files
  ARTCRAWL_ADAPTERS=rijks.yaml artcrawl sites`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := application(cmd)
			if err != nil {
				return err
			}
			renderSites(e.stdout, a.Registry.All())
			return nil
		},
	}
}

// newTable returns a table writer in the CLI's common style
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func renderSites(w io.Writer, adapters []*adapter.Adapter) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Site", "Mode", "Workers", "Start URL", "Description"})
	for _, a := range adapters {
		workers := "sequential"
		if !a.Sequential() {
			workers = fmt.Sprintf("%d", a.Workers)
		}
		t.AppendRow(table.Row{a.Name, a.Mode, workers, a.StartURL, a.Description})
	}
	t.AppendFooter(table.Row{"Total", len(adapters)})
	t.Render()
}
