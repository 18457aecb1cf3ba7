package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/tally/codec"
	"github.com/arloliu/tally/dataset"
	"github.com/arloliu/tally/format"
	"github.com/arloliu/tally/section"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	var asKind string

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize a dataset or group file",
		Long: `Inspect reads a measurement-count file of any kind and prints what it
holds: format, storage mode, collision policy, outcome schema, key count
and count totals. For binary snapshots it also reports the format version
and how well the counts payload compressed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forced, err := parseKindOverride(asKind)
			if err != nil {
				return err
			}

			return runInspect(rootOpts, args[0], forced, cmd)
		},
	}

	cmd.Flags().StringVar(&asKind, "as", "auto", "read text input as: auto, dataset or group")

	return cmd
}

func runInspect(opts *RootOptions, path string, forced codec.Kind, cmd *cobra.Command) error {
	loaded, err := LoadFile(path, forced, codec.WithLogger(opts.Logger()))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-12s%s (%d bytes)\n", "file:", path, loaded.Size)
	fmt.Fprintf(out, "%-12s%s", "kind:", loaded.Kind)
	if loaded.Version > 0 {
		fmt.Fprintf(out, " (v%d)", loaded.Version)
	}
	fmt.Fprintln(out)

	if loaded.Kind.IsGroup() {
		printGroup(out, loaded.Group)
	} else {
		printDataSet(out, loaded.DataSet)
	}

	if loaded.Version == section.SnapshotVersion2 {
		stats := loaded.Payload
		fmt.Fprintf(out, "%-12s%s, %d of %d bytes (%.1f%% saved)\n", "payload:",
			stats.Algorithm, stats.CompressedSize, stats.OriginalSize, stats.SpaceSavings())
	}

	return nil
}

func printDataSet(out io.Writer, ds *dataset.DataSet) {
	mode := strings.ToLower(ds.Mode().String())
	if ds.IsFrozen() {
		mode += ", frozen"
	} else {
		mode += ", building"
	}
	fmt.Fprintf(out, "%-12s%s\n", "mode:", mode)
	fmt.Fprintf(out, "%-12s%s\n", "policy:", ds.CollisionPolicy())
	fmt.Fprintf(out, "%-12s%s\n", "outcomes:", strings.Join(ds.Outcomes(), ", "))
	if cols := ds.Columns(); cols != nil {
		fmt.Fprintf(out, "%-12s%s\n", "columns:", joinColumns(cols))
	}

	keys := fmt.Sprintf("%d", ds.Len())
	bases := make(map[string]struct{}, ds.Len())
	for _, key := range ds.KeyList(true) {
		bases[key.Canon()] = struct{}{}
	}
	if len(bases) != ds.Len() {
		keys = fmt.Sprintf("%d (%d distinct)", ds.Len(), len(bases))
	}
	fmt.Fprintf(out, "%-12s%s\n", "keys:", keys)

	if ops := ds.OperationLabels(); len(ops) > 0 {
		fmt.Fprintf(out, "%-12s%s\n", "operations:", strings.Join(ops, ", "))
	}
	fmt.Fprintf(out, "%-12s%s\n", "total:", formatCount(datasetTotal(ds)))
}

func printGroup(out io.Writer, group *dataset.Group) {
	fmt.Fprintf(out, "%-12s%s\n", "members:", strings.Join(group.Names(), ", "))
	fmt.Fprintf(out, "%-12s%s\n", "outcomes:", strings.Join(group.Outcomes(), ", "))
	fmt.Fprintf(out, "%-12s%d\n", "keys:", len(group.Keys()))

	var total float64
	for member := range group.Members() {
		total += datasetTotal(member)
	}
	fmt.Fprintf(out, "%-12s%s\n", "total:", formatCount(total))
}

func datasetTotal(ds *dataset.DataSet) float64 {
	var total float64
	for row := range ds.Rows() {
		total += row.Total()
	}

	return total
}

func joinColumns(cols []format.Column) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = col.String()
	}

	return strings.Join(parts, ", ")
}

// formatCount renders a count the way the text codec does: integral values
// without a decimal point, everything else in shortest form.
func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
