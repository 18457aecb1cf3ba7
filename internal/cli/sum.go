package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/tally/codec"
)

type sumFlags struct {
	members     []string
	to          string
	compression string
	bigEndian   bool
}

// NewSumCommand creates the sum command.
func NewSumCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &sumFlags{}

	cmd := &cobra.Command{
		Use:   "sum <group-file> <out>",
		Short: "Sum group members into a single dataset file",
		Long: `Sum loads a dataset group, adds the selected members' counts key by
key, and writes the result as a single static dataset.

With no --member flag every member contributes. The output format
follows the output filename the same way convert resolves it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSum(rootOpts, flags, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringSliceVarP(&flags.members, "member", "m", nil, "member to include, repeatable (default all)")
	cmd.Flags().StringVar(&flags.to, "to", "auto", "output format: auto, text or binary")
	cmd.Flags().StringVarP(&flags.compression, "compression", "c", "none", "binary counts-payload compression: none, zstd, s2, lz4 or gzip")
	cmd.Flags().BoolVar(&flags.bigEndian, "big-endian", false, "write binary output big-endian")

	return cmd
}

func runSum(opts *RootOptions, flags *sumFlags, in, out string, cmd *cobra.Command) error {
	// Text input is read as a group outright; a file that only holds a
	// single dataset has nothing to sum.
	loaded, err := LoadFile(in, codec.KindTextGroup, codec.WithLogger(opts.Logger()))
	if err != nil {
		return err
	}
	if !loaded.Kind.IsGroup() {
		return fmt.Errorf("%s holds a single dataset, not a group", in)
	}

	summed, err := loaded.Group.Sum(flags.members...)
	if err != nil {
		return err
	}

	target, err := resolveOutputFormat(flags.to, out)
	if err != nil {
		return err
	}

	writeOpts, err := buildWriteOptions(opts, target, flags.compression, flags.bigEndian)
	if err != nil {
		return err
	}

	if target == formatText {
		err = codec.WriteTextFile(out, summed, writeOpts...)
	} else {
		err = codec.WriteBinaryFile(out, summed, writeOpts...)
	}
	if err != nil {
		return err
	}

	contributed := len(flags.members)
	if contributed == 0 {
		contributed = loaded.Group.Len()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "summed %d member(s) of %s into %s\n", contributed, in, out)

	return nil
}
