package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/tally/codec"
	"github.com/arloliu/tally/compress"
	"github.com/arloliu/tally/format"
)

type convertFlags struct {
	to          string
	compression string
	policy      string
	as          string
	bigEndian   bool
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert between the text and binary formats",
		Long: `Convert reads a dataset or group file and rewrites it in the text or
binary format.

The output format follows the output filename: .txt and .text mean text,
.bin and .snap mean binary. A trailing compression suffix (.gz, .zst,
.lz4, .s2) adds whole-file compression on top and is ignored when
resolving the format. Use --to when the extension alone does not settle
it.

Text output always reloads as a frozen dynamic dataset, whatever the
input was. Binary output preserves storage mode and building state.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(rootOpts, flags, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&flags.to, "to", "auto", "output format: auto, text or binary")
	cmd.Flags().StringVarP(&flags.compression, "compression", "c", "none", "binary counts-payload compression: none, zstd, s2, lz4 or gzip")
	cmd.Flags().StringVar(&flags.policy, "policy", "", "collision policy for text input: overwrite or keepseparate")
	cmd.Flags().StringVar(&flags.as, "as", "auto", "read text input as: auto, dataset or group")
	cmd.Flags().BoolVar(&flags.bigEndian, "big-endian", false, "write binary output big-endian")

	return cmd
}

func runConvert(opts *RootOptions, flags *convertFlags, in, out string, cmd *cobra.Command) error {
	forced, err := parseKindOverride(flags.as)
	if err != nil {
		return err
	}

	readOpts := []codec.Option{codec.WithLogger(opts.Logger())}
	if flags.policy != "" {
		policy, err := parsePolicyName(flags.policy)
		if err != nil {
			return err
		}
		readOpts = append(readOpts, codec.WithCollisionPolicy(policy))
	}

	loaded, err := LoadFile(in, forced, readOpts...)
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

	var written codec.Kind
	switch {
	case loaded.Kind.IsGroup() && target == formatText:
		written = codec.KindTextGroup
		err = codec.WriteGroupTextFile(out, loaded.Group, writeOpts...)
	case loaded.Kind.IsGroup():
		written = codec.KindBinaryGroup
		err = codec.WriteGroupBinaryFile(out, loaded.Group, writeOpts...)
	case target == formatText:
		written = codec.KindTextDataSet
		err = codec.WriteTextFile(out, loaded.DataSet, writeOpts...)
	default:
		written = codec.KindBinaryDataSet
		err = codec.WriteBinaryFile(out, loaded.DataSet, writeOpts...)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "converted %s (%s) to %s (%s)\n", in, loaded.Kind, out, written)

	return nil
}

const (
	formatText   = "text"
	formatBinary = "binary"
)

// resolveOutputFormat settles text versus binary output from the --to flag
// and the output filename, with compression suffixes stripped first.
func resolveOutputFormat(to, path string) (string, error) {
	switch to {
	case formatText, formatBinary:
		return to, nil
	case "auto":
	default:
		return "", fmt.Errorf("invalid format %q: must be auto, text or binary", to)
	}

	base := path
	if compress.TypeForPath(base) != format.CompressionNone {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}

	switch strings.ToLower(filepath.Ext(base)) {
	case ".txt", ".text":
		return formatText, nil
	case ".bin", ".snap":
		return formatBinary, nil
	default:
		return "", fmt.Errorf("cannot infer the output format from %q: pass --to text or --to binary", path)
	}
}

// buildWriteOptions assembles the codec options for the write half of a
// command. Compression and endianness only apply to binary output.
func buildWriteOptions(opts *RootOptions, target, compression string, bigEndian bool) ([]codec.Option, error) {
	writeOpts := []codec.Option{codec.WithLogger(opts.Logger())}
	if target != formatBinary {
		return writeOpts, nil
	}

	compressionType, err := parseCompressionName(compression)
	if err != nil {
		return nil, err
	}
	writeOpts = append(writeOpts, codec.WithCompression(compressionType))

	if bigEndian {
		writeOpts = append(writeOpts, codec.WithBigEndian())
	}

	return writeOpts, nil
}

func parseCompressionName(name string) (format.CompressionType, error) {
	switch strings.ToLower(name) {
	case "none":
		return format.CompressionNone, nil
	case "zstd":
		return format.CompressionZstd, nil
	case "s2":
		return format.CompressionS2, nil
	case "lz4":
		return format.CompressionLZ4, nil
	case "gzip":
		return format.CompressionGzip, nil
	default:
		return 0, fmt.Errorf("invalid compression %q: must be none, zstd, s2, lz4 or gzip", name)
	}
}

func parsePolicyName(name string) (format.CollisionPolicy, error) {
	switch strings.ToLower(name) {
	case "overwrite":
		return format.CollisionOverwrite, nil
	case "keepseparate":
		return format.CollisionKeepSeparate, nil
	default:
		return 0, fmt.Errorf("invalid policy %q: must be overwrite or keepseparate", name)
	}
}
