package compress

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/tally/errs"
	"github.com/arloliu/tally/format"
)

// TypeForPath infers a whole-file compression type from a filename suffix.
// Unrecognized suffixes mean an uncompressed file.
func TypeForPath(path string) format.CompressionType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return format.CompressionGzip
	case ".zst", ".zstd":
		return format.CompressionZstd
	case ".lz4":
		return format.CompressionLZ4
	case ".s2":
		return format.CompressionS2
	default:
		return format.CompressionNone
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// WrapWriter wraps w with streaming compression of the given type.
// Closing the returned writer flushes the compressed stream; it never
// closes the underlying writer.
func WrapWriter(w io.Writer, compressionType format.CompressionType) (io.WriteCloser, error) {
	switch compressionType {
	case format.CompressionNone:
		return nopWriteCloser{w}, nil
	case format.CompressionGzip:
		return gzip.NewWriter(w), nil
	case format.CompressionZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd stream writer: %w", err)
		}

		return zw, nil
	case format.CompressionLZ4:
		return lz4.NewWriter(w), nil
	case format.CompressionS2:
		return s2.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: %s (stream writer)", errs.ErrUnsupportedCompression, compressionType)
	}
}

// WrapReader wraps r with streaming decompression of the given type.
// Closing the returned reader releases decoder resources; it never closes
// the underlying reader.
func WrapReader(r io.Reader, compressionType format.CompressionType) (io.ReadCloser, error) {
	switch compressionType {
	case format.CompressionNone:
		return io.NopCloser(r), nil
	case format.CompressionGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip stream reader: %w", err)
		}

		return gr, nil
	case format.CompressionZstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd stream reader: %w", err)
		}

		return zr.IOReadCloser(), nil
	case format.CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case format.CompressionS2:
		return io.NopCloser(s2.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("%w: %s (stream reader)", errs.ErrUnsupportedCompression, compressionType)
	}
}
