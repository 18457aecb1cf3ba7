package compress

// ZstdCompressor provides Zstandard compression for snapshot payloads.
//
// Zstd gives the best compression ratio of the supported algorithms and is
// the right default for archived tomography runs, where snapshots are
// written once and read rarely.
//
// Two implementations back this type: a pure-Go one (the default) and a
// cgo binding to libzstd selected with the "gozstd" build tag. Both produce
// interchangeable frames.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec with default settings.
//
// Example:
//
//	codec := NewZstdCompressor()
//	compressed, err := codec.Compress(payload)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
