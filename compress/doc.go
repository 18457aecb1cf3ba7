// Package compress provides compression codecs for dataset snapshots.
//
// Compression applies at two levels:
//
//  1. Payload level: the counts block inside a binary snapshot is compressed
//     with the algorithm recorded in the snapshot header. This is the Codec
//     interface (Compress/Decompress over byte slices).
//  2. File level: a whole snapshot or text dump can be wrapped in a
//     streaming compressor chosen by filename suffix (.gz, .zst, .lz4, .s2).
//     This is the WrapWriter/WrapReader pair plus TypeForPath.
//
// # Supported algorithms
//
// **None** (format.CompressionNone) passes data through unchanged. Use when
// the payload is small or CPU matters more than storage.
//
// **Zstandard** (format.CompressionZstd) has the best compression ratio and
// is the recommended default for archived runs:
//
//	codec, _ := compress.GetCodec(format.CompressionZstd)
//	compressed, _ := codec.Compress(payload)
//
// The default build uses the pure-Go implementation; building with the
// "gozstd" tag switches the block codec to the libzstd cgo binding. The
// frames are interchangeable.
//
// **S2** (format.CompressionS2) trades a little ratio for markedly faster
// compression. A good fit for snapshots rewritten frequently while an
// experiment is still collecting data.
//
// **LZ4** (format.CompressionLZ4) decompresses fastest. A good fit for
// working sets reloaded over and over by analysis jobs.
//
// **Gzip** (format.CompressionGzip) exists for interoperability: dataset
// archives conventionally travel as .gz files, and the file-level save and
// load paths honor that suffix transparently.
//
// # Choosing an algorithm
//
// | Workload                   | Recommended |
// |----------------------------|-------------|
// | Archival / cold storage    | Zstd        |
// | Frequent rewrites          | S2          |
// | Read-heavy analysis        | LZ4         |
// | Interop with .gz tooling   | Gzip        |
// | Tiny datasets              | None        |
//
// Count tables compress well: keys share long common prefixes and count
// payloads contain many repeated float patterns, so even LZ4 typically
// reaches 2-4x on realistic tomography data.
//
// # Thread safety
//
// All codecs are safe for concurrent use. Block codecs pool their internal
// encoder and decoder state; stream wrappers are single-use per stream.
package compress
