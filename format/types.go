package format

type (
	CollisionPolicy uint8
	StorageMode     uint8
	CompressionType uint8
	ColumnKind      uint8
)

const (
	// CollisionOverwrite replaces the existing row when a key is inserted again.
	CollisionOverwrite CollisionPolicy = 0x1
	// CollisionKeepSeparate tags repeated insertions with occurrence labels
	// (#1, #2, ...) so every insertion stays retrievable.
	CollisionKeepSeparate CollisionPolicy = 0x2

	StorageDynamic StorageMode = 0x1 // StorageDynamic represents growable per-row storage.
	StorageStatic  StorageMode = 0x2 // StorageStatic represents a fixed flat count array.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
	CompressionGzip CompressionType = 0x5 // CompressionGzip represents gzip compression.

	ColumnCount     ColumnKind = 0x1 // ColumnCount holds a raw outcome count.
	ColumnFrequency ColumnKind = 0x2 // ColumnFrequency holds count / total.
	ColumnTotal     ColumnKind = 0x3 // ColumnTotal holds the row total count.
)

func (p CollisionPolicy) String() string {
	switch p {
	case CollisionOverwrite:
		return "Overwrite"
	case CollisionKeepSeparate:
		return "KeepSeparate"
	default:
		return "Unknown"
	}
}

// Valid reports whether p is a recognized collision policy value.
func (p CollisionPolicy) Valid() bool {
	return p == CollisionOverwrite || p == CollisionKeepSeparate
}

func (m StorageMode) String() string {
	switch m {
	case StorageDynamic:
		return "Dynamic"
	case StorageStatic:
		return "Static"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionGzip:
		return "Gzip"
	default:
		return "Unknown"
	}
}

func (k ColumnKind) String() string {
	switch k {
	case ColumnCount:
		return "Count"
	case ColumnFrequency:
		return "Frequency"
	case ColumnTotal:
		return "Total"
	default:
		return "Unknown"
	}
}
