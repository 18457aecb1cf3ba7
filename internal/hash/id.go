// Package hash computes the xxHash64 fingerprints used to verify key and
// outcome tables in binary snapshots.
package hash

import "github.com/cespare/xxhash/v2"

// Fingerprint computes the xxHash64 of a canonical key string.
func Fingerprint(canon string) uint64 {
	return xxhash.Sum64String(canon)
}

// FingerprintBytes computes the xxHash64 of a raw byte payload.
func FingerprintBytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}
