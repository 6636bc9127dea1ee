// Package selection picks which bank asset and which caption candidate a
// render uses, and enforces the never-repeat guarantee per (user, account)
// through content fingerprints.
package selection

import (
	"crypto/md5"
	"encoding/hex"

	"reelsmith/internal/types"
)

// Fingerprint derives the stable identifier for a bank asset. Strong
// content hashes from storage metadata win; otherwise the storage path is
// hashed. Path fingerprints still catch exact re-selection, they just miss
// byte-identical copies stored under different keys.
func Fingerprint(asset types.Asset) string {
	if asset.MD5 != "" {
		return "md5:" + asset.MD5
	}
	if asset.CRC32C != "" {
		return "crc32c:" + asset.CRC32C
	}
	sum := md5.Sum([]byte(asset.Key))
	return "path:" + hex.EncodeToString(sum[:])
}
