package helpers

import (
	"crypto/sha256"
	"encoding/hex"
)

// shortChecksumLen is the length of the checksum prefix that names inline sources.
const shortChecksumLen = 8

// Checksum returns the hex SHA-256 of a script or module body. Loaded sources and compiled
// executables carry it, so two evaluators built from the same bytes report the same value.
func Checksum(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// ChecksumString is Checksum for script text.
func ChecksumString(script string) string {
	return Checksum([]byte(script))
}

// ShortChecksum returns the leading characters of a checksum for source URLs and logs.
func ShortChecksum(sum string) string {
	if len(sum) <= shortChecksumLen {
		return sum
	}
	return sum[:shortChecksumLen]
}
