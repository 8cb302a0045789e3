package normalization

import (
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
)

// SynthesizedHashLen is the length of a content hash accepted downstream.
const SynthesizedHashLen = 64

var hexSeedPattern = regexp.MustCompile(`^[a-fA-F0-9]+$`)

// SynthesizeHash derives a 64 character lowercase hex placeholder for a media
// content hash when no real one exists yet. Hex seeds are used as-is, any
// other seed is hex-encoded from its UTF-8 bytes; the result is zero-padded
// on the right and cut to 64 characters.
//
// index does not enter the transform. Callers vary the seed per media entry,
// normally through SeedFor, to get distinct hashes. The output carries no
// integrity guarantee and must never stand in for a real content hash where
// one is verified.
func SynthesizeHash(seed string, index int) string {
	base := seed
	if !hexSeedPattern.MatchString(seed) {
		base = hex.EncodeToString([]byte(seed))
	}
	if len(base) < SynthesizedHashLen {
		base += strings.Repeat("0", SynthesizedHashLen-len(base))
	}
	return strings.ToLower(base[:SynthesizedHashLen])
}

// SeedFor composes the per-entry seed handed to SynthesizeHash. The index
// leads so that long seeds sharing a prefix still differ inside the first 64
// hex characters.
func SeedFor(seed string, index int) string {
	return strconv.Itoa(index) + "-" + seed
}
