// Package normalization canonicalizes asset and creator identifiers before
// they reach validation or the monitoring API.
//
// Every function here is best-effort and total: malformed input yields a
// possibly still non-conforming string, and the validation package decides
// whether the result is acceptable.
package normalization

import (
	"regexp"
	"strings"
)

// LegacyAssetPrefix marks identifiers minted by the first dashboard release,
// shaped "story-testnet_<address>_<tokenId>".
const LegacyAssetPrefix = "story-testnet_"

const addressHexLen = 40

var (
	addressPattern = regexp.MustCompile(`^0x[a-f0-9]{40}$`)
	nonHexPattern  = regexp.MustCompile(`[^a-f0-9]`)
)

// NormalizeAssetID rewrites legacy and mixed-case asset identifiers into the
// "<address>:<tokenId>" form with a lower-cased address. Inputs it does not
// recognize are returned unchanged.
func NormalizeAssetID(raw string) string {
	if strings.Contains(raw, "_") && strings.HasPrefix(raw, LegacyAssetPrefix) {
		parts := strings.Split(raw, "_")
		if len(parts) < 3 {
			return raw
		}
		return strings.ToLower(parts[1]) + ":" + parts[2]
	}
	if address, tokenID, ok := strings.Cut(raw, ":"); ok {
		return strings.ToLower(address) + ":" + tokenID
	}
	return raw
}

// NormalizeCreatorID lower-cases a creator wallet address.
func NormalizeCreatorID(raw string) string {
	return strings.ToLower(raw)
}

// CoerceToAddress always returns a "0x" + 40 lowercase hex address. Input
// that is not already one has its non-hex characters stripped and is
// left-padded with zeros (or cut) to 40 hex digits.
func CoerceToAddress(raw string) string {
	addr, _ := CoerceAddress(raw)
	return addr
}

// CoerceAddress is CoerceToAddress that also reports whether the input had to
// be repaired, i.e. the result differs from the lower-cased, 0x-prefixed input.
// Callers that must reject malformed contract addresses check repaired.
func CoerceAddress(raw string) (addr string, repaired bool) {
	s := strings.ToLower(raw)
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	if addressPattern.MatchString(s) {
		return s, false
	}

	digits := nonHexPattern.ReplaceAllString(s[2:], "")
	if len(digits) < addressHexLen {
		digits = strings.Repeat("0", addressHexLen-len(digits)) + digits
	}
	digits = digits[:addressHexLen]
	return "0x" + digits, true
}

// IsCanonicalAddress reports whether s is already "0x" + 40 lowercase hex.
func IsCanonicalAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// ParseInputString trims and lower-cases free-form query input such as
// status filters.
func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
