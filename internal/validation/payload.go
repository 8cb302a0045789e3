package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	AssetIDPattern     = `^0x[a-f0-9]{40}(:[0-9]+)?$`
	CreatorIDPattern   = `^0x[a-f0-9]{40}$`
	ContentHashPattern = `^[a-f0-9]{64}$`
)

var (
	assetIDRe     = regexp.MustCompile(AssetIDPattern)
	creatorIDRe   = regexp.MustCompile(CreatorIDPattern)
	contentHashRe = regexp.MustCompile(ContentHashPattern)
)

// Accepted spellings per field; the dashboard posts camelCase, the
// monitoring API uses snake_case.
var (
	keyID        = []string{"id"}
	keyCreatorID = []string{"creator_id", "creatorId"}
	keyMedia     = []string{"media"}
	keyMediaID   = []string{"media_id", "mediaId"}
	keyHash      = []string{"hash", "contentHash", "content_hash"}
)

// ValidateRegistrationPayload checks a decoded JSON payload and returns the
// violations in rule order: id, creator_id, media, then each media entry.
// An empty result means the payload is acceptable. The payload is never
// modified.
func ValidateRegistrationPayload(payload map[string]any) []Violation {
	violations := []Violation{}

	if v := checkAssetID(lookup(payload, keyID)); v != nil {
		violations = append(violations, *v)
	}
	if v := checkCreatorID(lookup(payload, keyCreatorID)); v != nil {
		violations = append(violations, *v)
	}

	entries, ok := asSlice(lookup(payload, keyMedia))
	if !ok {
		return append(violations, Violation{Field: "media", Message: MsgShouldBeArray})
	}
	for i, raw := range entries {
		entry, _ := asMap(raw)
		violations = append(violations, checkMediaEntry(i, entry)...)
	}
	return violations
}

// IsValidAssetID applies the id rule on its own.
func IsValidAssetID(s string) bool {
	return assetIDRe.MatchString(strings.ToLower(s))
}

// IsValidCreatorID applies the creator_id rule on its own.
func IsValidCreatorID(s string) bool {
	return creatorIDRe.MatchString(strings.ToLower(s))
}

func checkAssetID(raw any) *Violation {
	s, ok := raw.(string)
	if !ok {
		return &Violation{Field: "id", Message: MsgFieldRequired, ObservedValue: observed(raw)}
	}
	if !IsValidAssetID(s) {
		return &Violation{Field: "id", Message: patternMessage(AssetIDPattern), ObservedValue: s}
	}
	return nil
}

func checkCreatorID(raw any) *Violation {
	s, ok := raw.(string)
	if !ok || s == "" {
		return &Violation{Field: "creator_id", Message: MsgFieldRequired, ObservedValue: observed(raw)}
	}
	if !IsValidCreatorID(s) {
		return &Violation{Field: "creator_id", Message: patternMessage(CreatorIDPattern), ObservedValue: s}
	}
	return nil
}

func checkMediaEntry(i int, entry map[string]any) []Violation {
	var out []Violation
	prefix := fmt.Sprintf("media.%d.", i)

	if id, _ := lookup(entry, keyMediaID).(string); strings.TrimSpace(id) == "" {
		out = append(out, Violation{Field: prefix + "media_id", Message: MsgFieldRequired})
	}

	hashRaw := lookup(entry, keyHash)
	if hash, _ := hashRaw.(string); !contentHashRe.MatchString(hash) {
		out = append(out, Violation{
			Field:         prefix + "hash",
			Message:       patternMessage(ContentHashPattern),
			ObservedValue: observed(hashRaw),
		})
	}
	return out
}

func lookup(m map[string]any, keys []string) any {
	if m == nil {
		return nil
	}
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	default:
		return nil, false
	}
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func observed(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
