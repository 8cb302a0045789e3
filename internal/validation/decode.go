package validation

import (
	"strconv"
	"strings"
	"time"

	"github.com/rtb-12/StorySentinel-sub000/internal/domain"
	"github.com/rtb-12/StorySentinel-sub000/internal/normalization"
)

var (
	keyURL         = []string{"url"}
	keyTrustReason = []string{"trust_reason", "trustReason"}
	keyRegTx       = []string{"registration_tx", "registrationTx"}
	keyMetadata    = []string{"metadata"}
)

// Normalize returns a shallow copy of payload with id and creator_id
// canonicalized. Non-string values are left for validation to report.
func Normalize(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	if s, ok := lookup(payload, keyID).(string); ok {
		out["id"] = normalization.NormalizeAssetID(s)
	}
	if s, ok := lookup(payload, keyCreatorID).(string); ok {
		delete(out, "creatorId")
		out["creator_id"] = normalization.NormalizeCreatorID(s)
	}
	return out
}

// CanonicalAssetID normalizes raw and lower-cases its address segment. The
// id rule matches case-insensitively, so an id without a token suffix can
// pass validation with its original casing; stored and looked-up ids go
// through here so they compare equal.
func CanonicalAssetID(raw string) string {
	id := normalization.NormalizeAssetID(strings.TrimSpace(raw))
	address, tokenID, ok := strings.Cut(id, ":")
	if !ok {
		return strings.ToLower(id)
	}
	return strings.ToLower(address) + ":" + tokenID
}

// Decode normalizes and validates a raw payload. The typed payload is only
// meaningful when no violations are returned.
func Decode(payload map[string]any) (domain.RegistrationPayload, []Violation) {
	normalized := Normalize(payload)
	if violations := ValidateRegistrationPayload(normalized); len(violations) > 0 {
		return domain.RegistrationPayload{}, violations
	}

	out := domain.RegistrationPayload{
		ID:        CanonicalAssetID(normalized["id"].(string)),
		CreatorID: normalized["creator_id"].(string),
		Media:     []domain.MediaEntry{},
	}
	entries, _ := asSlice(lookup(normalized, keyMedia))
	for _, raw := range entries {
		entry, _ := asMap(raw)
		out.Media = append(out.Media, decodeMediaEntry(entry))
	}
	if meta, ok := asMap(lookup(normalized, keyMetadata)); ok {
		out.Metadata = meta
	}
	if tx, ok := asMap(lookup(normalized, keyRegTx)); ok {
		out.RegistrationTx = decodeRegistrationTx(tx)
	}
	return out, nil
}

func decodeMediaEntry(entry map[string]any) domain.MediaEntry {
	id, _ := lookup(entry, keyMediaID).(string)
	url, _ := lookup(entry, keyURL).(string)
	hash, _ := lookup(entry, keyHash).(string)
	me := domain.MediaEntry{
		MediaID: strings.TrimSpace(id),
		URL:     strings.TrimSpace(url),
		Hash:    hash,
	}
	if tr, ok := asMap(lookup(entry, keyTrustReason)); ok {
		kind, _ := lookup(tr, []string{"type", "kind"}).(string)
		platform, _ := lookup(tr, []string{"platform_name", "platformName"}).(string)
		if kind != "" {
			me.TrustReason = &domain.TrustReason{Type: kind, PlatformName: platform}
		}
	}
	return me
}

func decodeRegistrationTx(m map[string]any) *domain.RegistrationTx {
	hash, _ := lookup(m, []string{"hash", "tx_hash", "txHash"}).(string)
	if strings.TrimSpace(hash) == "" {
		return nil
	}
	tx := &domain.RegistrationTx{Hash: strings.ToLower(strings.TrimSpace(hash))}
	tx.BlockNumber, _ = asInt64(lookup(m, []string{"block_number", "blockNumber"}))
	if chain, ok := lookup(m, []string{"chain_id", "chainId"}).(string); ok {
		tx.ChainID = chain
	}
	tx.Timestamp = asTime(lookup(m, []string{"timestamp"}))
	return tx
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// asTime accepts RFC3339 strings or unix seconds.
func asTime(v any) time.Time {
	if s, ok := v.(string); ok {
		if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(s)); err == nil {
			return ts.UTC()
		}
	}
	if secs, ok := asInt64(v); ok && secs > 0 {
		return time.Unix(secs, 0).UTC()
	}
	return time.Time{}
}
