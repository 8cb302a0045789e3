package domain

import "time"

// TrustReasonTrustedPlatform is the only trust reason the monitoring API
// currently models.
const TrustReasonTrustedPlatform = "trusted_platform"

type TrustReason struct {
	Type         string `json:"type"`
	PlatformName string `json:"platform_name,omitempty"`
}

func TrustedPlatform(name string) *TrustReason {
	return &TrustReason{Type: TrustReasonTrustedPlatform, PlatformName: name}
}

// MediaEntry is one piece of registered content. Hash is 64 lowercase hex.
type MediaEntry struct {
	MediaID     string       `json:"media_id"`
	URL         string       `json:"url"`
	Hash        string       `json:"hash"`
	TrustReason *TrustReason `json:"trust_reason,omitempty"`
}

// RegistrationTx references the on-chain transaction that minted the asset.
type RegistrationTx struct {
	Hash        string    `json:"hash"`
	BlockNumber int64     `json:"block_number"`
	ChainID     string    `json:"chain_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// RegistrationPayload is the canonical body submitted for monitoring.
// ID is "0x"+40 hex with an optional ":<tokenId>"; CreatorID is "0x"+40 hex.
type RegistrationPayload struct {
	ID             string          `json:"id"`
	CreatorID      string          `json:"creator_id"`
	Media          []MediaEntry    `json:"media"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
	RegistrationTx *RegistrationTx `json:"registration_tx,omitempty"`
}
