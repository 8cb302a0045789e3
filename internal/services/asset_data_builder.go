package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rtb-12/StorySentinel-sub000/internal/domain"
	"github.com/rtb-12/StorySentinel-sub000/internal/normalization"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
)

// ChainRegistration is what an on-chain mint reports back: enough to derive
// a monitoring payload before real content hashes are known.
type ChainRegistration struct {
	ContractAddress string         `json:"contract_address"`
	TokenID         string         `json:"token_id"`
	CreatorWallet   string         `json:"creator_wallet"`
	TxHash          string         `json:"tx_hash"`
	BlockNumber     int64          `json:"block_number"`
	ChainID         string         `json:"chain_id"`
	Timestamp       time.Time      `json:"timestamp"`
	MediaURLs       []string       `json:"media_urls"`
	MediaIDs        []string       `json:"media_ids"`
	Metadata        map[string]any `json:"metadata"`
}

type AssetDataBuilder struct {
	log          *logger.Logger
	platformName string
	now          func() time.Time
}

func NewAssetDataBuilder(log *logger.Logger, platformName string) *AssetDataBuilder {
	if strings.TrimSpace(platformName) == "" {
		platformName = "StorySentinel"
	}
	return &AssetDataBuilder{
		log:          log.With("service", "AssetDataBuilder"),
		platformName: platformName,
		now:          time.Now,
	}
}

// FromChainResult builds a registration payload from a chain result. Contract
// and creator addresses are coerced into canonical form; repaired addresses
// are logged since they may point at a different account than intended.
func (b *AssetDataBuilder) FromChainResult(r ChainRegistration) domain.RegistrationPayload {
	contract, contractRepaired := normalization.CoerceAddress(strings.TrimSpace(r.ContractAddress))
	creator, creatorRepaired := normalization.CoerceAddress(strings.TrimSpace(r.CreatorWallet))
	if contractRepaired {
		b.log.Warn("Contract address repaired", "raw", r.ContractAddress, "coerced", contract)
	}
	if creatorRepaired {
		b.log.Warn("Creator wallet repaired", "wallet", r.CreatorWallet)
	}

	assetID := contract
	if tokenID := strings.TrimSpace(r.TokenID); tokenID != "" {
		assetID = contract + ":" + tokenID
	}

	ts := r.Timestamp
	if ts.IsZero() {
		ts = b.now().UTC()
	}
	seed := strings.TrimSpace(r.TxHash)
	if seed == "" {
		seed = strconv.FormatInt(ts.UnixMilli(), 10)
	}

	media := make([]domain.MediaEntry, 0, len(r.MediaURLs))
	for i, u := range r.MediaURLs {
		mediaID := fmt.Sprintf("media-%d", i)
		if i < len(r.MediaIDs) && strings.TrimSpace(r.MediaIDs[i]) != "" {
			mediaID = strings.TrimSpace(r.MediaIDs[i])
		}
		media = append(media, domain.MediaEntry{
			MediaID:     mediaID,
			URL:         strings.TrimSpace(u),
			Hash:        normalization.SynthesizeHash(normalization.SeedFor(seed, i), i),
			TrustReason: domain.TrustedPlatform(b.platformName),
		})
	}

	payload := domain.RegistrationPayload{
		ID:        assetID,
		CreatorID: creator,
		Media:     media,
		Metadata:  r.Metadata,
	}
	if r.TxHash != "" {
		payload.RegistrationTx = &domain.RegistrationTx{
			Hash:        strings.ToLower(strings.TrimSpace(r.TxHash)),
			BlockNumber: r.BlockNumber,
			ChainID:     r.ChainID,
			Timestamp:   ts,
		}
	}
	return payload
}
