package story

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rtb-12/StorySentinel-sub000/internal/platform/ctxutil"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/httpx"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
)

// Client reads IP asset and dispute records from the Story Protocol API.
// Writing to the chain is out of scope for this service.
type Client interface {
	GetIPAsset(ctx context.Context, ipID string) (*IPAsset, error)
	GetDispute(ctx context.Context, disputeID string) (*Dispute, error)
}

type Config struct {
	APIKey         string
	BaseURL        string
	Chain          string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
}

// ErrNotFound is returned when the API answers 404.
var ErrNotFound = errors.New("story: not found")

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing STORY_API_KEY")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.storyapis.com/api/v3"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if strings.TrimSpace(cfg.Chain) == "" {
		cfg.Chain = "story-aeneid"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	return &client{
		log:        log.With("client", "StoryClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type IPAsset struct {
	ID             string         `json:"id"`
	IPID           string         `json:"ipId"`
	ChainID        string         `json:"chainId"`
	TokenContract  string         `json:"tokenContract"`
	TokenID        string         `json:"tokenId"`
	BlockNumber    string         `json:"blockNumber"`
	BlockTimestamp string         `json:"blockTimestamp"`
	NFTMetadata    map[string]any `json:"nftMetadata,omitempty"`
}

type Dispute struct {
	ID             string `json:"id"`
	TargetIPID     string `json:"targetIpId"`
	TargetTag      string `json:"targetTag"`
	CurrentTag     string `json:"currentTag"`
	Initiator      string `json:"initiator"`
	Status         string `json:"status"`
	EvidenceLink   string `json:"evidenceLink"`
	BlockNumber    string `json:"blockNumber"`
	BlockTimestamp string `json:"blockTimestamp"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}

func (c *client) GetIPAsset(ctx context.Context, ipID string) (*IPAsset, error) {
	ipID = strings.TrimSpace(ipID)
	if ipID == "" {
		return nil, fmt.Errorf("story: ip id required")
	}
	var out envelope[IPAsset]
	if err := c.getJSON(ctx, "/assets/"+url.PathEscape(ipID), &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *client) GetDispute(ctx context.Context, disputeID string) (*Dispute, error) {
	disputeID = strings.TrimSpace(disputeID)
	if disputeID == "" {
		return nil, fmt.Errorf("story: dispute id required")
	}
	var out envelope[Dispute]
	if err := c.getJSON(ctx, "/disputes/"+url.PathEscape(disputeID), &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "story: <nil error>"
	}
	msg := strings.TrimSpace(e.Body)
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("story http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) getJSON(ctx context.Context, path string, dst any) error {
	ctx = ctxutil.Default(ctx)
	backoff := c.cfg.InitialBackoff

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		resp, raw, err := c.getOnce(ctx, path)
		if err == nil {
			if err := json.Unmarshal(raw, dst); err != nil {
				return fmt.Errorf("story: decode %s: %w", path, err)
			}
			return nil
		}
		lastErr = err
		if !httpx.IsRetryableError(err) || attempt == c.cfg.MaxRetries {
			break
		}
		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 5*time.Second))
		c.log.Warn("Story request retrying", "path", path, "attempt", attempt+1, "error", err.Error())
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return err
		}
		backoff *= 2
	}
	return lastErr
}

func (c *client) getOnce(ctx context.Context, path string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("X-Api-Key", c.cfg.APIKey)
	req.Header.Set("X-Chain", c.cfg.Chain)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode == http.StatusNotFound {
		return resp, raw, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}
