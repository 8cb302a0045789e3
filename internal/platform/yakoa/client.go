package yakoa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rtb-12/StorySentinel-sub000/internal/domain"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/ctxutil"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/httpx"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
)

// Client talks to the Yakoa IP monitoring API. Only request/response calls
// are modelled; detection itself happens on Yakoa's side.
type Client interface {
	RegisterToken(ctx context.Context, payload domain.RegistrationPayload) (*Token, error)
	GetToken(ctx context.Context, tokenID string) (*Token, error)
}

type Config struct {
	APIKey         string
	BaseURL        string
	Network        string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
}

const (
	defaultBaseURL = "https://docs-demo.ip-api-sandbox.yakoa.io"
	defaultNetwork = "docs-demo"
)

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing YAKOA_API_KEY")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if strings.TrimSpace(cfg.Network) == "" {
		cfg.Network = defaultNetwork
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}

	return &client{
		log:        log.With("client", "YakoaClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

// --- wire types ---

type registerTokenRequest struct {
	ID             string              `json:"id"`
	RegistrationTx *registrationTx     `json:"registration_tx,omitempty"`
	CreatorID      string              `json:"creator_id"`
	Metadata       map[string]any      `json:"metadata"`
	Media          []domain.MediaEntry `json:"media"`
}

type registrationTx struct {
	Hash        string `json:"hash"`
	BlockNumber int64  `json:"block_number"`
	Timestamp   string `json:"timestamp"`
}

type Token struct {
	ID            string         `json:"id"`
	CreatorID     string         `json:"creator_id"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Media         []TokenMedia   `json:"media,omitempty"`
	Infringements *Infringements `json:"infringements,omitempty"`
}

type TokenMedia struct {
	MediaID     string `json:"media_id"`
	URL         string `json:"url"`
	FetchStatus string `json:"fetch_status,omitempty"`
}

type Infringements struct {
	Status                 string                  `json:"status"`
	InNetworkInfringements []InNetworkInfringement `json:"in_network_infringements,omitempty"`
	ExternalInfringements  []ExternalInfringement  `json:"external_infringements,omitempty"`
}

type InNetworkInfringement struct {
	TokenID    string  `json:"token_id"`
	URL        string  `json:"url,omitempty"`
	Confidence float64 `json:"confidence"`
	LicensedAt string  `json:"licensed_at,omitempty"`
}

type ExternalInfringement struct {
	BrandID    string  `json:"brand_id"`
	BrandName  string  `json:"brand_name"`
	URL        string  `json:"url,omitempty"`
	Confidence float64 `json:"confidence"`
	Authorized bool    `json:"authorized"`
}

func (c *client) RegisterToken(ctx context.Context, payload domain.RegistrationPayload) (*Token, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("yakoa client unavailable")
	}
	wire := registerTokenRequest{
		ID:        payload.ID,
		CreatorID: payload.CreatorID,
		Metadata:  payload.Metadata,
		Media:     payload.Media,
	}
	if wire.Metadata == nil {
		wire.Metadata = map[string]any{}
	}
	if wire.Media == nil {
		wire.Media = []domain.MediaEntry{}
	}
	if tx := payload.RegistrationTx; tx != nil {
		wire.RegistrationTx = &registrationTx{
			Hash:        tx.Hash,
			BlockNumber: tx.BlockNumber,
			Timestamp:   tx.Timestamp.UTC().Format(time.RFC3339),
		}
	}

	_, raw, err := c.do(ctx, http.MethodPost, c.networkPath("/token"), wire)
	if err != nil {
		return nil, err
	}
	var out Token
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("yakoa: decode token: %w", err)
	}
	return &out, nil
}

func (c *client) GetToken(ctx context.Context, tokenID string) (*Token, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("yakoa client unavailable")
	}
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return nil, fmt.Errorf("yakoa: token id required")
	}
	_, raw, err := c.do(ctx, http.MethodGet, c.networkPath("/token/"+url.PathEscape(tokenID)), nil)
	if err != nil {
		return nil, err
	}
	var out Token
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("yakoa: decode token: %w", err)
	}
	return &out, nil
}

func (c *client) networkPath(p string) string {
	return "/" + url.PathEscape(c.cfg.Network) + p
}

// ---------- HTTP / retry helpers ----------

type errorResponse struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type HTTPError struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "yakoa: <nil error>"
	}
	if strings.TrimSpace(e.Message) != "" {
		return fmt.Sprintf("yakoa http %d: %s", e.StatusCode, e.Message)
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("yakoa http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) do(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	ctx = ctxutil.Default(ctx)
	backoff := c.cfg.InitialBackoff

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			return resp, raw, nil
		}
		if !httpx.IsRetryableError(err) || attempt == c.cfg.MaxRetries {
			return nil, nil, err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("Yakoa request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return nil, nil, err
		}
		backoff *= 2
	}

	return nil, nil, errors.New("unreachable retry loop")
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("X-API-KEY", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if td := ctxutil.GetTraceData(ctx); td != nil && td.RequestID != "" {
		req.Header.Set("X-Request-Id", td.RequestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		he := &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil {
			he.Message = strings.TrimSpace(er.Message)
			if he.Message == "" && len(er.Detail) > 0 {
				he.Message = strings.Trim(string(er.Detail), `"`)
			}
		}
		return resp, raw, he
	}
	return resp, raw, nil
}
