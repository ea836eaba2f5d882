package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
)

var (
	// ErrRejected is returned when the gateway refuses a transaction or account lookup with a 4xx.
	ErrRejected = errors.New("ledger gateway rejected request")
	// ErrTransport covers network failures, 5xx answers, and unreadable responses.
	ErrTransport = errors.New("ledger gateway transport failure")
)

// Client talks to a Horizon-style ledger gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	network    Network
	now        func() time.Time
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client; the default has a 10s timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithClock overrides the time source for transaction time bounds.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient instantiates the gateway client.
func NewClient(baseURL string, network Network, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("ledger gateway base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse ledger gateway URL: %w", err)
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		network:    network,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Network reports the network transactions are signed for.
func (c *Client) Network() Network {
	return c.network
}

// Account is the subset of account state needed to build transactions.
type Account struct {
	ID       string
	Sequence int64
}

type accountResponse struct {
	ID       string `json:"id"`
	Sequence string `json:"sequence"`
}

type submitResponse struct {
	Hash   string `json:"hash"`
	Ledger int64  `json:"ledger"`
}

type problemResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Extras struct {
		ResultCodes struct {
			Transaction string `json:"transaction"`
		} `json:"result_codes"`
	} `json:"extras"`
}

// LoadAccount fetches the current sequence number of accountID.
func (c *Client) LoadAccount(ctx context.Context, accountID string) (*Account, error) {
	segment, err := runtime.StyleParamWithLocation("simple", false, "account_id", runtime.ParamLocationPath, accountID)
	if err != nil {
		return nil, fmt.Errorf("encode account id: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/accounts/"+segment, nil)
	if err != nil {
		return nil, fmt.Errorf("build account request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	var body accountResponse
	if err := c.do(req, &body); err != nil {
		return nil, err
	}
	sequence, err := strconv.ParseInt(body.Sequence, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed account sequence %q", ErrTransport, body.Sequence)
	}
	return &Account{ID: body.ID, Sequence: sequence}, nil
}

// Submit posts a signed envelope and returns the transaction hash assigned by the gateway.
func (c *Client) Submit(ctx context.Context, envelope Envelope) (string, error) {
	encoded, err := envelope.Encode()
	if err != nil {
		return "", err
	}
	form := url.Values{"tx": []string{encoded}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transactions", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	var body submitResponse
	if err := c.do(req, &body); err != nil {
		return "", err
	}
	if strings.TrimSpace(body.Hash) == "" {
		return "", fmt.Errorf("%w: gateway returned no transaction hash", ErrTransport)
	}
	return body.Hash, nil
}

// SubmitManageData loads the signer's account, signs one transaction carrying ops, and submits it.
func (c *Client) SubmitManageData(ctx context.Context, key *Keypair, ops ...ManageData) (string, error) {
	if key == nil {
		return "", ErrInvalidSeed
	}
	if len(ops) == 0 {
		return "", errors.New("at least one operation is required")
	}
	account, err := c.LoadAccount(ctx, key.Address())
	if err != nil {
		return "", err
	}
	tx := NewTransaction(key.Address(), account.Sequence+1, c.now(), ops...)
	envelope, err := Sign(tx, c.network, key)
	if err != nil {
		return "", err
	}
	return c.Submit(ctx, envelope)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}
	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrTransport, problemMessage(payload, resp.Status))
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrRejected, problemMessage(payload, resp.Status))
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return fmt.Errorf("%w: unexpected status %s", ErrTransport, resp.Status)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrTransport, err)
	}
	return nil
}

func problemMessage(payload []byte, fallback string) string {
	var problem problemResponse
	if err := json.Unmarshal(payload, &problem); err != nil {
		return fallback
	}
	if code := strings.TrimSpace(problem.Extras.ResultCodes.Transaction); code != "" {
		return code
	}
	if detail := strings.TrimSpace(problem.Detail); detail != "" {
		return detail
	}
	if title := strings.TrimSpace(problem.Title); title != "" {
		return title
	}
	return fallback
}
