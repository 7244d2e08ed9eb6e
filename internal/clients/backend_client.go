package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/marti-dashboard/internal/domain"
	"github.com/vadiminshakov/marti-dashboard/pkg/retrier"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 8 << 20

	tradesPath    = "/trades/"
	portfolioPath = "/portfolio/"

	requestIDHeader = "X-Request-ID"
)

var (
	// ErrTransport no response was received from the backend.
	ErrTransport = errors.New("backend unreachable")
	// ErrStatus the backend answered with a non-2xx status.
	ErrStatus = errors.New("backend returned unexpected status")
	// ErrMalformed the payload does not have the expected shape.
	ErrMalformed = errors.New("malformed backend payload")
)

// StatusError non-2xx backend response.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: backend returned status %d", e.Path, e.Code)
}

// Is makes errors.Is(err, ErrStatus) match any StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

type requestIDKey struct{}

// WithRequestID attaches an id sent as X-Request-ID on every backend request made with ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// BackendClient reads trades and portfolio from the trading backend.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
	retrier    *retrier.Retrier
	logger     *zap.Logger
}

// BackendOption configures a BackendClient.
type BackendOption func(*BackendClient)

// WithHTTPClient replaces the underlying http client.
func WithHTTPClient(c *http.Client) BackendOption {
	return func(b *BackendClient) {
		b.httpClient = c
	}
}

// WithTimeout sets the transport timeout of the default http client.
func WithTimeout(d time.Duration) BackendOption {
	return func(b *BackendClient) {
		if d > 0 {
			b.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithRetrier retries transport failures and 5xx responses.
func WithRetrier(r *retrier.Retrier) BackendOption {
	return func(b *BackendClient) {
		b.retrier = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) BackendOption {
	return func(b *BackendClient) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBackendClient creates a client for the backend at baseURL.
func NewBackendClient(baseURL string, opts ...BackendOption) (*BackendClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid backend url %q", baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q: host is empty", baseURL)
	}

	c := &BackendClient{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		retrier:    retrier.New(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured backend address.
func (c *BackendClient) BaseURL() string {
	return c.baseURL
}

// amounts stay raw so quoted numbers can be told apart from JSON numbers
type tradePayload struct {
	ID         *int64          `json:"id"`
	Timestamp  *string         `json:"timestamp"`
	Symbol     *string         `json:"symbol"`
	Side       *string         `json:"side"`
	Price      json.RawMessage `json:"price"`
	Quantity   json.RawMessage `json:"quantity"`
	ProfitLoss json.RawMessage `json:"profit_loss"`
}

type portfolioPayload struct {
	TotalValue  json.RawMessage `json:"total_value"`
	CashBalance json.RawMessage `json:"cash_balance"`
	ProfitLoss  json.RawMessage `json:"profit_loss"`
}

// Trades returns the trades in the order the backend sent them.
func (c *BackendClient) Trades(ctx context.Context) ([]domain.Trade, error) {
	var payload []tradePayload
	if err := c.getJSON(ctx, tradesPath, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.Wrap(ErrMalformed, "trades: expected a JSON array")
	}

	trades := make([]domain.Trade, 0, len(payload))
	for i, p := range payload {
		t, err := p.toTrade()
		if err != nil {
			return nil, errors.Wrapf(err, "trades[%d]", i)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// Portfolio returns the current portfolio snapshot.
func (c *BackendClient) Portfolio(ctx context.Context) (domain.Portfolio, error) {
	var payload *portfolioPayload
	if err := c.getJSON(ctx, portfolioPath, &payload); err != nil {
		return domain.Portfolio{}, err
	}
	if payload == nil {
		return domain.Portfolio{}, errors.Wrap(ErrMalformed, "portfolio: expected a JSON object")
	}
	return payload.toPortfolio()
}

func (c *BackendClient) getJSON(ctx context.Context, path string, dst any) error {
	body, err := retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, path)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.Wrapf(ErrMalformed, "%s: %v", path, err)
	}
	return nil
}

func (c *BackendClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create HTTP request")
	}
	req.Header.Set("Accept", "application/json")
	if id := requestIDFrom(ctx); id != "" {
		req.Header.Set(requestIDHeader, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrTransport, "%s: %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrapf(ErrTransport, "%s: read body: %v", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("backend returned non-success status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(body, 512)))
		return nil, &StatusError{Path: path, Code: resp.StatusCode}
	}
	return body, nil
}

// Retryable reports whether err is worth another attempt: transport failures and 5xx.
func Retryable(err error) bool {
	if errors.Is(err, ErrTransport) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	return false
}

func (p tradePayload) toTrade() (domain.Trade, error) {
	switch {
	case p.ID == nil:
		return domain.Trade{}, missing("id")
	case p.Timestamp == nil:
		return domain.Trade{}, missing("timestamp")
	case p.Symbol == nil:
		return domain.Trade{}, missing("symbol")
	case p.Side == nil:
		return domain.Trade{}, missing("side")
	}

	if strings.TrimSpace(*p.Symbol) == "" {
		return domain.Trade{}, errors.Wrap(ErrMalformed, "empty symbol")
	}
	side, err := domain.ParseSide(*p.Side)
	if err != nil {
		return domain.Trade{}, errors.Wrap(ErrMalformed, err.Error())
	}
	ts, err := parseTimestamp(*p.Timestamp)
	if err != nil {
		return domain.Trade{}, err
	}
	price, err := parseAmount("price", p.Price)
	if err != nil {
		return domain.Trade{}, err
	}
	qty, err := parseAmount("quantity", p.Quantity)
	if err != nil {
		return domain.Trade{}, err
	}
	pl, err := parseAmount("profit_loss", p.ProfitLoss)
	if err != nil {
		return domain.Trade{}, err
	}

	return domain.Trade{
		ID:         *p.ID,
		Timestamp:  ts,
		Symbol:     *p.Symbol,
		Side:       side,
		Price:      price,
		Quantity:   qty,
		ProfitLoss: pl,
	}, nil
}

func (p portfolioPayload) toPortfolio() (domain.Portfolio, error) {
	total, err := parseAmount("total_value", p.TotalValue)
	if err != nil {
		return domain.Portfolio{}, err
	}
	cash, err := parseAmount("cash_balance", p.CashBalance)
	if err != nil {
		return domain.Portfolio{}, err
	}
	pl, err := parseAmount("profit_loss", p.ProfitLoss)
	if err != nil {
		return domain.Portfolio{}, err
	}
	return domain.Portfolio{
		TotalValue:  total,
		CashBalance: cash,
		ProfitLoss:  pl,
	}, nil
}

// parseAmount accepts only a JSON number literal.
func parseAmount(field string, raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 {
		return decimal.Zero, missing(field)
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return decimal.Zero, errors.Wrapf(ErrMalformed, "field %q: expected a number, got %s", field, truncate(raw, 32))
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrMalformed, "field %q: %v", field, err)
	}
	return d, nil
}

// naive datetimes (no offset) are what Python backends emit for utc columns
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Wrapf(ErrMalformed, "invalid timestamp %q", s)
}

func missing(field string) error {
	return errors.Wrapf(ErrMalformed, "missing field %q", field)
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
