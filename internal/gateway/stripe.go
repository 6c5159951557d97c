package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultAPIBase = "https://api.stripe.com"

// StripeGateway talks to the Stripe Checkout Sessions REST API.
type StripeGateway struct {
	apiKey     string
	apiBase    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewStripeGateway(apiKey, apiBase string, timeout time.Duration, log *zap.Logger) *StripeGateway {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &StripeGateway{
		apiKey:  apiKey,
		apiBase: strings.TrimRight(apiBase, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Configured reports whether a usable API key is present. Placeholder keys
// from example env files count as unconfigured.
func (g *StripeGateway) Configured() bool {
	return g.apiKey != "" && g.apiKey != "sk_test_placeholder" && !strings.HasSuffix(g.apiKey, "_key")
}

type stripeSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (g *StripeGateway) CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", params.Currency)
	form.Set("line_items[0][price_data][product_data][name]", params.ProductName)
	// Round instead of truncating: 19.99 is not exactly representable, so a
	// plain int64 cast would send 1998 cents.
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(int64(math.Round(params.Amount*100)), 10))
	for k, v := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var sess stripeSession
	if err := g.do(ctx, http.MethodPost, "/v1/checkout/sessions", strings.NewReader(form.Encode()), &sess); err != nil {
		return nil, err
	}

	return &Session{SessionRef: sess.ID, CheckoutURL: sess.URL}, nil
}

func (g *StripeGateway) GetStatus(ctx context.Context, sessionRef string) (*SessionStatus, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}

	var sess stripeSession
	path := "/v1/checkout/sessions/" + url.PathEscape(sessionRef)
	if err := g.do(ctx, http.MethodGet, path, nil, &sess); err != nil {
		return nil, err
	}

	return &SessionStatus{
		PaymentStatus: sess.PaymentStatus,
		Status:        sess.Status,
		AmountTotal:   float64(sess.AmountTotal) / 100,
		Currency:      sess.Currency,
	}, nil
}

func (g *StripeGateway) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, g.apiBase+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(g.apiKey, "")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payment gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr stripeError
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}

	return json.Unmarshal(data, out)
}
