package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *StripeGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewStripeGateway("sk_test_abc123", srv.URL, 5*time.Second, zap.NewNop())
}

func TestCreateSessionConvertsPriceToCents(t *testing.T) {
	cases := []struct {
		amount float64
		cents  string
	}{
		{19.99, "1999"},
		{999.99, "99999"},
		{1000, "100000"},
		{0.01, "1"},
	}

	for _, tc := range cases {
		var form url.Values
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			form = r.PostForm
			w.Write([]byte(`{"id":"cs_test_1","url":"https://pay.example/cs_test_1"}`))
		})

		_, err := gw.CreateSession(context.Background(), CreateSessionParams{
			Amount:      tc.amount,
			Currency:    "usd",
			ProductName: "alpha.com",
			SuccessURL:  "https://dngun.example/payment/success",
			CancelURL:   "https://dngun.example/domain/alpha.com",
		})
		require.NoError(t, err)
		assert.Equal(t, tc.cents, form.Get("line_items[0][price_data][unit_amount]"),
			"amount %v", tc.amount)
	}
}

func TestCreateSessionSurfacesGatewayError(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid currency","type":"invalid_request_error"}}`))
	})

	_, err := gw.CreateSession(context.Background(), CreateSessionParams{
		Amount: 10, Currency: "xyz", ProductName: "alpha.com",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid currency")
}

func TestUnconfiguredGatewayRefusesCalls(t *testing.T) {
	for _, key := range []string{"", "sk_test_placeholder", "your_stripe_key"} {
		gw := NewStripeGateway(key, "", 0, zap.NewNop())
		_, err := gw.CreateSession(context.Background(), CreateSessionParams{Amount: 10})
		assert.ErrorIs(t, err, ErrNotConfigured, "key %q", key)
		_, err = gw.GetStatus(context.Background(), "cs_test_1")
		assert.ErrorIs(t, err, ErrNotConfigured, "key %q", key)
	}
}

func TestGetStatusMapsSessionFields(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		w.Write([]byte(`{"id":"cs_test_1","status":"complete","payment_status":"paid","amount_total":1999,"currency":"usd"}`))
	})

	status, err := gw.GetStatus(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, SessionPaid, status.PaymentStatus)
	assert.Equal(t, "complete", status.Status)
	assert.Equal(t, 19.99, status.AmountTotal)
	assert.Equal(t, "usd", status.Currency)
}
