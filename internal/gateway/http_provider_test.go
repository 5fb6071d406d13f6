package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-marketplace.com/task-marketplace/internal/gateway"
)

func newProviderServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var calls []string

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/payment_intents", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		user, _, ok := r.BasicAuth()
		if !ok || user != "sk_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body struct {
			Data struct {
				Attributes struct {
					Amount int64 `json:"amount"`
				} `json:"attributes"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(1000), body.Data.Attributes.Amount)
		_, _ = w.Write([]byte(`{"data":{"id":"pi_1","attributes":{"status":"awaiting_payment_method"}}}`))
	})
	mux.HandleFunc("/v1/payment_methods", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"id":"pm_1"}}`))
	})
	mux.HandleFunc("/v1/payment_intents/pi_1/attach", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"id":"pi_1","attributes":{"status":"awaiting_next_action","next_action":{"redirect":{"url":"https://pay.example/confirm/pi_1"}}}}}`))
	})
	mux.HandleFunc("/v1/payment_intents/pi_1", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"id":"pi_1","attributes":{"status":"succeeded"}}}`))
	})
	mux.HandleFunc("/v1/payouts", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":[{"detail":"account_number is invalid"}]}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestHTTPProvider_DepositFlow(t *testing.T) {
	srv, calls := newProviderServer(t)
	p := gateway.NewHTTPProvider(srv.URL, "sk_test", "https://app.example/return", time.Second)
	ctx := context.Background()

	intent, err := p.CreateIntent(ctx, 1000, gateway.Payer{UserID: 7, Role: "client"})
	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.ID)

	url, err := p.AttachMethod(ctx, intent.ID, "gcash")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/confirm/pi_1", url)

	status, err := p.VerifyIntent(ctx, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, gateway.IntentSucceeded, status)

	assert.Equal(t, []string{
		"POST /v1/payment_intents",
		"POST /v1/payment_methods",
		"POST /v1/payment_intents/pi_1/attach",
		"GET /v1/payment_intents/pi_1",
	}, *calls)
}

func TestHTTPProvider_PayoutErrorKeepsProviderBody(t *testing.T) {
	srv, _ := newProviderServer(t)
	p := gateway.NewHTTPProvider(srv.URL, "sk_test", "", time.Second)

	_, err := p.Payout(context.Background(), gateway.PayoutRequest{Amount: 10, Method: "gcash"})
	require.Error(t, err)

	var apiErr *gateway.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "account_number is invalid")
}

func TestHTTPProvider_VerifyUnknownIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := gateway.NewHTTPProvider(srv.URL, "sk_test", "", time.Second)
	_, err := p.VerifyIntent(context.Background(), "pi_missing")
	assert.ErrorIs(t, err, gateway.ErrIntentNotFound)
}

func TestHTTPProvider_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	p := gateway.NewHTTPProvider(srv.URL, "sk_test", "", 20*time.Millisecond)
	_, err := p.VerifyIntent(context.Background(), "pi_1")
	assert.Error(t, err)
}
