package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPProvider talks to a checkout API that wraps every resource in a
// {"data":{"id":...,"attributes":{...}}} envelope.
type HTTPProvider struct {
	baseURL   string
	secretKey string
	returnURL string
	client    *http.Client
}

func NewHTTPProvider(baseURL, secretKey, returnURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		secretKey: secretKey,
		returnURL: returnURL,
		client:    &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Data resource `json:"data"`
}

type resource struct {
	ID         string          `json:"id,omitempty"`
	Attributes json.RawMessage `json:"attributes"`
}

// APIError carries the provider's response body so it can be logged.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payment provider returned %d: %s", e.StatusCode, e.Body)
}

func (p *HTTPProvider) do(ctx context.Context, method, path string, attrs any, out any) error {
	var body io.Reader
	if attrs != nil {
		raw, err := json.Marshal(attrs)
		if err != nil {
			return fmt.Errorf("encode attributes: %w", err)
		}
		payload, err := json.Marshal(envelope{Data: resource{Attributes: raw}})
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(p.secretKey, "")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type intentAttributes struct {
	Status     IntentStatus `json:"status"`
	NextAction *struct {
		Redirect struct {
			URL string `json:"url"`
		} `json:"redirect"`
	} `json:"next_action"`
}

type intentResponse struct {
	Data struct {
		ID         string           `json:"id"`
		Attributes intentAttributes `json:"attributes"`
	} `json:"data"`
}

func (p *HTTPProvider) CreateIntent(ctx context.Context, amount int64, payer Payer) (Intent, error) {
	var out intentResponse
	err := p.do(ctx, http.MethodPost, "/v1/payment_intents", map[string]any{
		"amount":                 amount,
		"currency":               "PHP",
		"capture_type":           "automatic",
		"payment_method_allowed": []string{"gcash", "paymaya", "card"},
		"metadata": map[string]string{
			"user_id": strconv.FormatInt(payer.UserID, 10),
			"role":    payer.Role,
		},
	}, &out)
	if err != nil {
		return Intent{}, err
	}
	return Intent{
		ID:          out.Data.ID,
		CheckoutURL: p.baseURL + "/checkout/" + out.Data.ID,
	}, nil
}

func (p *HTTPProvider) AttachMethod(ctx context.Context, intentID, method string) (string, error) {
	var pm struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := p.do(ctx, http.MethodPost, "/v1/payment_methods", map[string]any{
		"type": method,
	}, &pm); err != nil {
		return "", err
	}

	var out intentResponse
	if err := p.do(ctx, http.MethodPost, "/v1/payment_intents/"+intentID+"/attach", map[string]any{
		"payment_method": pm.Data.ID,
		"return_url":     p.returnURL,
	}, &out); err != nil {
		return "", err
	}

	if out.Data.Attributes.NextAction != nil && out.Data.Attributes.NextAction.Redirect.URL != "" {
		return out.Data.Attributes.NextAction.Redirect.URL, nil
	}
	return p.returnURL, nil
}

func (p *HTTPProvider) VerifyIntent(ctx context.Context, intentID string) (IntentStatus, error) {
	var out intentResponse
	if err := p.do(ctx, http.MethodGet, "/v1/payment_intents/"+intentID, nil, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return "", ErrIntentNotFound
		}
		return "", err
	}
	return out.Data.Attributes.Status, nil
}

func (p *HTTPProvider) Payout(ctx context.Context, req PayoutRequest) (string, error) {
	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	err := p.do(ctx, http.MethodPost, "/v1/payouts", map[string]any{
		"amount":         req.Amount,
		"currency":       "PHP",
		"method":         req.Method,
		"account_number": req.AccountNumber,
		"reference":      req.Reference,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Data.ID, nil
}
