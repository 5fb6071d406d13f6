package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	EventPaymentPaid   = "payment.paid"
	EventPaymentFailed = "payment.failed"
)

var (
	ErrBadSignature   = errors.New("webhook signature mismatch")
	ErrStaleSignature = errors.New("webhook signature timestamp outside tolerance")
)

// Event is the part of a provider webhook the payment service acts on.
type Event struct {
	ID       string
	Type     string
	IntentID string
	Amount   int64
}

type webhookPayload struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Type string `json:"type"`
			Data struct {
				ID         string `json:"id"`
				Attributes struct {
					Amount          int64  `json:"amount"`
					PaymentIntentID string `json:"payment_intent_id"`
				} `json:"attributes"`
			} `json:"data"`
		} `json:"attributes"`
	} `json:"data"`
}

func ParseWebhook(body []byte) (Event, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return Event{}, fmt.Errorf("invalid webhook payload: %w", err)
	}

	ev := Event{
		ID:       p.Data.ID,
		Type:     p.Data.Attributes.Type,
		IntentID: p.Data.Attributes.Data.Attributes.PaymentIntentID,
		Amount:   p.Data.Attributes.Data.Attributes.Amount,
	}
	if ev.Type == "" || ev.IntentID == "" {
		return Event{}, errors.New("webhook payload missing event type or payment intent id")
	}
	return ev, nil
}

// Sign produces a signature header of the form "t=<unix>,v1=<hex>" where
// v1 is HMAC-SHA256(secret, "<unix>.<body>").
func Sign(secret string, body []byte, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	return "t=" + ts + ",v1=" + mac(secret, ts, body)
}

func VerifySignature(secret, header string, body []byte, now time.Time, tolerance time.Duration) error {
	var ts, sig string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			sig = v
		}
	}
	if ts == "" || sig == "" {
		return ErrBadSignature
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrBadSignature
	}
	if d := now.Sub(time.Unix(unix, 0)); d > tolerance || d < -tolerance {
		return ErrStaleSignature
	}

	if !hmac.Equal([]byte(sig), []byte(mac(secret, ts, body))) {
		return ErrBadSignature
	}
	return nil
}

func mac(secret, ts string, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(ts))
	h.Write([]byte("."))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
