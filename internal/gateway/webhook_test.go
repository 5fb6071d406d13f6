package gateway_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-marketplace.com/task-marketplace/internal/gateway"
)

const paidPayload = `{"data":{"id":"evt_1","attributes":{"type":"payment.paid","data":{"id":"pay_1","attributes":{"amount":1000,"payment_intent_id":"pi_1"}}}}}`

func TestParseWebhook(t *testing.T) {
	ev, err := gateway.ParseWebhook([]byte(paidPayload))
	require.NoError(t, err)
	assert.Equal(t, gateway.Event{ID: "evt_1", Type: gateway.EventPaymentPaid, IntentID: "pi_1", Amount: 1000}, ev)
}

func TestParseWebhook_MissingIntent(t *testing.T) {
	_, err := gateway.ParseWebhook([]byte(`{"data":{"attributes":{"type":"payment.paid"}}}`))
	assert.Error(t, err)

	_, err = gateway.ParseWebhook([]byte(`not-json`))
	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	body := []byte(paidPayload)
	header := gateway.Sign("whsec", body, now)

	assert.NoError(t, gateway.VerifySignature("whsec", header, body, now, 5*time.Minute))
	assert.ErrorIs(t, gateway.VerifySignature("other", header, body, now, 5*time.Minute), gateway.ErrBadSignature)
	assert.ErrorIs(t, gateway.VerifySignature("whsec", header, []byte(`{}`), now, 5*time.Minute), gateway.ErrBadSignature)
	assert.ErrorIs(t, gateway.VerifySignature("whsec", header, body, now.Add(time.Hour), 5*time.Minute), gateway.ErrStaleSignature)
	assert.ErrorIs(t, gateway.VerifySignature("whsec", "garbage", body, now, 5*time.Minute), gateway.ErrBadSignature)
}
