package gateway

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
)

// SandboxProvider settles everything in-process. Intents succeed once a
// method is attached unless a status is forced with SetStatus.
type SandboxProvider struct {
	mu        sync.Mutex
	baseURL   string
	intents   map[string]IntentStatus
	payoutErr error
	payouts   []PayoutRequest
}

func NewSandboxProvider(baseURL string) *SandboxProvider {
	return &SandboxProvider{
		baseURL: baseURL,
		intents: make(map[string]IntentStatus),
	}
}

func (s *SandboxProvider) CreateIntent(_ context.Context, _ int64, _ Payer) (Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := "pi_" + ulid.Make().String()
	s.intents[id] = IntentAwaitingPayment
	return Intent{ID: id, CheckoutURL: s.baseURL + "/sandbox/checkout/" + id}, nil
}

func (s *SandboxProvider) AttachMethod(_ context.Context, intentID, method string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.intents[intentID]; !ok {
		return "", ErrIntentNotFound
	}
	s.intents[intentID] = IntentSucceeded
	return s.baseURL + "/sandbox/confirm/" + intentID + "?method=" + method, nil
}

func (s *SandboxProvider) VerifyIntent(_ context.Context, intentID string) (IntentStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, ok := s.intents[intentID]
	if !ok {
		return "", ErrIntentNotFound
	}
	return status, nil
}

func (s *SandboxProvider) Payout(_ context.Context, req PayoutRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.payoutErr != nil {
		return "", s.payoutErr
	}
	s.payouts = append(s.payouts, req)
	return "po_" + ulid.Make().String(), nil
}

func (s *SandboxProvider) SetStatus(intentID string, status IntentStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents[intentID] = status
}

// FailPayouts makes every later payout return err; nil restores success.
func (s *SandboxProvider) FailPayouts(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payoutErr = err
}

func (s *SandboxProvider) Payouts() []PayoutRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PayoutRequest(nil), s.payouts...)
}
