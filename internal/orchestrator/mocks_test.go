package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/domain"
)

// fakeProvider is a scriptable domain.Provider for orchestrator tests.
type fakeProvider struct {
	method    domain.MethodID
	available bool
	availErr  error
	fee       float64
	checkout  func(ctx context.Context, req domain.CheckoutRequest) (*domain.PaymentResult, error)
	calls     atomic.Int32
}

func (f *fakeProvider) Method() domain.MethodID {
	return f.method
}

func (f *fakeProvider) Describe() domain.PaymentMethod {
	return domain.PaymentMethod{
		ID:            f.method,
		Name:          string(f.method),
		ProcessingFee: f.fee,
	}
}

func (f *fakeProvider) CheckAvailability(ctx context.Context) (bool, error) {
	return f.available, f.availErr
}

func (f *fakeProvider) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.PaymentResult, error) {
	f.calls.Add(1)
	return f.checkout(ctx, req)
}

func (f *fakeProvider) CalculateFee(amount float64) float64 {
	return amount * f.fee / 100
}

func succeeding(method domain.MethodID) *fakeProvider {
	return &fakeProvider{
		method:    method,
		available: true,
		checkout: func(ctx context.Context, req domain.CheckoutRequest) (*domain.PaymentResult, error) {
			return &domain.PaymentResult{
				Success:       true,
				Method:        method,
				Amount:        req.Amount,
				Currency:      req.Currency,
				Timestamp:     time.Now(),
				TransactionID: "TXN-1",
			}, nil
		},
	}
}

func failing(method domain.MethodID, code string, recoverable bool) *fakeProvider {
	return &fakeProvider{
		method:    method,
		available: true,
		checkout: func(ctx context.Context, req domain.CheckoutRequest) (*domain.PaymentResult, error) {
			return domain.FailedResult(method, req.Amount, req.Currency,
				domain.NewPaymentError(code, "scripted failure", recoverable)), nil
		},
	}
}

// blocking returns a provider whose checkout suspends until release is closed.
func blocking(method domain.MethodID, release <-chan struct{}) *fakeProvider {
	return &fakeProvider{
		method:    method,
		available: true,
		checkout: func(ctx context.Context, req domain.CheckoutRequest) (*domain.PaymentResult, error) {
			<-release
			return &domain.PaymentResult{
				Success:       true,
				Method:        method,
				Amount:        req.Amount,
				Currency:      req.Currency,
				Timestamp:     time.Now(),
				TransactionID: "TXN-BLOCKED",
			}, nil
		},
	}
}

// recorder collects every state transition it observes. Reads from the test
// goroutine race with deliveries from payment goroutines, so access is locked.
type recorder struct {
	mu     sync.Mutex
	states []domain.SessionState
}

func (r *recorder) listen(change StateChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, change.State)
}

func (r *recorder) snapshot() []domain.SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.SessionState(nil), r.states...)
}

func (r *recorder) saw(state domain.SessionState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.states {
		if s == state {
			return true
		}
	}
	return false
}

// newTestOrchestrator builds an orchestrator with the providers enabled and
// availability already refreshed.
func newTestOrchestrator(cfg domain.Config, providers ...domain.Provider) *Orchestrator {
	if cfg.EnabledMethods == nil {
		for _, p := range providers {
			cfg.EnabledMethods = append(cfg.EnabledMethods, p.Method())
		}
	}
	o := New(cfg, providers...)
	if err := o.RefreshAvailability(context.Background()); err != nil {
		panic(err)
	}
	return o
}
