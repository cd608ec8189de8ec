// Package orchestrator implements the payment orchestrator: it owns the
// available-methods registry, the single active payment session, retry
// sequencing, and subscriber notification. This is the use-case layer - the
// POS client drives it through the API surface, providers hang off the
// domain.Provider port.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/domain"
	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/fees"
)

// recommendedPriority is the fixed tie-break order for method recommendation.
var recommendedPriority = []domain.MethodID{
	domain.MethodSumUp,
	domain.MethodApplePay,
	domain.MethodQRCode,
	domain.MethodCash,
}

// StateChange is delivered to state subscribers on every session transition.
// Session is a snapshot taken at notification time.
type StateChange struct {
	SessionID string                `json:"session_id"`
	State     domain.SessionState   `json:"state"`
	Session   domain.PaymentSession `json:"session"`
}

// StateListener receives session state transitions.
type StateListener func(StateChange)

// MethodsListener receives the method registry whenever it changes.
type MethodsListener func([]domain.PaymentMethod)

type stateSub struct {
	id int
	fn StateListener
}

type methodSub struct {
	id int
	fn MethodsListener
}

// MethodQuote is the fee picture for one usable method, used by the POS
// client to compare methods before checkout.
type MethodQuote struct {
	Method domain.MethodID `json:"method"`
	Name   string          `json:"name"`
	Fees   fees.Breakdown  `json:"fees"`
}

// Orchestrator coordinates payment providers behind a single-payment-at-a-time
// state machine. Construct one in the composition root and share it by
// reference; there is no package-level instance.
type Orchestrator struct {
	mu sync.Mutex
	// notifyMu serializes subscriber delivery so transitions reach listeners
	// in commit order, one at a time. Always acquired before mu.
	notifyMu   sync.Mutex
	cfg        domain.Config
	providers  []domain.Provider
	byMethod   map[domain.MethodID]domain.Provider
	registry   []domain.PaymentMethod
	session    *domain.PaymentSession
	processing bool
	stateSubs  []stateSub
	methodSubs []methodSub
	nextSubID  int
}

// New creates an orchestrator over the given providers. The registry starts
// with every provider marked unavailable; call RefreshAvailability to run the
// capability checks.
func New(cfg domain.Config, providers ...domain.Provider) *Orchestrator {
	o := &Orchestrator{
		cfg:      normalizeConfig(cfg),
		byMethod: make(map[domain.MethodID]domain.Provider, len(providers)),
	}
	for _, p := range providers {
		id := p.Method()
		if _, dup := o.byMethod[id]; dup {
			log.Printf("Duplicate provider registered for method %s, keeping the first", id)
			continue
		}
		o.byMethod[id] = p
		o.providers = append(o.providers, p)

		m := p.Describe()
		m.Enabled = o.cfg.MethodEnabled(id)
		m.Available = false
		o.registry = append(o.registry, m)
	}
	return o
}

// normalizeConfig clamps nonsense retry settings.
func normalizeConfig(cfg domain.Config) domain.Config {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	return cfg
}

// StartPayment runs one payment session end to end and returns its result.
// It never returns a Go error: every failure path is a PaymentResult with
// Success=false, so callers branch on result.Success only.
func (o *Orchestrator) StartPayment(ctx context.Context, method domain.MethodID, amount float64, currency, reference string, customer *domain.CustomerInfo) *domain.PaymentResult {
	o.notifyMu.Lock()
	o.mu.Lock()

	// Guard 1: single-flight. Checked and set under the same lock hold, so
	// two overlapping calls can never both proceed.
	if o.processing {
		o.mu.Unlock()
		o.notifyMu.Unlock()
		log.Printf("Rejected %s payment of %.2f %s: another payment is in progress", method, amount, currency)
		return domain.FailedResult(method, amount, currency,
			domain.NewPaymentError(domain.CodePaymentInProgress,
				"another payment is already in progress", false).
				WithAction("wait for the current payment to finish"))
	}

	// Guard 2: the method must be registered, enabled, and available.
	m, ok := o.findMethodLocked(method)
	if !ok || !m.Usable() {
		o.mu.Unlock()
		o.notifyMu.Unlock()
		return domain.FailedResult(method, amount, currency,
			domain.NewPaymentError(domain.CodeMethodNotAvailable,
				fmt.Sprintf("payment method %s is not available", method), false))
	}

	if amount <= 0 {
		o.mu.Unlock()
		o.notifyMu.Unlock()
		return domain.FailedResult(method, amount, currency,
			domain.NewPaymentError(domain.CodeInvalidAmount,
				"amount must be greater than 0", false))
	}

	provider := o.byMethod[method]
	session := &domain.PaymentSession{
		ID:        "pay-" + uuid.NewString(),
		State:     domain.StateInitializing,
		Method:    method,
		Amount:    amount,
		Currency:  currency,
		StartedAt: time.Now(),
	}
	o.session = session
	o.processing = true
	snapshot := *session
	subs := append([]stateSub(nil), o.stateSubs...)
	o.mu.Unlock()

	log.Printf("Payment session %s started: %s %.2f %s", session.ID, method, amount, currency)
	deliverState(subs, snapshot)
	o.notifyMu.Unlock()

	o.advance(session, domain.StateProcessing)

	result := o.runCheckout(ctx, provider, session, domain.CheckoutRequest{
		Amount:    amount,
		Currency:  currency,
		Reference: reference,
		Customer:  customer,
	})

	o.finish(session, result)
	return result
}

// runCheckout invokes the provider, retrying recoverable failures per the
// configured policy. A panicking adapter is converted into a generic failure
// so the single-flight slot is always released.
func (o *Orchestrator) runCheckout(ctx context.Context, provider domain.Provider, session *domain.PaymentSession, req domain.CheckoutRequest) (result *domain.PaymentResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Checkout panicked for method %s: %v", provider.Method(), r)
			result = domain.FailedResult(provider.Method(), req.Amount, req.Currency,
				domain.NewPaymentError(domain.CodePaymentFailed,
					fmt.Sprintf("checkout aborted: %v", r), true))
		}
	}()

	for {
		o.mu.Lock()
		if o.session != session || !session.State.Active() {
			o.mu.Unlock()
			return domain.FailedResult(provider.Method(), req.Amount, req.Currency,
				domain.NewPaymentError(domain.CodePaymentFailed, "payment session was cancelled", false))
		}
		session.Attempts++
		attempt := session.Attempts
		cfg := o.cfg
		o.mu.Unlock()

		res, err := provider.Checkout(ctx, req)
		if err != nil {
			log.Printf("Checkout error for method %s: %v", provider.Method(), err)
			res = domain.FailedResult(provider.Method(), req.Amount, req.Currency,
				domain.NewPaymentError(domain.CodePaymentFailed, err.Error(), true))
		}
		if res == nil {
			res = domain.FailedResult(provider.Method(), req.Amount, req.Currency,
				domain.NewPaymentError(domain.CodePaymentFailed, "provider returned no result", true))
		}
		if !res.Success && res.Error == nil {
			res.Error = domain.NewPaymentError(domain.CodePaymentFailed, "checkout failed", true)
		}

		if res.Success {
			return res
		}
		if !cfg.AutoRetry || !res.Error.Recoverable || attempt > cfg.MaxRetries {
			return res
		}

		o.mu.Lock()
		active := o.session == session && session.State.Active()
		o.mu.Unlock()
		if !active {
			return res
		}

		log.Printf("Retrying %s payment for session %s, attempt %d", provider.Method(), session.ID, attempt+1)
		select {
		case <-ctx.Done():
			return res
		case <-time.After(cfg.RetryDelay):
		}
	}
}

// finish closes the session according to the checkout result. If the session
// was cancelled while the provider was in flight, its state stands.
func (o *Orchestrator) finish(session *domain.PaymentSession, result *domain.PaymentResult) {
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()

	o.mu.Lock()
	if o.session != session || session.State.Terminal() {
		o.mu.Unlock()
		return
	}
	now := time.Now()
	session.CompletedAt = &now
	if result.Success {
		session.State = domain.StateCompleted
	} else {
		session.State = domain.StateFailed
		session.LastError = result.Error
	}
	o.processing = false
	snapshot := *session
	subs := append([]stateSub(nil), o.stateSubs...)
	o.mu.Unlock()

	log.Printf("Payment session %s finished: %s after %d attempt(s)", session.ID, snapshot.State, snapshot.Attempts)
	deliverState(subs, snapshot)
}

// advance moves the session to the given active state and notifies
// subscribers, unless the session already left the active slot.
func (o *Orchestrator) advance(session *domain.PaymentSession, state domain.SessionState) {
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()

	o.mu.Lock()
	if o.session != session || !session.State.Active() {
		o.mu.Unlock()
		return
	}
	session.State = state
	snapshot := *session
	subs := append([]stateSub(nil), o.stateSubs...)
	o.mu.Unlock()

	deliverState(subs, snapshot)
}

// CancelPayment closes the current session as cancelled. It is a state
// bookkeeping operation: an in-flight provider call is not interrupted, and
// its eventual result is discarded. A no-op when nothing is in progress.
func (o *Orchestrator) CancelPayment() {
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()

	o.mu.Lock()
	if o.session == nil || !o.processing || o.session.State.Terminal() {
		o.mu.Unlock()
		log.Printf("Cancel requested with no payment in progress")
		return
	}
	session := o.session
	now := time.Now()
	session.State = domain.StateCancelled
	session.CompletedAt = &now
	o.processing = false
	snapshot := *session
	subs := append([]stateSub(nil), o.stateSubs...)
	o.mu.Unlock()

	log.Printf("Payment session %s cancelled", session.ID)
	deliverState(subs, snapshot)
}

// RefreshAvailability re-runs every provider's capability check and replaces
// the registry wholesale, then notifies method subscribers. It never touches
// the current session.
func (o *Orchestrator) RefreshAvailability(ctx context.Context) error {
	o.mu.Lock()
	cfg := o.cfg
	providers := append([]domain.Provider(nil), o.providers...)
	o.mu.Unlock()

	fresh := make([]domain.PaymentMethod, 0, len(providers))
	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			return err
		}
		available, err := p.CheckAvailability(ctx)
		if err != nil {
			log.Printf("Availability check failed for %s: %v", p.Method(), err)
			available = false
		}
		m := p.Describe()
		m.Enabled = cfg.MethodEnabled(m.ID)
		m.Available = available
		fresh = append(fresh, m)
	}

	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()

	o.mu.Lock()
	o.registry = fresh
	snapshot := append([]domain.PaymentMethod(nil), o.registry...)
	subs := append([]methodSub(nil), o.methodSubs...)
	o.mu.Unlock()

	deliverMethods(subs, snapshot)
	return nil
}

// UpdateConfig replaces the payment configuration and re-derives the Enabled
// flags on the registry. Availability flags keep their last checked values.
func (o *Orchestrator) UpdateConfig(cfg domain.Config) {
	cfg = normalizeConfig(cfg)

	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()

	o.mu.Lock()
	o.cfg = cfg
	fresh := make([]domain.PaymentMethod, len(o.registry))
	for i, m := range o.registry {
		m.Enabled = cfg.MethodEnabled(m.ID)
		fresh[i] = m
	}
	o.registry = fresh
	snapshot := append([]domain.PaymentMethod(nil), o.registry...)
	subs := append([]methodSub(nil), o.methodSubs...)
	o.mu.Unlock()

	log.Printf("Payment configuration updated: %d method(s) enabled", len(cfg.EnabledMethods))
	deliverMethods(subs, snapshot)
}

// Config returns a copy of the current payment configuration.
func (o *Orchestrator) Config() domain.Config {
	o.mu.Lock()
	defer o.mu.Unlock()
	cfg := o.cfg
	if cfg.PlatformFees != nil {
		rates := make(map[domain.MethodID]float64, len(cfg.PlatformFees))
		for k, v := range cfg.PlatformFees {
			rates[k] = v
		}
		cfg.PlatformFees = rates
	}
	cfg.EnabledMethods = append([]domain.MethodID(nil), cfg.EnabledMethods...)
	return cfg
}

// AvailableMethods returns a copy of the current method registry.
func (o *Orchestrator) AvailableMethods() []domain.PaymentMethod {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.PaymentMethod(nil), o.registry...)
}

// CurrentSession returns a snapshot of the current session, or nil when no
// payment has been started since the last completed one was discarded.
func (o *Orchestrator) CurrentSession() *domain.PaymentSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil
	}
	snapshot := *o.session
	return &snapshot
}

// IsPaymentInProgress reports whether a session holds the payment slot.
func (o *Orchestrator) IsPaymentInProgress() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.processing
}

// IsMethodAvailable reports whether the method is enabled and available.
func (o *Orchestrator) IsMethodAvailable(id domain.MethodID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	m, ok := o.findMethodLocked(id)
	return ok && m.Usable()
}

// RecommendedMethod returns the preferred usable method: first match in the
// fixed priority order, then the first usable method in registry order, then
// nil when nothing can take a payment.
func (o *Orchestrator) RecommendedMethod() *domain.PaymentMethod {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, id := range recommendedPriority {
		if m, ok := o.findMethodLocked(id); ok && m.Usable() {
			return &m
		}
	}
	for _, m := range o.registry {
		if m.Usable() {
			found := m
			return &found
		}
	}
	return nil
}

// QuoteFees returns the fee breakdown for every usable method at the given
// amount, in registry order.
func (o *Orchestrator) QuoteFees(amount float64) []MethodQuote {
	o.mu.Lock()
	registry := append([]domain.PaymentMethod(nil), o.registry...)
	rates := o.cfg.PlatformFees
	o.mu.Unlock()

	quotes := make([]MethodQuote, 0, len(registry))
	for _, m := range registry {
		if !m.Usable() {
			continue
		}
		provider := o.byMethod[m.ID]
		processing := provider.CalculateFee(amount)
		platform := fees.PlatformFee(amount, m.ID, rates)
		quotes = append(quotes, MethodQuote{
			Method: m.ID,
			Name:   m.Name,
			Fees:   fees.Combine(amount, processing, platform),
		})
	}
	return quotes
}

// OnStateChange registers a listener for session state transitions. Listeners
// are called synchronously in registration order, every transition exactly
// once; deliveries are serialized in commit order across goroutines. Listeners
// may query the orchestrator but must not start, cancel, or reconfigure
// payments from inside the callback. The returned function removes the
// listener.
func (o *Orchestrator) OnStateChange(fn StateListener) func() {
	o.mu.Lock()
	o.nextSubID++
	id := o.nextSubID
	o.stateSubs = append(o.stateSubs, stateSub{id: id, fn: fn})
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, s := range o.stateSubs {
			if s.id == id {
				o.stateSubs = append(o.stateSubs[:i], o.stateSubs[i+1:]...)
				return
			}
		}
	}
}

// OnMethodsChange registers a listener for registry changes. The current
// registry is delivered immediately, then again on every change. The returned
// function removes the listener.
func (o *Orchestrator) OnMethodsChange(fn MethodsListener) func() {
	o.notifyMu.Lock()
	o.mu.Lock()
	o.nextSubID++
	id := o.nextSubID
	o.methodSubs = append(o.methodSubs, methodSub{id: id, fn: fn})
	snapshot := append([]domain.PaymentMethod(nil), o.registry...)
	o.mu.Unlock()

	fn(snapshot)
	o.notifyMu.Unlock()

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, s := range o.methodSubs {
			if s.id == id {
				o.methodSubs = append(o.methodSubs[:i], o.methodSubs[i+1:]...)
				return
			}
		}
	}
}

// findMethodLocked looks the method up in the registry. Callers hold o.mu.
func (o *Orchestrator) findMethodLocked(id domain.MethodID) (domain.PaymentMethod, bool) {
	for _, m := range o.registry {
		if m.ID == id {
			return m, true
		}
	}
	return domain.PaymentMethod{}, false
}

func deliverState(subs []stateSub, snapshot domain.PaymentSession) {
	change := StateChange{SessionID: snapshot.ID, State: snapshot.State, Session: snapshot}
	for _, s := range subs {
		s.fn(change)
	}
}

func deliverMethods(subs []methodSub, snapshot []domain.PaymentMethod) {
	for _, s := range subs {
		s.fn(append([]domain.PaymentMethod(nil), snapshot...))
	}
}
