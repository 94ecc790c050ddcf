package dialogue

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/celengan/internal/classification"
	"github.com/Veraticus/celengan/internal/model"
	"github.com/Veraticus/celengan/internal/service"
	"github.com/Veraticus/celengan/internal/session"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeLedger records commits and serves a fixed snapshot.
type fakeLedger struct {
	snapshotErr   error
	failures      []error
	incomes       []service.IncomeRecord
	expenses      []service.ExpenseRecord
	goals         []service.GoalRecord
	snapshot      model.FinancialSnapshot
	calls         int
	snapshotCalls int
	mu            sync.Mutex
}

func (f *fakeLedger) next() error {
	f.calls++
	if len(f.failures) == 0 {
		return nil
	}
	err := f.failures[0]
	f.failures = f.failures[1:]
	return err
}

func (f *fakeLedger) CreateIncome(_ context.Context, r service.IncomeRecord) (service.CommitReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.next(); err != nil {
		return service.CommitReceipt{}, err
	}
	f.incomes = append(f.incomes, r)
	return service.CommitReceipt{ID: "inc-" + r.RequestID, ReasonCode: service.ReasonOK}, nil
}

func (f *fakeLedger) CreateExpense(_ context.Context, r service.ExpenseRecord) (service.CommitReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.next(); err != nil {
		return service.CommitReceipt{}, err
	}
	f.expenses = append(f.expenses, r)
	return service.CommitReceipt{ID: "exp-" + r.RequestID, ReasonCode: service.ReasonOK}, nil
}

func (f *fakeLedger) CreateOrUpdateGoal(_ context.Context, r service.GoalRecord) (service.CommitReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.next(); err != nil {
		return service.CommitReceipt{}, err
	}
	f.goals = append(f.goals, r)
	return service.CommitReceipt{ID: "goal-" + r.RequestID, ReasonCode: service.ReasonOK}, nil
}

func (f *fakeLedger) GetFinancialSnapshot(_ context.Context, _ string) (model.FinancialSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshotCalls++
	if f.snapshotErr != nil {
		return model.FinancialSnapshot{}, f.snapshotErr
	}
	return f.snapshot, nil
}

func (f *fakeLedger) commitCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeClock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	engine *Engine
	ledger *fakeLedger
	clock  *fakeClock
	store  *session.MemoryStore
	t      *testing.T
	id     string
}

type harnessOption func(*Dependencies, *Options)

func withBackend(backend classification.Classifier, cfg classification.GatewayConfig) harnessOption {
	return func(d *Dependencies, _ *Options) {
		d.Classifier = classification.NewGateway(backend, cfg, quietLogger())
	}
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	h := &harness{
		ledger: &fakeLedger{},
		clock:  &fakeClock{now: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)},
		store:  session.NewMemoryStore(),
		t:      t,
	}

	seq := 0
	var idMu sync.Mutex
	deps := Dependencies{
		Store:       h.store,
		Commits:     h.ledger,
		Aggregation: h.ledger,
		Classifier: classification.NewGateway(
			classification.NewDefaultRuleClassifier(),
			classification.DefaultGatewayConfig(),
			quietLogger(),
		),
	}
	options := Options{
		Logger: quietLogger(),
		Now:    h.clock.Now,
		NewID: func() string {
			idMu.Lock()
			defer idMu.Unlock()
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
		Retry: service.RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond},
	}
	for _, opt := range opts {
		opt(&deps, &options)
	}

	engine, err := NewEngine(deps, options)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = engine.Close()
	})
	h.engine = engine

	h.id, err = engine.CreateSession(context.Background(), "u1")
	require.NoError(t, err)
	return h
}

func (h *harness) say(text string) Response {
	h.t.Helper()
	resp, err := h.engine.HandleMessage(context.Background(), h.id, "u1", text)
	require.NoError(h.t, err)
	return resp
}

func (h *harness) pending() *model.PendingAction {
	h.t.Helper()
	pa, err := h.engine.GetPendingAction(context.Background(), h.id)
	require.NoError(h.t, err)
	return pa
}
