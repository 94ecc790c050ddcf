package dialogue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/celengan/internal/classification"
	"github.com/Veraticus/celengan/internal/common"
	"github.com/Veraticus/celengan/internal/model"
	"github.com/Veraticus/celengan/internal/reply"
	"github.com/Veraticus/celengan/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_IncomeConfirmed(t *testing.T) {
	h := newHarness(t)

	resp := h.say("Dapet 50rb dari freelance")
	proposal, ok := resp.Reply.(reply.Proposal)
	require.True(t, ok, "got %T", resp.Reply)
	assert.Equal(t, model.IntentIncome, proposal.Statement.Intent)
	assert.Equal(t, int64(50_000), proposal.Statement.Amount)
	assert.Equal(t, "freelance", proposal.Statement.Source)
	assert.Equal(t, "Aku catat pemasukan Rp50.000 dari freelance. Benar? (ya/tidak)", resp.Text)
	assert.True(t, resp.Metadata.Parked)

	pa := h.pending()
	require.NotNil(t, pa)
	assert.Equal(t, model.StateProposed, pa.State)

	resp = h.say("ya")
	result, ok := resp.Reply.(reply.ConfirmationResult)
	require.True(t, ok, "got %T", resp.Reply)
	assert.True(t, result.Success)

	require.Len(t, h.ledger.incomes, 1)
	income := h.ledger.incomes[0]
	assert.Equal(t, int64(50_000), income.Amount)
	assert.Equal(t, "freelance", income.Source)
	assert.Equal(t, "u1", income.UserID)
	assert.Equal(t, pa.ID, income.RequestID)
	assert.Nil(t, h.pending())
}

func TestEngine_ExpenseRejected(t *testing.T) {
	h := newHarness(t)

	resp := h.say("Bayar kos 1.2 juta")
	proposal, ok := resp.Reply.(reply.Proposal)
	require.True(t, ok, "got %T", resp.Reply)
	assert.Equal(t, int64(1_200_000), proposal.Statement.Amount)
	assert.Equal(t, "kos", proposal.Statement.Category)

	resp = h.say("tidak")
	assert.Equal(t, reply.KindRejection, resp.Reply.Kind())
	assert.Zero(t, h.ledger.commitCalls())
	assert.Nil(t, h.pending())
}

func TestEngine_AmendReplacesStatement(t *testing.T) {
	h := newHarness(t)

	resp := h.say("Beli bubble tea 28 ribu")
	first, ok := resp.Reply.(reply.Proposal)
	require.True(t, ok, "got %T", resp.Reply)
	assert.Equal(t, int64(28_000), first.Statement.Amount)

	resp = h.say("Beli bubble tea 25 ribu")
	amended, ok := resp.Reply.(reply.Proposal)
	require.True(t, ok, "got %T", resp.Reply)
	assert.True(t, amended.Amended)
	assert.Equal(t, int64(25_000), amended.Statement.Amount)
	assert.NotEqual(t, first.ActionID, amended.ActionID)

	pa := h.pending()
	require.NotNil(t, pa)
	assert.Equal(t, 1, pa.Amendments)
	assert.Equal(t, int64(25_000), pa.Statement.Amount)

	resp = h.say("ok")
	assert.Equal(t, reply.KindConfirmation, resp.Reply.Kind())
	require.Len(t, h.ledger.expenses, 1)
	assert.Equal(t, int64(25_000), h.ledger.expenses[0].Amount)
	assert.Equal(t, "bubble tea", h.ledger.expenses[0].Category)
}

func TestEngine_QueryAnsweredFromSnapshot(t *testing.T) {
	h := newHarness(t)
	h.ledger.snapshot = model.FinancialSnapshot{
		Balance:        1_150_000,
		MonthlyIncome:  3_000_000,
		MonthlyExpense: 1_850_000,
		TopCategories:  []model.CategoryTotal{{Category: "kos", Amount: 1_200_000}},
	}
	// the session was created before the ledger had data
	h.clock.Advance(DefaultSnapshotTTL)

	resp := h.say("Kesehatan keuangan saya gimana?")
	answer, ok := resp.Reply.(reply.QueryAnswer)
	require.True(t, ok, "got %T", resp.Reply)
	assert.Equal(t, reply.TopicHealth, answer.Topic)
	require.NotNil(t, answer.Snapshot)
	assert.Contains(t, resp.Text, "Keuanganmu sehat")
	assert.Contains(t, resp.Text, "38%")
	assert.Nil(t, h.pending())

	calls := h.ledger.snapshotCalls
	h.say("saldo aku berapa")
	assert.Equal(t, calls, h.ledger.snapshotCalls, "fresh snapshot is reused")
}

func TestEngine_MissingAmountAsksForIt(t *testing.T) {
	h := newHarness(t)

	resp := h.say("Bayar kos")
	clarification, ok := resp.Reply.(reply.Clarification)
	require.True(t, ok, "got %T", resp.Reply)
	assert.Equal(t, reply.ClarifyAmount, clarification.Reason)
	assert.Equal(t, "kos", clarification.Statement.Category)
	assert.Nil(t, h.pending())
}

func TestEngine_ConfirmTwiceCommitsOnce(t *testing.T) {
	h := newHarness(t)

	h.say("Dapet 50rb dari freelance")
	first := h.say("ya")
	second := h.say("ya")

	assert.Equal(t, reply.KindConfirmation, first.Reply.Kind())
	assert.NotEqual(t, reply.KindConfirmation, second.Reply.Kind())
	assert.Equal(t, 1, h.ledger.commitCalls())
}

func TestEngine_ExpiredActionIsNeverConfirmed(t *testing.T) {
	h := newHarness(t)

	h.say("Bayar kos 1.2 juta")
	h.clock.Advance(DefaultPendingTTL)

	assert.Nil(t, h.pending())

	resp := h.say("ya")
	assert.Equal(t, reply.KindExpired, resp.Reply.Kind())
	assert.Zero(t, h.ledger.commitCalls())

	// the notice is given once
	resp = h.say("ya")
	assert.Equal(t, reply.KindFallback, resp.Reply.Kind())
	assert.Zero(t, h.ledger.commitCalls())
}

func TestEngine_UnrelatedTurnsParkThenExpire(t *testing.T) {
	h := newHarness(t)

	h.say("Beli kopi 25rb")

	resp := h.say("saldo aku berapa")
	assert.Equal(t, reply.KindQueryAnswer, resp.Reply.Kind())
	assert.True(t, resp.Metadata.Parked)
	assert.Contains(t, resp.Text, "masih menunggu konfirmasi")
	pa := h.pending()
	require.NotNil(t, pa)
	assert.Equal(t, 1, pa.UnrelatedTurns)

	h.say("halo")
	require.NotNil(t, h.pending())

	resp = h.say("pemasukan bulan ini berapa")
	assert.False(t, resp.Metadata.Parked)
	assert.Nil(t, h.pending())

	resp = h.say("oke")
	assert.Equal(t, reply.KindExpired, resp.Reply.Kind())
	assert.Zero(t, h.ledger.commitCalls())
}

func TestEngine_StatementProposedWhenParkedActionRunsOut(t *testing.T) {
	h := newHarness(t)

	h.say("Beli kopi 25rb")
	h.say("dapet 100rb dari gaji")
	h.say("dapet 100rb dari gaji")

	resp := h.say("dapet 100rb dari gaji")
	proposal, ok := resp.Reply.(reply.Proposal)
	require.True(t, ok, "got %T", resp.Reply)
	assert.Equal(t, model.IntentIncome, proposal.Statement.Intent)
	assert.Equal(t, int64(100_000), proposal.Statement.Amount)
	assert.False(t, resp.Metadata.Parked)

	pa := h.pending()
	require.NotNil(t, pa)
	assert.Equal(t, model.IntentIncome, pa.Statement.Intent)

	resp = h.say("ya")
	assert.Equal(t, reply.KindConfirmation, resp.Reply.Kind())
	require.Len(t, h.ledger.incomes, 1)
	assert.Equal(t, int64(100_000), h.ledger.incomes[0].Amount)
	assert.Empty(t, h.ledger.expenses)
}

func TestEngine_BareAmountCompletesPreviousStatement(t *testing.T) {
	h := newHarness(t)

	h.say("Bayar kos")
	resp := h.say("1.2 juta")

	proposal, ok := resp.Reply.(reply.Proposal)
	require.True(t, ok, "got %T", resp.Reply)
	assert.Equal(t, model.IntentExpense, proposal.Statement.Intent)
	assert.Equal(t, "kos", proposal.Statement.Category)
	assert.Equal(t, int64(1_200_000), proposal.Statement.Amount)

	// a second bare amount has nothing left to complete
	h.say("ya")
	resp = h.say("50rb")
	assert.Equal(t, reply.KindClarification, resp.Reply.Kind())
}

func TestEngine_BareAmountAfterLongPauseIsNotAttached(t *testing.T) {
	h := newHarness(t)

	h.say("Bayar kos")
	h.clock.Advance(DefaultPendingTTL)

	resp := h.say("1.2 juta")
	clarification, ok := resp.Reply.(reply.Clarification)
	require.True(t, ok, "got %T", resp.Reply)
	assert.Equal(t, reply.ClarifyIntent, clarification.Reason)
	assert.Nil(t, h.pending())
}

func TestEngine_NewStatementWhilePending(t *testing.T) {
	h := newHarness(t)

	h.say("Beli kopi 25rb")
	resp := h.say("dapet 100rb dari gaji")

	clarification, ok := resp.Reply.(reply.Clarification)
	require.True(t, ok, "got %T", resp.Reply)
	assert.Equal(t, reply.ClarifyPending, clarification.Reason)
	require.NotNil(t, clarification.Pending)
	assert.Equal(t, int64(25_000), clarification.Pending.Amount)

	pa := h.pending()
	require.NotNil(t, pa)
	assert.Equal(t, model.IntentExpense, pa.Statement.Intent)
	assert.Equal(t, int64(25_000), pa.Statement.Amount)
}

func TestEngine_CommitFailureKeepsProposal(t *testing.T) {
	transient := &common.RetryableError{Err: errors.New("database is locked"), Retryable: true}

	t.Run("retried once then reported", func(t *testing.T) {
		h := newHarness(t)
		h.ledger.failures = []error{transient, transient}

		h.say("Bayar kos 1.2 juta")
		resp := h.say("ya")

		result, ok := resp.Reply.(reply.ConfirmationResult)
		require.True(t, ok, "got %T", resp.Reply)
		assert.False(t, result.Success)
		assert.Equal(t, service.ReasonUnavailable, result.Reason)
		assert.Contains(t, resp.Text, "belum berhasil disimpan")
		assert.Equal(t, 2, h.ledger.commitCalls())

		pa := h.pending()
		require.NotNil(t, pa)
		assert.Equal(t, model.StateProposed, pa.State)
		assert.NotEmpty(t, pa.LastError)

		resp = h.say("ya")
		assert.True(t, resp.Reply.(reply.ConfirmationResult).Success)
		require.Len(t, h.ledger.expenses, 1)
		assert.Nil(t, h.pending())
	})

	t.Run("transient failure recovers on retry", func(t *testing.T) {
		h := newHarness(t)
		h.ledger.failures = []error{transient}

		h.say("Bayar kos 1.2 juta")
		resp := h.say("ya")
		assert.True(t, resp.Reply.(reply.ConfirmationResult).Success)
		assert.Equal(t, 2, h.ledger.commitCalls())
	})

	t.Run("rejection is not retried", func(t *testing.T) {
		h := newHarness(t)
		h.ledger.failures = []error{service.ErrCommitRejected}

		h.say("Bayar kos 1.2 juta")
		resp := h.say("ya")
		result := resp.Reply.(reply.ConfirmationResult)
		assert.False(t, result.Success)
		assert.Equal(t, service.ReasonInvalid, result.Reason)
		assert.Equal(t, 1, h.ledger.commitCalls())
		assert.NotNil(t, h.pending())
	})
}

func TestEngine_CommitRefreshesSnapshot(t *testing.T) {
	h := newHarness(t)
	before := h.ledger.snapshotCalls

	h.say("Dapet 50rb dari freelance")
	assert.Equal(t, before, h.ledger.snapshotCalls)

	h.say("ya")
	assert.Equal(t, before+1, h.ledger.snapshotCalls)
}

func TestEngine_ConcurrentConfirmsCommitOnce(t *testing.T) {
	h := newHarness(t)
	h.say("Dapet 50rb dari freelance")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.engine.HandleMessage(context.Background(), h.id, "u1", "ya")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, h.ledger.commitCalls())
	assert.Len(t, h.ledger.incomes, 1)

	sess, err := h.store.Get(context.Background(), h.id)
	require.NoError(t, err)
	assert.Len(t, sess.Turns, 2+2*8)
}

func TestEngine_SessionNotFound(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.engine.HandleMessage(ctx, "missing", "u1", "halo")
	require.ErrorIs(t, err, common.ErrSessionNotFound)

	_, err = h.engine.HandleMessage(ctx, h.id, "someone-else", "halo")
	require.ErrorIs(t, err, common.ErrSessionNotFound)

	_, err = h.engine.GetPendingAction(ctx, "missing")
	require.ErrorIs(t, err, common.ErrSessionNotFound)

	require.NoError(t, h.engine.ClearSession(ctx, h.id))
	require.ErrorIs(t, h.engine.ClearSession(ctx, h.id), common.ErrSessionNotFound)
	_, err = h.engine.HandleMessage(ctx, h.id, "u1", "halo")
	require.ErrorIs(t, err, common.ErrSessionNotFound)
}

type blockingClassifier struct{}

func (blockingClassifier) Classify(ctx context.Context, _ string, _ classification.Kind) (classification.Result, error) {
	<-ctx.Done()
	return classification.Result{}, ctx.Err()
}

func TestEngine_ClassifierTimeoutDegrades(t *testing.T) {
	cfg := classification.GatewayConfig{Threshold: 0.3, Timeout: 20 * time.Millisecond}
	h := newHarness(t, withBackend(blockingClassifier{}, cfg))

	resp := h.say("dapet 50rb dari freelance")
	clarification, ok := resp.Reply.(reply.Clarification)
	require.True(t, ok, "got %T", resp.Reply)
	assert.Equal(t, reply.ClarifyIntent, clarification.Reason)

	resp = h.say("halo")
	assert.Equal(t, reply.KindFallback, resp.Reply.Kind())
	assert.Nil(t, h.pending())
}

func TestEngine_SavingsGoal(t *testing.T) {
	h := newHarness(t)

	resp := h.say("mau nabung 5 juta buat laptop bulan desember")
	proposal, ok := resp.Reply.(reply.Proposal)
	require.True(t, ok, "got %T", resp.Reply)
	assert.Equal(t, model.IntentSavingsGoal, proposal.Statement.Intent)
	assert.Contains(t, resp.Text, "target tabungan laptop sebesar Rp5.000.000 sampai 31 Desember 2026")

	h.say("sip")
	require.Len(t, h.ledger.goals, 1)
	goal := h.ledger.goals[0]
	assert.Equal(t, "laptop", goal.Item)
	assert.Equal(t, int64(5_000_000), goal.TargetAmount)
	require.NotNil(t, goal.TargetDate)
	assert.Equal(t, time.December, goal.TargetDate.Month())
}

func TestEngine_CategoryFromClassifier(t *testing.T) {
	h := newHarness(t)

	resp := h.say("keluar 15rb buat token")
	proposal, ok := resp.Reply.(reply.Proposal)
	require.True(t, ok, "got %T", resp.Reply)
	assert.Equal(t, "listrik", proposal.Statement.Category)
}

func TestEngine_SetLanguage(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.SetLanguage(context.Background(), h.id, model.LanguageEnglish))

	resp := h.say("Dapet 50rb dari freelance")
	assert.Equal(t, "I'll record income Rp50,000 from freelance. Correct? (yes/no)", resp.Text)

	resp = h.say("yes")
	assert.Equal(t, "Done, the income Rp50,000 from freelance is saved.", resp.Text)
}

func TestEngine_SweepExpired(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	other, err := h.engine.CreateSession(ctx, "u2")
	require.NoError(t, err)

	h.say("Bayar kos 1.2 juta")
	_, err = h.engine.HandleMessage(ctx, other, "u2", "halo")
	require.NoError(t, err)

	count, err := h.engine.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	h.clock.Advance(DefaultPendingTTL + time.Minute)
	count, err = h.engine.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = h.engine.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEngine_TurnHistoryIsBounded(t *testing.T) {
	h := newHarness(t, func(_ *Dependencies, o *Options) { o.MaxTurns = 4 })

	for i := 0; i < 5; i++ {
		h.say("halo")
	}

	sess, err := h.store.Get(context.Background(), h.id)
	require.NoError(t, err)
	assert.Len(t, sess.Turns, 4)
}

func TestNewEngine_RequiresCollaborators(t *testing.T) {
	_, err := NewEngine(Dependencies{}, Options{})
	require.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestEngine_CreateSessionRequiresUser(t *testing.T) {
	h := newHarness(t)
	_, err := h.engine.CreateSession(context.Background(), " ")
	require.ErrorIs(t, err, ErrMissingUser)
}
