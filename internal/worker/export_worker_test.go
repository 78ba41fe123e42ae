package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/report"
	"fintrack/internal/storage/memory"
	"fintrack/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExporter struct {
	mu      sync.Mutex
	err     error
	reports []report.MonthReport
}

func (e *countingExporter) Name() string { return "counting" }

func (e *countingExporter) Export(_ context.Context, rep report.MonthReport) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reports = append(e.reports, rep)
	return e.err
}

func (e *countingExporter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.reports)
}

type failingLoader struct{}

func (failingLoader) Load(context.Context) (*store.State, error) {
	return nil, errors.New("database is locked")
}

func newWorker(t *testing.T, repo Loader, ex report.Exporter) *ExportWorker {
	t.Helper()
	w := NewExportWorker(repo, []report.Exporter{ex}, nil)
	w.now = func() time.Time { return time.Date(2024, time.June, 20, 8, 0, 0, 0, time.Local) }
	return w
}

func addExpense(t *testing.T, st *store.Store, amount string) {
	t.Helper()
	st.AddTransaction(context.Background(), core.NewTransaction{
		Amount:     decimal.RequireFromString(amount),
		Type:       core.Expense,
		CategoryID: "food",
		Date:       time.Date(2024, time.June, 10, 0, 0, 0, 0, time.Local),
	})
}

func TestSyncExportsOnlyChangedSnapshots(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	ex := &countingExporter{}
	w := newWorker(t, repo, ex)

	ran, err := w.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, ran, "nothing persisted yet")

	st := store.New(repo, nil)
	addExpense(t, st, "12.5")

	ran, err = w.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	require.Equal(t, 1, ex.count())
	assert.Equal(t, "June 2024", ex.reports[0].Title())
	assert.Equal(t, "12.5", ex.reports[0].Totals.Expense.String())

	ran, err = w.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, ran, "unchanged snapshot is not exported twice")

	addExpense(t, st, "7.5")
	ran, err = w.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, "20", ex.reports[1].Totals.Expense.String())
}

func TestSyncRetriesAfterExportFailure(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	addExpense(t, store.New(repo, nil), "3")

	ex := &countingExporter{err: errors.New("quota exceeded")}
	w := newWorker(t, repo, ex)

	_, err := w.Sync(ctx)
	require.Error(t, err)

	ex.err = nil
	ran, err := w.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 2, ex.count())
}

func TestHandleSnapshotSaved(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	addExpense(t, store.New(repo, nil), "3")

	ex := &countingExporter{}
	w := newWorker(t, repo, ex)

	require.NoError(t, w.HandleSnapshotSaved(ctx, &amqp.SnapshotSavedMessage{Namespace: "other-app"}))
	assert.Zero(t, ex.count())

	require.NoError(t, w.HandleSnapshotSaved(ctx, &amqp.SnapshotSavedMessage{Namespace: store.Namespace, Revision: 1}))
	assert.Equal(t, 1, ex.count())

	ex.err = errors.New("sheets down")
	addExpense(t, store.New(repo, mustLoad(t, repo)), "4")
	assert.NoError(t, w.HandleSnapshotSaved(ctx, &amqp.SnapshotSavedMessage{Namespace: store.Namespace}),
		"export failures are not requeued")

	lw := newWorker(t, failingLoader{}, ex)
	err := lw.HandleSnapshotSaved(ctx, &amqp.SnapshotSavedMessage{Namespace: store.Namespace})
	assert.ErrorContains(t, err, "database is locked")
}

func mustLoad(t *testing.T, repo Loader) *store.State {
	t.Helper()
	st, err := repo.Load(context.Background())
	require.NoError(t, err)
	return st
}

func TestRunConsumesUntilCancelled(t *testing.T) {
	repo := memory.New()
	addExpense(t, store.New(repo, nil), "3")
	ex := &countingExporter{}
	w := newWorker(t, repo, ex)

	ctx, cancel := context.WithCancel(context.Background())
	delivered := make(chan struct{})
	subscribe := func(ctx context.Context, handle func(context.Context, *amqp.SnapshotSavedMessage) error) error {
		err := handle(ctx, &amqp.SnapshotSavedMessage{Namespace: store.Namespace, Revision: 2})
		close(delivered)
		<-ctx.Done()
		return errors.Join(err, ctx.Err())
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, subscribe, time.Hour) }()

	<-delivered
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	assert.Equal(t, 1, ex.count(), "startup sync exports once, the notification finds it unchanged")
}
