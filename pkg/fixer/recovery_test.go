package fixer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hearthos/fixlog/pkg/fixer"
	"github.com/hearthos/fixlog/pkg/fsop"
	"github.com/hearthos/fixlog/pkg/logging"
	"github.com/hearthos/fixlog/pkg/testutil"
	"github.com/hearthos/fixlog/pkg/wal"
)

// freshManager simulates a process restart: a new handle over the same log.
func (e *testEnv) freshManager(t *testing.T) *fixer.Manager {
	t.Helper()
	allowlist, err := fsop.NewAllowlist([]string{e.root})
	testutil.Must(t, err)
	log := wal.Open(e.logPath, logging.Dummy())
	actor := wal.Actor{Service: "hearthd", User: "recovery", Host: "hub01"}
	return fixer.NewManager(log, allowlist, actor, logging.Dummy())
}

func TestManager_RecoverInFlight(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	testutil.MustWriteFile(t, e.path("a.yaml"), []byte("pre-crash"))

	// crash window: intent durably logged, apply never ran
	txID := e.manager.Begin()
	e.queueRename(t, txID, 1, "a.yaml", "b.yaml")

	recovered := e.freshManager(t)
	report, err := recovered.Recover(ctx)
	testutil.Must(t, err)
	require.NotEmpty(t, report.RunID)
	require.Equal(t, []string{txID}, report.Found)
	require.Equal(t, []string{txID}, report.RolledBack)
	require.Empty(t, report.Failed)

	// the filesystem is exactly as it was before the intent
	require.Equal(t, "pre-crash", testutil.ReadFileString(t, e.path("a.yaml")))
	require.False(t, testutil.PathExists(t, e.path("b.yaml")))
	e.mustState(t, txID, wal.TxStateRolledBack)
}

func TestManager_RecoverIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	testutil.MustWriteFile(t, e.path("a.yaml"), []byte("a"))

	txID := e.manager.Begin()
	e.queueRename(t, txID, 1, "a.yaml", "b.yaml")

	report, err := e.manager.Recover(ctx)
	testutil.Must(t, err)
	require.Equal(t, []string{txID}, report.RolledBack)

	second, err := e.manager.Recover(ctx)
	testutil.Must(t, err)
	require.Empty(t, second.Found)
	require.Empty(t, second.RolledBack)
	require.Empty(t, second.Failed)
}

func TestManager_RecoverSkipsTerminal(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	testutil.MustWriteFile(t, e.path("applied.yaml"), []byte("applied"))
	testutil.MustWriteFile(t, e.path("aborted.yaml"), []byte("aborted"))
	testutil.MustWriteFile(t, e.path("pending.yaml"), []byte("pending"))

	appliedTx := e.manager.Begin()
	e.queueRename(t, appliedTx, 1, "applied.yaml", "applied-renamed.yaml")
	result, err := e.manager.Apply(ctx, appliedTx)
	testutil.Must(t, err)
	require.True(t, result.Success)

	abortedTx := e.manager.Begin()
	e.queueRename(t, abortedTx, 1, "aborted.yaml", "aborted-renamed.yaml")
	testutil.Must(t, e.manager.Abort(ctx, abortedTx, "operator abort"))

	pendingTx := e.manager.Begin()
	e.queueRename(t, pendingTx, 1, "pending.yaml", "pending-renamed.yaml")

	report, err := e.manager.Recover(ctx)
	testutil.Must(t, err)
	require.Equal(t, []string{pendingTx}, report.Found)
	require.Equal(t, []string{pendingTx}, report.RolledBack)

	// applied work stays applied, recovery only unwinds in-flight work
	require.True(t, testutil.PathExists(t, e.path("applied-renamed.yaml")))
	require.True(t, testutil.PathExists(t, e.path("aborted.yaml")))
	require.True(t, testutil.PathExists(t, e.path("pending.yaml")))
	e.mustState(t, appliedTx, wal.TxStateApplied)
	e.mustState(t, abortedTx, wal.TxStateAborted)
	e.mustState(t, pendingTx, wal.TxStateRolledBack)
}

func TestManager_RecoverIndependentFailures(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	const (
		stuckTx = "20250101000000aaaaaaaa"
		cleanTx = "20250101000001bbbbbbbb"
	)

	// stuckTx cannot roll back: both sides of its rename exist
	testutil.MustWriteFile(t, e.path("stuck-src.yaml"), []byte("src"))
	testutil.MustWriteFile(t, e.path("stuck-dst.yaml"), []byte("dst"))
	op := fsop.NewRename("stuck", e.path("stuck-src.yaml"), e.path("stuck-dst.yaml"))
	_, err := e.manager.AppendIntent(ctx, stuckTx, 1, op, "", nil)
	testutil.Must(t, err)

	testutil.MustWriteFile(t, e.path("clean.yaml"), []byte("clean"))
	e.queueRename(t, cleanTx, 1, "clean.yaml", "clean-renamed.yaml")

	report, err := e.manager.Recover(ctx)
	require.ErrorIs(t, err, fsop.ErrConflict)
	require.Equal(t, []string{stuckTx, cleanTx}, report.Found)
	require.Equal(t, []string{cleanTx}, report.RolledBack, "one stuck transaction must not block the others")
	require.Len(t, report.Failed, 1)
	require.Equal(t, stuckTx, report.Failed[0].TxID)
	require.ErrorIs(t, report.Failed[0].Err, fsop.ErrConflict)

	e.mustState(t, stuckTx, wal.TxStateFailed)
	e.mustState(t, cleanTx, wal.TxStateRolledBack)

	// the failed rollback is never auto-retried
	second, err := e.manager.Recover(ctx)
	testutil.Must(t, err)
	require.Empty(t, second.Found)
}

func TestManager_RecoverEmptyLog(t *testing.T) {
	e := newTestEnv(t)
	report, err := e.manager.Recover(context.Background())
	testutil.Must(t, err)
	require.NotEmpty(t, report.RunID)
	require.Empty(t, report.Found)
	require.Empty(t, report.RolledBack)
	require.Empty(t, report.Failed)
}
