package wal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hearthos/fixlog/pkg/testutil"
	"github.com/hearthos/fixlog/pkg/wal"
)

func TestDeriveState(t *testing.T) {
	intent := wal.Record{Type: wal.RecordTypeIntent}
	applied := wal.Record{Type: wal.RecordTypeApplied}
	failed := wal.Record{Type: wal.RecordTypeFailed}
	aborted := wal.Record{Type: wal.RecordTypeAborted}
	rolledBack := wal.Record{Type: wal.RecordTypeRolledBack}

	tests := []struct {
		name    string
		records []wal.Record
		want    wal.TxState
	}{
		{name: "no records", records: nil, want: wal.TxStateUnknown},
		{name: "intent only", records: []wal.Record{intent, intent}, want: wal.TxStateInFlight},
		{name: "applied wins over intent", records: []wal.Record{intent, intent, applied}, want: wal.TxStateApplied},
		{name: "failed wins over applied", records: []wal.Record{intent, applied, failed}, want: wal.TxStateFailed},
		{name: "aborted wins over failed", records: []wal.Record{intent, failed, aborted}, want: wal.TxStateAborted},
		{name: "rolled back wins over everything", records: []wal.Record{intent, applied, failed, aborted, rolledBack}, want: wal.TxStateRolledBack},
		{name: "order independent", records: []wal.Record{rolledBack, intent}, want: wal.TxStateRolledBack},
		{name: "unrecognized type ignored", records: []wal.Record{{Type: wal.RecordType("NOTE")}}, want: wal.TxStateUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wal.DeriveState(tt.records); got != tt.want {
				t.Errorf("DeriveState() = %s, expected %s", got, tt.want)
			}
		})
	}
}

func TestTxState_Terminal(t *testing.T) {
	terminal := map[wal.TxState]bool{
		wal.TxStateUnknown:    false,
		wal.TxStateInFlight:   false,
		wal.TxStateApplied:    true,
		wal.TxStateFailed:     true,
		wal.TxStateAborted:    true,
		wal.TxStateRolledBack: true,
	}
	for state, want := range terminal {
		if got := state.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %t, expected %t", state, got, want)
		}
	}
}

func TestLog_TxViews(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t)
	const (
		txA = "20250101000000aaaaaaaa"
		txB = "20250101000001bbbbbbbb"
	)

	_, err := l.AppendIntent(ctx, txA, 1, testActor(), intentSpec("sensor"), "", nil)
	testutil.Must(t, err)
	_, err = l.AppendIntent(ctx, txB, 1, testActor(), intentSpec("switch"), "", nil)
	testutil.Must(t, err)
	_, err = l.AppendOutcome(ctx, txA, 1, testActor(), wal.RecordTypeApplied, "", nil)
	testutil.Must(t, err)

	records, err := l.TxRecords(txA)
	testutil.Must(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		require.Equal(t, txA, rec.TxID)
	}

	state, err := l.TxState(txA)
	testutil.Must(t, err)
	require.Equal(t, wal.TxStateApplied, state)
	state, err = l.TxState(txB)
	testutil.Must(t, err)
	require.Equal(t, wal.TxStateInFlight, state)
	state, err = l.TxState("20250101000002cccccccc")
	testutil.Must(t, err)
	require.Equal(t, wal.TxStateUnknown, state)
}

func TestLog_ListInFlight(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t)
	const (
		txA = "20250101000000aaaaaaaa"
		txB = "20250101000001bbbbbbbb"
		txC = "20250101000002cccccccc"
	)

	// append out of ID order so the sort is observable
	_, err := l.AppendIntent(ctx, txC, 1, testActor(), intentSpec("relay"), "", nil)
	testutil.Must(t, err)
	_, err = l.AppendIntent(ctx, txA, 1, testActor(), intentSpec("sensor"), "", nil)
	testutil.Must(t, err)
	_, err = l.AppendIntent(ctx, txB, 1, testActor(), intentSpec("switch"), "", nil)
	testutil.Must(t, err)
	_, err = l.AppendOutcome(ctx, txB, 1, testActor(), wal.RecordTypeApplied, "", nil)
	testutil.Must(t, err)

	ids, err := l.ListInFlight()
	testutil.Must(t, err)
	require.Equal(t, []string{txA, txC}, ids)
}

func TestLog_ListTransactions(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t)
	const (
		txA = "20250101000000aaaaaaaa"
		txB = "20250101000001bbbbbbbb"
	)

	_, err := l.AppendIntent(ctx, txA, 1, testActor(), intentSpec("sensor"), "", nil)
	testutil.Must(t, err)
	_, err = l.AppendIntent(ctx, txA, 2, testActor(), intentSpec("switch"), "", nil)
	testutil.Must(t, err)
	_, err = l.AppendOutcome(ctx, txA, 1, testActor(), wal.RecordTypeApplied, "", nil)
	testutil.Must(t, err)
	_, err = l.AppendOutcome(ctx, txA, 2, testActor(), wal.RecordTypeApplied, "", nil)
	testutil.Must(t, err)
	_, err = l.AppendIntent(ctx, txB, 1, testActor(), intentSpec("relay"), "", nil)
	testutil.Must(t, err)

	summaries, err := l.ListTransactions()
	testutil.Must(t, err)
	require.Len(t, summaries, 2)

	require.Equal(t, txA, summaries[0].ID)
	require.Equal(t, wal.TxStateApplied, summaries[0].State)
	require.Equal(t, 2, summaries[0].Ops)
	require.False(t, summaries[0].FirstTime.IsZero())
	require.False(t, summaries[0].FirstTime.After(summaries[0].LastTime))

	require.Equal(t, txB, summaries[1].ID)
	require.Equal(t, wal.TxStateInFlight, summaries[1].State)
	require.Equal(t, 1, summaries[1].Ops)
}
