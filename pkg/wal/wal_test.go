package wal_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hearthos/fixlog/pkg/fsop"
	"github.com/hearthos/fixlog/pkg/logging"
	"github.com/hearthos/fixlog/pkg/testutil"
	"github.com/hearthos/fixlog/pkg/wal"
)

func openTestLog(t *testing.T) *wal.Log {
	t.Helper()
	return wal.Open(filepath.Join(t.TempDir(), "fix", "transactions.log"), logging.Dummy())
}

func testActor() wal.Actor {
	return wal.Actor{Service: "hearthd", User: "admin", Host: "hub01"}
}

func intentSpec(target string) fsop.Spec {
	before := "/srv/devices/" + target + ".yaml"
	after := "/srv/devices/" + target + ".renamed.yaml"
	return fsop.NewRename(target, before, after).Spec()
}

func appendRaw(t *testing.T, path, line string) {
	t.Helper()
	testutil.Must(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	testutil.Must(t, err)
	_, err = f.WriteString(line)
	testutil.Must(t, err)
	testutil.Must(t, f.Close())
}

func TestLog_AppendIntent(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t)
	txID := wal.NewTxID()

	rec, err := l.AppendIntent(ctx, txID, 1, testActor(), intentSpec("sensor-livingroom"),
		"tidy sensor names", map[string]string{"ticket": "HH-204"})
	testutil.Must(t, err)
	require.Equal(t, wal.SchemaVersion, rec.V)
	require.Equal(t, wal.RecordTypeIntent, rec.Type)
	require.Equal(t, txID, rec.TxID)
	require.False(t, rec.Timestamp.IsZero())
	require.Equal(t, time.UTC, rec.Timestamp.Location())
	require.NotNil(t, rec.Op)
	require.NotNil(t, rec.Op.Inverse)

	records, err := l.ReadAll()
	testutil.Must(t, err)
	require.Len(t, records, 1)
	if diff := deep.Equal(*rec, records[0]); diff != nil {
		t.Fatalf("record changed across read-back: %v", diff)
	}
}

func TestLog_AppendOutcome(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t)
	txID := wal.NewTxID()

	_, err := l.AppendIntent(ctx, txID, 1, testActor(), intentSpec("thermostat"), "", nil)
	testutil.Must(t, err)
	rec, err := l.AppendOutcome(ctx, txID, 1, testActor(), wal.RecordTypeFailed, "",
		&wal.ErrorInfo{Name: "conflict", Message: "both paths exist"})
	testutil.Must(t, err)
	require.Equal(t, wal.RecordTypeFailed, rec.Type)

	records, err := l.ReadAll()
	testutil.Must(t, err)
	require.Len(t, records, 2)
	require.Nil(t, records[1].Op)
	require.NotNil(t, records[1].Error)
	require.Equal(t, "conflict", records[1].Error.Name)
}

func TestLog_AppendValidation(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t)
	txID := wal.NewTxID()
	actor := testActor()

	tests := []struct {
		name   string
		append func() error
	}{
		{
			name: "empty tx id",
			append: func() error {
				_, err := l.AppendIntent(ctx, "", 1, actor, intentSpec("x"), "", nil)
				return err
			},
		},
		{
			name: "intent without spec",
			append: func() error {
				_, err := l.AppendIntent(ctx, txID, 1, actor, fsop.Spec{}, "", nil)
				return err
			},
		},
		{
			name: "outcome with intent type",
			append: func() error {
				_, err := l.AppendOutcome(ctx, txID, 1, actor, wal.RecordTypeIntent, "", nil)
				return err
			},
		},
		{
			name: "outcome with unknown type",
			append: func() error {
				_, err := l.AppendOutcome(ctx, txID, 1, actor, wal.RecordType("DONE"), "", nil)
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.append(), wal.ErrInvalidRecord)
		})
	}

	records, err := l.ReadAll()
	testutil.Must(t, err)
	require.Empty(t, records, "rejected appends must not reach the log")
}

func TestLog_DurableAcrossHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fix", "transactions.log")
	l := wal.Open(path, logging.Dummy())
	txID := wal.NewTxID()

	_, err := l.AppendIntent(ctx, txID, 1, testActor(), intentSpec("relay"), "", nil)
	testutil.Must(t, err)
	require.True(t, testutil.PathExists(t, path))
	require.True(t, testutil.PathExists(t, l.LockPath()))

	reopened := wal.Open(path, logging.Dummy())
	records, err := reopened.ReadAll()
	testutil.Must(t, err)
	require.Len(t, records, 1)
	require.Equal(t, txID, records[0].TxID)
}

func TestLog_ReadAllSkipsCorruptLine(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t)
	txID := wal.NewTxID()

	_, err := l.AppendIntent(ctx, txID, 1, testActor(), intentSpec("a"), "", nil)
	testutil.Must(t, err)
	appendRaw(t, l.Path(), "{definitely not json}\n")
	_, err = l.AppendIntent(ctx, txID, 2, testActor(), intentSpec("b"), "", nil)
	testutil.Must(t, err)

	records, err := l.ReadAll()
	testutil.Must(t, err)
	require.Len(t, records, 2)
	require.Equal(t, 1, records[0].Seq)
	require.Equal(t, 2, records[1].Seq)
}

func TestLog_ReadAllIgnoresPartialTail(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t)

	_, err := l.AppendIntent(ctx, wal.NewTxID(), 1, testActor(), intentSpec("a"), "", nil)
	testutil.Must(t, err)
	appendRaw(t, l.Path(), `{"v":1,"txId":"truncated-by-a-cra`)

	records, err := l.ReadAll()
	testutil.Must(t, err)
	require.Len(t, records, 1)
}

func TestLog_ReadAllMissingFile(t *testing.T) {
	l := openTestLog(t)
	records, err := l.ReadAll()
	testutil.Must(t, err)
	require.Empty(t, records)
}

func TestLog_WireFormat(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t)

	_, err := l.AppendIntent(ctx, wal.NewTxID(), 1, testActor(), intentSpec("thermostat"), "seasonal rename", nil)
	testutil.Must(t, err)

	raw := strings.TrimSpace(testutil.ReadFileString(t, l.Path()))
	var line map[string]interface{}
	testutil.Must(t, json.Unmarshal([]byte(raw), &line))
	for _, key := range []string{"v", "ts", "txId", "seq", "type", "actor", "op", "reason"} {
		require.Contains(t, line, key)
	}
	require.NotContains(t, line, "error")

	op, ok := line["op"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"kind", "target", "before", "after", "inverse"} {
		require.Contains(t, op, key)
	}
}

func TestLog_ConcurrentAppends(t *testing.T) {
	const (
		writers          = 8
		appendsPerWriter = 25
	)
	ctx := context.Background()
	l := openTestLog(t)

	var g errgroup.Group
	for i := 0; i < writers; i++ {
		txID := fmt.Sprintf("%s-w%02d", wal.NewTxID(), i)
		g.Go(func() error {
			for seq := 1; seq <= appendsPerWriter; seq++ {
				if _, err := l.AppendIntent(ctx, txID, seq, testActor(), intentSpec("device"), "", nil); err != nil {
					return err
				}
			}
			return nil
		})
	}
	testutil.Must(t, g.Wait())

	records, err := l.ReadAll()
	testutil.Must(t, err)
	require.Len(t, records, writers*appendsPerWriter, "interleaved appends must never corrupt lines")
}

func TestNewTxID(t *testing.T) {
	a := wal.NewTxID()
	b := wal.NewTxID()
	require.NotEqual(t, a, b)
	require.Len(t, a, len("20060102150405")+8)
	_, err := time.Parse("20060102150405", a[:14])
	testutil.Must(t, err)
}
