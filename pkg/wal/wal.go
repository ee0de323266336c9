package wal

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/hearthos/fixlog/pkg/fsop"
	"github.com/hearthos/fixlog/pkg/logging"
)

// LockSuffix names the sibling lock file next to the log file.
const LockSuffix = ".lock"

const (
	logFileMode    = 0o644
	lockRetryDelay = 25 * time.Millisecond
)

// Log is a handle over an append-only transaction log file and its sibling
// lock file. Appends serialize on an exclusive file lock, held only for the
// duration of a single append; reads never take the lock. The log file and
// its parent directories are created on first append.
type Log struct {
	mu     sync.Mutex
	path   string
	fl     *flock.Flock
	logger logging.Logger
}

// Open returns a handle for the log file at path. No I/O happens until the
// first append or read.
func Open(path string, logger logging.Logger) *Log {
	if logger == nil {
		logger = logging.Default()
	}
	return &Log{
		path:   path,
		fl:     flock.New(path + LockSuffix),
		logger: logger.WithField(logging.LogFileFieldKey, path),
	}
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// LockPath returns the sibling lock file path.
func (l *Log) LockPath() string {
	return l.fl.Path()
}

// AppendIntent durably appends an INTENT record carrying the operation spec.
// The op spec must already embed its inverse; recovery replays it verbatim
// and never re-derives it.
func (l *Log) AppendIntent(ctx context.Context, txID string, seq int, actor Actor, spec fsop.Spec, reason string, meta map[string]string) (*Record, error) {
	if txID == "" {
		return nil, fmt.Errorf("empty txId: %w", ErrInvalidRecord)
	}
	if spec.Kind == "" || spec.Target == "" {
		return nil, fmt.Errorf("intent requires an operation spec: %w", ErrInvalidRecord)
	}
	rec := &Record{
		V:         SchemaVersion,
		Timestamp: time.Now().UTC(),
		TxID:      txID,
		Seq:       seq,
		Type:      RecordTypeIntent,
		Actor:     actor,
		Op:        &spec,
		Reason:    reason,
		Meta:      meta,
	}
	if err := l.append(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// AppendOutcome durably appends an outcome record for a previously intended
// seq. errInfo travels on FAILED outcomes only.
func (l *Log) AppendOutcome(ctx context.Context, txID string, seq int, actor Actor, typ RecordType, reason string, errInfo *ErrorInfo) (*Record, error) {
	if txID == "" {
		return nil, fmt.Errorf("empty txId: %w", ErrInvalidRecord)
	}
	if !typ.Outcome() {
		return nil, fmt.Errorf("%q is not an outcome type: %w", typ, ErrInvalidRecord)
	}
	rec := &Record{
		V:         SchemaVersion,
		Timestamp: time.Now().UTC(),
		TxID:      txID,
		Seq:       seq,
		Type:      typ,
		Actor:     actor,
		Reason:    reason,
		Error:     errInfo,
	}
	if err := l.append(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// append writes one record as one JSON line under the exclusive file lock
// and fsyncs before returning. A crash immediately after append returns must
// not lose the record.
func (l *Log) append(ctx context.Context, rec *Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	line = append(line, '\n')

	start := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), os.ModePerm); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	locked, err := l.fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire %s: %w", l.fl.Path(), err)
	}
	if !locked {
		return fmt.Errorf("%s: %w", l.fl.Path(), ErrLogLocked)
	}
	defer func() {
		if err := l.fl.Unlock(); err != nil {
			l.logger.WithError(err).Error("release log lock")
		}
	}()

	created := false
	if _, err := os.Stat(l.path); errors.Is(err, fs.ErrNotExist) {
		created = true
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("append record: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close log: %w", err)
	}
	if created {
		if err := syncDir(filepath.Dir(l.path)); err != nil {
			return fmt.Errorf("sync log directory: %w", err)
		}
	}
	appendDurations.WithLabelValues(string(rec.Type)).Observe(time.Since(start).Seconds())

	l.logger.WithFields(logging.Fields{
		logging.TxIDFieldKey:       rec.TxID,
		logging.SeqFieldKey:        rec.Seq,
		logging.RecordTypeFieldKey: rec.Type,
	}).Debug("record appended")
	return nil
}

// ReadAll scans the whole log in append order. Corrupt lines are counted,
// logged and skipped, never halting the scan. Reading does not take the log
// lock, so a concurrent append can show up as a partial trailing line; that
// line is ignored, it says nothing about earlier records.
func (l *Log) ReadAll() ([]Record, error) {
	var records []Record
	err := l.scanLines(func(line []byte, lineNum int, partial bool) {
		if partial {
			l.logger.WithField(logging.LineFieldKey, lineNum).Debug("ignoring partial trailing line")
			return
		}
		linesScanned.Inc()
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			linesCorrupt.Inc()
			l.logger.WithError(err).WithField(logging.LineFieldKey, lineNum).Warn("skipping corrupt log line")
			return
		}
		records = append(records, rec)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// scanLines streams non-blank physical lines to fn. partial marks a trailing
// line with no terminator. Scanning a missing log file is a no-op.
func (l *Log) scanLines(fn func(line []byte, lineNum int, partial bool)) error {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := bufio.NewReader(f)
	for lineNum := 1; ; lineNum++ {
		line, readErr := r.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("read log: %w", readErr)
		}
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			fn(trimmed, lineNum, readErr != nil)
		}
		if readErr != nil {
			return nil
		}
	}
}

// syncDir fsyncs a directory so a newly created log file survives a crash.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	return d.Sync()
}
