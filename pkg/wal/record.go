package wal

import (
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/hearthos/fixlog/pkg/fsop"
)

// SchemaVersion is stamped on every record written to the log.
const SchemaVersion = 1

// RecordType is the closed set of line types the log accepts.
type RecordType string

const (
	RecordTypeIntent     RecordType = "INTENT"
	RecordTypeApplied    RecordType = "APPLIED"
	RecordTypeFailed     RecordType = "FAILED"
	RecordTypeRolledBack RecordType = "ROLLED_BACK"
	RecordTypeAborted    RecordType = "ABORTED"
)

func (t RecordType) Valid() bool {
	switch t {
	case RecordTypeIntent, RecordTypeApplied, RecordTypeFailed, RecordTypeRolledBack, RecordTypeAborted:
		return true
	default:
		return false
	}
}

// Outcome reports whether t declares the result of a previously intended
// operation, as opposed to the intent itself.
func (t RecordType) Outcome() bool {
	return t.Valid() && t != RecordTypeIntent
}

// Actor identifies who wrote a record.
type Actor struct {
	Service string `json:"service"`
	User    string `json:"user"`
	Host    string `json:"host"`
}

// ErrorInfo carries the failure detail attached to a FAILED record.
type ErrorInfo struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Record is one log line. Records are immutable once written; the log is
// never rewritten or compacted in place. INTENT records carry the operation
// spec with its precomputed inverse, FAILED records carry the error.
type Record struct {
	V         int               `json:"v"`
	Timestamp time.Time         `json:"ts"`
	TxID      string            `json:"txId"`
	Seq       int               `json:"seq"`
	Type      RecordType        `json:"type"`
	Actor     Actor             `json:"actor"`
	Op        *fsop.Spec        `json:"op,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	Error     *ErrorInfo        `json:"error,omitempty"`
}

// NewTxID returns a time-ordered unique transaction ID. IDs sort
// lexicographically in creation order.
func NewTxID() string {
	const nanoLen = 8
	id := nanoid.Must(nanoLen)
	tm := time.Now().UTC().Format("20060102150405")
	return tm + id
}
