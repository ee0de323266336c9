package wal

import (
	"sort"
	"time"
)

// TxState is the derived lifecycle state of a transaction. unknown and
// in-flight are the only non-terminal states.
type TxState string

const (
	TxStateUnknown    TxState = "unknown"
	TxStateInFlight   TxState = "in-flight"
	TxStateApplied    TxState = "applied"
	TxStateFailed     TxState = "failed"
	TxStateAborted    TxState = "aborted"
	TxStateRolledBack TxState = "rolled_back"
)

// Terminal reports whether the transaction is at rest: recovery never
// touches it and abort refuses it. A terminal transaction can still be
// rolled back manually.
func (s TxState) Terminal() bool {
	switch s {
	case TxStateApplied, TxStateFailed, TxStateAborted, TxStateRolledBack:
		return true
	default:
		return false
	}
}

var (
	recordState = map[RecordType]TxState{
		RecordTypeIntent:     TxStateInFlight,
		RecordTypeApplied:    TxStateApplied,
		RecordTypeFailed:     TxStateFailed,
		RecordTypeAborted:    TxStateAborted,
		RecordTypeRolledBack: TxStateRolledBack,
	}
	statePrecedence = map[TxState]int{
		TxStateUnknown:    0,
		TxStateInFlight:   1,
		TxStateApplied:    2,
		TxStateFailed:     3,
		TxStateAborted:    4,
		TxStateRolledBack: 5,
	}
)

// DeriveState folds a transaction's records into its state. The fold is
// order independent: the highest-precedence record type present wins, and a
// transaction with no records at all is unknown.
func DeriveState(records []Record) TxState {
	state := TxStateUnknown
	for _, rec := range records {
		s, ok := recordState[rec.Type]
		if !ok {
			continue
		}
		if statePrecedence[s] > statePrecedence[state] {
			state = s
		}
	}
	return state
}

// TxSummary is a per-transaction rollup for listing.
type TxSummary struct {
	ID        string
	State     TxState
	Ops       int
	FirstTime time.Time
	LastTime  time.Time
}

// TxRecords returns the records of one transaction in append order.
func (l *Log) TxRecords(txID string) ([]Record, error) {
	all, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	var records []Record
	for _, rec := range all {
		if rec.TxID == txID {
			records = append(records, rec)
		}
	}
	return records, nil
}

// TxState derives the state of one transaction. State is always recomputed
// from a full scan; there is no cache that can diverge from durable state.
func (l *Log) TxState(txID string) (TxState, error) {
	records, err := l.TxRecords(txID)
	if err != nil {
		return TxStateUnknown, err
	}
	return DeriveState(records), nil
}

// ListInFlight returns the IDs of all in-flight transactions, sorted
// lexicographically. Time-ordered IDs make the order chronological.
func (l *Log) ListInFlight() ([]string, error) {
	all, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	var ids []string
	for id, records := range groupByTx(all) {
		if DeriveState(records) == TxStateInFlight {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ListTransactions rolls the log up into per-transaction summaries, sorted
// by ID.
func (l *Log) ListTransactions() ([]TxSummary, error) {
	all, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	byTx := groupByTx(all)
	summaries := make([]TxSummary, 0, len(byTx))
	for id, records := range byTx {
		s := TxSummary{ID: id, State: DeriveState(records)}
		for _, rec := range records {
			if rec.Type == RecordTypeIntent {
				s.Ops++
			}
			if s.FirstTime.IsZero() || rec.Timestamp.Before(s.FirstTime) {
				s.FirstTime = rec.Timestamp
			}
			if rec.Timestamp.After(s.LastTime) {
				s.LastTime = rec.Timestamp
			}
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries, nil
}

func groupByTx(records []Record) map[string][]Record {
	byTx := make(map[string][]Record)
	for _, rec := range records {
		byTx[rec.TxID] = append(byTx[rec.TxID], rec)
	}
	return byTx
}
