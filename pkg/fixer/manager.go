package fixer

import (
	"context"
	"fmt"
	"sort"

	"github.com/hearthos/fixlog/pkg/fsop"
	"github.com/hearthos/fixlog/pkg/logging"
	"github.com/hearthos/fixlog/pkg/wal"
)

// Manager orchestrates the transaction lifecycle over a single log: begin,
// queue intents, apply, roll back, abort. It keeps no state of its own;
// every decision is derived from a fresh scan of the log, so the in-memory
// view can never diverge from durable state.
type Manager struct {
	log       *wal.Log
	allowlist fsop.Allowlist
	actor     wal.Actor
	logger    logging.Logger
}

// NewManager wires a manager over log. The composition root owns the log's
// lifetime; the manager only borrows it.
func NewManager(log *wal.Log, allowlist fsop.Allowlist, actor wal.Actor, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{log: log, allowlist: allowlist, actor: actor, logger: logger}
}

// Begin allocates a transaction ID. Nothing is written: a transaction with
// no records is indistinguishable from one that never existed.
func (m *Manager) Begin() string {
	return wal.NewTxID()
}

// AppendIntent queues one operation under txID. The inverse is derived here,
// once, and persisted inside the intent; rollback and recovery replay it
// verbatim and never re-derive it from partial state.
func (m *Manager) AppendIntent(ctx context.Context, txID string, seq int, op fsop.Operation, reason string, meta map[string]string) (*wal.Record, error) {
	return m.log.AppendIntent(ctx, txID, seq, m.actor, op.Spec(), reason, meta)
}

// OpResult is the recorded outcome of one operation within an apply pass.
type OpResult struct {
	Seq    int
	Kind   fsop.Kind
	Target string
	Status wal.RecordType
	Error  string
}

// ApplyResult reports an apply pass: one entry per processed operation and
// an overall success flag. Operations after the first failure are never
// attempted and have no entry.
type ApplyResult struct {
	TxID    string
	Ops     []OpResult
	Success bool
}

// Apply executes a transaction's intents in ascending seq order. Each
// success appends an APPLIED outcome and continues; the first failure
// appends a FAILED outcome and stops the transaction. Operation failure is
// reported through the result, not as an error; the returned error is
// reserved for log access and invalid intents.
func (m *Manager) Apply(ctx context.Context, txID string) (*ApplyResult, error) {
	intents, err := m.txIntents(txID)
	if err != nil {
		return nil, err
	}
	if len(intents) == 0 {
		return nil, fmt.Errorf("apply %s: %w", txID, ErrNoIntents)
	}
	sort.Slice(intents, func(i, j int) bool { return intents[i].Seq < intents[j].Seq })

	result := &ApplyResult{TxID: txID, Success: true}
	for _, intent := range intents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if intent.Op == nil {
			return nil, fmt.Errorf("intent seq %d has no operation: %w", intent.Seq, wal.ErrInvalidRecord)
		}
		op, err := fsop.FromSpec(*intent.Op)
		if err != nil {
			return nil, fmt.Errorf("intent seq %d: %w", intent.Seq, err)
		}
		logger := m.logger.WithContext(ctx).WithFields(logging.Fields{
			logging.TxIDFieldKey:   txID,
			logging.SeqFieldKey:    intent.Seq,
			logging.OpKindFieldKey: op.Kind(),
			logging.TargetFieldKey: op.Target(),
		})
		opResult := OpResult{Seq: intent.Seq, Kind: op.Kind(), Target: op.Target()}
		if applyErr := op.Apply(m.allowlist); applyErr != nil {
			errInfo := &wal.ErrorInfo{Name: fsop.ErrorName(applyErr), Message: applyErr.Error()}
			if _, err := m.log.AppendOutcome(ctx, txID, intent.Seq, m.actor, wal.RecordTypeFailed, "", errInfo); err != nil {
				return nil, err
			}
			opResult.Status = wal.RecordTypeFailed
			opResult.Error = applyErr.Error()
			result.Ops = append(result.Ops, opResult)
			result.Success = false
			logger.WithError(applyErr).Warn("operation failed, stopping transaction")
			break
		}
		if _, err := m.log.AppendOutcome(ctx, txID, intent.Seq, m.actor, wal.RecordTypeApplied, "", nil); err != nil {
			return nil, err
		}
		opResult.Status = wal.RecordTypeApplied
		result.Ops = append(result.Ops, opResult)
		logger.Debug("operation applied")
	}
	return result, nil
}

// Rollback undoes a transaction's intents in descending seq order (LIFO,
// later operations may depend on earlier ones), applying each persisted
// inverse. Each success appends ROLLED_BACK; the first failure appends
// FAILED and returns the error, leaving the transaction partially rolled
// back. That partial state is observable and reportable, never silently
// retried.
func (m *Manager) Rollback(ctx context.Context, txID string) error {
	intents, err := m.txIntents(txID)
	if err != nil {
		return err
	}
	if len(intents) == 0 {
		return fmt.Errorf("rollback %s: %w", txID, ErrNoIntents)
	}
	sort.Slice(intents, func(i, j int) bool { return intents[i].Seq > intents[j].Seq })

	for _, intent := range intents {
		if err := ctx.Err(); err != nil {
			return err
		}
		if intent.Op == nil || intent.Op.Inverse == nil {
			return fmt.Errorf("intent seq %d: %w", intent.Seq, ErrMissingInverse)
		}
		inverse, err := fsop.FromSpec(*intent.Op.Inverse)
		if err != nil {
			return fmt.Errorf("intent seq %d inverse: %w", intent.Seq, err)
		}
		logger := m.logger.WithContext(ctx).WithFields(logging.Fields{
			logging.TxIDFieldKey:   txID,
			logging.SeqFieldKey:    intent.Seq,
			logging.OpKindFieldKey: inverse.Kind(),
			logging.TargetFieldKey: inverse.Target(),
		})
		if rollbackErr := inverse.Apply(m.allowlist); rollbackErr != nil {
			errInfo := &wal.ErrorInfo{Name: fsop.ErrorName(rollbackErr), Message: rollbackErr.Error()}
			if _, err := m.log.AppendOutcome(ctx, txID, intent.Seq, m.actor, wal.RecordTypeFailed, "", errInfo); err != nil {
				return err
			}
			logger.WithError(rollbackErr).Error("rollback failed, stopping")
			return fmt.Errorf("rollback %s seq %d: %w", txID, intent.Seq, rollbackErr)
		}
		if _, err := m.log.AppendOutcome(ctx, txID, intent.Seq, m.actor, wal.RecordTypeRolledBack, "", nil); err != nil {
			return err
		}
		logger.Debug("operation rolled back")
	}
	return nil
}

// Abort marks every intent of an in-flight transaction ABORTED without
// touching the filesystem. Aborted transactions are terminal: recovery
// skips them and further aborts are refused.
func (m *Manager) Abort(ctx context.Context, txID string, reason string) error {
	records, err := m.log.TxRecords(txID)
	if err != nil {
		return err
	}
	state := wal.DeriveState(records)
	if state == wal.TxStateUnknown {
		return fmt.Errorf("abort %s: %w", txID, ErrNoIntents)
	}
	if state.Terminal() {
		return fmt.Errorf("abort %s in state %s: %w", txID, state, ErrTxTerminal)
	}

	var intents []wal.Record
	for _, rec := range records {
		if rec.Type == wal.RecordTypeIntent {
			intents = append(intents, rec)
		}
	}
	sort.Slice(intents, func(i, j int) bool { return intents[i].Seq < intents[j].Seq })
	for _, intent := range intents {
		if _, err := m.log.AppendOutcome(ctx, txID, intent.Seq, m.actor, wal.RecordTypeAborted, reason, nil); err != nil {
			return err
		}
	}
	m.logger.WithContext(ctx).WithFields(logging.Fields{
		logging.TxIDFieldKey:   txID,
		logging.ReasonFieldKey: reason,
	}).Info("transaction aborted")
	return nil
}

// State derives the transaction's current state from the log.
func (m *Manager) State(txID string) (wal.TxState, error) {
	return m.log.TxState(txID)
}

// Records returns the transaction's records in append order.
func (m *Manager) Records(txID string) ([]wal.Record, error) {
	return m.log.TxRecords(txID)
}

// ListTransactions returns per-transaction summaries for the whole log.
func (m *Manager) ListTransactions() ([]wal.TxSummary, error) {
	return m.log.ListTransactions()
}

func (m *Manager) txIntents(txID string) ([]wal.Record, error) {
	records, err := m.log.TxRecords(txID)
	if err != nil {
		return nil, err
	}
	var intents []wal.Record
	for _, rec := range records {
		if rec.Type == wal.RecordTypeIntent {
			intents = append(intents, rec)
		}
	}
	return intents, nil
}
