package fixer

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/xid"

	"github.com/hearthos/fixlog/pkg/logging"
)

// TxError pairs a transaction with its rollback failure.
type TxError struct {
	TxID string
	Err  error
}

// RecoveryReport enumerates what one recovery pass found and did.
type RecoveryReport struct {
	RunID      string
	Found      []string
	RolledBack []string
	Failed     []TxError
}

// Recover rolls back every in-flight transaction, oldest first. A failed
// rollback is captured per transaction and never blocks recovery of the
// others; the per-transaction errors are also aggregated into the returned
// error. Terminal transactions are never touched and a failed rollback is
// never auto-retried, so a second pass over the same log finds nothing.
func (m *Manager) Recover(ctx context.Context) (*RecoveryReport, error) {
	runID := xid.New().String()
	logger := m.logger.WithContext(ctx).WithField(logging.RunIDFieldKey, runID)

	inFlight, err := m.log.ListInFlight()
	if err != nil {
		return nil, err
	}
	report := &RecoveryReport{RunID: runID, Found: inFlight}
	if len(inFlight) == 0 {
		logger.Debug("no in-flight transactions")
		return report, nil
	}
	logger.WithField("count", len(inFlight)).Info("recovering in-flight transactions")

	var merr *multierror.Error
	for _, txID := range inFlight {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := m.Rollback(ctx, txID); err != nil {
			report.Failed = append(report.Failed, TxError{TxID: txID, Err: err})
			merr = multierror.Append(merr, fmt.Errorf("recover %s: %w", txID, err))
			logger.WithError(err).WithField(logging.TxIDFieldKey, txID).Error("rollback failed")
			continue
		}
		report.RolledBack = append(report.RolledBack, txID)
		logger.WithField(logging.TxIDFieldKey, txID).Info("transaction rolled back")
	}
	return report, merr.ErrorOrNil()
}
