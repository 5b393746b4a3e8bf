// Package tracker wraps one ledger-mutating call at a time in an explicit lifecycle:
//
//	idle -> pending -> confirming -> confirmed
//	           \            \
//	            +------------+-> failed
//
// Reset is the only way out of a terminal state. Entering confirmed emits a single
// event.TxConfirmedEvent carrying the final record.
package tracker

import (
	"context"
	"sync"

	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/ZilDuck/crafted-market/internal/event"
	"github.com/ZilDuck/crafted-market/internal/fault"
	"go.uber.org/zap"
)

// Submitter is the ledger side of a tracked call.
type Submitter interface {
	Send(ctx context.Context, call entity.Call) (string, error)
	WaitMined(ctx context.Context, handle string) error
}

type Tracker struct {
	kind      entity.TxKind
	submitter Submitter
	events    *event.Manager

	mu     sync.Mutex
	record entity.TransactionRecord
	// generation changes on every Reset so a detached call cannot write into a newer record
	generation uint64
}

func New(kind entity.TxKind, submitter Submitter, events *event.Manager) *Tracker {
	return &Tracker{
		kind:      kind,
		submitter: submitter,
		events:    events,
		record:    entity.TransactionRecord{Kind: kind, Status: entity.TxIdle},
	}
}

func (t *Tracker) Kind() entity.TxKind {
	return t.kind
}

// Record returns a snapshot of the current lifecycle state.
func (t *Tracker) Record() entity.TransactionRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.record
}

func (t *Tracker) Status() entity.TxStatus {
	return t.Record().Status
}

// Execute submits call and waits for its block inclusion.
func (t *Tracker) Execute(ctx context.Context, call entity.Call) (entity.TransactionRecord, error) {
	if _, err := t.Submit(ctx, call); err != nil {
		return t.Record(), err
	}

	return t.Await(ctx)
}

// Submit hands call to the wallet/ledger and returns the ledger-assigned handle.
// It fails with AlreadyInProgress unless the tracker is idle.
func (t *Tracker) Submit(ctx context.Context, call entity.Call) (string, error) {
	if call.Kind == "" {
		call.Kind = t.kind
	}
	if call.Kind != t.kind {
		return "", fault.Newf(fault.ValidationError, "%s tracker cannot submit a %s call", t.kind, call.Kind)
	}

	t.mu.Lock()
	if t.record.Status != entity.TxIdle {
		status := t.record.Status
		t.mu.Unlock()
		zap.L().With(zap.String("kind", string(t.kind)), zap.String("status", string(status))).Debug("Tracker: Submit rejected")
		return "", fault.ErrInProgress
	}
	t.record = entity.TransactionRecord{
		Kind:    t.kind,
		Status:  entity.TxPending,
		Account: call.Account,
		TokenId: call.TokenId,
	}
	generation := t.generation
	t.mu.Unlock()

	zap.L().With(zap.String("kind", string(t.kind)), zap.Uint64("tokenId", call.TokenId)).Info("Tracker: Pending")

	handle, err := t.submitter.Send(ctx, call)
	if err != nil {
		t.fail(generation, err)
		return "", err
	}

	if applied, _, _ := t.transition(generation, isPending, func(r *entity.TransactionRecord) {
		r.Status = entity.TxConfirming
		r.Handle = handle
	}); !applied {
		return handle, nil
	}

	zap.L().With(zap.String("kind", string(t.kind)), zap.String("handle", handle)).Info("Tracker: Confirming")
	t.events.EmitEvent(event.TxSubmittedEvent, t.Record())

	return handle, nil
}

// Await blocks until the submitted call is included in a block or fails.
func (t *Tracker) Await(ctx context.Context) (entity.TransactionRecord, error) {
	t.mu.Lock()
	record := t.record
	generation := t.generation
	t.mu.Unlock()

	switch record.Status {
	case entity.TxConfirmed:
		return record, nil
	case entity.TxFailed:
		return record, record.Err
	case entity.TxConfirming:
	default:
		return record, fault.Newf(fault.ValidationError, "no submitted %s transaction to await", t.kind)
	}

	if err := t.submitter.WaitMined(ctx, record.Handle); err != nil {
		t.fail(generation, err)
		return t.Record(), err
	}

	applied, confirmed, attached := t.transition(generation, isConfirming, func(r *entity.TransactionRecord) {
		r.Status = entity.TxConfirmed
	})
	if !attached {
		zap.L().With(zap.String("kind", string(t.kind)), zap.String("handle", record.Handle)).Info("Tracker: Detached transaction confirmed")
		record.Status = entity.TxConfirmed
		return record, nil
	}
	if !applied {
		// another waiter already settled this call
		return confirmed, confirmed.Err
	}

	zap.L().With(zap.String("kind", string(t.kind)), zap.String("handle", confirmed.Handle)).Info("Tracker: Confirmed")
	t.events.EmitEvent(event.TxConfirmedEvent, confirmed)

	return confirmed, nil
}

// Reset returns the tracker to idle. A call that is still in flight is not revoked:
// its outcome is only logged and no longer reflected in this tracker.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.record.Status == entity.TxIdle {
		return
	}

	if t.record.Status.InFlight() {
		zap.L().With(zap.String("kind", string(t.kind)), zap.String("handle", t.record.Handle)).Info("Tracker: Detaching in-flight transaction")
	}

	t.generation++
	t.record = entity.TransactionRecord{Kind: t.kind, Status: entity.TxIdle}
}

// Ready clears a terminal record so a new call can start. It fails with AlreadyInProgress
// while a call is in flight.
func (t *Tracker) Ready() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.record.Status.InFlight() {
		return fault.ErrInProgress
	}
	if t.record.Status.Terminal() {
		t.generation++
		t.record = entity.TransactionRecord{Kind: t.kind, Status: entity.TxIdle}
	}

	return nil
}

func (t *Tracker) fail(generation uint64, err error) {
	applied, failed, attached := t.transition(generation, entity.TxStatus.InFlight, func(r *entity.TransactionRecord) {
		r.Status = entity.TxFailed
		r.Err = err
	})
	if !attached {
		zap.L().With(zap.Error(err), zap.String("kind", string(t.kind))).Info("Tracker: Detached transaction failed")
		return
	}
	if !applied {
		zap.L().With(zap.Error(err), zap.String("kind", string(t.kind)), zap.String("status", string(failed.Status))).Debug("Tracker: Failure ignored on settled record")
		return
	}

	zap.L().With(zap.Error(err), zap.String("kind", string(t.kind)), zap.String("error_kind", string(fault.KindOf(err)))).Warn("Tracker: Failed")
	t.events.EmitEvent(event.TxFailedEvent, failed)
}

// transition applies fn when the tracker still belongs to generation and the record is in
// a status accepted by from. It returns the record as it stands afterwards.
func (t *Tracker) transition(generation uint64, from func(entity.TxStatus) bool, fn func(r *entity.TransactionRecord)) (applied bool, current entity.TransactionRecord, attached bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.generation != generation {
		return false, t.record, false
	}
	if !from(t.record.Status) {
		return false, t.record, true
	}
	fn(&t.record)

	return true, t.record, true
}

func isPending(s entity.TxStatus) bool {
	return s == entity.TxPending
}

func isConfirming(s entity.TxStatus) bool {
	return s == entity.TxConfirming
}
