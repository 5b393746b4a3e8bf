// Package ownership keeps a cached view of the items one account holds and
// re-reads it from the ledger whenever a tracked call of that account is confirmed.
package ownership

import (
	"context"
	"sync"
	"time"

	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/ZilDuck/crafted-market/internal/event"
	"github.com/ZilDuck/crafted-market/internal/fault"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type OwnedReader interface {
	OwnedBy(ctx context.Context, account string) ([]entity.MarketItem, error)
}

type ViewModel struct {
	account string
	reader  OwnedReader
	events  *event.Manager
	timeout time.Duration

	group singleflight.Group

	mu   sync.RWMutex
	view entity.OwnershipView
}

const refreshKey = "refresh"

func NewViewModel(account string, reader OwnedReader, events *event.Manager, timeout time.Duration) *ViewModel {
	vm := &ViewModel{
		account: account,
		reader:  reader,
		events:  events,
		timeout: timeout,
		view:    entity.NewOwnershipView(account, nil),
	}

	events.AddEventListener(event.TxConfirmedEvent, vm.onConfirmed)

	return vm
}

func (vm *ViewModel) Account() string {
	return vm.account
}

// View returns the last refreshed snapshot.
func (vm *ViewModel) View() entity.OwnershipView {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	return vm.view
}

// Refresh replaces the cached view with a full read from the ledger. Callers arriving
// while a refresh is outstanding share its result.
func (vm *ViewModel) Refresh(ctx context.Context) (entity.OwnershipView, error) {
	if vm.account == "" {
		return vm.View(), fault.New(fault.ValidationError, "no account connected")
	}

	v, err, _ := vm.group.Do(refreshKey, func() (interface{}, error) {
		owned, err := vm.reader.OwnedBy(ctx, vm.account)
		if err != nil {
			return nil, err
		}

		view := entity.NewOwnershipView(vm.account, owned)

		vm.mu.Lock()
		vm.view = view
		vm.mu.Unlock()

		zap.L().With(
			zap.String("account", vm.account),
			zap.Int("owned", len(view.Owned)),
			zap.Int("listed", len(view.Listed)),
		).Debug("Ownership: Refreshed")
		vm.events.EmitEvent(event.ViewRefreshedEvent, view)

		return view, nil
	})
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("account", vm.account)).Warn("Ownership: Refresh failed")
		return vm.View(), err
	}

	return v.(entity.OwnershipView), nil
}

func (vm *ViewModel) onConfirmed(msg interface{}) {
	record, ok := msg.(entity.TransactionRecord)
	if !ok || !entity.SameAccount(record.Account, vm.account) {
		return
	}

	ctx := context.Background()
	if vm.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, vm.timeout)
		defer cancel()
	}

	_, _ = vm.Refresh(ctx)
}
