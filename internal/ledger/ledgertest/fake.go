// Package ledgertest provides an in-memory marketplace contract for tests.
package ledgertest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/ZilDuck/crafted-market/internal/fault"
	"github.com/ZilDuck/crafted-market/internal/ledger"
)

// Marketplace applies submitted calls to its item table when they are mined.
type Marketplace struct {
	mu sync.Mutex

	Items      map[uint64]*entity.MarketItem
	TokenURIs  map[uint64]string
	FeePercent *big.Int
	FeeErr     error

	// SendErr, when set, is returned by the next Send.
	SendErr error
	// WaitErr, when set, is returned by WaitMined and the pending call is dropped.
	WaitErr error
	// Gate, when set, holds every WaitMined until it receives or is closed.
	Gate chan struct{}

	Sent      []entity.Call
	Reads     map[string]int
	pending   map[string]entity.Call
	nextToken uint64
	nextTx    int
}

func NewMarketplace() *Marketplace {
	return &Marketplace{
		Items:      map[uint64]*entity.MarketItem{},
		TokenURIs:  map[uint64]string{},
		FeePercent: big.NewInt(2),
		Reads:      map[string]int{},
		pending:    map[string]entity.Call{},
	}
}

// Seed stores an item directly, bypassing the transaction flow.
func (m *Marketplace) Seed(item entity.MarketItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item.Price == nil {
		item.Price = new(big.Int)
	}
	m.Items[item.TokenId] = &item
	if item.TokenId > m.nextToken {
		m.nextToken = item.TokenId
	}
}

func (m *Marketplace) Item(tokenId uint64) entity.MarketItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	return *m.Items[tokenId]
}

func (m *Marketplace) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Sent)
}

func (m *Marketplace) ReadCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Reads[method]
}

func (m *Marketplace) TokenCount(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads["tokenCount"]++

	return m.nextToken, nil
}

func (m *Marketplace) MarketFeePercent(ctx context.Context) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads["getMarketFeePercent"]++

	if m.FeeErr != nil {
		return nil, m.FeeErr
	}

	return new(big.Int).Set(m.FeePercent), nil
}

func (m *Marketplace) OwnedBy(ctx context.Context, account string) ([]entity.MarketItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads["getNFTsOwnedByUser"]++

	return m.filter(func(i *entity.MarketItem) bool { return i.OwnedBy(account) }), nil
}

func (m *Marketplace) AllListed(ctx context.Context) ([]entity.MarketItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads["getAllListedNFTs"]++

	return m.filter(func(i *entity.MarketItem) bool { return i.IsListed }), nil
}

func (m *Marketplace) MarketItem(ctx context.Context, tokenId uint64) (entity.MarketItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads["tokenIdToMarketItem"]++

	item, ok := m.Items[tokenId]
	if !ok {
		return entity.MarketItem{Price: new(big.Int)}, nil
	}

	return copyItem(item), nil
}

func (m *Marketplace) TokenURI(ctx context.Context, tokenId uint64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads["tokenURI"]++

	uri, ok := m.TokenURIs[tokenId]
	if !ok {
		return "", fault.New(fault.LedgerRejected, "execution reverted: ERC721: invalid token ID")
	}

	return uri, nil
}

func (m *Marketplace) Send(ctx context.Context, call entity.Call) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Sent = append(m.Sent, call)
	if m.SendErr != nil {
		err := m.SendErr
		m.SendErr = nil
		return "", err
	}

	m.nextTx++
	handle := fmt.Sprintf("0x%064x", m.nextTx)
	m.pending[handle] = call

	return handle, nil
}

func (m *Marketplace) WaitMined(ctx context.Context, handle string) error {
	m.mu.Lock()
	gate := m.Gate
	m.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return fault.Wrapf(fault.NetworkError, ctx.Err(), "waiting for %s", handle)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	call, ok := m.pending[handle]
	if !ok {
		return fault.Newf(fault.NetworkError, "unknown transaction %s", handle)
	}
	delete(m.pending, handle)

	if m.WaitErr != nil {
		return m.WaitErr
	}

	return m.apply(call)
}

func (m *Marketplace) apply(call entity.Call) error {
	switch call.Method {
	case ledger.MethodMint:
		m.nextToken++
		m.Items[m.nextToken] = &entity.MarketItem{
			TokenId:           m.nextToken,
			Creator:           call.Account,
			CurrentOwner:      call.Account,
			Price:             new(big.Int).Set(call.Args[1].(*big.Int)),
			RoyaltyFeePercent: call.Args[2].(uint8),
		}
		m.TokenURIs[m.nextToken] = call.Args[0].(string)
		return nil
	}

	item, ok := m.Items[call.TokenId]
	if !ok {
		return fault.Newf(fault.LedgerRejected, "transaction reverted: unknown token %d", call.TokenId)
	}

	switch call.Method {
	case ledger.MethodList:
		if !item.OwnedBy(call.Account) || item.IsListed {
			return fault.New(fault.LedgerRejected, "transaction reverted")
		}
		item.Price = new(big.Int).Set(call.Args[1].(*big.Int))
		item.IsListed = true
	case ledger.MethodUnlist:
		if !item.OwnedBy(call.Account) || !item.IsListed {
			return fault.New(fault.LedgerRejected, "transaction reverted")
		}
		item.IsListed = false
	case ledger.MethodBuy:
		if !item.IsListed || call.Value == nil || call.Value.Cmp(item.Price) != 0 {
			return fault.New(fault.LedgerRejected, "transaction reverted")
		}
		item.CurrentOwner = call.Account
		item.IsListed = false
	default:
		return fault.Newf(fault.LedgerRejected, "unknown method %s", call.Method)
	}

	return nil
}

func (m *Marketplace) filter(keep func(i *entity.MarketItem) bool) []entity.MarketItem {
	items := make([]entity.MarketItem, 0)
	for id := uint64(1); id <= m.nextToken; id++ {
		if item, ok := m.Items[id]; ok && keep(item) {
			items = append(items, copyItem(item))
		}
	}

	return items
}

func copyItem(item *entity.MarketItem) entity.MarketItem {
	c := *item
	c.Price = new(big.Int).Set(item.Price)

	return c
}

var _ ledger.Service = (*Marketplace)(nil)
