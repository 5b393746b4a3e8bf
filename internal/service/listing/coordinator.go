package listing

import (
	"context"
	"math/big"

	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/ZilDuck/crafted-market/internal/event"
	"github.com/ZilDuck/crafted-market/internal/fault"
	"github.com/ZilDuck/crafted-market/internal/helper"
	"github.com/ZilDuck/crafted-market/internal/ledger"
	"github.com/ZilDuck/crafted-market/internal/tracker"
	"go.uber.org/zap"
)

// Coordinator runs list, unlist and buy, each through its own tracker.
type Coordinator struct {
	trackers map[entity.TxKind]*tracker.Tracker
}

func NewCoordinator(submitter tracker.Submitter, events *event.Manager) *Coordinator {
	trackers := map[entity.TxKind]*tracker.Tracker{}
	for _, kind := range []entity.TxKind{entity.ListTx, entity.UnlistTx, entity.BuyTx} {
		trackers[kind] = tracker.New(kind, submitter, events)
	}

	return &Coordinator{trackers}
}

// Tracker exposes the tracker of kind, or nil for a kind this coordinator does not run.
func (c *Coordinator) Tracker(kind entity.TxKind) *tracker.Tracker {
	return c.trackers[kind]
}

// List offers tokenId for sale at priceMajor, a decimal amount in major units.
func (c *Coordinator) List(ctx context.Context, account string, tokenId uint64, priceMajor string) (entity.TransactionRecord, error) {
	price, err := helper.ToMinorUnits(priceMajor)
	if err != nil || price.Sign() <= 0 {
		return c.trackers[entity.ListTx].Record(), fault.ErrInvalidPrice
	}

	zap.L().With(zap.String("account", account), zap.Uint64("tokenId", tokenId), zap.String("price", price.String())).Info("Listing: List")

	return c.execute(ctx, ledger.ListCall(account, tokenId, price))
}

func (c *Coordinator) Unlist(ctx context.Context, account string, tokenId uint64) (entity.TransactionRecord, error) {
	zap.L().With(zap.String("account", account), zap.Uint64("tokenId", tokenId)).Info("Listing: Unlist")

	return c.execute(ctx, ledger.UnlistCall(account, tokenId))
}

// Buy purchases tokenId, attaching priceMinor as the transferred value.
func (c *Coordinator) Buy(ctx context.Context, account string, tokenId uint64, priceMinor *big.Int) (entity.TransactionRecord, error) {
	if priceMinor == nil {
		priceMinor = new(big.Int)
	}

	zap.L().With(zap.String("account", account), zap.Uint64("tokenId", tokenId), zap.String("price", priceMinor.String())).Info("Listing: Buy")

	return c.execute(ctx, ledger.BuyCall(account, tokenId, priceMinor))
}

func (c *Coordinator) execute(ctx context.Context, call entity.Call) (entity.TransactionRecord, error) {
	if tokenIdInvalid(call.TokenId) {
		return c.trackers[call.Kind].Record(), fault.ErrInvalidToken
	}

	tr := c.trackers[call.Kind]
	if err := tr.Ready(); err != nil {
		return tr.Record(), err
	}

	return tr.Execute(ctx, call)
}

func tokenIdInvalid(tokenId uint64) bool {
	return tokenId == 0
}
