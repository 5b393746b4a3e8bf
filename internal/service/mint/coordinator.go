package mint

import (
	"context"
	"math/big"
	"strconv"
	"strings"
	"sync"

	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/ZilDuck/crafted-market/internal/fault"
	"github.com/ZilDuck/crafted-market/internal/helper"
	"github.com/ZilDuck/crafted-market/internal/ledger"
	"github.com/ZilDuck/crafted-market/internal/publisher"
	"github.com/ZilDuck/crafted-market/internal/tracker"
	"go.uber.org/zap"
)

type Publisher interface {
	PublishAsset(ctx context.Context, data []byte) (entity.Published, error)
	PublishDescriptor(ctx context.Context, input publisher.DescriptorInput) (entity.Published, error)
}

type FeeReader interface {
	MarketFeePercent(ctx context.Context) (*big.Int, error)
}

type MintRequest struct {
	Account     string
	Name        string
	Description string
	// Price in major units, e.g. "0.02".
	Price   string
	Royalty string
}

type Options struct {
	DefaultFeePercent int64
	FeeFallback       bool
}

type Coordinator struct {
	publisher Publisher
	fees      FeeReader
	tracker   *tracker.Tracker
	options   Options

	mu    sync.Mutex
	asset *entity.Published
}

func NewCoordinator(publisher Publisher, fees FeeReader, tracker *tracker.Tracker, options Options) *Coordinator {
	return &Coordinator{
		publisher: publisher,
		fees:      fees,
		tracker:   tracker,
		options:   options,
	}
}

func (c *Coordinator) Tracker() *tracker.Tracker {
	return c.tracker
}

// Upload publishes the asset bytes and keeps the result for the next Mint.
func (c *Coordinator) Upload(ctx context.Context, data []byte) (entity.Published, error) {
	published, err := c.publisher.PublishAsset(ctx, data)
	if err != nil {
		return entity.Published{}, err
	}

	c.mu.Lock()
	c.asset = &published
	c.mu.Unlock()

	return published, nil
}

// Asset returns the uploaded asset awaiting a mint, if any.
func (c *Coordinator) Asset() (entity.Published, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.asset == nil {
		return entity.Published{}, false
	}

	return *c.asset, true
}

// Mint publishes the descriptor of the uploaded asset and records it on the ledger.
func (c *Coordinator) Mint(ctx context.Context, req MintRequest) (entity.TransactionRecord, error) {
	price, royalty, err := validate(req)
	if err != nil {
		return c.tracker.Record(), err
	}

	asset, ok := c.Asset()
	if !ok {
		return c.tracker.Record(), fault.ErrMissingAsset
	}

	if err := c.tracker.Ready(); err != nil {
		return c.tracker.Record(), err
	}

	descriptor, err := c.publisher.PublishDescriptor(ctx, publisher.DescriptorInput{
		AssetContentId: asset.ContentId,
		Name:           req.Name,
		Description:    req.Description,
	})
	if err != nil {
		return c.tracker.Record(), err
	}

	rate, err := c.feePercent(ctx)
	if err != nil {
		return c.tracker.Record(), err
	}
	fee := Fee(price, rate)

	zap.L().With(
		zap.String("account", req.Account),
		zap.String("descriptor", descriptor.ContentId),
		zap.String("price", price.String()),
		zap.String("fee", fee.String()),
	).Info("Mint: Submitting")

	record, err := c.tracker.Execute(ctx, ledger.MintCall(req.Account, descriptor.ContentId, price, royalty, fee))
	if err != nil {
		return record, err
	}

	c.mu.Lock()
	if c.asset != nil && c.asset.ContentId == asset.ContentId {
		c.asset = nil
	}
	c.mu.Unlock()

	return record, nil
}

// Fee is the listing fee for price at rate percent, rounded down.
func Fee(price *big.Int, rate *big.Int) *big.Int {
	fee := new(big.Int).Mul(price, rate)
	return fee.Div(fee, big.NewInt(100))
}

func (c *Coordinator) feePercent(ctx context.Context) (*big.Int, error) {
	rate, err := c.fees.MarketFeePercent(ctx)
	if err == nil && rate != nil {
		return rate, nil
	}

	if !c.options.FeeFallback {
		if err == nil {
			return nil, fault.New(fault.FeeRateUnknown, "market fee percent unavailable")
		}
		return nil, fault.Wrapf(fault.FeeRateUnknown, err, "market fee percent")
	}

	zap.L().With(zap.Error(err), zap.Int64("fallback", c.options.DefaultFeePercent)).Warn("Mint: Fee percent unavailable, using fallback")

	return big.NewInt(c.options.DefaultFeePercent), nil
}

func validate(req MintRequest) (*big.Int, uint8, error) {
	required := []struct{ field, value string }{
		{"account", req.Account},
		{"name", req.Name},
		{"description", req.Description},
		{"price", req.Price},
		{"royalty", req.Royalty},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, 0, fault.Newf(fault.ValidationError, "%s is required", r.field)
		}
	}

	royalty, err := strconv.Atoi(strings.TrimSpace(req.Royalty))
	if err != nil || royalty < 0 || royalty > entity.MaxRoyaltyFeePercent {
		return nil, 0, fault.Newf(fault.ValidationError, "royalty must be a whole number between 0 and %d", entity.MaxRoyaltyFeePercent)
	}

	price, err := helper.ToMinorUnits(req.Price)
	if err != nil || price.Sign() <= 0 {
		return nil, 0, fault.ErrInvalidPrice
	}

	return price, uint8(royalty), nil
}
