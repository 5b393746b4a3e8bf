package catalog

import (
	"context"
	"math/big"

	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/ZilDuck/crafted-market/internal/fault"
	"go.uber.org/zap"
)

type Reader interface {
	TokenCount(ctx context.Context) (uint64, error)
	MarketFeePercent(ctx context.Context) (*big.Int, error)
	AllListed(ctx context.Context) ([]entity.MarketItem, error)
	MarketItem(ctx context.Context, tokenId uint64) (entity.MarketItem, error)
}

type Service interface {
	Listed(ctx context.Context) ([]entity.MarketItem, error)
	Item(ctx context.Context, tokenId uint64) (entity.MarketItem, error)
	MarketFee(ctx context.Context) (*big.Int, error)
}

type service struct {
	reader Reader
}

func NewService(reader Reader) Service {
	return service{reader}
}

// Listed returns every item currently for sale.
func (s service) Listed(ctx context.Context) ([]entity.MarketItem, error) {
	items, err := s.reader.AllListed(ctx)
	if err != nil {
		return nil, err
	}

	listed := make([]entity.MarketItem, 0, len(items))
	for _, item := range items {
		if !item.IsListed || !item.Valid() {
			zap.L().With(zap.Uint64("tokenId", item.TokenId)).Debug("Catalog: Skipping item that is not for sale")
			continue
		}
		listed = append(listed, item)
	}

	return listed, nil
}

// Item reads a single item after checking tokenId against the number of minted tokens.
func (s service) Item(ctx context.Context, tokenId uint64) (entity.MarketItem, error) {
	if tokenId == 0 {
		return entity.MarketItem{}, fault.ErrInvalidToken
	}

	count, err := s.reader.TokenCount(ctx)
	if err != nil {
		return entity.MarketItem{}, err
	}
	if tokenId > count {
		zap.L().With(zap.Uint64("tokenId", tokenId), zap.Uint64("tokenCount", count)).Debug("Catalog: Token out of range")
		return entity.MarketItem{}, fault.ErrInvalidToken
	}

	return s.reader.MarketItem(ctx, tokenId)
}

func (s service) MarketFee(ctx context.Context) (*big.Int, error) {
	return s.reader.MarketFeePercent(ctx)
}
