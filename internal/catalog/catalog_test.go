package catalog

import (
	"context"
	"math/big"
	"testing"

	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/ZilDuck/crafted-market/internal/fault"
	"github.com/ZilDuck/crafted-market/internal/ledger/ledgertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"

func newTestCatalog() (Service, *ledgertest.Marketplace) {
	market := ledgertest.NewMarketplace()
	market.Seed(entity.MarketItem{TokenId: 1, CurrentOwner: owner, Price: big.NewInt(10), IsListed: true})
	market.Seed(entity.MarketItem{TokenId: 2, CurrentOwner: owner})
	market.Seed(entity.MarketItem{TokenId: 3, CurrentOwner: owner, Price: big.NewInt(30), IsListed: true})

	return NewService(market), market
}

func TestListed(t *testing.T) {
	c, _ := newTestCatalog()

	items, err := c.Listed(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, uint64(1), items[0].TokenId)
	assert.Equal(t, uint64(3), items[1].TokenId)
}

func TestItemBounds(t *testing.T) {
	c, market := newTestCatalog()

	for _, tokenId := range []uint64{0, 4, 100} {
		_, err := c.Item(context.Background(), tokenId)
		assert.ErrorIs(t, err, fault.ErrInvalidToken, tokenId)
	}
	assert.Equal(t, 0, market.ReadCount("tokenIdToMarketItem"))

	item, err := c.Item(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(30), item.Price.Int64())
}

func TestMarketFee(t *testing.T) {
	c, market := newTestCatalog()
	market.FeePercent = big.NewInt(4)

	fee, err := c.MarketFee(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), fee.Int64())
}
