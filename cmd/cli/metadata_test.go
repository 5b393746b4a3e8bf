package main

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/ZilDuck/crafted-market/internal/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog map[uint64]entity.MarketItem

func (c fakeCatalog) Listed(ctx context.Context) ([]entity.MarketItem, error) {
	return nil, nil
}

func (c fakeCatalog) Item(ctx context.Context, tokenId uint64) (entity.MarketItem, error) {
	item, ok := c[tokenId]
	if !ok {
		return entity.MarketItem{}, fault.Newf(fault.ValidationError, "token %d not found", tokenId)
	}

	return item, nil
}

func (c fakeCatalog) MarketFee(ctx context.Context) (*big.Int, error) {
	return big.NewInt(2), nil
}

type fakeResolver struct {
	descriptor entity.AssetDescriptor
	err        error
}

func (r fakeResolver) Resolve(ctx context.Context, tokenId uint64, contentId string) (entity.AssetDescriptor, error) {
	return r.descriptor, r.err
}

func (r fakeResolver) ResolveToken(ctx context.Context, tokenId uint64) (entity.AssetDescriptor, error) {
	return r.descriptor, r.err
}

func TestDescribeItem(t *testing.T) {
	items := fakeCatalog{7: {TokenId: 7}}

	described, err := describeItem(context.Background(), items, fakeResolver{descriptor: entity.AssetDescriptor{Name: "Duck"}}, 7)
	require.NoError(t, err)
	assert.Equal(t, "Duck", described.Descriptor.Name)
	assert.False(t, described.Pending)
}

func TestDescribeItemShowsPlaceholderWhenMetadataUnavailable(t *testing.T) {
	items := fakeCatalog{7: {TokenId: 7}}
	unavailable := fault.Wrapf(fault.MetadataUnavailable, errors.New("gateway returned 504"), "token %d", 7)

	described, err := describeItem(context.Background(), items, fakeResolver{err: unavailable}, 7)
	require.NoError(t, err)
	assert.True(t, described.Pending)
	assert.Equal(t, uint64(7), described.TokenId)
	assert.Equal(t, "Token #7", described.Descriptor.Name)
}

func TestDescribeItemReturnsOtherFailures(t *testing.T) {
	items := fakeCatalog{7: {TokenId: 7}}

	_, err := describeItem(context.Background(), items, fakeResolver{err: fault.New(fault.NetworkError, "connection refused")}, 7)
	assert.True(t, fault.Is(err, fault.NetworkError))

	_, err = describeItem(context.Background(), items, fakeResolver{}, 8)
	assert.True(t, fault.Is(err, fault.ValidationError))
}
