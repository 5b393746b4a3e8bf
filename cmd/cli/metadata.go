package main

import (
	"context"
	"fmt"

	"github.com/ZilDuck/crafted-market/internal/catalog"
	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/ZilDuck/crafted-market/internal/fault"
	"github.com/ZilDuck/crafted-market/internal/metadata"
	"go.uber.org/zap"
)

type itemMetadata struct {
	TokenId    uint64                 `json:"tokenId"`
	Descriptor entity.AssetDescriptor `json:"descriptor"`
	// Pending marks a placeholder shown while the descriptor cannot be fetched
	Pending bool `json:"pending"`
}

// describeItem resolves the descriptor of a catalogued token. Unavailable metadata degrades
// to a placeholder; any other failure is returned.
func describeItem(ctx context.Context, items catalog.Service, resolver metadata.Resolver, tokenId uint64) (itemMetadata, error) {
	if _, err := items.Item(ctx, tokenId); err != nil {
		return itemMetadata{}, err
	}

	descriptor, err := resolver.ResolveToken(ctx, tokenId)
	if err != nil {
		if !fault.Is(err, fault.MetadataUnavailable) {
			return itemMetadata{}, err
		}
		zap.L().With(zap.Error(err), zap.Uint64("tokenId", tokenId)).Warn("Metadata unavailable, showing placeholder")

		return itemMetadata{TokenId: tokenId, Descriptor: placeholder(tokenId), Pending: true}, nil
	}

	return itemMetadata{TokenId: tokenId, Descriptor: descriptor}, nil
}

func placeholder(tokenId uint64) entity.AssetDescriptor {
	return entity.AssetDescriptor{
		Name:        fmt.Sprintf("Token #%d", tokenId),
		Description: "metadata not available yet",
	}
}
