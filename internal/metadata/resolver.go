package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/ZilDuck/crafted-market/internal/fault"
	"github.com/ZilDuck/crafted-market/internal/helper"
	"github.com/ZilDuck/crafted-market/internal/metadata/cache"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// TokenReader reads the descriptor content identifier an item points at.
type TokenReader interface {
	TokenURI(ctx context.Context, tokenId uint64) (string, error)
}

type Resolver interface {
	Resolve(ctx context.Context, tokenId uint64, contentId string) (entity.AssetDescriptor, error)
	ResolveToken(ctx context.Context, tokenId uint64) (entity.AssetDescriptor, error)
}

type resolver struct {
	client  *retryablehttp.Client
	cache   cache.Cache
	tokens  TokenReader
	gateway string
}

func NewResolver(client *retryablehttp.Client, cache cache.Cache, tokens TokenReader, gateway string) Resolver {
	return resolver{client, cache, tokens, gateway}
}

// Resolve returns the descriptor stored under contentId, from cache when possible.
func (r resolver) Resolve(ctx context.Context, tokenId uint64, contentId string) (entity.AssetDescriptor, error) {
	contentId = helper.IpfsPath(strings.TrimSpace(contentId))
	if contentId == "" {
		return entity.AssetDescriptor{}, fault.Newf(fault.MetadataUnavailable, "token %d has no descriptor", tokenId)
	}

	if descriptor, found := r.cache.Get(contentId); found {
		zap.L().With(zap.Uint64("tokenId", tokenId), zap.String("cid", contentId)).Debug("Metadata: Cache hit")
		return descriptor, nil
	}

	descriptor, err := r.fetch(ctx, contentId)
	if err != nil {
		zap.L().With(zap.Error(err), zap.Uint64("tokenId", tokenId), zap.String("cid", contentId)).Warn("Metadata: Unavailable")
		return entity.AssetDescriptor{}, fault.Wrapf(fault.MetadataUnavailable, err, "descriptor %s", contentId)
	}

	r.cache.Set(contentId, descriptor)

	return descriptor, nil
}

func (r resolver) ResolveToken(ctx context.Context, tokenId uint64) (entity.AssetDescriptor, error) {
	uri, err := r.tokens.TokenURI(ctx, tokenId)
	if err != nil {
		return entity.AssetDescriptor{}, fault.Wrapf(fault.MetadataUnavailable, err, "token %d uri", tokenId)
	}

	return r.Resolve(ctx, tokenId, uri)
}

func (r resolver) fetch(ctx context.Context, contentId string) (entity.AssetDescriptor, error) {
	req, err := retryablehttp.NewRequest("GET", helper.GatewayUrl(r.gateway, contentId), nil)
	if err != nil {
		return entity.AssetDescriptor{}, err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return entity.AssetDescriptor{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return entity.AssetDescriptor{}, errors.New(resp.Status)
	}

	buf := new(bytes.Buffer)
	if _, err = buf.ReadFrom(resp.Body); err != nil {
		return entity.AssetDescriptor{}, err
	}

	var md map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &md); err != nil {
		return entity.AssetDescriptor{}, err
	}

	return r.descriptor(md), nil
}

func (r resolver) descriptor(md map[string]interface{}) entity.AssetDescriptor {
	descriptor := entity.AssetDescriptor{
		Name:        stringField(md, "name"),
		Description: stringField(md, "description"),
		Image:       stringField(md, "image"),
		ExternalUrl: stringField(md, "external_url"),
	}

	if helper.IsIpfs(descriptor.Image) {
		descriptor.Image = helper.GatewayUrl(r.gateway, descriptor.Image)
	}

	return descriptor
}

func stringField(md map[string]interface{}, key string) string {
	if v, ok := md[key].(string); ok {
		return v
	}

	return ""
}
