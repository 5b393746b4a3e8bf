package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/ZilDuck/crafted-market/internal/fault"
	"github.com/ZilDuck/crafted-market/internal/metadata/cache"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const descriptorCid = "bafkreihdwdcefgh4dqkjv67uzcmw7ojee6xedzdetojuzjevtenxquvyku"

type tokenURIs map[uint64]string

func (t tokenURIs) TokenURI(ctx context.Context, tokenId uint64) (string, error) {
	uri, ok := t[tokenId]
	if !ok {
		return "", errors.New("execution reverted")
	}
	return uri, nil
}

func newGateway(t *testing.T, body string, status int) (*httptest.Server, *int32) {
	hits := new(int32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "/ipfs/"+descriptorCid, r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, hits
}

func testClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil

	return client
}

func TestResolveFetchesThenCaches(t *testing.T) {
	srv, hits := newGateway(t, `{"name":"Duck","description":"Yellow","image":"ipfs://bafkreiimage","external_url":"https://crafted.example"}`, http.StatusOK)
	r := NewResolver(testClient(), cache.NewMemory(), tokenURIs{}, srv.URL)

	descriptor, err := r.Resolve(context.Background(), 1, descriptorCid)
	require.NoError(t, err)
	assert.Equal(t, "Duck", descriptor.Name)
	assert.Equal(t, "Yellow", descriptor.Description)
	assert.Equal(t, srv.URL+"/ipfs/bafkreiimage", descriptor.Image)
	assert.Equal(t, "https://crafted.example", descriptor.ExternalUrl)

	again, err := r.Resolve(context.Background(), 1, descriptorCid)
	require.NoError(t, err)
	assert.Equal(t, descriptor, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestResolveKeepsHttpImages(t *testing.T) {
	srv, _ := newGateway(t, `{"name":"Duck","description":"d","image":"https://cdn.example/duck.png"}`, http.StatusOK)
	r := NewResolver(testClient(), cache.NewMemory(), tokenURIs{}, srv.URL)

	descriptor, err := r.Resolve(context.Background(), 1, "ipfs://"+descriptorCid)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/duck.png", descriptor.Image)
}

func TestResolveFailuresAreNotCached(t *testing.T) {
	cases := map[string]struct {
		body   string
		status int
	}{
		"status": {`gone`, http.StatusNotFound},
		"json":   {`<html>`, http.StatusOK},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv, _ := newGateway(t, tc.body, tc.status)
			c := cache.NewMemory()
			r := NewResolver(testClient(), c, tokenURIs{}, srv.URL)

			_, err := r.Resolve(context.Background(), 1, descriptorCid)
			assert.True(t, fault.Is(err, fault.MetadataUnavailable))
			assert.Equal(t, 0, c.Len())
		})
	}
}

func TestResolveUsesCacheWithoutNetwork(t *testing.T) {
	c := cache.NewMemory()
	r := NewResolver(testClient(), c, tokenURIs{}, "http://127.0.0.1:1")

	c.Set(descriptorCid, cachedDescriptor())
	descriptor, err := r.Resolve(context.Background(), 1, descriptorCid)
	require.NoError(t, err)
	assert.Equal(t, "Cached", descriptor.Name)
}

func TestResolveToken(t *testing.T) {
	srv, _ := newGateway(t, `{"name":"Duck","description":"Yellow","image":""}`, http.StatusOK)
	r := NewResolver(testClient(), cache.NewMemory(), tokenURIs{3: descriptorCid}, srv.URL)

	descriptor, err := r.ResolveToken(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Duck", descriptor.Name)

	_, err = r.ResolveToken(context.Background(), 4)
	assert.True(t, fault.Is(err, fault.MetadataUnavailable))
	assert.True(t, strings.Contains(err.Error(), "reverted"))
}

func TestResolveEmptyContentId(t *testing.T) {
	r := NewResolver(testClient(), cache.NewMemory(), tokenURIs{}, "gateway.test")

	_, err := r.Resolve(context.Background(), 1, " ")
	assert.True(t, fault.Is(err, fault.MetadataUnavailable))
}

func cachedDescriptor() entity.AssetDescriptor {
	return entity.AssetDescriptor{Name: "Cached"}
}
