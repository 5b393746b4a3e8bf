package di

import (
	"time"

	"github.com/ZilDuck/crafted-market/internal/catalog"
	"github.com/ZilDuck/crafted-market/internal/config"
	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/ZilDuck/crafted-market/internal/event"
	"github.com/ZilDuck/crafted-market/internal/keyserver"
	"github.com/ZilDuck/crafted-market/internal/ledger"
	"github.com/ZilDuck/crafted-market/internal/metadata"
	"github.com/ZilDuck/crafted-market/internal/metadata/cache"
	"github.com/ZilDuck/crafted-market/internal/ownership"
	"github.com/ZilDuck/crafted-market/internal/pinata"
	"github.com/ZilDuck/crafted-market/internal/publisher"
	"github.com/ZilDuck/crafted-market/internal/service/listing"
	"github.com/ZilDuck/crafted-market/internal/service/mint"
	"github.com/ZilDuck/crafted-market/internal/tracker"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

var Definitions = []di.Def{
	{
		Name: "events",
		Build: func(ctn di.Container) (interface{}, error) {
			return event.NewManager(), nil
		},
	},
	{
		Name: "http.client",
		Build: func(ctn di.Container) (interface{}, error) {
			client := retryablehttp.NewClient()
			client.Logger = nil
			client.RetryMax = 3
			client.HTTPClient.Timeout = time.Duration(config.Get().Pinata.Timeout) * time.Second

			return client, nil
		},
	},
	{
		Name: "ledger",
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := config.Get().Ledger
			client, err := ledger.NewClient(cfg.Url, cfg.Timeout, cfg.Retries, cfg.Debug)
			if err != nil {
				return nil, err
			}

			pollInterval := time.Duration(cfg.PollInterval) * time.Millisecond
			return ledger.NewService(ledger.NewProvider(client), cfg.Contract, pollInterval), nil
		},
	},
	{
		Name: "pinata",
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := config.Get().Pinata
			return pinata.NewClient(cfg.ApiUrl, cfg.Gateway, ctn.Get("http.client").(*retryablehttp.Client), cfg.Timeout), nil
		},
	},
	{
		Name: "key.source",
		Build: func(ctn di.Container) (interface{}, error) {
			return pinata.NewKeySource(config.Get().Pinata.KeyEndpoint, ctn.Get("http.client").(*retryablehttp.Client)), nil
		},
	},
	{
		Name: "publisher",
		Build: func(ctn di.Container) (interface{}, error) {
			return publisher.New(
				ctn.Get("pinata").(*pinata.Client),
				ctn.Get("key.source").(*pinata.KeySource),
				config.Get().Pinata.ExternalUrl,
			), nil
		},
	},
	{
		Name: "metadata.cache",
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := config.Get()
			switch cfg.Metadata.Cache {
			case cache.MemoryBackend, "":
				return cache.NewPersistentMemory(cfg.Metadata.CacheFile)
			case cache.ElasticBackend:
				client, err := cache.NewElasticClient(cfg.ElasticSearch, cfg.Aws)
				if err != nil {
					zap.L().With(zap.Error(err)).Error("Failed to start ES")
					return nil, err
				}
				return cache.NewElastic(client, cfg.Metadata.Index), nil
			}

			return nil, cache.UnknownBackendError(cfg.Metadata.Cache)
		},
		Close: func(obj interface{}) error {
			if memory, ok := obj.(*cache.Memory); ok {
				return memory.Save()
			}
			return nil
		},
	},
	{
		Name: "metadata.resolver",
		Build: func(ctn di.Container) (interface{}, error) {
			return metadata.NewResolver(
				ctn.Get("http.client").(*retryablehttp.Client),
				ctn.Get("metadata.cache").(cache.Cache),
				ctn.Get("ledger").(ledger.Service),
				config.Get().Pinata.Gateway,
			), nil
		},
	},
	{
		Name: "mint",
		Build: func(ctn di.Container) (interface{}, error) {
			svc := ctn.Get("ledger").(ledger.Service)
			tr := tracker.New(entity.MintTx, svc, ctn.Get("events").(*event.Manager))

			return mint.NewCoordinator(ctn.Get("publisher").(*publisher.Publisher), svc, tr, mint.Options{
				DefaultFeePercent: int64(config.Get().Market.DefaultFeePercent),
				FeeFallback:       config.Get().Market.FeeFallback,
			}), nil
		},
	},
	{
		Name: "listing",
		Build: func(ctn di.Container) (interface{}, error) {
			return listing.NewCoordinator(ctn.Get("ledger").(ledger.Service), ctn.Get("events").(*event.Manager)), nil
		},
	},
	{
		Name: "ownership",
		Build: func(ctn di.Container) (interface{}, error) {
			return ownership.NewViewModel(
				config.Get().Account,
				ctn.Get("ledger").(ledger.Service),
				ctn.Get("events").(*event.Manager),
				time.Duration(config.Get().Ledger.Timeout)*time.Second,
			), nil
		},
	},
	{
		Name: "catalog",
		Build: func(ctn di.Container) (interface{}, error) {
			return catalog.NewService(ctn.Get("ledger").(ledger.Service)), nil
		},
	},
	{
		Name: "keyserver",
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := config.Get().Pinata
			return keyserver.NewServer(ctn.Get("pinata").(*pinata.Client), cfg.Jwt, cfg.KeyMaxUses), nil
		},
	},
}
