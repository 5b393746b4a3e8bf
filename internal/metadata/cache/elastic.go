package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ZilDuck/crafted-market/internal/config"
	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/ZilDuck/crafted-market/internal/log"
	"github.com/aws/aws-sdk-go/aws/credentials"
	v4 "github.com/aws/aws-sdk-go/aws/signer/v4"
	"github.com/olivere/elastic/v7"
	"github.com/sha1sum/aws_signing_client"
	"go.uber.org/zap"
)

const elasticTimeout = 10 * time.Second

// Elastic stores one document per content identifier, with the identifier as document id.
type Elastic struct {
	client *elastic.Client
	index  string
	local  *Memory
}

func NewElastic(client *elastic.Client, index string) *Elastic {
	return &Elastic{client: client, index: index, local: NewMemory()}
}

func NewElasticClient(cfg config.ElasticSearchConfig, aws config.AwsConfig) (*elastic.Client, error) {
	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(strings.Join(cfg.Hosts, ",")),
		elastic.SetSniff(cfg.Sniff),
		elastic.SetHealthcheck(cfg.HealthCheck),
	}

	if cfg.Debug {
		opts = append(opts, elastic.SetTraceLog(log.ElasticLogger{}))
	}

	if cfg.Aws {
		creds := credentials.NewStaticCredentials(aws.AccessKey, aws.SecretKey, aws.Token)
		awsClient, err := aws_signing_client.New(v4.NewSigner(creds), nil, "es", aws.Region)
		if err != nil {
			return nil, err
		}

		opts = append(opts, elastic.SetHttpClient(awsClient))
		opts = append(opts, elastic.SetScheme("https"))
		return elastic.NewClient(opts...)
	}

	if cfg.Username != "" {
		opts = append(opts, elastic.SetBasicAuth(cfg.Username, cfg.Password))
	}

	return elastic.NewClient(opts...)
}

func (e *Elastic) Get(contentId string) (entity.AssetDescriptor, bool) {
	if descriptor, found := e.local.Get(contentId); found {
		return descriptor, true
	}

	ctx, cancel := context.WithTimeout(context.Background(), elasticTimeout)
	defer cancel()

	result, err := e.client.Get().Index(e.index).Id(contentId).Do(ctx)
	if err != nil {
		if !elastic.IsNotFound(err) {
			zap.L().With(zap.Error(err), zap.String("cid", contentId)).Warn("MetadataCache: Elastic get failed")
		}
		return entity.AssetDescriptor{}, false
	}
	if !result.Found || result.Source == nil {
		return entity.AssetDescriptor{}, false
	}

	var descriptor entity.AssetDescriptor
	if err := json.Unmarshal(result.Source, &descriptor); err != nil {
		zap.L().With(zap.Error(err), zap.String("cid", contentId)).Warn("MetadataCache: Elastic document unreadable")
		return entity.AssetDescriptor{}, false
	}
	e.local.Set(contentId, descriptor)

	return descriptor, true
}

func (e *Elastic) Set(contentId string, descriptor entity.AssetDescriptor) {
	e.local.Set(contentId, descriptor)

	ctx, cancel := context.WithTimeout(context.Background(), elasticTimeout)
	defer cancel()

	_, err := e.client.Index().
		Index(e.index).
		Id(contentId).
		BodyJson(descriptor).
		Do(ctx)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("index", e.index), zap.String("cid", contentId)).
			Error("MetadataCache: Failed to save descriptor")
	}
}
