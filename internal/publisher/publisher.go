package publisher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/ZilDuck/crafted-market/internal/fault"
	"github.com/ZilDuck/crafted-market/internal/helper"
	"github.com/ZilDuck/crafted-market/internal/pinata"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Store is the content-addressed store uploads are pinned to.
type Store interface {
	PinFile(ctx context.Context, token, name string, data []byte) (pinata.PinResponse, error)
	PinJSON(ctx context.Context, token, name string, content interface{}) (pinata.PinResponse, error)
	GatewayUrl(contentId string) string
}

// TokenSource issues a single-use upload authorization.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type DescriptorInput struct {
	AssetContentId string
	Name           string
	Description    string
}

type Publisher struct {
	store       Store
	tokens      TokenSource
	externalUrl string

	mu        sync.RWMutex
	published map[string]struct{}
}

const defaultAssetName = "asset"

func New(store Store, tokens TokenSource, externalUrl string) *Publisher {
	return &Publisher{
		store:       store,
		tokens:      tokens,
		externalUrl: externalUrl,
		published:   map[string]struct{}{},
	}
}

func (p *Publisher) PublishAsset(ctx context.Context, data []byte) (entity.Published, error) {
	return p.PublishNamedAsset(ctx, defaultAssetName, data)
}

// PublishNamedAsset uploads data under the display name name.
func (p *Publisher) PublishNamedAsset(ctx context.Context, name string, data []byte) (entity.Published, error) {
	if len(data) == 0 {
		return entity.Published{}, fault.ErrEmptyInput
	}
	if name == "" {
		name = defaultAssetName
	}

	token, err := p.token(ctx)
	if err != nil {
		return entity.Published{}, err
	}

	pinned, err := p.store.PinFile(ctx, token, name, data)
	if err != nil {
		return entity.Published{}, fault.Wrapf(fault.UploadFailed, err, "upload asset %s", name)
	}

	published, err := p.remember(pinned.IpfsHash)
	if err != nil {
		return entity.Published{}, err
	}

	zap.L().With(zap.String("cid", published.ContentId), zap.Int("bytes", len(data))).Info("Publisher: Asset published")

	return published, nil
}

// PublishDescriptor uploads the JSON descriptor of an asset this publisher already uploaded.
func (p *Publisher) PublishDescriptor(ctx context.Context, input DescriptorInput) (entity.Published, error) {
	if input.Name == "" || input.Description == "" {
		return entity.Published{}, fault.ErrEmptyInput
	}
	if !helper.IsCid(input.AssetContentId) {
		return entity.Published{}, fault.Newf(fault.ValidationError, "invalid asset content id %q", input.AssetContentId)
	}
	if !p.owns(input.AssetContentId) {
		return entity.Published{}, fault.Newf(fault.ValidationError, "asset %s was not published by this session", input.AssetContentId)
	}

	descriptor := NewDescriptor(input, p.externalUrl)
	name := DescriptorName(descriptor.Name)

	token, err := p.token(ctx)
	if err != nil {
		return entity.Published{}, err
	}

	pinned, err := p.store.PinJSON(ctx, token, name, descriptor)
	if err != nil {
		return entity.Published{}, fault.Wrapf(fault.UploadFailed, err, "upload descriptor %s", name)
	}

	published, err := p.remember(pinned.IpfsHash)
	if err != nil {
		return entity.Published{}, err
	}

	zap.L().With(zap.String("cid", published.ContentId), zap.String("asset", input.AssetContentId)).Info("Publisher: Descriptor published")

	return published, nil
}

func NewDescriptor(input DescriptorInput, externalUrl string) entity.AssetDescriptor {
	return entity.AssetDescriptor{
		Name:        Capitalize(input.Name),
		Description: Capitalize(input.Description),
		Image:       helper.IpfsUri(input.AssetContentId),
		ExternalUrl: externalUrl,
	}
}

// DescriptorName is the display name a descriptor is pinned under.
func DescriptorName(name string) string {
	s := slug.Make(name)
	if s == "" {
		s = "descriptor"
	}

	return fmt.Sprintf("%s.json", s)
}

// Capitalize upper-cases the first rune of s and leaves the rest untouched.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}

func (p *Publisher) token(ctx context.Context) (string, error) {
	token, err := p.tokens.Token(ctx)
	if err != nil {
		return "", fault.Wrapf(fault.UploadFailed, err, "upload authorization")
	}

	return token, nil
}

func (p *Publisher) remember(contentId string) (entity.Published, error) {
	contentId = strings.TrimSpace(contentId)
	if !helper.IsCid(contentId) {
		return entity.Published{}, fault.Newf(fault.UploadFailed, "content store returned invalid content id %q", contentId)
	}

	p.mu.Lock()
	p.published[contentId] = struct{}{}
	p.mu.Unlock()

	return entity.Published{ContentId: contentId, Locator: p.store.GatewayUrl(contentId)}, nil
}

func (p *Publisher) owns(contentId string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.published[contentId]
	return ok
}
