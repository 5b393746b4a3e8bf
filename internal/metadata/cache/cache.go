// Package cache holds resolved asset descriptors keyed by content identifier.
//
// Content identifiers are immutable so entries never expire and are never invalidated.
package cache

import (
	"fmt"

	"github.com/ZilDuck/crafted-market/internal/entity"
)

type Cache interface {
	Get(contentId string) (entity.AssetDescriptor, bool)
	Set(contentId string, descriptor entity.AssetDescriptor)
}

const (
	MemoryBackend  = "memory"
	ElasticBackend = "elastic"
)

func UnknownBackendError(backend string) error {
	return fmt.Errorf("unknown metadata cache backend %q", backend)
}
