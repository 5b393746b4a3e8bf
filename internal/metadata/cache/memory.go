package cache

import (
	"encoding/gob"
	"errors"
	"os"

	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

func init() {
	gob.Register(entity.AssetDescriptor{})
}

type Memory struct {
	cache *cache.Cache
	file  string
}

func NewMemory() *Memory {
	return &Memory{cache: cache.New(cache.NoExpiration, 0)}
}

// NewPersistentMemory restores entries from file, when it exists, and saves back to it on Save.
func NewPersistentMemory(file string) (*Memory, error) {
	m := NewMemory()
	m.file = file

	if file == "" {
		return m, nil
	}

	if err := m.cache.LoadFile(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	zap.L().With(zap.String("file", file), zap.Int("entries", m.cache.ItemCount())).Debug("MetadataCache: Loaded")

	return m, nil
}

func (m *Memory) Get(contentId string) (entity.AssetDescriptor, bool) {
	cached, found := m.cache.Get(contentId)
	if !found {
		return entity.AssetDescriptor{}, false
	}

	return cached.(entity.AssetDescriptor), true
}

func (m *Memory) Set(contentId string, descriptor entity.AssetDescriptor) {
	m.cache.Set(contentId, descriptor, cache.NoExpiration)
}

func (m *Memory) Len() int {
	return m.cache.ItemCount()
}

// Save writes every entry to the backing file. It is a no-op without one.
func (m *Memory) Save() error {
	if m.file == "" {
		return nil
	}

	if err := m.cache.SaveFile(m.file); err != nil {
		return err
	}

	zap.L().With(zap.String("file", m.file), zap.Int("entries", m.cache.ItemCount())).Debug("MetadataCache: Saved")

	return nil
}
