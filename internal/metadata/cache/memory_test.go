package cache

import (
	"path/filepath"
	"testing"

	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory()

	_, found := m.Get("bafkrei1")
	assert.False(t, found)

	m.Set("bafkrei1", entity.AssetDescriptor{Name: "Duck"})
	descriptor, found := m.Get("bafkrei1")
	assert.True(t, found)
	assert.Equal(t, "Duck", descriptor.Name)
	assert.Equal(t, 1, m.Len())
}

func TestPersistentMemoryRoundTripsThroughFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "metadata.gob")

	m, err := NewPersistentMemory(file)
	require.NoError(t, err)
	m.Set("bafkrei1", entity.AssetDescriptor{Name: "Duck", Image: "https://gateway.test/ipfs/bafkreiimage"})
	require.NoError(t, m.Save())

	restored, err := NewPersistentMemory(file)
	require.NoError(t, err)
	descriptor, found := restored.Get("bafkrei1")
	require.True(t, found)
	assert.Equal(t, "https://gateway.test/ipfs/bafkreiimage", descriptor.Image)
}

func TestMemorySaveWithoutFile(t *testing.T) {
	assert.NoError(t, NewMemory().Save())
}
