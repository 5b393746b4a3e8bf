package cache

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ZilDuck/crafted-market/internal/config"
	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeElastic serves the document get and index endpoints for a single index.
type fakeElastic struct {
	mu   sync.Mutex
	docs map[string]json.RawMessage
	gets int
}

func (f *fakeElastic) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[1] != "_doc" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	index, id := parts[0], parts[2]

	switch r.Method {
	case http.MethodGet:
		f.gets++
		doc, found := f.docs[id]
		if !found {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"_index": index, "_id": id, "found": false})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"_index": index, "_id": id, "found": true, "_source": doc})
	case http.MethodPut, http.MethodPost:
		var doc json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&doc)
		f.docs[id] = doc
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"_index": index, "_id": id, "result": "created"})
	}
}

func newTestElastic(t *testing.T) (*Elastic, *fakeElastic) {
	fake := &fakeElastic{docs: map[string]json.RawMessage{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewElasticClient(config.ElasticSearchConfig{Hosts: []string{srv.URL}}, config.AwsConfig{})
	require.NoError(t, err)

	return NewElastic(client, "crafted.metadata"), fake
}

func TestElasticMissThenHit(t *testing.T) {
	e, fake := newTestElastic(t)

	_, found := e.Get("bafkrei1")
	assert.False(t, found)

	e.Set("bafkrei1", entity.AssetDescriptor{Name: "Duck", Description: "Yellow"})
	assert.Contains(t, string(fake.docs["bafkrei1"]), `"name":"Duck"`)

	descriptor, found := e.Get("bafkrei1")
	assert.True(t, found)
	assert.Equal(t, "Yellow", descriptor.Description)
}

func TestElasticReadsDocumentsWrittenElsewhere(t *testing.T) {
	e, fake := newTestElastic(t)
	fake.docs["bafkrei2"] = json.RawMessage(`{"name":"Swan","description":"White","image":"https://gateway.test/ipfs/x"}`)

	descriptor, found := e.Get("bafkrei2")
	require.True(t, found)
	assert.Equal(t, "Swan", descriptor.Name)

	_, _ = e.Get("bafkrei2")
	assert.Equal(t, 1, fake.gets)
}
