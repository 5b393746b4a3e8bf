package keyserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ZilDuck/crafted-market/internal/pinata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIssuer struct {
	adminJwt string
	names    []string
	maxUses  int
	err      error
}

func (f *fakeIssuer) GenerateKey(ctx context.Context, adminJwt, keyName string, maxUses int) (pinata.KeyResponse, error) {
	if f.err != nil {
		return pinata.KeyResponse{}, f.err
	}
	f.adminJwt = adminJwt
	f.names = append(f.names, keyName)
	f.maxUses = maxUses

	return pinata.KeyResponse{JWT: "scoped-" + keyName, ApiKey: "k", ApiSecret: "secret"}, nil
}

func TestIssueKey(t *testing.T) {
	issuer := &fakeIssuer{}
	router := NewServer(issuer, "admin", 0).Router()

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/key", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, map[string]interface{}{"JWT": "scoped-" + issuer.names[i]}, body, "only the token is exposed")
	}

	assert.Equal(t, "admin", issuer.adminJwt)
	assert.Equal(t, 2, issuer.maxUses)
	require.Len(t, issuer.names, 2)
	assert.True(t, strings.HasPrefix(issuer.names[0], "upload-"))
	assert.NotEqual(t, issuer.names[0], issuer.names[1])
}

func TestIssueKeyFailure(t *testing.T) {
	router := NewServer(&fakeIssuer{err: errors.New("401")}, "admin", 5).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/key", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealthAndNotFound(t *testing.T) {
	router := NewServer(&fakeIssuer{}, "admin", 2).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/key", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
