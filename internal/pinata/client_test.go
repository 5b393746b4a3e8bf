package pinata

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHttpClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil

	return client
}

func signedToken(t *testing.T, exp time.Time) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "upload",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	return token
}

func TestPinFileSendsMultipartWithBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		assert.Equal(t, "Bearer upload-token", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := ioutil.ReadAll(file)
		assert.Equal(t, "asset.png", header.Filename)
		assert.Equal(t, []byte("png-bytes"), data)
		assert.JSONEq(t, `{"name":"asset.png"}`, r.FormValue("pinataMetadata"))

		_, _ = w.Write([]byte(`{"IpfsHash":"bafkreiasset","PinSize":9,"Timestamp":"2024-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "gateway.pinata.cloud", testHttpClient(), 5)
	pinned, err := client.PinFile(context.Background(), "upload-token", "asset.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "bafkreiasset", pinned.IpfsHash)
	assert.Equal(t, int64(9), pinned.PinSize)
}

func TestPinJSONWrapsContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinJSONToIPFS", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{"name": "Duck"}, body["pinataContent"])
		assert.Equal(t, map[string]interface{}{"name": "duck.json"}, body["pinataMetadata"])

		_, _ = w.Write([]byte(`{"IpfsHash":"bafkreidescriptor"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "gateway.pinata.cloud", testHttpClient(), 5)
	pinned, err := client.PinJSON(context.Background(), "t", "duck.json", map[string]string{"name": "Duck"})
	require.NoError(t, err)
	assert.Equal(t, "bafkreidescriptor", pinned.IpfsHash)
}

func TestPinFailsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid authentication credentials"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "gateway.pinata.cloud", testHttpClient(), 5)
	_, err := client.PinJSON(context.Background(), "t", "x.json", map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid authentication credentials")
}

func TestGenerateKeyRequestsScopedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/generateApiKey", r.URL.Path)
		assert.Equal(t, "Bearer admin", r.Header.Get("Authorization"))

		var req generateKeyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "upload-1", req.KeyName)
		assert.Equal(t, 2, req.MaxUses)
		assert.True(t, req.Permissions.Endpoints.Pinning.PinFileToIPFS)
		assert.True(t, req.Permissions.Endpoints.Pinning.PinJSONToIPFS)

		_, _ = w.Write([]byte(`{"JWT":"scoped","pinata_api_key":"k","pinata_api_secret":"s"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "gateway.pinata.cloud", testHttpClient(), 5)
	key, err := client.GenerateKey(context.Background(), "admin", "upload-1", 2)
	require.NoError(t, err)
	assert.Equal(t, "scoped", key.JWT)
	assert.Equal(t, "k", key.ApiKey)
}

func TestGatewayUrl(t *testing.T) {
	client := NewClient("https://api.pinata.cloud", "gateway.pinata.cloud", testHttpClient(), 5)
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/bafkreiasset", client.GatewayUrl("bafkreiasset"))
}

func TestKeySourceFetchesFreshTokenEachCall(t *testing.T) {
	served := 0
	token := signedToken(t, time.Now().Add(time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
		_ = json.NewEncoder(w).Encode(KeyResponse{JWT: token})
	}))
	defer srv.Close()

	source := NewKeySource(srv.URL, testHttpClient())
	for i := 0; i < 2; i++ {
		got, err := source.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, token, got)
	}
	assert.Equal(t, 2, served)
}

func TestKeySourceRejectsExpiredToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(KeyResponse{JWT: signedToken(t, time.Now().Add(-time.Minute))})
	}))
	defer srv.Close()

	_, err := NewKeySource(srv.URL, testHttpClient()).Token(context.Background())
	assert.ErrorIs(t, err, ErrExpiredKey)
}

func TestValidateToken(t *testing.T) {
	now := time.Now()

	assert.ErrorIs(t, ValidateToken("", now), ErrEmptyKey)
	assert.Error(t, ValidateToken("not.a.jwt", now))
	assert.NoError(t, ValidateToken(signedToken(t, now.Add(time.Minute)), now))
	assert.ErrorIs(t, ValidateToken(signedToken(t, now.Add(-time.Minute)), now), ErrExpiredKey)
}
