package pinata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-retryablehttp"
	"io/ioutil"
	"net/http"
	"time"
)

var (
	ErrEmptyKey   = errors.New("upload key endpoint returned an empty token")
	ErrExpiredKey = errors.New("upload key has expired")
)

// KeyResponse is the body returned by both Pinata's generateApiKey and the key server.
type KeyResponse struct {
	JWT       string `json:"JWT"`
	ApiKey    string `json:"pinata_api_key,omitempty"`
	ApiSecret string `json:"pinata_api_secret,omitempty"`
}

type keyEndpoints struct {
	PinFileToIPFS bool `json:"pinFileToIPFS"`
	PinJSONToIPFS bool `json:"pinJSONToIPFS"`
}

type generateKeyRequest struct {
	KeyName     string `json:"keyName"`
	MaxUses     int    `json:"maxUses"`
	Permissions struct {
		Endpoints struct {
			Pinning keyEndpoints `json:"pinning"`
		} `json:"endpoints"`
	} `json:"permissions"`
}

// GenerateKey asks Pinata for a scoped key restricted to pinning and maxUses uploads.
func (c *Client) GenerateKey(ctx context.Context, adminJwt, keyName string, maxUses int) (KeyResponse, error) {
	req := generateKeyRequest{KeyName: keyName, MaxUses: maxUses}
	req.Permissions.Endpoints.Pinning = keyEndpoints{PinFileToIPFS: true, PinJSONToIPFS: true}

	payload, err := json.Marshal(req)
	if err != nil {
		return KeyResponse{}, err
	}

	var key KeyResponse
	if err := c.do(ctx, adminJwt, "/users/generateApiKey", "application/json", payload, &key); err != nil {
		return KeyResponse{}, err
	}

	return key, nil
}

// KeySource fetches a fresh upload token from the trusted key endpoint on every call.
type KeySource struct {
	endpoint string
	client   *retryablehttp.Client
}

func NewKeySource(endpoint string, client *retryablehttp.Client) *KeySource {
	return &KeySource{endpoint: endpoint, client: client}
}

func (s *KeySource) Token(ctx context.Context) (string, error) {
	req, err := retryablehttp.NewRequest("GET", s.endpoint, nil)
	if err != nil {
		return "", err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload key endpoint: %s", resp.Status)
	}

	var key KeyResponse
	if err := json.Unmarshal(data, &key); err != nil {
		return "", err
	}

	if err := ValidateToken(key.JWT, time.Now()); err != nil {
		return "", err
	}

	return key.JWT, nil
}

// ValidateToken checks that token is a well formed JWT that has not expired at now.
// The signature is not verified here: the content store does that on upload.
func ValidateToken(token string, now time.Time) error {
	if token == "" {
		return ErrEmptyKey
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("malformed upload key: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("malformed upload key: %w", err)
	}
	if exp != nil && !exp.After(now) {
		return ErrExpiredKey
	}

	return nil
}
