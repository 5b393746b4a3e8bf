package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/ZilDuck/crafted-market/internal/helper"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	apiUrl  string
	gateway string
	client  *retryablehttp.Client
	timeout time.Duration
}

type PinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type pinataMetadata struct {
	Name string `json:"name"`
}

type pinJSONRequest struct {
	PinataContent  interface{}    `json:"pinataContent"`
	PinataMetadata pinataMetadata `json:"pinataMetadata"`
}

func NewClient(apiUrl, gateway string, client *retryablehttp.Client, timeout int) *Client {
	return &Client{
		apiUrl:  strings.TrimRight(apiUrl, "/"),
		gateway: gateway,
		client:  client,
		timeout: time.Duration(timeout) * time.Second,
	}
}

// PinFile uploads raw bytes as a file named name, authorised by token.
func (c *Client) PinFile(ctx context.Context, token, name string, data []byte) (PinResponse, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return PinResponse{}, err
	}
	if _, err := part.Write(data); err != nil {
		return PinResponse{}, err
	}

	metadata, _ := json.Marshal(pinataMetadata{Name: name})
	if err := writer.WriteField("pinataMetadata", string(metadata)); err != nil {
		return PinResponse{}, err
	}
	if err := writer.Close(); err != nil {
		return PinResponse{}, err
	}

	return c.pin(ctx, token, "/pinning/pinFileToIPFS", writer.FormDataContentType(), body.Bytes(), name)
}

// PinJSON uploads content as a JSON document with the display name name.
func (c *Client) PinJSON(ctx context.Context, token, name string, content interface{}) (PinResponse, error) {
	payload, err := json.Marshal(pinJSONRequest{
		PinataContent:  content,
		PinataMetadata: pinataMetadata{Name: name},
	})
	if err != nil {
		return PinResponse{}, err
	}

	return c.pin(ctx, token, "/pinning/pinJSONToIPFS", "application/json", payload, name)
}

func (c *Client) GatewayUrl(contentId string) string {
	return helper.GatewayUrl(c.gateway, contentId)
}

func (c *Client) pin(ctx context.Context, token, path, contentType string, payload []byte, name string) (PinResponse, error) {
	var pinned PinResponse
	if err := c.do(ctx, token, path, contentType, payload, &pinned); err != nil {
		zap.L().With(zap.Error(err), zap.String("path", path), zap.String("name", name)).Warn("Pinata: Pin failed")
		return PinResponse{}, err
	}

	zap.L().With(zap.String("cid", pinned.IpfsHash), zap.String("name", name), zap.Int64("size", pinned.PinSize)).Info("Pinata: Pinned")

	return pinned, nil
}

func (c *Client) do(ctx context.Context, token, path, contentType string, payload []byte, v interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := retryablehttp.NewRequest("POST", c.apiUrl+path, payload)
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinata %s: %s: %s", path, resp.Status, strings.TrimSpace(string(data)))
	}

	return json.Unmarshal(data, v)
}
