package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"io/ioutil"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	jsonrpcVersion = "2.0"
)

// A rpcClient represents a JSON RPC client (over HTTP(s)).
type rpcClient struct {
	url         string
	readClient  *retryablehttp.Client
	writeClient *retryablehttp.Client
	timeout     time.Duration
	debug       bool
	nextId      int64
}

// rpcRequest represent a RCP request
type rpcRequest struct {
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	Id      int64         `json:"id"`
	JsonRpc string        `json:"jsonrpc"`
}

// RPCErrorCode represents an error code to be used as a part of an RPCError
// which is in turn used in a JSON-RPC Response object.
type RPCErrorCode int

const (
	codeUserRejected    RPCErrorCode = 4001
	codeExecutionRevert RPCErrorCode = 3
	codeLimitExceeded   RPCErrorCode = -32005
)

// RPCError represents an error that is used as a part of a JSON-RPC Response
// object.
type RPCError struct {
	Code    RPCErrorCode `json:"code,omitempty"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
}

// Guarantee RPCError satisfies the builtin error interface.
var _, _ error = RPCError{}, (*RPCError)(nil)

// Error returns a string describing the RPC error.  This satisfies the
// builtin error interface.
func (e RPCError) Error() string {
	return fmt.Sprintf("%d:%s", e.Code, e.Message)
}

type rpcResponse struct {
	Id     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

func (rResp rpcResponse) IsNull() bool {
	return len(rResp.Result) == 0 || string(rResp.Result) == "null"
}

func (rResp rpcResponse) ResultAsString() (string, error) {
	var s string
	err := json.Unmarshal(rResp.Result, &s)
	return s, err
}

func (rResp rpcResponse) ResultInto(v interface{}) error {
	return json.Unmarshal(rResp.Result, v)
}

func NewClient(url string, timeout int, retries int, debug bool) (*rpcClient, error) {
	if len(url) == 0 {
		return nil, errors.New("bad call missing argument host")
	}

	readClient := retryablehttp.NewClient()
	readClient.Logger = nil
	readClient.RetryMax = retries

	// writes are never replayed: a resent transaction could be mined twice
	writeClient := retryablehttp.NewClient()
	writeClient.Logger = nil
	writeClient.RetryMax = 0

	return &rpcClient{
		url:         url,
		readClient:  readClient,
		writeClient: writeClient,
		timeout:     time.Duration(timeout) * time.Second,
		debug:       debug,
	}, nil
}

// call prepares & executes an idempotent request
func (c *rpcClient) call(ctx context.Context, method string, params ...interface{}) (*rpcResponse, error) {
	return c.do(ctx, c.readClient, method, params)
}

// send executes a state changing request without retries
func (c *rpcClient) send(ctx context.Context, method string, params ...interface{}) (*rpcResponse, error) {
	return c.do(ctx, c.writeClient, method, params)
}

func (c *rpcClient) do(ctx context.Context, client *retryablehttp.Client, method string, params []interface{}) (*rpcResponse, error) {
	if params == nil {
		params = []interface{}{}
	}
	rpcR := rpcRequest{method, params, atomic.AddInt64(&c.nextId, 1), jsonrpcVersion}

	payloadBuffer := &bytes.Buffer{}
	if err := json.NewEncoder(payloadBuffer).Encode(rpcR); err != nil {
		return nil, err
	}

	zap.L().With(zap.String("request", rpcR.Method), zap.Int64("id", rpcR.Id)).Debug("Ledger: RPC Request")
	if c.debug {
		zap.L().With(zap.String("request", payloadBuffer.String())).Debug("Ledger: RPC Request")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := retryablehttp.NewRequest("POST", c.url, payloadBuffer.Bytes())
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	req.Header.Add("Content-Type", "application/json;charset=utf-8")
	req.Header.Add("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("request", rpcR.Method)).Warn("Ledger: RPC Failure")
		return nil, err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if c.debug {
		zap.L().With(zap.String("response", string(data))).Debug("Ledger: RPC Response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ledger rpc: unexpected status %s", resp.Status)
	}

	var rr rpcResponse
	if err := json.Unmarshal(data, &rr); err != nil {
		return nil, err
	}

	return &rr, nil
}
