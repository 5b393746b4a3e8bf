package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

type Provider struct {
	rpcClient *rpcClient
}

type CallMsg struct {
	From  string `json:"from,omitempty"`
	To    string `json:"to"`
	Data  string `json:"data,omitempty"`
	Value string `json:"value,omitempty"`
}

type Receipt struct {
	TransactionHash string `json:"transactionHash"`
	BlockNumber     string `json:"blockNumber"`
	BlockHash       string `json:"blockHash"`
	Status          string `json:"status"`
	GasUsed         string `json:"gasUsed"`
}

func (r Receipt) Succeeded() bool {
	return r.Status == "0x1"
}

func NewProvider(rpcClient *rpcClient) *Provider {
	return &Provider{rpcClient: rpcClient}
}

func (p *Provider) ChainId(ctx context.Context) (*big.Int, error) {
	response, err := p.call(ctx, "eth_chainId")
	if err != nil {
		return nil, err
	}

	s, err := response.ResultAsString()
	if err != nil {
		return nil, err
	}

	return hexutil.DecodeBig(s)
}

func (p *Provider) Call(ctx context.Context, msg CallMsg) ([]byte, error) {
	response, err := p.call(ctx, "eth_call", msg, "latest")
	if err != nil {
		return nil, err
	}

	s, err := response.ResultAsString()
	if err != nil {
		return nil, err
	}

	return hexutil.Decode(s)
}

func (p *Provider) SendTransaction(ctx context.Context, msg CallMsg) (string, error) {
	response, err := p.rpcClient.send(ctx, "eth_sendTransaction", msg)
	if err != nil {
		return "", err
	}

	if response.Error != nil {
		return "", response.Error
	}

	return response.ResultAsString()
}

// GetTransactionReceipt returns nil while the transaction is not yet included in a block.
func (p *Provider) GetTransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	response, err := p.call(ctx, "eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, err
	}

	if response.IsNull() {
		return nil, nil
	}

	var receipt Receipt
	if err := response.ResultInto(&receipt); err != nil {
		return nil, err
	}

	return &receipt, nil
}

func (p *Provider) call(ctx context.Context, method string, params ...interface{}) (*rpcResponse, error) {
	response, err := p.rpcClient.call(ctx, method, params...)
	if err != nil {
		return nil, err
	}

	if response.Error != nil {
		return nil, response.Error
	}

	return response, nil
}
