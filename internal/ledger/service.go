package ledger

import (
	"context"
	"math/big"
	"time"

	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/ZilDuck/crafted-market/internal/fault"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// Reader covers the read-only contract calls the client consumes.
type Reader interface {
	TokenCount(ctx context.Context) (uint64, error)
	MarketFeePercent(ctx context.Context) (*big.Int, error)
	OwnedBy(ctx context.Context, account string) ([]entity.MarketItem, error)
	AllListed(ctx context.Context) ([]entity.MarketItem, error)
	MarketItem(ctx context.Context, tokenId uint64) (entity.MarketItem, error)
	TokenURI(ctx context.Context, tokenId uint64) (string, error)
}

// Submitter sends contract calls through the wallet-backed endpoint and waits for inclusion.
type Submitter interface {
	Send(ctx context.Context, call entity.Call) (string, error)
	WaitMined(ctx context.Context, handle string) error
}

type Service interface {
	Reader
	Submitter
}

type service struct {
	provider     *Provider
	contract     string
	pollInterval time.Duration
}

func NewService(provider *Provider, contract string, pollInterval time.Duration) Service {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	return service{provider, contract, pollInterval}
}

func (s service) TokenCount(ctx context.Context) (uint64, error) {
	out, err := s.read(ctx, "", methodTokenCount)
	if err != nil {
		return 0, err
	}

	return out[0].(*big.Int).Uint64(), nil
}

func (s service) MarketFeePercent(ctx context.Context) (*big.Int, error) {
	out, err := s.read(ctx, "", methodMarketFeePercent)
	if err != nil {
		return nil, err
	}

	return out[0].(*big.Int), nil
}

func (s service) OwnedBy(ctx context.Context, account string) ([]entity.MarketItem, error) {
	if !common.IsHexAddress(account) {
		return nil, fault.Newf(fault.ValidationError, "invalid account %q", account)
	}

	return s.readItems(ctx, account, methodOwnedByUser)
}

func (s service) AllListed(ctx context.Context) ([]entity.MarketItem, error) {
	return s.readItems(ctx, "", methodAllListed)
}

func (s service) MarketItem(ctx context.Context, tokenId uint64) (entity.MarketItem, error) {
	data, err := s.callContract(ctx, "", methodMarketItem, new(big.Int).SetUint64(tokenId))
	if err != nil {
		return entity.MarketItem{}, err
	}

	var tuple marketItemTuple
	if err := MarketplaceABI.UnpackIntoInterface(&tuple, methodMarketItem, data); err != nil {
		return entity.MarketItem{}, fault.Wrapf(fault.LedgerRejected, err, "decode %s", methodMarketItem)
	}

	return tuple.toEntity(), nil
}

func (s service) TokenURI(ctx context.Context, tokenId uint64) (string, error) {
	out, err := s.read(ctx, "", methodTokenURI, new(big.Int).SetUint64(tokenId))
	if err != nil {
		return "", err
	}

	return out[0].(string), nil
}

func (s service) Send(ctx context.Context, call entity.Call) (string, error) {
	if !common.IsHexAddress(call.Account) {
		return "", fault.Newf(fault.ValidationError, "invalid account %q", call.Account)
	}

	data, err := MarketplaceABI.Pack(call.Method, call.Args...)
	if err != nil {
		return "", fault.Wrapf(fault.ValidationError, err, "encode %s", call.Method)
	}

	msg := CallMsg{
		From: common.HexToAddress(call.Account).Hex(),
		To:   s.contract,
		Data: hexutil.Encode(data),
	}
	if call.Value != nil && call.Value.Sign() > 0 {
		msg.Value = hexutil.EncodeBig(call.Value)
	}

	hash, err := s.provider.SendTransaction(ctx, msg)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("method", call.Method), zap.Uint64("tokenId", call.TokenId)).Warn("Ledger: Send failed")
		return "", classify(err)
	}

	zap.L().With(zap.String("method", call.Method), zap.String("hash", hash)).Info("Ledger: Transaction submitted")

	return hash, nil
}

func (s service) WaitMined(ctx context.Context, handle string) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := s.provider.GetTransactionReceipt(ctx, handle)
		if err != nil {
			return classify(err)
		}

		if receipt != nil {
			if !receipt.Succeeded() {
				return fault.Newf(fault.LedgerRejected, "transaction %s reverted in block %s", handle, receipt.BlockNumber)
			}
			zap.L().With(zap.String("hash", handle), zap.String("block", receipt.BlockNumber)).Info("Ledger: Transaction mined")
			return nil
		}

		select {
		case <-ctx.Done():
			return fault.Wrapf(fault.NetworkError, ctx.Err(), "waiting for %s", handle)
		case <-ticker.C:
		}
	}
}

func (s service) readItems(ctx context.Context, from string, method string) ([]entity.MarketItem, error) {
	data, err := s.callContract(ctx, from, method)
	if err != nil {
		return nil, err
	}

	var tuples []marketItemTuple
	if err := MarketplaceABI.UnpackIntoInterface(&tuples, method, data); err != nil {
		return nil, fault.Wrapf(fault.LedgerRejected, err, "decode %s", method)
	}

	items := make([]entity.MarketItem, 0, len(tuples))
	for _, tuple := range tuples {
		items = append(items, tuple.toEntity())
	}

	return items, nil
}

func (s service) read(ctx context.Context, from string, method string, args ...interface{}) ([]interface{}, error) {
	data, err := s.callContract(ctx, from, method, args...)
	if err != nil {
		return nil, err
	}

	out, err := MarketplaceABI.Unpack(method, data)
	if err != nil {
		return nil, fault.Wrapf(fault.LedgerRejected, err, "decode %s", method)
	}
	if len(out) == 0 {
		return nil, fault.Newf(fault.LedgerRejected, "%s returned no data", method)
	}

	return out, nil
}

func (s service) callContract(ctx context.Context, from string, method string, args ...interface{}) ([]byte, error) {
	input, err := MarketplaceABI.Pack(method, args...)
	if err != nil {
		return nil, fault.Wrapf(fault.ValidationError, err, "encode %s", method)
	}

	msg := CallMsg{To: s.contract, Data: hexutil.Encode(input)}
	if from != "" {
		msg.From = common.HexToAddress(from).Hex()
	}

	data, err := s.provider.Call(ctx, msg)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("method", method)).Warn("Ledger: Call failed")
		return nil, classify(err)
	}

	return data, nil
}

func (t marketItemTuple) toEntity() entity.MarketItem {
	item := entity.MarketItem{
		Creator:           t.Creator.Hex(),
		CurrentOwner:      t.CurrentOwner.Hex(),
		Price:             new(big.Int),
		RoyaltyFeePercent: t.RoyaltyFeePercent,
		IsListed:          t.IsListed,
	}
	if t.TokenId != nil {
		item.TokenId = t.TokenId.Uint64()
	}
	if t.Price != nil {
		item.Price.Set(t.Price)
	}

	return item
}
