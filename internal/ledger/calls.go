package ledger

import (
	"math/big"

	"github.com/ZilDuck/crafted-market/internal/entity"
)

func MintCall(account, contentId string, price *big.Int, royalty uint8, fee *big.Int) entity.Call {
	return entity.Call{
		Kind:    entity.MintTx,
		Account: account,
		Method:  MethodMint,
		Args:    []interface{}{contentId, price, royalty},
		Value:   fee,
	}
}

func ListCall(account string, tokenId uint64, price *big.Int) entity.Call {
	return entity.Call{
		Kind:    entity.ListTx,
		Account: account,
		TokenId: tokenId,
		Method:  MethodList,
		Args:    []interface{}{new(big.Int).SetUint64(tokenId), price},
	}
}

func UnlistCall(account string, tokenId uint64) entity.Call {
	return entity.Call{
		Kind:    entity.UnlistTx,
		Account: account,
		TokenId: tokenId,
		Method:  MethodUnlist,
		Args:    []interface{}{new(big.Int).SetUint64(tokenId)},
	}
}

func BuyCall(account string, tokenId uint64, price *big.Int) entity.Call {
	return entity.Call{
		Kind:    entity.BuyTx,
		Account: account,
		TokenId: tokenId,
		Method:  MethodBuy,
		Args:    []interface{}{new(big.Int).SetUint64(tokenId)},
		Value:   price,
	}
}
