package ledger

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const (
	methodTokenCount       = "tokenCount"
	methodMarketFeePercent = "getMarketFeePercent"
	methodOwnedByUser      = "getNFTsOwnedByUser"
	methodAllListed        = "getAllListedNFTs"
	methodMarketItem       = "tokenIdToMarketItem"
	methodTokenURI         = "tokenURI"
	MethodMint             = "mintNFT"
	MethodList             = "listNFT"
	MethodUnlist           = "unlistNFT"
	MethodBuy              = "buyNFT"
)

const marketItemComponents = `[
	{"name":"tokenId","type":"uint256"},
	{"name":"creator","type":"address"},
	{"name":"currentOwner","type":"address"},
	{"name":"price","type":"uint256"},
	{"name":"royaltyFeePercent","type":"uint8"},
	{"name":"isListed","type":"bool"}
]`

const marketplaceAbi = `[
	{"type":"function","name":"tokenCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getMarketFeePercent","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getNFTsOwnedByUser","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"tuple[]","components":` + marketItemComponents + `}]},
	{"type":"function","name":"getAllListedNFTs","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"tuple[]","components":` + marketItemComponents + `}]},
	{"type":"function","name":"tokenIdToMarketItem","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[
		{"name":"tokenId","type":"uint256"},
		{"name":"creator","type":"address"},
		{"name":"currentOwner","type":"address"},
		{"name":"price","type":"uint256"},
		{"name":"royaltyFeePercent","type":"uint8"},
		{"name":"isListed","type":"bool"}
	]},
	{"type":"function","name":"tokenURI","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"mintNFT","stateMutability":"payable","inputs":[{"name":"tokenURI","type":"string"},{"name":"price","type":"uint256"},{"name":"royaltyFeePercent","type":"uint8"}],"outputs":[]},
	{"type":"function","name":"listNFT","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"},{"name":"price","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"unlistNFT","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"buyNFT","stateMutability":"payable","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[]}
]`

// marketItemTuple mirrors the MarketItem struct returned by the contract.
type marketItemTuple struct {
	TokenId           *big.Int       `json:"tokenId"`
	Creator           common.Address `json:"creator"`
	CurrentOwner      common.Address `json:"currentOwner"`
	Price             *big.Int       `json:"price"`
	RoyaltyFeePercent uint8          `json:"royaltyFeePercent"`
	IsListed          bool           `json:"isListed"`
}

var MarketplaceABI = mustParseAbi(marketplaceAbi)

func mustParseAbi(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}

	return parsed
}
