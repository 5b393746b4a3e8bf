package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math/big"
	"os"

	"github.com/ZilDuck/crafted-market/internal/config"
	"github.com/ZilDuck/crafted-market/internal/config/di"
	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/ZilDuck/crafted-market/internal/fault"
	"github.com/ZilDuck/crafted-market/internal/helper"
	"github.com/ZilDuck/crafted-market/internal/service/mint"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var container *di.Container

func main() {
	config.Init()

	var err error
	container, err = di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	tokenFlag := &cli.Uint64Flag{Name: "token", Usage: "token id", Required: true}
	accountFlag := &cli.StringFlag{Name: "account", Value: config.Get().Account, Usage: "account sending the transaction"}

	app := &cli.App{
		Name:  "market",
		Usage: "publish, list and trade marketplace items",
		Commands: []*cli.Command{
			{
				Name:   "mint",
				Usage:  "upload an asset, publish its descriptor and mint it",
				Action: mintItem,
				Flags: []cli.Flag{
					accountFlag,
					&cli.StringFlag{Name: "file", Usage: "asset file to upload", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "description", Required: true},
					&cli.StringFlag{Name: "price", Usage: "price in major units, e.g. 0.02", Required: true},
					&cli.StringFlag{Name: "royalty", Value: "0", Usage: "royalty percent, 0 to 25"},
				},
			},
			{
				Name:   "list",
				Usage:  "offer an owned item for sale",
				Action: listItem,
				Flags: []cli.Flag{
					accountFlag,
					tokenFlag,
					&cli.StringFlag{Name: "price", Usage: "price in major units", Required: true},
				},
			},
			{
				Name:   "unlist",
				Usage:  "withdraw an item from sale",
				Action: unlistItem,
				Flags:  []cli.Flag{accountFlag, tokenFlag},
			},
			{
				Name:   "buy",
				Usage:  "buy a listed item at its current price",
				Action: buyItem,
				Flags:  []cli.Flag{accountFlag, tokenFlag},
			},
			{
				Name:   "owned",
				Usage:  "show the items held by the account",
				Action: ownedItems,
				Flags:  []cli.Flag{accountFlag},
			},
			{
				Name:   "explore",
				Usage:  "show every listed item",
				Action: exploreItems,
			},
			{
				Name:   "item",
				Usage:  "show a single item",
				Action: showItem,
				Flags:  []cli.Flag{tokenFlag},
			},
			{
				Name:   "metadata",
				Usage:  "resolve the descriptor of an item",
				Action: showMetadata,
				Flags:  []cli.Flag{tokenFlag},
			},
			{
				Name:   "fee",
				Usage:  "show the current market fee percent",
				Action: showFee,
			},
		},
	}

	err = app.Run(os.Args)
	if closeErr := container.Delete(); closeErr != nil {
		zap.L().With(zap.Error(closeErr)).Warn("Failed to close container")
	}
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("kind", string(fault.KindOf(err)))).Error("Command failed")
		os.Exit(1)
	}
}

func mintItem(c *cli.Context) error {
	data, err := ioutil.ReadFile(c.String("file"))
	if err != nil {
		return err
	}

	coordinator := container.GetMint()
	container.NewOwnership(c.String("account"))

	published, err := coordinator.Upload(c.Context, data)
	if err != nil {
		return err
	}
	zap.L().With(zap.String("cid", published.ContentId), zap.String("locator", published.Locator)).Info("Asset uploaded")

	record, err := coordinator.Mint(c.Context, mint.MintRequest{
		Account:     c.String("account"),
		Name:        c.String("name"),
		Description: c.String("description"),
		Price:       c.String("price"),
		Royalty:     c.String("royalty"),
	})
	if err != nil {
		return err
	}

	return output(record)
}

func listItem(c *cli.Context) error {
	view := container.NewOwnership(c.String("account"))
	record, err := container.GetListing().List(c.Context, c.String("account"), c.Uint64("token"), c.String("price"))
	if err != nil {
		return err
	}

	return output(struct {
		Record entity.TransactionRecord `json:"record"`
		View   entity.OwnershipView     `json:"view"`
	}{record, view.View()})
}

func unlistItem(c *cli.Context) error {
	view := container.NewOwnership(c.String("account"))
	record, err := container.GetListing().Unlist(c.Context, c.String("account"), c.Uint64("token"))
	if err != nil {
		return err
	}

	return output(struct {
		Record entity.TransactionRecord `json:"record"`
		View   entity.OwnershipView     `json:"view"`
	}{record, view.View()})
}

func buyItem(c *cli.Context) error {
	item, err := container.GetCatalog().Item(c.Context, c.Uint64("token"))
	if err != nil {
		return err
	}
	if !item.IsListed {
		return fault.Newf(fault.ValidationError, "token %d is not for sale", item.TokenId)
	}

	zap.L().With(zap.Uint64("tokenId", item.TokenId), zap.String("price", helper.FromMinorUnits(item.Price))).Info("Buying")

	container.NewOwnership(c.String("account"))
	record, err := container.GetListing().Buy(c.Context, c.String("account"), item.TokenId, item.Price)
	if err != nil {
		return err
	}

	return output(record)
}

func ownedItems(c *cli.Context) error {
	view, err := container.NewOwnership(c.String("account")).Refresh(c.Context)
	if err != nil {
		return err
	}

	return output(view)
}

func exploreItems(c *cli.Context) error {
	items, err := container.GetCatalog().Listed(c.Context)
	if err != nil {
		return err
	}

	return output(items)
}

func showItem(c *cli.Context) error {
	item, err := container.GetCatalog().Item(c.Context, c.Uint64("token"))
	if err != nil {
		return err
	}

	return output(item)
}

func showMetadata(c *cli.Context) error {
	described, err := describeItem(c.Context, container.GetCatalog(), container.GetMetadataResolver(), c.Uint64("token"))
	if err != nil {
		return err
	}

	return output(described)
}

func showFee(c *cli.Context) error {
	fee, err := container.GetCatalog().MarketFee(c.Context)
	if err != nil {
		return err
	}

	return output(map[string]*big.Int{"feePercent": fee})
}

func output(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))
	return nil
}
