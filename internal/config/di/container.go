package di

import (
	"time"

	"github.com/ZilDuck/crafted-market/internal/config"
	"github.com/ZilDuck/crafted-market/internal/catalog"
	"github.com/ZilDuck/crafted-market/internal/entity"
	"github.com/ZilDuck/crafted-market/internal/event"
	"github.com/ZilDuck/crafted-market/internal/keyserver"
	"github.com/ZilDuck/crafted-market/internal/ledger"
	"github.com/ZilDuck/crafted-market/internal/metadata"
	"github.com/ZilDuck/crafted-market/internal/ownership"
	"github.com/ZilDuck/crafted-market/internal/publisher"
	"github.com/ZilDuck/crafted-market/internal/service/listing"
	"github.com/ZilDuck/crafted-market/internal/service/mint"
	"github.com/sarulabs/di/v2"
)

// Container gives typed access to the definitions.
type Container struct {
	ctn di.Container
}

func NewContainer() (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if err := builder.Add(Definitions...); err != nil {
		return nil, err
	}

	return &Container{builder.Build()}, nil
}

func (c *Container) Delete() error {
	return c.ctn.Delete()
}

func (c *Container) GetEvents() *event.Manager {
	return c.ctn.Get("events").(*event.Manager)
}

func (c *Container) GetLedger() ledger.Service {
	return c.ctn.Get("ledger").(ledger.Service)
}

func (c *Container) GetPublisher() *publisher.Publisher {
	return c.ctn.Get("publisher").(*publisher.Publisher)
}

func (c *Container) GetMetadataResolver() metadata.Resolver {
	return c.ctn.Get("metadata.resolver").(metadata.Resolver)
}

func (c *Container) GetMint() *mint.Coordinator {
	return c.ctn.Get("mint").(*mint.Coordinator)
}

func (c *Container) GetListing() *listing.Coordinator {
	return c.ctn.Get("listing").(*listing.Coordinator)
}

func (c *Container) GetOwnership() *ownership.ViewModel {
	return c.ctn.Get("ownership").(*ownership.ViewModel)
}

// NewOwnership builds a view for account on the shared ledger and event bus, so
// confirmations of that account's transactions refresh it.
func (c *Container) NewOwnership(account string) *ownership.ViewModel {
	if account == "" || entity.SameAccount(account, config.Get().Account) {
		return c.GetOwnership()
	}

	return ownership.NewViewModel(account, c.GetLedger(), c.GetEvents(), time.Duration(config.Get().Ledger.Timeout)*time.Second)
}

func (c *Container) GetCatalog() catalog.Service {
	return c.ctn.Get("catalog").(catalog.Service)
}

func (c *Container) GetKeyServer() keyserver.Server {
	return c.ctn.Get("keyserver").(keyserver.Server)
}
