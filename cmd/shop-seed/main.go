// Command shop-seed fills the catalog with sample products.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/shop-checkout/internal/pkg/config"
	"github.com/jcmexdev/shop-checkout/internal/pkg/telemetry"
	"github.com/jcmexdev/shop-checkout/internal/shop/app"
	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
	"github.com/jcmexdev/shop-checkout/internal/shop/ports"
	"github.com/jcmexdev/shop-checkout/internal/storage/postgres"
	"github.com/jcmexdev/shop-checkout/internal/storage/sqlite"
)

func main() {
	count := flag.Int("n", 10, "number of products to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.LogLevel, "shop-seed")

	ctx := context.Background()
	uow, closeFn, err := open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer closeFn()

	catalog := app.NewCatalogService(uow)
	created := 0
	for i := 1; i <= *count; i++ {
		p, err := catalog.Create(ctx, randomProduct(i))
		if domain.IsKind(err, domain.KindValidation) {
			slog.Warn("skipping product", "index", i, "error", err)
			continue
		}
		if err != nil {
			slog.Error("seed failed", "index", i, "error", err)
			os.Exit(1)
		}
		created++
		slog.Debug("product created", "product_id", p.ID, "name", p.Name)
	}
	slog.Info("catalog seeded", "created", created)
}

// randomProduct returns "Product i" priced 1.00-100.00 with 1-100 units.
func randomProduct(i int) domain.NewProduct {
	desc := fmt.Sprintf("Sample product number %d", i)
	price := decimal.New(int64(100+rand.IntN(9901)), -2)
	qty := 1 + rand.IntN(100)
	return domain.NewProduct{
		Name:        fmt.Sprintf("Product %d", i),
		Description: &desc,
		Price:       &price,
		Quantity:    &qty,
	}
}

func open(ctx context.Context, cfg config.Config) (ports.UnitOfWork, func() error, error) {
	if cfg.StorageDriver == config.DriverPostgres {
		st, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
		return nil, nil, err
	}
	st, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	return st, st.Close, nil
}
