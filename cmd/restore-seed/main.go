// restore-seed loads a small demo catalog: warehouses, categories, products,
// stock, employees, and users. It does nothing when warehouses already exist.
//
// Usage: go run ./cmd/restore-seed
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"warehouse-backend/internal/app"
	"warehouse-backend/internal/config"
	"warehouse-backend/internal/logging"
)

type seedProduct struct {
	name     string
	price    string
	weight   string
	category string
	stock    [2]int64
}

var (
	seedWarehouses = []struct {
		address string
		area    int64
	}{
		{"12 Harbour Road, Dock 3", 4200},
		{"88 Ring Avenue, Unit 7", 1800},
	}
	seedCategories = []string{"Tools", "Fasteners", "Paint"}
	seedProducts   = []seedProduct{
		{"Claw Hammer", "12.50", "0.80", "Tools", [2]int64{40, 15}},
		{"Cordless Drill", "89.00", "1.60", "Tools", [2]int64{12, 0}},
		{"Wood Screws (100)", "4.25", "0.35", "Fasteners", [2]int64{300, 120}},
		{"Wall Anchors (50)", "3.10", "0.20", "Fasteners", [2]int64{0, 80}},
		{"Primer 1L", "9.99", "1.10", "Paint", [2]int64{25, 25}},
	}
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rt, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("startup")
	}
	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	seedErr := seed(ctx, rt.Service, log)

	cancel()
	<-done
	rt.Close()
	if seedErr != nil {
		log.Fatal().Err(seedErr).Msg("seed failed")
	}
}

func seed(ctx context.Context, svc app.ApplicationService, log zerolog.Logger) error {
	warehouses, err := svc.Entity("warehouses")
	if err != nil {
		return err
	}
	existing, err := warehouses.List(ctx, app.ListParams{"include_archived": "true", "page_size": "1"})
	if err != nil {
		return err
	}
	if existing.Total > 0 {
		log.Info().Int("warehouses", existing.Total).Msg("database already has data, nothing to seed")
		return nil
	}

	log.Info().Msg("Restoring warehouses...")
	var whIDs []int64
	for _, w := range seedWarehouses {
		wh, err := svc.CreateWarehouse(ctx, app.CreateWarehouseRequest{Address: w.address, FloorArea: decimal.NewFromInt(w.area)})
		if err != nil {
			return fmt.Errorf("warehouse %q: %w", w.address, err)
		}
		whIDs = append(whIDs, wh.ID)
	}

	log.Info().Msg("Restoring categories...")
	catIDs := make(map[string]int64, len(seedCategories))
	for _, name := range seedCategories {
		c, err := svc.CreateCategory(ctx, app.CreateCategoryRequest{Name: name})
		if err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		catIDs[name] = c.ID
	}

	log.Info().Msg("Restoring products and stock...")
	for _, sp := range seedProducts {
		p, err := svc.CreateProduct(ctx, app.CreateProductRequest{
			Name:       sp.name,
			Price:      decimal.RequireFromString(sp.price),
			Weight:     decimal.RequireFromString(sp.weight),
			CategoryID: catIDs[sp.category],
		})
		if err != nil {
			return fmt.Errorf("product %q: %w", sp.name, err)
		}
		for i, qty := range sp.stock {
			if _, err := svc.CreateStock(ctx, app.CreateStockRequest{ProductID: p.ID, WarehouseID: whIDs[i], Quantity: qty}); err != nil {
				return fmt.Errorf("stock for %q: %w", sp.name, err)
			}
		}
	}

	log.Info().Msg("Restoring staff and users...")
	first := whIDs[0]
	if _, err := svc.CreateEmployee(ctx, app.CreateEmployeeRequest{FirstName: "Dana", LastName: "Okafor", Position: "picker", WarehouseID: &first}); err != nil {
		return err
	}
	if _, err := svc.CreateEmployee(ctx, app.CreateEmployeeRequest{FirstName: "Lee", LastName: "Marsh", Position: "dispatcher"}); err != nil {
		return err
	}
	for _, u := range []app.CreateUserRequest{
		{Login: "alice", Email: "alice@example.com", Role: "customer"},
		{Login: "ops", Email: "ops@example.com", Role: "manager"},
	} {
		if _, err := svc.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("user %q: %w", u.Login, err)
		}
	}

	log.Info().Msg("Seed data restored successfully.")
	return nil
}
