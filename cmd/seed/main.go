package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	catalogapp "github.com/Apurer/go-gin-storefront/internal/domains/catalog/application"
	ordersapp "github.com/Apurer/go-gin-storefront/internal/domains/orders/application"
	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"
	"github.com/Apurer/go-gin-storefront/internal/platform/docstore/dialer"
)

func main() {
	withOrders := flag.Bool("orders", false, "also seed the sample order")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	uri := strings.TrimSpace(os.Getenv("DATABASE_URI"))
	if uri == "" {
		uri = strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	}
	if uri == "" {
		log.Fatal("DATABASE_URI not set; nothing to seed")
	}

	seeds := []func() (docstore.Seed, error){catalogapp.Seeds}
	if *withOrders {
		seeds = append(seeds, ordersapp.Seeds)
	}
	collections := []string{catalogapp.Collection, ordersapp.Collection}

	logger.Info("seeding document store", slog.String("uri", dialer.Redact(uri)))
	remote, err := dialer.Open(ctx, uri, collections...)
	if err != nil {
		log.Fatalf("failed to connect to document store: %v", err)
	}
	defer remote.Close()

	for _, build := range seeds {
		seed, err := build()
		if err != nil {
			log.Fatalf("failed to build seed: %v", err)
		}
		seeded, err := docstore.SeedIfEmpty(ctx, remote, seed)
		if err != nil {
			log.Fatalf("failed to seed %s: %v", seed.Collection, err)
		}
		if !seeded {
			logger.Info("collection already populated, skipping", slog.String("collection", seed.Collection))
			continue
		}
		logger.Info("collection seeded", slog.String("collection", seed.Collection), slog.Int("documents", len(seed.Documents)))
	}
}
