package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	shipmentserver "github.com/Apurer/go-gin-shipment-api/go"
	"github.com/Apurer/go-gin-shipment-api/internal/app/api"
	"github.com/Apurer/go-gin-shipment-api/internal/app/seed"
	platformobservability "github.com/Apurer/go-gin-shipment-api/internal/platform/observability"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "shipment-seed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		shipments   int
		prefix      string
		printTokens bool
		tokenTTL    time.Duration
	)
	flagSet := pflag.NewFlagSet("shipment-seed", pflag.ContinueOnError)
	flagSet.IntVarP(&shipments, "shipments", "n", 12, "number of demo shipments to create")
	flagSet.StringVar(&prefix, "prefix", "SEED", "tracking number prefix; also scopes demo user emails")
	flagSet.BoolVar(&printTokens, "print-tokens", false, "print a bearer token for every seeded user")
	flagSet.DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "lifetime of printed tokens")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: shipment-seed [flags]\n\nPopulates the configured stores with demo users and shipments.\n\n")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	if strings.EqualFold(os.Getenv("ENVIRONMENT"), "production") {
		return errors.New("refusing to seed a production environment")
	}

	ctx := context.Background()
	cfg, err := api.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, "shipment-seed", platformobservability.WithLogFile(cfg.LogFile))
	if err != nil {
		return fmt.Errorf("initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()

	services, cleanup, err := api.BuildServices(ctx, cfg, instruments)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	defer cleanup()

	result, err := seed.Run(ctx, services.Users, services.Shipments, seed.Options{Shipments: shipments, Prefix: prefix})
	if err != nil {
		return err
	}
	instruments.Logger.Info("seed complete",
		slog.Int("users", len(result.Users)),
		slog.Int("shipments", len(result.Shipments)),
	)

	if !printTokens {
		return nil
	}
	auth, err := shipmentserver.NewAuthenticator(cfg.JWTSecret)
	if err != nil {
		return err
	}
	for _, user := range result.Users {
		token, err := auth.IssueToken(user.ID, string(user.Role), tokenTTL)
		if err != nil {
			return fmt.Errorf("issue token for %s: %w", user.Email, err)
		}
		fmt.Printf("%-8s %s %s\n", user.Role, user.Email, token)
	}
	return nil
}
