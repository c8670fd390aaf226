package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pantry/backend/config"
	"github.com/pantry/backend/internal/bootstrap"
	"github.com/pantry/backend/internal/logger"
	"github.com/pantry/backend/internal/usecase"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pantryctl",
		Short:         "Inspect barcode normalization, utterance parsing and product lookups",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(normalizeCmd())
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(lookupCmd())

	return rootCmd
}

func normalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize [raw barcode]",
		Short: "Print the canonical form of a scanned barcode",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			barcode, ok := usecase.NormalizeBarcode(strings.Join(args, " "))
			if !ok {
				return fmt.Errorf("no digits in %q", strings.Join(args, " "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), barcode)
			return nil
		},
	}
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [utterance]",
		Short: "Split a spoken shopping request into line items",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := usecase.ParseUtterance(strings.Join(args, " "))
			for _, item := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", item.Quantity, item.Name)
			}
			return nil
		},
	}
}

func lookupCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "lookup [barcode]",
		Short: "Resolve a barcode through the configured product providers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			barcode, ok := usecase.NormalizeBarcode(args[0])
			if !ok {
				return fmt.Errorf("no digits in %q", args[0])
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.Init(cfg.Log.Level, cfg.Server.Environment)
			defer logger.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client, closeCache, err := bootstrap.ProductLookup(ctx, cfg, nil)
			if err != nil {
				return err
			}
			defer closeCache()

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(client.Lookup(ctx, barcode))
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "deadline for connecting to the product cache")
	return cmd
}
