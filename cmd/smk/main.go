package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	cl "simarket/internal/cli"
	"simarket/internal/config"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "smk",
		Short:        "Simarket CLI: inspect the simulated market",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "simarketd base URL")

	root.AddCommand(
		newPricesCmd(&apiBase),
		newAssetCmd(&apiBase),
		newMarketCmd(&apiBase),
		newPortfolioCmd(&apiBase),
		newClockCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func newPricesCmd(apiBase *string) *cobra.Command {
	var class string
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "List current prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(apiBase)
			assets, err := client.Assets(cmd.Context(), class)
			if err != nil {
				return err
			}
			prices, err := client.Prices(cmd.Context(), class)
			if err != nil {
				return err
			}
			return renderPrices(assets, prices)
		},
	}
	cmd.Flags().StringVar(&class, "class", "", "filter by asset class (stock, crypto, bond, property, other)")
	return cmd
}

func newAssetCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "asset <id>",
		Short: "Show one asset with its calendar status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := newClient(apiBase).Asset(cmd.Context(), strings.ToUpper(args[0]))
			if err != nil {
				return err
			}
			return renderAsset(out)
		},
	}
}

func newMarketCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "market",
		Short: "Show macro state, calendar, and scheduler status",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := newClient(apiBase).Market(cmd.Context())
			if err != nil {
				return err
			}
			return renderMarket(out)
		},
	}
}

func newPortfolioCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio",
		Short: "Show owned positions and total value",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := newClient(apiBase).Portfolio(cmd.Context())
			if err != nil {
				return err
			}
			return renderPortfolio(out)
		},
	}
}

func newClockCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clock",
		Short: "Show the game clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := newClient(apiBase).Clock(cmd.Context())
			if err != nil {
				return err
			}
			return renderClock(out)
		},
	}
}
