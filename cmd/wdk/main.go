package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	cl "wondesk/internal/cli"
	"wondesk/internal/config"
	"wondesk/internal/game"
	"wondesk/internal/market"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "wdk",
		Short:        "Wondesk CLI game client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newDashCmd(&apiBase),
		newStocksCmd(&apiBase),
		newCryptosCmd(&apiBase),
		newInfoCmd(&apiBase),
		newChartCmd(&apiBase),
		newNewsCmd(&apiBase),
		newSearchCmd(&apiBase),
		newBuyCmd(&apiBase),
		newSellCmd(&apiBase),
		newClickCmd(&apiBase),
		newUpgradesCmd(&apiBase),
		newStartCmd(&apiBase),
		newPauseCmd(&apiBase),
		newResetCmd(&apiBase),
		newWatchCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func newDashCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Show your portfolio and clicker dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			state, err := client.GameState(ctx)
			if err != nil {
				return err
			}
			return renderDashboard(state)
		},
	}
}

func newStocksCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stocks",
		Short: "List the stock board",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			quotes, err := client.Assets(ctx, string(market.AssetStock))
			if err != nil {
				return err
			}
			return renderQuotes(quotes, "STOCKS")
		},
	}
}

func newCryptosCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "cryptos",
		Short:   "List the crypto board",
		Aliases: []string{"crypto"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			quotes, err := client.Assets(ctx, string(market.AssetCrypto))
			if err != nil {
				return err
			}
			return renderQuotes(quotes, "CRYPTOS")
		},
	}
}

func newInfoCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "info [asset_id]",
		Short: "Inspect one asset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := assetIDFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			quote, err := client.Asset(ctx, id)
			if err != nil {
				return err
			}
			return renderAssetDetail(quote)
		},
	}
}

func newChartCmd(apiBase *string) *cobra.Command {
	var timeFrame string
	cmd := &cobra.Command{
		Use:   "chart [asset_id]",
		Short: "Show an asset's mock chart series",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := assetIDFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.Chart(ctx, id, strings.ToUpper(strings.TrimSpace(timeFrame)))
			if err != nil {
				return err
			}
			return renderChart(id, out.Range, out.Points)
		},
	}
	cmd.Flags().StringVarP(&timeFrame, "range", "r", "1D", "time frame: 1D, 1W, 1M, 3M, 1Y, 5Y")
	return cmd
}

func newNewsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "news [asset_id]",
		Short: "Show headlines for an asset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := assetIDFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			items, err := client.News(ctx, id)
			if err != nil {
				return err
			}
			return renderNews(id, items)
		},
	}
}

func newSearchCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search assets by name, code or symbol",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = strings.TrimSpace(args[0])
			}
			if query == "" {
				var err error
				query, err = promptRequired("Query")
				if err != nil {
					return err
				}
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			quotes, err := client.Search(ctx, query)
			if err != nil {
				return err
			}
			return renderQuotes(quotes, "SEARCH: "+strings.ToUpper(query))
		},
	}
}

func newBuyCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "buy [asset_id]",
		Short: "Buy an asset with cash",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := assetIDFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			qty, err := promptFloat("Quantity to buy", 0)
			if err != nil {
				return err
			}
			return placeOrderCommand(cmd, apiBase, "buy", id, qty)
		},
	}
}

func newSellCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sell [asset_id]",
		Short: "Sell a held asset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := assetIDFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			qty, err := promptFloat("Quantity to sell", 0)
			if err != nil {
				return err
			}
			return placeOrderCommand(cmd, apiBase, "sell", id, qty)
		},
	}
}

func placeOrderCommand(cmd *cobra.Command, apiBase *string, side, assetID string, qty float64) error {
	units, err := game.SharesToUnits(qty)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	client := newClient(apiBase)
	state, err := client.PlaceOrder(ctx, assetID, side, units, uuid.NewString())
	if err != nil {
		return err
	}
	return renderOrderResult(state, side, assetID, qty)
}

func newClickCmd(apiBase *string) *cobra.Command {
	var count int64
	cmd := &cobra.Command{
		Use:   "click",
		Short: "Click for coins (mirrored into cash)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				count = 1
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			earned, state, err := client.Click(ctx, count)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Clicked %d time(s): earned %s coins.", count, comma(earned)))
			return renderClicker(state.Clicker)
		},
	}
	cmd.Flags().Int64VarP(&count, "count", "n", 1, "number of clicks, up to 1000")
	return cmd
}

func newUpgradesCmd(apiBase *string) *cobra.Command {
	upgrades := &cobra.Command{
		Use:     "upgrades",
		Short:   "Clicker upgrade commands",
		Aliases: []string{"upgrade"},
	}
	upgrades.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List upgrades with current costs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			state, err := client.GameState(ctx)
			if err != nil {
				return err
			}
			return renderUpgrades(state.Clicker)
		},
	})
	upgrades.AddCommand(&cobra.Command{
		Use:   "buy [upgrade_id]",
		Short: "Buy an upgrade with coins",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := int64FromArgOrPrompt(args, 0, "Upgrade ID")
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			state, err := client.BuyUpgrade(ctx, id, uuid.NewString())
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Upgrade %d purchased.", id))
			return renderUpgrades(state.Clicker)
		},
	})
	return upgrades
}

func newStartCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setRunningCommand(cmd, apiBase, true)
		},
	}
}

func newPauseCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the game clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setRunningCommand(cmd, apiBase, false)
		},
	}
}

func setRunningCommand(cmd *cobra.Command, apiBase *string, running bool) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	client := newClient(apiBase)
	state, err := client.SetRunning(ctx, running)
	if err != nil {
		return err
	}
	if state.Portfolio.Running {
		printSuccess(fmt.Sprintf("Game running at t=%d.", state.Portfolio.GameTime))
	} else {
		printInfo(fmt.Sprintf("Game paused at t=%d.", state.Portfolio.GameTime))
	}
	return nil
}

func newResetCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the portfolio and the clicker to starting state",
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm, err := promptChoice("Reset everything", []string{"yes", "no"}, "no")
			if err != nil {
				return err
			}
			if confirm != "yes" {
				printInfo("Reset cancelled.")
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			state, err := client.Reset(ctx)
			if err != nil {
				return err
			}
			printSuccess("Game reset.")
			return renderDashboard(state)
		},
	}
}

func assetIDFromArgsOrPrompt(args []string) (string, error) {
	if len(args) > 0 {
		id := strings.ToLower(strings.TrimSpace(args[0]))
		if id == "" {
			return "", fmt.Errorf("invalid asset id")
		}
		return id, nil
	}
	id, err := promptRequired("Asset ID")
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(id)), nil
}

func int64FromArgOrPrompt(args []string, idx int, label string) (int64, error) {
	if len(args) > idx {
		v, err := parseInt64(args[idx])
		if err != nil || v <= 0 {
			return 0, fmt.Errorf("invalid %s", strings.ToLower(label))
		}
		return v, nil
	}
	return promptInt64(label, 1)
}
