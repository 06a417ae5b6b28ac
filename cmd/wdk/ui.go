package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"wondesk/internal/game"
	"wondesk/internal/market"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func promptFloat(label string, min float64) (float64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			printWarn("Enter a valid number.")
			continue
		}
		if v <= min {
			printWarn(fmt.Sprintf("Value must be > %.4f", min))
			continue
		}
		return v, nil
	}
}

func promptInt64(label string, min int64) (int64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := parseInt64(text)
		if err != nil {
			printWarn("Enter a whole number.")
			continue
		}
		if v < min {
			printWarn(fmt.Sprintf("Value must be >= %d", min))
			continue
		}
		return v, nil
	}
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func renderDashboard(state game.StateView) error {
	running := "paused"
	if state.Portfolio.Running {
		running = "running"
	}
	accent.Printf("\n== WONDESK DASHBOARD (t=%d, %s) ==\n", state.Portfolio.GameTime, running)
	fmt.Printf("Cash:          %s won\n", formatMicros(state.Portfolio.CashMicros))
	fmt.Printf("Holdings:      %s won\n", formatMicros(state.HoldingsMicros))
	fmt.Printf("Total Value:   %s won\n", formatMicros(state.TotalValueMicros))
	fmt.Printf("P/L vs Start:  %s won\n", colorizeMicros(state.TotalValueMicros-game.StarterCashMicros))

	fmt.Println()
	accent.Println("Holdings")
	if len(state.Portfolio.Holdings) == 0 {
		printInfo("No holdings yet.")
	} else {
		fmt.Printf("%-18s %-10s %-8s %12s %16s %16s\n", "ASSET", "CODE", "TYPE", "QTY", "PRICE", "VALUE")
		for _, h := range state.Portfolio.Holdings {
			fmt.Printf("%-18s %-10s %-8s %12.4f %16s %16s\n",
				truncate(h.Name, 18),
				h.Code,
				h.Type,
				game.UnitsToShares(h.QuantityUnits),
				formatMicros(h.PriceMicros),
				formatMicros(h.TotalValueMicros),
			)
		}
	}

	fmt.Println()
	return renderClicker(state.Clicker)
}

func renderClicker(c game.ClickerState) error {
	accent.Println("Clicker")
	fmt.Printf("Coins:           %s\n", comma(c.Coins))
	fmt.Printf("Click Power:     %s\n", comma(c.ClickPower))
	fmt.Printf("Auto Click Rate: %s/tick\n", comma(c.AutoClickRate))
	fmt.Println()
	return nil
}

func renderUpgrades(c game.ClickerState) error {
	accent.Println("\n== UPGRADES ==")
	fmt.Printf("Coins: %s\n\n", comma(c.Coins))
	fmt.Printf("%-4s %-20s %8s %8s %14s %-10s\n", "ID", "NAME", "LEVEL", "POWER", "NEXT COST", "BOOSTS")
	for _, u := range c.Upgrades {
		boosts := "auto"
		if u.ID%2 == 1 {
			boosts = "click"
		}
		cost := formatCoins(u.NextCost(), c.Coins)
		fmt.Printf("%-4d %-20s %8d %8s %14s %-10s\n",
			u.ID,
			truncate(u.Name, 20),
			u.Level,
			comma(u.Power),
			cost,
			boosts,
		)
	}
	fmt.Println()
	return nil
}

func formatCoins(cost, have int64) string {
	text := comma(cost)
	if cost <= have {
		return success.Sprint(text)
	}
	return neutral.Sprint(text)
}

func renderQuotes(quotes []market.Quote, title string) error {
	accent.Printf("\n== %s ==\n", title)
	if len(quotes) == 0 {
		printInfo("No assets found.")
		return nil
	}
	fmt.Printf("%-18s %-22s %-10s %16s %9s %16s\n", "ID", "NAME", "CODE", "PRICE", "CHANGE", "CAP (B WON)")
	for _, q := range quotes {
		fmt.Printf("%-18s %-22s %-10s %16s %9s %16s\n",
			q.ID,
			truncate(q.Name, 22),
			q.Code,
			formatMicros(q.PriceMicros),
			colorizePercent(q.ChangePct),
			comma(q.MarketCapWon/1_000_000_000),
		)
	}
	fmt.Println()
	return nil
}

func renderAssetDetail(q market.Quote) error {
	accent.Printf("\n== %s %s (%s) ==\n", q.Logo, q.Name, q.Code)
	fmt.Printf("Type:        %s\n", q.Type)
	fmt.Printf("Price:       %s won\n", formatMicros(q.PriceMicros))
	fmt.Printf("Change:      %s\n", colorizePercent(q.ChangePct))
	fmt.Printf("Volume:      %s won\n", comma(q.Volume))
	fmt.Printf("Market Cap:  %s won\n", comma(q.MarketCapWon))
	if q.Sector != "" {
		fmt.Printf("Sector:      %s\n", q.Sector)
	}
	if q.Symbol != "" {
		fmt.Printf("Symbol:      %s\n", q.Symbol)
	}
	if q.Supply > 0 {
		maxSupply := "uncapped"
		if q.MaxSupply > 0 {
			maxSupply = comma(q.MaxSupply)
		}
		fmt.Printf("Supply:      %s / %s\n", comma(q.Supply), maxSupply)
	}
	fmt.Println()
	return nil
}

func renderChart(assetID string, frame market.TimeFrame, points []market.ChartPoint) error {
	accent.Printf("\n== CHART %s (%s) ==\n", strings.ToUpper(assetID), frame)
	if len(points) == 0 {
		printInfo("No chart points.")
		return nil
	}
	first := points[0].ValueMicros
	last := points[len(points)-1].ValueMicros
	fmt.Printf("Points: %d  Open: %s  Last: %s  Delta: %s\n\n",
		len(points), formatMicros(first), formatMicros(last), colorizeMicros(last-first))

	limit := len(points)
	if limit > 12 {
		limit = 12
	}
	fmt.Printf("%-20s %16s\n", "TIME", "VALUE")
	for _, p := range points[len(points)-limit:] {
		at := time.UnixMilli(p.Timestamp).Local()
		fmt.Printf("%-20s %16s\n", at.Format("2006-01-02 15:04"), formatMicros(p.ValueMicros))
	}
	fmt.Println()
	return nil
}

func renderNews(assetID string, items []market.NewsItem) error {
	accent.Printf("\n== NEWS %s ==\n", strings.ToUpper(assetID))
	if len(items) == 0 {
		printInfo("No news items.")
		return nil
	}
	for _, item := range items {
		date := item.Date
		if at, err := time.Parse(time.RFC3339, item.Date); err == nil {
			date = at.Local().Format("2006-01-02")
		}
		fmt.Printf("[%s] %s\n", date, warn.Sprint(item.Title))
		fmt.Printf("  %s (%s)\n", item.Content, item.Source)
	}
	fmt.Println()
	return nil
}

func renderOrderResult(state game.StateView, side, assetID string, qty float64) error {
	accent.Printf("\n== ORDER %s ==\n", strings.ToUpper(side))
	fmt.Printf("Asset:    %s\n", assetID)
	fmt.Printf("Quantity: %.4f\n", qty)
	fmt.Printf("Cash:     %s won\n", formatMicros(state.Portfolio.CashMicros))
	fmt.Printf("Holdings: %s won\n", formatMicros(state.HoldingsMicros))
	fmt.Printf("Total:    %s won\n", formatMicros(state.TotalValueMicros))
	fmt.Println()
	return nil
}

func colorizeMicros(v int64) string {
	text := signedMicros(v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func colorizePercent(v float64) string {
	text := fmt.Sprintf("%+.2f%%", v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func formatMicros(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := v / market.MicrosPerWon
	frac := (v % market.MicrosPerWon) / 10_000
	return fmt.Sprintf("%s%s.%02d", sign, comma(whole), frac)
}

func signedMicros(v int64) string {
	if v > 0 {
		return "+" + formatMicros(v)
	}
	return formatMicros(v)
}

func comma(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.WriteString(sign)
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
