package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"

	"simarket/internal/catalog"
	"simarket/internal/clock"
	"simarket/internal/market"
	"simarket/internal/portfolio"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

type assetsPayload struct {
	Assets []catalog.Asset `json:"assets"`
}

type pricesPayload struct {
	Seq    uint64             `json:"seq"`
	Prices map[string]float64 `json:"prices"`
}

type assetPayload struct {
	Asset    catalog.Asset         `json:"asset"`
	Price    float64               `json:"price"`
	Tracked  bool                  `json:"tracked"`
	Calendar market.CalendarStatus `json:"calendar"`
}

type marketPayload struct {
	Macro    market.MacroSnapshot                    `json:"macro"`
	Calendar map[catalog.Class]market.CalendarStatus `json:"calendar"`
	State    string                                  `json:"state"`
	LastTick time.Time                               `json:"last_tick"`
	Seq      uint64                                  `json:"seq"`
}

type portfolioPayload struct {
	Positions  []portfolio.Position `json:"positions"`
	TotalValue float64              `json:"total_value"`
}

type clockPayload struct {
	Reading clock.Reading `json:"reading"`
	Hour    int           `json:"hour"`
	Weekday string        `json:"weekday"`
}

func renderPrices(rawAssets, rawPrices map[string]any) error {
	assets, err := decodeInto[assetsPayload](rawAssets)
	if err != nil {
		return err
	}
	prices, err := decodeInto[pricesPayload](rawPrices)
	if err != nil {
		return err
	}

	accent.Printf("\n== PRICES (seq %d) ==\n", prices.Seq)
	fmt.Printf("%-8s %-24s %-9s %-10s %16s\n", "ID", "NAME", "CLASS", "TIER", "PRICE")
	for _, a := range assets.Assets {
		fmt.Printf("%-8s %-24s %-9s %-10s %16s\n",
			a.ID,
			truncate(a.DisplayName, 24),
			a.Class,
			a.Tier,
			formatPrice(prices.Prices[a.ID], a.Decimals()),
		)
	}
	return nil
}

func renderAsset(raw map[string]any) error {
	p, err := decodeInto[assetPayload](raw)
	if err != nil {
		return err
	}

	accent.Printf("\n== %s (%s) ==\n", p.Asset.ID, p.Asset.DisplayName)
	fmt.Printf("Class:       %s\n", p.Asset.Class)
	fmt.Printf("Tier:        %s\n", p.Asset.Tier)
	fmt.Printf("Base Price:  %s\n", formatPrice(p.Asset.BasePrice, p.Asset.Decimals()))
	fmt.Printf("Price:       %s\n", formatPrice(p.Price, p.Asset.Decimals()))
	fmt.Printf("Tracked:     %v\n", p.Tracked)
	if p.Calendar.Open {
		success.Printf("Market open (%s)\n", p.Calendar.Reason)
	} else {
		warn.Printf("Market closed (%s)\n", p.Calendar.Reason)
	}
	return nil
}

func renderMarket(raw map[string]any) error {
	p, err := decodeInto[marketPayload](raw)
	if err != nil {
		return err
	}

	accent.Println("\n== MARKET ==")
	fmt.Printf("Trend:     %s\n", p.Macro.Trend)
	fmt.Printf("Health:    %.1f\n", p.Macro.Health)
	fmt.Printf("Scheduler: %s\n", p.State)
	fmt.Printf("Batch Seq: %d\n", p.Seq)
	if !p.LastTick.IsZero() {
		fmt.Printf("Last Tick: %s\n", p.LastTick.Format(time.RFC3339))
	}

	fmt.Println()
	accent.Println("Calendar")
	classes := make([]string, 0, len(p.Calendar))
	for class := range p.Calendar {
		classes = append(classes, string(class))
	}
	sort.Strings(classes)
	for _, class := range classes {
		st := p.Calendar[catalog.Class(class)]
		if st.Open {
			fmt.Printf("%-9s %s\n", class, success.Sprintf("open (%s)", st.Reason))
		} else {
			fmt.Printf("%-9s %s\n", class, warn.Sprintf("closed (%s)", st.Reason))
		}
	}
	return nil
}

func renderPortfolio(raw map[string]any) error {
	p, err := decodeInto[portfolioPayload](raw)
	if err != nil {
		return err
	}

	accent.Println("\n== PORTFOLIO ==")
	if len(p.Positions) == 0 {
		neutral.Println("No positions held.")
		return nil
	}
	fmt.Printf("%-8s %12s %16s %16s %16s\n", "ID", "QTY", "AVG", "LAST", "VALUE")
	for _, pos := range p.Positions {
		fmt.Printf("%-8s %12.4f %16.2f %16.2f %16.2f\n",
			pos.AssetID, pos.Quantity, pos.AvgPrice, pos.LastPrice, pos.LastPrice*pos.Quantity)
	}
	fmt.Printf("\nTotal: %.2f\n", p.TotalValue)
	return nil
}

func renderClock(raw map[string]any) error {
	p, err := decodeInto[clockPayload](raw)
	if err != nil {
		return err
	}

	accent.Println("\n== CLOCK ==")
	fmt.Printf("Date:    %04d-%02d-%02d (%s)\n", p.Reading.Year, p.Reading.Month, p.Reading.Day, p.Weekday)
	fmt.Printf("Hour:    %02d:00 (%.1f%% of day)\n", p.Hour, p.Reading.HourFraction)
	return nil
}

func decodeInto[T any](raw map[string]any) (T, error) {
	var out T
	b, err := json.Marshal(raw)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, err
	}
	return out, nil
}

func formatPrice(v float64, decimals int) string {
	return fmt.Sprintf("%.*f", decimals, v)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
