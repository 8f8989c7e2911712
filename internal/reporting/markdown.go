package reporting

import (
	"fmt"
	"strings"
	"time"

	"sim-dashboard/internal/summary"
	"sim-dashboard/internal/view"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Run Report: %s\n\n", r.ExeID))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Strategy: %s | Assets: %s | Quote: %s\n\n",
		r.Strategy, strings.Join(r.Assets, ", "), r.Quote))

	// Period
	sb.WriteString("## Period\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Start | %s |\n", formatTime(r.Period.Start)))
	sb.WriteString(fmt.Sprintf("| End | %s |\n", formatTime(r.Period.End)))
	sb.WriteString(fmt.Sprintf("| Wallet Snapshots | %d |\n", r.Period.Snapshots))
	sb.WriteString(fmt.Sprintf("| Operations | %d |\n", r.Period.Operations))
	sb.WriteString("\n")

	// Parameters
	sb.WriteString("## Parameters\n\n")
	if len(r.Parameters) > 0 {
		sb.WriteString("```\n")
		for _, line := range r.Parameters {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("```\n")
	} else {
		sb.WriteString("No parameters recorded.\n")
	}
	sb.WriteString("\n")

	// Holdings
	writeEndpoint(&sb, "Initial Holdings", r.Initial)
	writeEndpoint(&sb, "Final Holdings", r.Final)

	// Trades
	sb.WriteString("## Trades\n\n")
	if len(r.Trades) > 0 {
		sb.WriteString("| Asset | Buys | Sells | VWAP Buy | VWAP Sell |\n")
		sb.WriteString("|-------|------|-------|----------|-----------|\n")
		for _, ts := range r.Trades {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %s | %s |\n",
				ts.Asset, ts.BuyCount, ts.SellCount,
				view.FormatOptional(ts.VWAPBuy, 4), view.FormatOptional(ts.VWAPSell, 4)))
		}
	} else {
		sb.WriteString("No crypto assets traded.\n")
	}
	sb.WriteString("\n")

	// Result
	sb.WriteString("## Result\n\n")
	sb.WriteString(fmt.Sprintf("Final relative gain: %.2f%%\n", r.FinalGain))

	return sb.String()
}

func writeEndpoint(sb *strings.Builder, title string, ep summary.Endpoint) {
	sb.WriteString(fmt.Sprintf("## %s\n\n", title))
	if len(ep.Positions) == 0 {
		sb.WriteString("No holdings.\n\n")
		return
	}
	sb.WriteString("| Asset | Amount | Price |\n")
	sb.WriteString("|-------|--------|-------|\n")
	for _, p := range ep.Positions {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", p.Asset, formatFloat(p.Amount), formatFloat(p.Price)))
	}
	sb.WriteString(fmt.Sprintf("| **Total** | | %d |\n", ep.TotalValue))
	sb.WriteString("\n")
}
