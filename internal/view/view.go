// Package view turns derived run tables into chart-ready series. It decides
// what is drawn (points, markers, reference lines, shaded regions and their
// colors) but not how.
package view

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"sim-dashboard/internal/domain"
	"sim-dashboard/internal/series"
)

// Colors used by the charts.
const (
	ColorBuy      = "green"
	ColorSell     = "red"
	ColorGain     = "green"
	ColorLoss     = "red"
	ColorWallet   = "blue"
	ColorBaseline = "orange"
	ColorNeutral  = "black"
)

// NoValue is rendered in place of an undefined number.
const NoValue = "—"

// Point is one sample of a time series.
type Point struct {
	T time.Time `json:"t"`
	V float64   `json:"v"`
}

// Series is a named, colored line.
type Series struct {
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}

// Marker is a vertical segment at a trade, from a low reference price up to
// the execution price.
type Marker struct {
	T     time.Time   `json:"t"`
	Low   float64     `json:"low"`
	High  float64     `json:"high"`
	Side  domain.Side `json:"side"`
	Color string      `json:"color"`
	Label string      `json:"label"`
}

// ReferenceLine is a horizontal line across a chart.
type ReferenceLine struct {
	Value  float64 `json:"value"`
	Color  string  `json:"color"`
	Dashed bool    `json:"dashed"`
}

// Region is a shaded horizontal band between two values.
type Region struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Color string  `json:"color"`
}

// Chart is everything needed to draw one panel.
type Chart struct {
	Title      string          `json:"title"`
	Series     []Series        `json:"series"`
	Markers    []Marker        `json:"markers,omitempty"`
	References []ReferenceLine `json:"references,omitempty"`
	Regions    []Region        `json:"regions,omitempty"`
}

// PriceChart plots the price of asset with one marker per trade. The marker
// low reference is the minimum price of the asset over the run.
func PriceChart(wallet *series.WalletTable, ops *series.OperationTable, asset string) Chart {
	prices := wallet.PriceSeries(asset)
	points := make([]Point, len(prices))
	low := 0.0
	for i, p := range prices {
		points[i] = Point{T: wallet.Rows[i].Timestamp, V: p}
		if i == 0 || p < low {
			low = p
		}
	}

	chart := Chart{
		Title:  asset + " price",
		Series: []Series{{Name: asset, Color: ColorWallet, Points: points}},
	}

	for _, r := range ops.ForAsset(asset) {
		color := ColorBuy
		if r.Side == domain.SideSell {
			color = ColorSell
		}
		chart.Markers = append(chart.Markers, Marker{
			T:     r.Timestamp,
			Low:   low,
			High:  r.Price,
			Side:  r.Side,
			Color: color,
			Label: FormatSigned(r.Amount),
		})
	}
	return chart
}

// WalletChart plots wallet value against the buy-and-hold baseline with a
// dashed reference at the initial baseline.
func WalletChart(wallet *series.WalletTable) Chart {
	value := make([]Point, wallet.Len())
	baseline := make([]Point, wallet.Len())
	for i, r := range wallet.Rows {
		value[i] = Point{T: r.Timestamp, V: r.WalletValue}
		baseline[i] = Point{T: r.Timestamp, V: r.Baseline}
	}

	chart := Chart{
		Title: "Wallet value",
		Series: []Series{
			{Name: "walletValue", Color: ColorWallet, Points: value},
			{Name: "baseline", Color: ColorBaseline, Points: baseline},
		},
	}
	if wallet.Len() > 0 {
		chart.References = []ReferenceLine{{Value: wallet.Rows[0].Baseline, Color: ColorNeutral, Dashed: true}}
	}
	return chart
}

// GainChart plots relative gain with a break-even line, a red band from zero
// down to the minimum and a green band from zero up to the maximum.
func GainChart(wallet *series.WalletTable) Chart {
	points := make([]Point, wallet.Len())
	var lo, hi float64
	for i, r := range wallet.Rows {
		points[i] = Point{T: r.Timestamp, V: r.RelativeGain}
		if i == 0 || r.RelativeGain < lo {
			lo = r.RelativeGain
		}
		if i == 0 || r.RelativeGain > hi {
			hi = r.RelativeGain
		}
	}

	return Chart{
		Title:      "Relative gain (%)",
		Series:     []Series{{Name: "relativeGain(%)", Color: ColorNeutral, Points: points}},
		References: []ReferenceLine{{Value: 0, Color: ColorNeutral}},
		Regions: []Region{
			{From: 0, To: lo, Color: ColorLoss},
			{From: 0, To: hi, Color: ColorGain},
		},
	}
}

// PropLines renders strategy parameters as "key: value" lines sorted by key,
// with values aligned in one column.
func PropLines(props map[string]string) []string {
	keys := make([]string, 0, len(props))
	width := 0
	for k := range props {
		keys = append(keys, k)
		if len(k) > width {
			width = len(k)
		}
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("%s: %s%s", k, strings.Repeat(" ", width-len(k)), props[k])
	}
	return lines
}

// FormatSigned formats a trade amount with an explicit sign.
func FormatSigned(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v >= 0 {
		return "+" + s
	}
	return s
}

// FormatOptional formats v with the given precision, or NoValue when nil.
func FormatOptional(v *float64, prec int) string {
	if v == nil {
		return NoValue
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}
