package reporting

import (
	"strconv"
	"strings"
	"time"

	"sim-dashboard/internal/series"
)

// TimeLayout is the timestamp layout used in exports.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// RenderWalletCSV renders the wallet table with its derived columns.
func RenderWalletCSV(t *series.WalletTable) string {
	var sb strings.Builder

	// Header
	sb.WriteString(strings.Join(t.Columns(), ","))
	sb.WriteString("\n")

	// Rows
	for _, row := range t.Rows {
		sb.WriteString(row.Timestamp.Format(TimeLayout))
		for i := range t.Assets {
			sb.WriteString(",")
			sb.WriteString(formatFloat(row.Amounts[i]))
			sb.WriteString(",")
			sb.WriteString(formatFloat(row.Prices[i]))
		}
		sb.WriteString(",")
		sb.WriteString(formatFloat(row.WalletValue))
		sb.WriteString(",")
		sb.WriteString(formatFloat(row.Baseline))
		sb.WriteString(",")
		sb.WriteString(formatFloat(row.RelativeGain))
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderOperationsCSV renders the operation table. Amounts are signed and
// base-denominated.
func RenderOperationsCSV(t *series.OperationTable) string {
	var sb strings.Builder

	sb.WriteString(strings.Join(t.Columns(), ","))
	sb.WriteString("\n")

	for _, row := range t.Rows {
		sb.WriteString(strings.Join([]string{
			row.Timestamp.Format(TimeLayout),
			row.Base,
			string(row.Side),
			formatFloat(row.Amount),
			formatFloat(row.Price),
		}, ","))
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
