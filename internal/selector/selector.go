// Package selector derives the strategy and run choices offered to the user
// from the terminated execution records.
package selector

import (
	"strings"

	"sim-dashboard/internal/domain"
)

// RunOption is one selectable run of a strategy.
type RunOption struct {
	ExeID  string   `json:"exeId"`
	Assets []string `json:"assets"`
	Label  string   `json:"label"`
}

// DistinctStrategies returns the distinct strategy types in first-seen order.
func DistinctStrategies(records []*domain.ExecutionRecord) []string {
	seen := make(map[string]struct{})
	strategies := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.StrategyType]; ok {
			continue
		}
		seen[r.StrategyType] = struct{}{}
		strategies = append(strategies, r.StrategyType)
	}
	return strategies
}

// RunsForStrategy returns one option per record of the given strategy, in input order.
func RunsForStrategy(records []*domain.ExecutionRecord, strategy string) []RunOption {
	runs := make([]RunOption, 0)
	for _, r := range records {
		if r.StrategyType != strategy {
			continue
		}
		runs = append(runs, RunOption{
			ExeID:  r.ExeID,
			Assets: append([]string(nil), r.Assets...),
			Label:  Label(r.ExeID, r.Assets),
		})
	}
	return runs
}

// FindRun returns the record with the given exeId.
func FindRun(records []*domain.ExecutionRecord, exeID string) (*domain.ExecutionRecord, bool) {
	for _, r := range records {
		if r.ExeID == exeID {
			return r, true
		}
	}
	return nil, false
}

// Label renders the display label of a run, e.g. "64a1f0 BTC@ETH@USDT".
func Label(exeID string, assets []string) string {
	return exeID + " " + strings.Join(assets, "@")
}
