package universe

import (
	"sort"

	"github.com/adityavk/nsescreener/internal/contracts"
	"github.com/adityavk/nsescreener/pkg/logger"
)

// Evaluator applies the minimum-threshold criteria to sampled market
// figures. Symbols the sampler returned no data for are included
// unconditionally: absence of market data must never be read as poor
// liquidity. That conservative default is a business rule, not a gap.
type Evaluator struct {
	logger *logger.Logger
}

// NewEvaluator creates a new Evaluator
func NewEvaluator(log *logger.Logger) *Evaluator {
	return &Evaluator{logger: log}
}

// Evaluate partitions symbols against the criteria. The result holds
// passing sampled symbols first, then indeterminate ones, each group
// sorted; the orchestrator re-sorts the combined list before caching.
func (e *Evaluator) Evaluate(symbols []string, samples map[string]contracts.MarketSample, criteria contracts.FilterCriteria) []string {
	passing := make([]string, 0, len(samples))
	indeterminate := make([]string, 0)
	failed := 0

	for _, symbol := range symbols {
		sample, ok := samples[symbol]
		if !ok {
			indeterminate = append(indeterminate, symbol)
			continue
		}

		if sample.MarketCapCr >= criteria.MinMarketCapCr && sample.AvgDailyValueLakh >= criteria.MinDailyValueLakh {
			passing = append(passing, symbol)
		} else {
			failed++
		}
	}

	sort.Strings(passing)
	sort.Strings(indeterminate)

	e.logger.WithFields(map[string]interface{}{
		"passing":       len(passing),
		"indeterminate": len(indeterminate),
		"failed":        failed,
	}).Debug("Criteria evaluation completed")

	return append(passing, indeterminate...)
}
