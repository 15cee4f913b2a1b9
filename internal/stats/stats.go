// Package stats folds a set of journaled trades into summary statistics.
package stats

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"trading-journal/internal/models"
)

// NoSetup is reported when no setup has a closed trade to average.
const NoSetup = "N/A"

// Round2 rounds v half away from zero to two decimal places. Rounding
// works on the exact binary value of v, so 1.005 (stored just below) gives 1.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	exact := decimal.RequireFromString(strconv.FormatFloat(v, 'f', 60, 64))
	f, _ := exact.Round(2).Float64()
	return f
}

// group accumulates R-multiples for one setup name.
type group struct {
	name  string
	sum   float64
	count int
}

func (g *group) avg() float64 {
	return g.sum / float64(g.count)
}

// groupBySetup groups trades with a recorded R-multiple by setup name,
// preserving the order in which each setup first appears.
func groupBySetup(trades []models.Trade) []*group {
	var groups []*group
	index := make(map[string]*group)
	for i := range trades {
		r := trades[i].RMultiple
		if r == nil {
			continue
		}
		name := trades[i].SetupName
		g, ok := index[name]
		if !ok {
			g = &group{name: name}
			index[name] = g
			groups = append(groups, g)
		}
		g.sum += *r
		g.count++
	}
	return groups
}

// Compute returns the summary statistics for trades.
//
// Best and worst setup are chosen by mean R-multiple. The first setup seen
// seeds both; a later setup replaces either only when strictly better (or
// worse), so ties keep the earlier setup.
func Compute(trades []models.Trade) models.StatsSummary {
	summary := models.StatsSummary{
		TotalTrades: len(trades),
		BestSetup:   models.SetupAverage{Name: NoSetup},
		WorstSetup:  models.SetupAverage{Name: NoSetup},
	}
	if len(trades) == 0 {
		return summary
	}

	var wins, withR int
	var sumR float64
	for i := range trades {
		if o := trades[i].Outcome; o != nil && *o == models.Win {
			wins++
		}
		if r := trades[i].RMultiple; r != nil {
			sumR += *r
			withR++
		}
	}

	summary.WinRate = Round2(float64(wins) / float64(len(trades)) * 100)
	if withR > 0 {
		summary.AvgR = Round2(sumR / float64(withR))
	}

	for i, g := range groupBySetup(trades) {
		avg := g.avg()
		if i == 0 || avg > summary.BestSetup.AvgR {
			summary.BestSetup = models.SetupAverage{Name: g.name, AvgR: avg}
		}
		if i == 0 || avg < summary.WorstSetup.AvgR {
			summary.WorstSetup = models.SetupAverage{Name: g.name, AvgR: avg}
		}
	}

	return summary
}

// Breakdown returns per-setup figures for every setup referenced by trades,
// in first-seen order. Trades without a setup are grouped under NoSetup.
func Breakdown(trades []models.Trade) []models.SetupBreakdown {
	var out []models.SetupBreakdown
	index := make(map[string]int)
	sums := make(map[string]float64)

	for i := range trades {
		t := &trades[i]
		name := t.SetupName
		if name == "" {
			name = NoSetup
		}
		pos, ok := index[name]
		if !ok {
			pos = len(out)
			index[name] = pos
			out = append(out, models.SetupBreakdown{Name: name})
		}
		b := &out[pos]
		b.Trades++
		if t.IsFlagged {
			b.Flagged++
		}
		if t.Outcome != nil && *t.Outcome == models.Win {
			b.Wins++
		}
		if t.RMultiple != nil {
			b.Closed++
			sums[name] += *t.RMultiple
		}
	}

	for i := range out {
		b := &out[i]
		b.WinRate = Round2(float64(b.Wins) / float64(b.Trades) * 100)
		if b.Closed > 0 {
			b.AvgR = Round2(sums[b.Name] / float64(b.Closed))
		}
	}
	return out
}

// FlaggedCount returns the number of trades marked for review.
func FlaggedCount(trades []models.Trade) int {
	n := 0
	for i := range trades {
		if trades[i].IsFlagged {
			n++
		}
	}
	return n
}
