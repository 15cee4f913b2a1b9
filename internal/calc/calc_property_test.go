package calc

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trading-journal/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// For any prices, mirroring a long trade around its entry yields a short
// trade with the same R-multiple, P&L and planned RR.
func TestProperty_LongShortMirrorSymmetry(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	priceGen := gen.Float64Range(1, 10000)
	offsetGen := gen.Float64Range(-500, 500)

	properties.Property("mirrored short matches long", prop.ForAll(
		func(entry, stopOff, exitOff, tpOff, size float64) bool {
			if math.Abs(stopOff) < 0.01 {
				return true
			}
			stop, exit, tp := entry-stopOff, entry+exitOff, entry+tpOff
			mStop, mExit, mTp := entry+stopOff, entry-exitOff, entry-tpOff

			return almostEqual(RMultiple(entry, exit, stop, models.Long), RMultiple(entry, mExit, mStop, models.Short)) &&
				almostEqual(PnL(entry, exit, size, models.Long), PnL(entry, mExit, size, models.Short)) &&
				almostEqual(RiskReward(entry, tp, stop, models.Long), RiskReward(entry, mTp, mStop, models.Short))
		},
		priceGen, offsetGen, offsetGen, offsetGen, gen.Float64Range(0, 1000),
	))

	properties.Property("identical prices give identical R in either direction", prop.ForAll(
		func(entry, stopOff, exit float64) bool {
			if math.Abs(stopOff) < 0.01 {
				return true
			}
			stop := entry - stopOff
			return almostEqual(RMultiple(entry, exit, stop, models.Long), RMultiple(entry, exit, stop, models.Short))
		},
		priceGen, offsetGen, priceGen,
	))

	properties.TestingRun(t)
}

// For any exit, a stop equal to the entry saturates R and RR to zero.
func TestProperty_ZeroRiskSaturates(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("zero risk gives zero", prop.ForAll(
		func(entry, exit float64, long bool) bool {
			dir := models.Short
			if long {
				dir = models.Long
			}
			return RMultiple(entry, exit, entry, dir) == 0 && RiskReward(entry, exit, entry, dir) == 0
		},
		gen.Float64Range(-10000, 10000), gen.Float64Range(-10000, 10000), gen.Bool(),
	))

	properties.TestingRun(t)
}

// The outcome agrees with the sign of P&L outside the breakeven band.
func TestProperty_OutcomeMatchesSign(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("outcome classification", prop.ForAll(
		func(pnl float64) bool {
			got := ClassifyOutcome(pnl)
			switch {
			case math.Abs(pnl) < BreakevenEpsilon:
				return got == models.Breakeven
			case pnl > 0:
				return got == models.Win
			default:
				return got == models.Loss
			}
		},
		gen.Float64Range(-1, 1),
	))

	properties.TestingRun(t)
}

// Derive always sets pnl, r_multiple and outcome together.
func TestProperty_DeriveOutcomeFieldsJointlyPresent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	optPrice := gen.PtrOf(gen.Float64Range(1, 1000))

	properties.Property("joint nullability", prop.ForAll(
		func(entry, stop, tp, size, exit *float64, long, slMoved, followed bool) bool {
			dir := models.Short
			if long {
				dir = models.Long
			}
			d := Derive(Input{
				Direction:     dir,
				EntryPrice:    entry,
				StopLoss:      stop,
				TakeProfit:    tp,
				PositionSize:  size,
				ExitPrice:     exit,
				SLMoved:       slMoved,
				FollowedRules: followed,
			})
			allNil := d.PnL == nil && d.RMultiple == nil && d.Outcome == nil
			allSet := d.PnL != nil && d.RMultiple != nil && d.Outcome != nil
			if exit == nil && !allNil {
				return false
			}
			if (d.RiskReward == nil) != (d.IsFlagged == nil) {
				return false
			}
			return allNil || allSet
		},
		optPrice, optPrice, optPrice, optPrice, optPrice, gen.Bool(), gen.Bool(), gen.Bool(),
	))

	properties.TestingRun(t)
}
