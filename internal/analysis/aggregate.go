package analysis

import (
	"math"
	"strconv"

	"github.com/pokebrief/gradewatch/internal/model"
)

// Aggregate computes summary statistics over one tier's sample, capped to
// sampleCap listings in fetch order (zero cap means no limit). An empty
// sample yields nil Average/Min/Max: "no data" must stay distinguishable
// from a $0.00 price.
func Aggregate(listings []model.Listing, sampleCap int) model.TierStats {
	if sampleCap > 0 && len(listings) > sampleCap {
		listings = listings[:sampleCap]
	}

	stats := model.TierStats{
		Sample: listings,
		Count:  len(listings),
	}
	if len(listings) == 0 {
		return stats
	}

	sum := 0.0
	lo := listings[0].TotalPrice()
	hi := lo
	for _, l := range listings {
		total := l.TotalPrice()
		sum += total
		lo = math.Min(lo, total)
		hi = math.Max(hi, total)
	}

	avg := round2(sum / float64(len(listings)))
	lo = round2(lo)
	hi = round2(hi)
	stats.Average = &avg
	stats.Min = &lo
	stats.Max = &hi
	return stats
}

// EstimateProfit returns the graded average minus the raw average minus the
// grading fee, or nil when either average is unavailable. Pure function.
func EstimateProfit(raw, graded model.TierStats, gradingFee float64) *float64 {
	if raw.Average == nil || graded.Average == nil {
		return nil
	}
	profit := round2(*graded.Average - *raw.Average - gradingFee)
	return &profit
}

// Money renders an optional price for display. Missing data renders as a
// dash, never as $0.00.
func Money(v *float64) string {
	if v == nil {
		return "—"
	}
	return "$" + strconv.FormatFloat(round2(*v), 'f', 2, 64)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
