package chart

import "math"

// AxisPlan describes a padded log-scale value range and its tick values.
type AxisPlan struct {
	YMin  float64   `json:"y_min"`
	YMax  float64   `json:"y_max"`
	Ticks []float64 `json:"ticks"`
}

// Tick label density caps. Candidates above maxTicks trigger the first
// reduction stage (mantissas 1 and 5 only); a result still above
// maxReducedTicks keeps pure powers of ten. The thresholds are a
// heuristic but rendered output depends on them exactly.
const (
	maxTicks        = 7
	maxReducedTicks = 6
)

// PlanAxis computes the visible log-scale range and human-friendly tick
// values (1/2/5 x 10^n) for a set of prices. Non-positive and non-finite
// prices are ignored; an empty qualifying set returns the zero plan.
// All remaining prices are guaranteed to fall inside [YMin, YMax], with
// proportional margin in log space. Equal min and max collapse the
// padding to zero and yield a degenerate but valid range.
func PlanAxis(prices []float64) AxisPlan {
	minPrice := math.Inf(1)
	maxPrice := math.Inf(-1)
	for _, p := range prices {
		if !validPrice(p) {
			continue
		}
		minPrice = math.Min(minPrice, p)
		maxPrice = math.Max(maxPrice, p)
	}
	if math.IsInf(minPrice, 1) {
		return AxisPlan{}
	}

	logMin := math.Log10(minPrice)
	logMax := math.Log10(maxPrice)
	pad := 0.1 * (logMax - logMin)

	yMin := math.Pow(10, logMin-pad)
	yMax := math.Pow(10, logMax+pad)

	// The Pow/Log10 round trip is not exact: with pad 0 it can land
	// yMin a hair above the smallest price. Clamp so every input
	// stays inside the range.
	yMin = math.Min(yMin, minPrice)
	yMax = math.Max(yMax, maxPrice)

	type candidate struct {
		value    float64
		mantissa int
	}

	var candidates []candidate
	lo := int(math.Floor(math.Log10(yMin)))
	hi := int(math.Ceil(math.Log10(yMax)))
	for p := lo; p <= hi; p++ {
		for _, m := range []int{1, 2, 5} {
			v := float64(m) * math.Pow(10, float64(p))
			if v >= yMin*0.9 && v <= yMax*1.1 {
				candidates = append(candidates, candidate{value: v, mantissa: m})
			}
		}
	}

	if len(candidates) > maxTicks {
		reduced := candidates[:0]
		for _, c := range candidates {
			if c.mantissa == 1 || c.mantissa == 5 {
				reduced = append(reduced, c)
			}
		}
		candidates = reduced

		if len(candidates) > maxReducedTicks {
			reduced = candidates[:0]
			for _, c := range candidates {
				if c.mantissa == 1 {
					reduced = append(reduced, c)
				}
			}
			candidates = reduced
		}
	}

	ticks := make([]float64, len(candidates))
	for i, c := range candidates {
		ticks[i] = c.value
	}

	return AxisPlan{YMin: yMin, YMax: yMax, Ticks: ticks}
}
