package report

import "math"

// Axis is the y range and tick step of a DUT/REF bar chart.
type Axis struct {
	Max  float64
	Step float64
}

// Ticks returns the tick values from zero to Max inclusive.
func (a Axis) Ticks() []float64 {
	if a.Step <= 0 {
		return []float64{0, a.Max}
	}
	var ticks []float64
	for v := 0.0; v <= a.Max+a.Step/2; v += a.Step {
		ticks = append(ticks, v)
	}
	return ticks
}

var axisSteps = []float64{200, 100, 50, 25, 10, 5, 1}

const (
	defaultAxisStep = 100
	minAxisTicks    = 5
)

// BarAxis picks a y axis for a pair of bars: headroom of one hundred above
// the larger value rounded up to a hundred, and the coarsest step giving at
// least five ticks.
func BarAxis(dut, ref float64) Axis {
	m := math.Max(sanitize(dut), sanitize(ref))
	yMax := math.Ceil(m/100)*100 + 100

	step := float64(defaultAxisStep)
	for _, s := range axisSteps {
		if math.Ceil(yMax/s)+1 >= minAxisTicks {
			step = s
			break
		}
	}
	yMax = math.Max(yMax, (minAxisTicks-1)*step)
	yMax = math.Ceil(yMax/step) * step
	return Axis{Max: yMax, Step: step}
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
