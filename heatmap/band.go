// band.go - Band-Skala: teilt einen Bereich in n gleich breite Baender
package heatmap

// band positions n equal bands inside [0, extent]. Padding is the share of
// a step left empty between bands and, on both ends, outside them.
type band struct {
	start float64
	step  float64
	width float64
}

func newBand(n int, extent, padding float64) band {
	if n <= 0 {
		return band{}
	}

	step := extent / max(1, float64(n)-padding+2*padding)
	start := (extent - step*(float64(n)-padding)) / 2
	return band{
		start: start,
		step:  step,
		width: step * (1 - padding),
	}
}

// pos returns the leading edge of band i.
func (b band) pos(i int) float64 {
	return b.start + b.step*float64(i)
}

// center returns the midpoint of band i.
func (b band) center(i int) float64 {
	return b.pos(i) + b.width/2
}
