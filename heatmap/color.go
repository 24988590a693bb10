// color.go - Sequenzielle "Blues"-Farbskala mit B-Spline-Interpolation
package heatmap

import (
	"fmt"
	"image/color"
	"math"
)

// blues sind die neun Stuetzstellen der Skala, von hell nach dunkel
var blues = [...]color.RGBA{
	{0xf7, 0xfb, 0xff, 0xff},
	{0xde, 0xeb, 0xf7, 0xff},
	{0xc6, 0xdb, 0xef, 0xff},
	{0x9e, 0xca, 0xe1, 0xff},
	{0x6b, 0xae, 0xd6, 0xff},
	{0x42, 0x92, 0xc6, 0xff},
	{0x21, 0x71, 0xb5, 0xff},
	{0x08, 0x51, 0x9c, 0xff},
	{0x08, 0x30, 0x6b, 0xff},
}

// Scale maps weights in [0, Domain] onto the Blues ramp.
type Scale struct {
	domain float64
}

// NewScale returns a scale over [0, domainMax]. Non-positive or
// non-finite maxima fall back to 1.
func NewScale(domainMax float64) Scale {
	if !(domainMax > 0) || math.IsInf(domainMax, 0) {
		domainMax = 1
	}
	return Scale{domain: domainMax}
}

// Domain returns the upper bound of the scale.
func (s Scale) Domain() float64 { return s.domain }

// Intensity gibt die normierte Position von v auf der Skala zurueck, in [0, 1]
func (s Scale) Intensity(v float64) float64 {
	t := v / s.domain
	switch {
	case math.IsNaN(t), t <= 0:
		return 0
	case t >= 1:
		return 1
	default:
		return t
	}
}

// Color returns the color of weight v.
func (s Scale) Color(v float64) color.RGBA {
	return ramp(s.Intensity(v))
}

// ramp is a uniform cubic B-spline through the stops, clamped at both ends
// so that ramp(0) and ramp(1) hit the first and last stop exactly.
func ramp(t float64) color.RGBA {
	n := len(blues) - 1

	i := int(math.Floor(t * float64(n)))
	if t >= 1 {
		t, i = 1, n-1
	}

	v1, v2 := channels(blues[i]), channels(blues[i+1])

	var v0, v3 [3]float64
	if i > 0 {
		v0 = channels(blues[i-1])
	} else {
		for c := range v0 {
			v0[c] = 2*v1[c] - v2[c]
		}
	}
	if i < n-1 {
		v3 = channels(blues[i+2])
	} else {
		for c := range v3 {
			v3[c] = 2*v2[c] - v1[c]
		}
	}

	t1 := (t - float64(i)/float64(n)) * float64(n)
	var out [3]uint8
	for c := range out {
		out[c] = clampByte(basis(t1, v0[c], v1[c], v2[c], v3[c]))
	}

	return color.RGBA{out[0], out[1], out[2], 0xff}
}

func basis(t1, v0, v1, v2, v3 float64) float64 {
	t2 := t1 * t1
	t3 := t2 * t1
	return ((1-3*t1+3*t2-t3)*v0 +
		(4-6*t2+3*t3)*v1 +
		(1+3*t1+3*t2-3*t3)*v2 +
		t3*v3) / 6
}

func channels(c color.RGBA) [3]float64 {
	return [3]float64{float64(c.R), float64(c.G), float64(c.B)}
}

func clampByte(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, f))))
}

// Hex formatiert eine Farbe als #rrggbb
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Darkness orders colors by perceived strength: 0 is white, 1 is black.
// It uses Rec. 709 luma weights.
func Darkness(c color.RGBA) float64 {
	return 1 - (0.2126*float64(c.R)+0.7152*float64(c.G)+0.0722*float64(c.B))/255
}
