package rotation

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/num/quat"

	"github.com/litescript/ls-orrery/internal/astro"
)

// IAU models describe a body's north pole as right ascension and declination
// in the J2000 Earth equatorial frame and its prime meridian as an angle W,
// all in degrees, following the IAU WGCCRE reports. A body using one of these
// models needs a J2000 equator body frame.

// iauSecularCenturies clamps the secular pole terms. Extrapolating them much
// further tips planets over.
const iauSecularCenturies = 50.0

// PoleFunc returns the pole right ascension and declination in degrees, d
// days after J2000.
type PoleFunc func(d float64) (ra, dec float64)

// MeridianFunc returns the prime meridian angle W in degrees, d days after
// J2000.
type MeridianFunc func(d float64) float64

// NewIAU builds a caching model from IAU pole and meridian functions. rate is
// the mean meridian rate in degrees per day; a negative rate marks a
// retrograde rotator, whose model is flipped so that +y stays the right-hand
// spin axis.
func NewIAU(rate float64, pole PoleFunc, meridian MeridianFunc) *Caching {
	flipped := rate < 0

	spin := func(tjd float64) quat.Number {
		w := astro.DegToRad(180 + meridian(tjd-astro.J2000))
		if flipped {
			return astro.YRotation(w)
		}
		return astro.YRotation(-w)
	}
	equator := func(tjd float64) quat.Number {
		ra, dec := pole(tjd - astro.J2000)
		q := equatorOrientation(astro.DegToRad(90-dec), astro.DegToRad(ra+90))
		if flipped {
			q = quat.Mul(astro.XRotation(math.Pi), q)
		}
		return q
	}
	return NewCaching(spin, equator, math.Abs(360/rate))
}

// NewIAUPrecessing is an IAU model whose pole drifts linearly. Pole rates
// are degrees per Julian century; rate is degrees per day.
func NewIAUPrecessing(poleRA, poleRARate, poleDec, poleDecRate, meridianAtEpoch, rate float64) *Caching {
	pole := func(d float64) (float64, float64) {
		T := clampCenturies(d / 36525)
		return poleRA + poleRARate*T, poleDec + poleDecRate*T
	}
	meridian := func(d float64) float64 {
		return meridianAtEpoch + rate*d
	}
	return NewIAU(rate, pole, meridian)
}

func clampCenturies(T float64) float64 {
	return math.Max(-iauSecularCenturies, math.Min(iauSecularCenturies, T))
}

func sind(deg float64) float64 { return math.Sin(astro.DegToRad(deg)) }
func cosd(deg float64) float64 { return math.Cos(astro.DegToRad(deg)) }

var iauModels = map[string]func() *Caching{
	"iau-mercury": iauMercury,
	"iau-venus": func() *Caching {
		return NewIAUPrecessing(272.76, 0, 67.16, 0, 160.20, -1.4813688)
	},
	"iau-earth": func() *Caching {
		return NewIAUPrecessing(0, -0.641, 90, -0.557, 190.147, 360.9856235)
	},
	"iau-mars":    iauMars,
	"iau-jupiter": iauJupiter,
	"iau-saturn": func() *Caching {
		return NewIAUPrecessing(40.589, -0.036, 83.537, -0.004, 38.90, 810.7939024)
	},
	"iau-uranus": func() *Caching {
		return NewIAUPrecessing(257.311, 0, -15.175, 0, 203.81, -501.1600928)
	},
	"iau-neptune": iauNeptune,
	"iau-pluto": func() *Caching {
		return NewIAUPrecessing(313.02, 0, 9.09, 0, 236.77, -56.3623195)
	},
	"iau-moon":     iauMoon,
	"iau-io":       iauIo,
	"iau-europa":   iauEuropa,
	"iau-ganymede": iauGanymede,
	"iau-callisto": iauCallisto,
	"iau-titan": func() *Caching {
		return NewIAUPrecessing(39.4827, 0, 83.4279, 0, 186.5855, 22.5769768)
	},
}

// IAU returns a fresh instance of the named IAU model. Names are case
// insensitive, e.g. "iau-mars".
func IAU(name string) (*Caching, bool) {
	ctor, ok := iauModels[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// IAUNames lists the available IAU model names, sorted.
func IAUNames() []string {
	names := make([]string, 0, len(iauModels))
	for n := range iauModels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func iauMercury() *Caching {
	return NewIAU(6.1385108,
		func(d float64) (float64, float64) {
			T := clampCenturies(d / 36525)
			return 281.0103 - 0.0328*T, 61.4155 - 0.0049*T
		},
		func(d float64) float64 {
			return 329.5988 + 6.1385108*d +
				0.01067257*sind(174.7910857+4.092335*d) -
				0.00112309*sind(349.5821714+8.184670*d) -
				0.00011040*sind(164.3732571+12.277005*d) -
				0.00002539*sind(339.1643429+16.369340*d) -
				0.00000571*sind(153.9554286+20.461675*d)
		})
}

func iauMars() *Caching {
	return NewIAU(350.891982443297,
		func(d float64) (float64, float64) {
			T := d / 36525
			Tc := clampCenturies(T)
			ra := 317.269202 - 0.10927547*Tc +
				0.000068*sind(198.991226+19139.4819985*T) +
				0.000238*sind(226.292679+38280.8511281*T) +
				0.000052*sind(249.663391+57420.7251593*T) +
				0.000009*sind(266.183510+76560.6367950*T) +
				0.419057*sind(79.398797+0.5042615*T)
			dec := 54.432516 - 0.05827105*Tc +
				0.000051*cosd(122.433576+19139.9407476*T) +
				0.000141*cosd(43.058401+38280.8753272*T) +
				0.000031*cosd(57.663379+57420.7517205*T) +
				0.000005*cosd(79.476401+76560.6495004*T) +
				1.591274*cosd(166.325722+0.5042615*T)
			return ra, dec
		},
		func(d float64) float64 {
			T := d / 36525
			return 176.049863 + 350.891982443297*d +
				0.000145*sind(129.071773+19140.0328244*T) +
				0.000157*sind(36.352167+38281.0473591*T) +
				0.000040*sind(56.668646+57420.9295360*T) +
				0.000001*sind(67.364003+76560.2552215*T) +
				0.000001*sind(104.792680+95700.4387578*T) +
				0.584542*sind(95.391654+0.5042615*T)
		})
}

func iauJupiter() *Caching {
	return NewIAU(870.536,
		func(d float64) (float64, float64) {
			T := d / 36525
			ja := 99.360714 + 4850.4046*T
			jb := 175.895369 + 1191.9605*T
			jc := 300.323162 + 262.5475*T
			jd := 114.012305 + 6070.2476*T
			je := 49.511251 + 64.3000*T
			Tc := clampCenturies(T)
			ra := 268.056595 - 0.006499*Tc + 0.000117*sind(ja) + 0.000938*sind(jb) +
				0.001432*sind(jc) + 0.000030*sind(jd) + 0.002150*sind(je)
			dec := 64.495303 + 0.002413*Tc + 0.000050*cosd(ja) + 0.000404*cosd(jb) +
				0.000617*cosd(jc) - 0.000013*cosd(jd) + 0.000926*cosd(je)
			return ra, dec
		},
		func(d float64) float64 { return 284.95 + 870.536*d })
}

func iauNeptune() *Caching {
	return NewIAU(536.3128492,
		func(d float64) (float64, float64) {
			n := 357.85 + 52.316*d/36525
			return 299.36 + 0.70*sind(n), 43.46 - 0.51*cosd(n)
		},
		func(d float64) float64 {
			n := 357.85 + 52.316*d/36525
			return 253.18 + 536.3128492*d - 0.48*sind(n)
		})
}

// lunarArgs returns the WGCCRE lunar arguments E1..E13 in degrees; index 0
// is unused.
func lunarArgs(d float64) [14]float64 {
	return [14]float64{
		0,
		125.045 - 0.0529921*d,
		250.089 - 0.1059842*d,
		260.008 + 13.0120009*d,
		176.625 + 13.3407154*d,
		357.529 + 0.9856003*d,
		311.589 + 26.4057084*d,
		134.963 + 13.0649930*d,
		276.617 + 0.3287146*d,
		34.226 + 1.7484877*d,
		15.134 - 0.1589763*d,
		119.743 + 0.0036096*d,
		239.961 + 0.1643573*d,
		25.053 + 12.9590088*d,
	}
}

func iauMoon() *Caching {
	return NewIAU(13.17635815,
		func(d float64) (float64, float64) {
			T := clampCenturies(d / 36525)
			e := lunarArgs(d)
			ra := 269.9949 + 0.0031*T -
				3.8787*sind(e[1]) - 0.1204*sind(e[2]) + 0.0700*sind(e[3]) -
				0.0172*sind(e[4]) + 0.0072*sind(e[6]) - 0.0052*sind(e[10]) +
				0.0043*sind(e[13])
			dec := 66.5392 + 0.0130*T +
				1.5419*cosd(e[1]) + 0.0239*cosd(e[2]) - 0.0278*cosd(e[3]) +
				0.0068*cosd(e[4]) - 0.0029*cosd(e[6]) + 0.0009*cosd(e[7]) +
				0.0008*cosd(e[10]) - 0.0009*cosd(e[13])
			return ra, dec
		},
		func(d float64) float64 {
			e := lunarArgs(d)
			// The d² term is tidal slowing.
			return 38.3213 + 13.17635815*d - 1.4e-12*d*d +
				3.5610*sind(e[1]) + 0.1208*sind(e[2]) - 0.0642*sind(e[3]) +
				0.0158*sind(e[4]) + 0.0252*sind(e[5]) - 0.0066*sind(e[6]) -
				0.0047*sind(e[7]) - 0.0046*sind(e[8]) + 0.0028*sind(e[9]) +
				0.0052*sind(e[10]) + 0.0040*sind(e[11]) + 0.0019*sind(e[12]) -
				0.0044*sind(e[13])
		})
}

// jovianArgs returns the Galilean satellite arguments J3..J8 in degrees,
// indexed by their number.
func jovianArgs(T float64) [9]float64 {
	var j [9]float64
	j[3] = 283.90 + 4850.7*T
	j[4] = 355.80 + 1191.3*T
	j[5] = 119.90 + 262.1*T
	j[6] = 229.80 + 64.3*T
	j[7] = 352.25 + 2382.6*T
	j[8] = 113.35 + 6070.0*T
	return j
}

func iauIo() *Caching {
	return NewIAU(203.4889538,
		func(d float64) (float64, float64) {
			j := jovianArgs(d / 36525)
			T := clampCenturies(d / 36525)
			return 268.05 - 0.009*T + 0.094*sind(j[3]) + 0.024*sind(j[4]),
				64.50 + 0.003*T + 0.040*cosd(j[3]) + 0.011*cosd(j[4])
		},
		func(d float64) float64 {
			j := jovianArgs(d / 36525)
			return 200.39 + 203.4889538*d - 0.085*sind(j[3]) - 0.022*sind(j[4])
		})
}

func iauEuropa() *Caching {
	return NewIAU(101.3747235,
		func(d float64) (float64, float64) {
			j := jovianArgs(d / 36525)
			T := clampCenturies(d / 36525)
			return 268.08 - 0.009*T + 1.086*sind(j[4]) + 0.060*sind(j[5]) + 0.015*sind(j[6]) + 0.009*sind(j[7]),
				64.51 + 0.003*T + 0.468*cosd(j[4]) + 0.026*cosd(j[5]) + 0.007*cosd(j[6]) + 0.002*cosd(j[7])
		},
		func(d float64) float64 {
			j := jovianArgs(d / 36525)
			return 36.022 + 101.3747235*d - 0.980*sind(j[4]) - 0.054*sind(j[5]) - 0.014*sind(j[6]) - 0.008*sind(j[7])
		})
}

func iauGanymede() *Caching {
	return NewIAU(50.3176081,
		func(d float64) (float64, float64) {
			j := jovianArgs(d / 36525)
			T := clampCenturies(d / 36525)
			return 268.20 - 0.009*T - 0.037*sind(j[4]) + 0.431*sind(j[5]) + 0.091*sind(j[6]),
				64.57 + 0.003*T - 0.016*cosd(j[4]) + 0.186*cosd(j[5]) + 0.039*cosd(j[6])
		},
		func(d float64) float64 {
			j := jovianArgs(d / 36525)
			return 44.064 + 50.3176081*d + 0.033*sind(j[4]) - 0.389*sind(j[5]) - 0.082*sind(j[6])
		})
}

func iauCallisto() *Caching {
	return NewIAU(21.5710715,
		func(d float64) (float64, float64) {
			j := jovianArgs(d / 36525)
			T := clampCenturies(d / 36525)
			return 268.72 - 0.009*T - 0.068*sind(j[5]) + 0.590*sind(j[6]) + 0.010*sind(j[8]),
				64.83 + 0.003*T - 0.029*cosd(j[5]) + 0.254*cosd(j[6]) - 0.004*cosd(j[8])
		},
		func(d float64) float64 {
			j := jovianArgs(d / 36525)
			return 259.51 + 21.5710715*d + 0.061*sind(j[5]) - 0.533*sind(j[6]) - 0.009*sind(j[8])
		})
}
