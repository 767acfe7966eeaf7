// Package filter implements zero-phase Butterworth filtering of
// multi-channel signals.
//
// Coefficients are designed once, as cascaded second-order sections,
// and applied forward and backward so the output has no phase delay.
package filter

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/dudk/asymmetry/signal"
)

// Filter is a designed filter. It's safe for concurrent use.
type Filter struct {
	spec     Spec
	sections []section
	zi       [][2]float64
	edge     int // odd extension length
	minimum  int
}

// section is a biquad in direct form II transposed with a0 = 1.
type section struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// New designs a Butterworth filter for provided spec.
func New(spec Spec) (*Filter, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	spec.Order = spec.order()
	sections := design(spec)
	taps := 2*len(sections) + 1
	for _, s := range sections {
		// first-order section
		if s.a2 == 0 && s.b2 == 0 {
			taps--
		}
	}
	f := Filter{
		spec:     spec,
		sections: sections,
		zi:       initialConditions(sections),
		edge:     3 * taps,
		minimum:  3 * (2*spec.Order + 1),
	}
	return &f, nil
}

// Spec returns filter parameters.
func (f *Filter) Spec() Spec {
	return f.spec
}

// MinSamples is the shortest input that filter will process. It's
// 3 * (2 * order + 1) for every kind, 27 for the default order.
func (f *Filter) MinSamples() int {
	return f.minimum
}

// Apply filters every channel forward and backward. Input shorter than
// MinSamples is returned as is, caller is expected to wait for more data.
func (f *Filter) Apply(data signal.Float64) signal.Float64 {
	n := data.Size()
	if n < f.minimum {
		return data
	}
	padLen := f.edge
	if padLen > n-1 {
		padLen = n - 1
	}
	result := make([][]float64, data.NumChannels())
	for i := range data {
		result[i] = f.filtfilt(data[i], padLen)
	}
	return result
}

// filtfilt extends the channel with odd reflection, runs the cascade in
// both directions starting from steady state and removes extension.
func (f *Filter) filtfilt(x []float64, padLen int) []float64 {
	n := len(x)
	ext := make([]float64, n+2*padLen)
	for i := 0; i < padLen; i++ {
		ext[i] = 2*x[0] - x[padLen-i]
		ext[padLen+n+i] = 2*x[n-1] - x[n-2-i]
	}
	copy(ext[padLen:], x)

	f.cascade(ext, ext[0])
	reverse(ext)
	f.cascade(ext, ext[0])
	reverse(ext)

	return append(make([]float64, 0, n), ext[padLen:padLen+n]...)
}

// cascade filters x in place through all sections. States are scaled
// by x0 to start from the steady-state response.
func (f *Filter) cascade(x []float64, x0 float64) {
	for i, s := range f.sections {
		z0, z1 := f.zi[i][0]*x0, f.zi[i][1]*x0
		for j, v := range x {
			y := s.b0*v + z0
			z0 = s.b1*v - s.a1*y + z1
			z1 = s.b2*v - s.a2*y
			x[j] = y
		}
	}
}

// initialConditions returns steady-state section delays for unit step
// input, scaled by the DC gain of the preceding sections.
func initialConditions(sections []section) [][2]float64 {
	zi := make([][2]float64, len(sections))
	scale := 1.0
	for i, s := range sections {
		bb0 := s.b1 - s.a1*s.b0
		bb1 := s.b2 - s.a2*s.b0
		z0 := (bb0 + bb1) / (1 + s.a1 + s.a2)
		z1 := bb1 - s.a2*z0
		zi[i] = [2]float64{z0 * scale, z1 * scale}
		scale *= (s.b0 + s.b1 + s.b2) / (1 + s.a1 + s.a2)
	}
	return zi
}

// design returns second-order sections of the digital Butterworth
// filter. Analog prototype is transformed with bilinear transform and
// cutoffs are pre-warped. Passband gain is normalized to one.
func design(spec Spec) []section {
	const fs2 = 4.0 // 2 * fs, fs is 2 for nyquist-normalized cutoffs
	warp := func(cut float64) float64 {
		return fs2 * math.Tan(math.Pi*cut/spec.Nyquist()/2)
	}

	prototype := make([]complex128, spec.Order)
	for k := range prototype {
		m := float64(2*k - spec.Order + 1)
		prototype[k] = -cmplx.Exp(complex(0, math.Pi*m/float64(2*spec.Order)))
	}

	var (
		poles []complex128
		zeros section // numerator of every section
		ref   float64 // digital frequency of unit gain
	)
	switch spec.Kind {
	case Lowpass:
		wo := warp(spec.HighCut)
		for _, p := range prototype {
			poles = append(poles, p*complex(wo, 0))
		}
		zeros = section{b0: 1, b1: 2, b2: 1}
		ref = 0
	case Highpass:
		wo := warp(spec.LowCut)
		for _, p := range prototype {
			poles = append(poles, complex(wo, 0)/p)
		}
		zeros = section{b0: 1, b1: -2, b2: 1}
		ref = math.Pi
	case Bandpass:
		w1, w2 := warp(spec.LowCut), warp(spec.HighCut)
		wo, bw := math.Sqrt(w1*w2), w2-w1
		for _, p := range prototype {
			lp := p * complex(bw/2, 0)
			d := cmplx.Sqrt(lp*lp - complex(wo*wo, 0))
			poles = append(poles, lp+d, lp-d)
		}
		zeros = section{b0: 1, b1: 0, b2: -1}
		ref = 2 * math.Atan(wo/fs2)
	}

	for i := range poles {
		poles[i] = (complex(fs2, 0) + poles[i]) / (complex(fs2, 0) - poles[i])
	}

	sections := pairPoles(poles, zeros, spec.Kind)
	if g := cmplx.Abs(response(sections, ref)); g > 0 {
		sections[0].b0 /= g
		sections[0].b1 /= g
		sections[0].b2 /= g
	}
	return sections
}

// pairPoles groups conjugate poles into sections. Real poles are paired
// with each other, the last odd one gets first-order section.
func pairPoles(poles []complex128, zeros section, kind Kind) []section {
	const tolerance = 1e-12
	var (
		sections []section
		reals    []float64
	)
	for _, p := range poles {
		switch {
		case math.Abs(imag(p)) <= tolerance:
			reals = append(reals, real(p))
		case imag(p) > 0:
			sections = append(sections, section{
				b0: zeros.b0, b1: zeros.b1, b2: zeros.b2,
				a1: -2 * real(p),
				a2: real(p)*real(p) + imag(p)*imag(p),
			})
		}
	}
	sort.Float64s(reals)
	for len(reals) >= 2 {
		p1, p2 := reals[0], reals[1]
		reals = reals[2:]
		sections = append(sections, section{
			b0: zeros.b0, b1: zeros.b1, b2: zeros.b2,
			a1: -(p1 + p2),
			a2: p1 * p2,
		})
	}
	if len(reals) == 1 {
		first := section{b0: 1, b1: 1, a1: -reals[0]}
		if kind == Highpass {
			first.b1 = -1
		}
		sections = append(sections, first)
	}
	return sections
}

// response evaluates cascade frequency response at digital frequency w.
func response(sections []section, w float64) complex128 {
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1
	h := complex(1, 0)
	for _, s := range sections {
		num := complex(s.b0, 0) + complex(s.b1, 0)*z1 + complex(s.b2, 0)*z2
		den := 1 + complex(s.a1, 0)*z1 + complex(s.a2, 0)*z2
		h *= num / den
	}
	return h
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
