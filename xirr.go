package fundcalc

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// SolveMethod identifies the root-finding strategy that produced a Solution.
type SolveMethod int

const (
	// MethodNone means no method converged.
	MethodNone SolveMethod = iota
	// MethodNewton is plain Newton-Raphson from the initial guess.
	MethodNewton
	// MethodBrent is Brent's method over a bracketing interval.
	MethodBrent
	// MethodBisection is bounded bisection, the strategy of last resort.
	MethodBisection
)

func (m SolveMethod) String() string {
	switch m {
	case MethodNewton:
		return "newton"
	case MethodBrent:
		return "brent"
	case MethodBisection:
		return "bisection"
	default:
		return "none"
	}
}

// Rate band considered meaningful. Anything outside is divergence, not a
// solution: a 900%+ annual rate on real fund flows is a numerical
// artifact, never an answer worth reporting.
const (
	rateLowerBound = -0.9999
	rateUpperBound = 9.0
)

// SolverOptions tunes the XIRR solver. The zero value selects defaults.
type SolverOptions struct {
	Guess         float64 // initial Newton guess, default 0.1
	MaxIterations int     // per-method iteration ceiling, default 100
	Tolerance     float64 // NPV magnitude treated as a root, default 1e-9
}

func (o SolverOptions) withDefaults() SolverOptions {
	if o.Guess == 0 {
		o.Guess = 0.1
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = 100
	}
	if o.Tolerance == 0 {
		o.Tolerance = 1e-9
	}
	return o
}

// Solution is the outcome of an XIRR computation. When Converged is
// false, IRR is meaningless and callers should render "N/A".
type Solution struct {
	IRR        decimal.Decimal `json:"irr"`
	Converged  bool            `json:"converged"`
	Method     SolveMethod     `json:"-"`
	MethodName string          `json:"method"`
	Iterations int             `json:"iterations"`
}

// Solve computes the internal rate of return of the schedule.
//
// Time fractions are Actual/365 from the first flow date. The strategy is
// hybrid: Newton-Raphson first, Brent's method on a bracketing interval
// when Newton diverges, bounded bisection as last resort. Non-convergence
// is a result, not an error: only a structurally invalid series returns
// an error.
//
// Solve is deterministic: identical input always yields the identical
// decimal output.
func Solve(s *Schedule, opts SolverOptions) (Solution, error) {
	if err := s.Validate(); err != nil {
		return Solution{}, fmt.Errorf("xirr: %w", err)
	}
	opts = opts.withDefaults()

	// Normalize once: day-count-exact year fractions from the first flow.
	start := s.Start()
	n := s.Len()
	years := make([]float64, n)
	amounts := make([]float64, n)
	for i, f := range s.Flows() {
		years[i] = float64(DaysBetween(start, f.Date)) / daysPerYear
		amounts[i] = f.Amount.AsFloat()
	}

	npv := func(rate float64) float64 {
		v := 0.0
		for i := range amounts {
			v += amounts[i] / math.Pow(1+rate, years[i])
		}
		return v
	}
	dnpv := func(rate float64) float64 {
		v := 0.0
		for i := range amounts {
			v -= years[i] * amounts[i] / math.Pow(1+rate, years[i]+1)
		}
		return v
	}

	total := 0
	if rate, iters, ok := newton(npv, dnpv, opts); ok {
		return finish(rate, MethodNewton, total+iters), nil
	} else {
		total += iters
	}
	if rate, iters, ok := brent(npv, opts); ok {
		return finish(rate, MethodBrent, total+iters), nil
	} else {
		total += iters
	}
	if rate, iters, ok := bisect(npv, opts); ok {
		return finish(rate, MethodBisection, total+iters), nil
	} else {
		total += iters
	}

	return Solution{Converged: false, Method: MethodNone, MethodName: MethodNone.String(), Iterations: total}, nil
}

func finish(rate float64, m SolveMethod, iterations int) Solution {
	// Rounding to 12 places makes the reported decimal stable across the
	// three methods' differing terminal precision.
	return Solution{
		IRR:        decimal.NewFromFloat(rate).Round(12),
		Converged:  true,
		Method:     m,
		MethodName: m.String(),
		Iterations: iterations,
	}
}

// inBand reports whether the rate is finite and within the realistic band.
func inBand(rate float64) bool {
	return !math.IsNaN(rate) && !math.IsInf(rate, 0) &&
		rate >= rateLowerBound && rate <= rateUpperBound
}

// newton runs Newton-Raphson. It gives up (returns ok=false) on any
// non-finite iterate, oversized step, or band escape, leaving the
// fallback methods to take over.
func newton(npv, dnpv func(float64) float64, opts SolverOptions) (rate float64, iterations int, ok bool) {
	rate = opts.Guess
	for i := 1; i <= opts.MaxIterations; i++ {
		f := npv(rate)
		if math.Abs(f) < opts.Tolerance {
			return rate, i, inBand(rate)
		}
		d := dnpv(rate)
		if d == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, i, false
		}
		step := f / d
		// Runaway guard: a step much larger than the current estimate
		// means Newton is shooting toward billions of percent.
		if math.Abs(step) > 10*(1+math.Abs(rate)) {
			return 0, i, false
		}
		next := rate - step
		if !inBand(next) {
			return 0, i, false
		}
		rate = next
	}
	return 0, opts.MaxIterations, false
}

// bracket scans the rate band for a sign change of npv. It returns ok=false
// when no sub-interval brackets a root.
func bracket(npv func(float64) float64) (lo, hi float64, ok bool) {
	const segments = 64
	width := (rateUpperBound - rateLowerBound) / segments
	prevX := rateLowerBound
	prevF := npv(prevX)
	for i := 1; i <= segments; i++ {
		x := rateLowerBound + float64(i)*width
		f := npv(x)
		if !math.IsNaN(prevF) && !math.IsNaN(f) && prevF*f <= 0 && prevF != f {
			return prevX, x, true
		}
		prevX, prevF = x, f
	}
	return 0, 0, false
}

// brent is the classic Brent root finder over a bracketing interval.
func brent(npv func(float64) float64, opts SolverOptions) (rate float64, iterations int, ok bool) {
	a, b, found := bracket(npv)
	if !found {
		return 0, 0, false
	}
	fa, fb := npv(a), npv(b)
	if math.Abs(fa) < math.Abs(fb) {
		a, b = b, a
		fa, fb = fb, fa
	}
	c, fc := a, fa
	var d float64
	mflag := true

	for i := 1; i <= opts.MaxIterations; i++ {
		if math.Abs(fb) < opts.Tolerance {
			return b, i, inBand(b)
		}
		var s float64
		if fa != fc && fb != fc {
			// inverse quadratic interpolation
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			// secant
			s = b - fb*(b-a)/(fb-fa)
		}

		lowBound := (3*a + b) / 4
		useBisect := false
		if (s < math.Min(lowBound, b)) || (s > math.Max(lowBound, b)) {
			useBisect = true
		} else if mflag && math.Abs(s-b) >= math.Abs(b-c)/2 {
			useBisect = true
		} else if !mflag && math.Abs(s-b) >= math.Abs(c-d)/2 {
			useBisect = true
		}
		if useBisect {
			s = (a + b) / 2
			mflag = true
		} else {
			mflag = false
		}

		fs := npv(s)
		d = c
		c, fc = b, fb
		if fa*fs < 0 {
			b, fb = s, fs
		} else {
			a, fa = s, fs
		}
		if math.Abs(fa) < math.Abs(fb) {
			a, b = b, a
			fa, fb = fb, fa
		}
		if math.Abs(b-a) < 1e-12 {
			return b, i, math.Abs(fb) < opts.Tolerance*1e3 && inBand(b)
		}
	}
	return 0, opts.MaxIterations, false
}

// bisect is bounded bisection over a bracketing interval of the band.
func bisect(npv func(float64) float64, opts SolverOptions) (rate float64, iterations int, ok bool) {
	lo, hi, found := bracket(npv)
	if !found {
		return 0, 0, false
	}
	flo := npv(lo)
	for i := 1; i <= opts.MaxIterations; i++ {
		mid := (lo + hi) / 2
		fmid := npv(mid)
		if math.Abs(fmid) < opts.Tolerance || (hi-lo)/2 < 1e-12 {
			return mid, i, inBand(mid)
		}
		if flo*fmid < 0 {
			hi = mid
		} else {
			lo, flo = mid, fmid
		}
	}
	return 0, opts.MaxIterations, false
}
