//go:build !ios && !android && (amd64 || arm64)

package avutil

// Rational represents a rational number (fraction) as used by FFmpeg (AVRational).
// Arithmetic is done in Go; av_*_q return structs by value, which purego
// cannot receive on every platform.
type Rational struct {
	Num int32 // Numerator
	Den int32 // Denominator
}

// NewRational creates a new Rational with the given numerator and denominator.
func NewRational(num, den int32) Rational {
	return Rational{Num: num, Den: den}
}

// Float64 converts the rational to a float64.
// Returns 0 if the denominator is 0.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// IsZero reports whether the rational is 0/x or has no denominator.
func (r Rational) IsZero() bool {
	return r.Num == 0 || r.Den == 0
}

// Reduce reduces the rational to lowest terms.
func (r Rational) Reduce() Rational {
	if r.Den == 0 {
		return r
	}
	g := gcd(abs(r.Num), abs(r.Den))
	if g == 0 {
		return r
	}
	return Rational{Num: r.Num / g, Den: r.Den / g}
}

func gcd(a, b int32) int32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

// TimeBaseMicro is AV_TIME_BASE_Q, the unit of container durations.
var TimeBaseMicro = NewRational(1, 1000000)
