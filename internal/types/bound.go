package types

import (
	"math"
	"strconv"
)

// Bound is one end of an ordinal range. Values span the union of the int64
// and uint64 domains, so the sign is kept apart from the magnitude.
type Bound struct {
	Neg bool
	Abs uint64
}

// Int returns the bound for a signed value.
func Int(v int64) Bound {
	if v < 0 {
		// -(MinInt64) overflows int64 but not uint64
		return Bound{Neg: true, Abs: uint64(-(v + 1)) + 1}
	}
	return Bound{Abs: uint64(v)}
}

// Uint returns the bound for an unsigned value.
func Uint(v uint64) Bound {
	return Bound{Abs: v}
}

// Cmp returns -1, 0 or 1.
func (b Bound) Cmp(o Bound) int {
	switch {
	case b.Neg && !o.Neg:
		if b.Abs == 0 && o.Abs == 0 {
			return 0
		}
		return -1
	case !b.Neg && o.Neg:
		if b.Abs == 0 && o.Abs == 0 {
			return 0
		}
		return 1
	}
	var c int
	switch {
	case b.Abs < o.Abs:
		c = -1
	case b.Abs > o.Abs:
		c = 1
	}
	if b.Neg {
		return -c
	}
	return c
}

// Float64 converts the bound for distance arithmetic.
func (b Bound) Float64() float64 {
	f := float64(b.Abs)
	if b.Neg {
		return -f
	}
	return f
}

func (b Bound) String() string {
	s := strconv.FormatUint(b.Abs, 10)
	if b.Neg && b.Abs != 0 {
		return "-" + s
	}
	return s
}

// Within reports whether low <= v <= high.
func Within(v, low, high Bound) bool {
	return low.Cmp(v) <= 0 && v.Cmp(high) <= 0
}

// Common ranges.
var (
	MinInt8   = Int(math.MinInt8)
	MaxInt8   = Int(math.MaxInt8)
	MinInt16  = Int(math.MinInt16)
	MaxInt16  = Int(math.MaxInt16)
	MinInt32  = Int(math.MinInt32)
	MaxInt32  = Int(math.MaxInt32)
	MinInt64  = Int(math.MinInt64)
	MaxInt64  = Int(math.MaxInt64)
	MaxUint8  = Uint(math.MaxUint8)
	MaxUint16 = Uint(math.MaxUint16)
	MaxUint32 = Uint(math.MaxUint32)
	MaxUint64 = Uint(math.MaxUint64)
	Zero      = Bound{}
)
