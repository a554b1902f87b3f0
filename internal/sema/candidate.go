package sema

import (
	"math"

	"pasres/internal/ast"
	"pasres/internal/symbols"
	"pasres/internal/types"
)

// Argument is one positional actual of a call. Expr is NoExprID for
// synthesized arguments (bare `inherited`).
type Argument struct {
	Expr ast.ExprID
	Type types.TypeID
}

// Candidate is one invocable declaration competing for a call, with its
// parameter types already specialized.
type Candidate struct {
	Symbol   symbols.SymbolID
	Params   []symbols.Param
	Result   types.TypeID
	TypeArgs []types.TypeID
	// Inferred marks a candidate produced by implicit specialization.
	Inferred bool
	// VarArgs skips arity and argument ranking (intrinsics).
	VarArgs bool

	Valid    bool
	Exact    int
	Equal    int
	Convert  [7]int // Convert[n] counts ConvertLevelN arguments, n in 1..6
	Operator int    // levels 7 and 8
	Distance float64
}

// ArityAccepts reports required <= n <= total for params.
func ArityAccepts(params []symbols.Param, n int) bool {
	return symbols.RequiredParams(params) <= n && n <= len(params)
}

func (c *Candidate) reset() {
	c.Valid = true
	c.Exact, c.Equal, c.Operator = 0, 0, 0
	c.Convert = [7]int{}
	c.Distance = 0
}

// record adds one argument's ladder value to the counters.
func (c *Candidate) record(level EqualityType) {
	switch {
	case level == Incompatible:
		c.Valid = false
	case level == Exact:
		c.Exact++
	case level == Equal:
		c.Equal++
	case level.IsOperator():
		c.Operator++
	default:
		c.Convert[level.Level()]++
	}
}

// ordinalDistance measures how far apart two numeric or enum ranges are.
func ordinalDistance(typesIn *types.Interner, from, to types.TypeID) float64 {
	ft, ok := typesIn.Lookup(from)
	if !ok {
		return 0
	}
	tt, ok := typesIn.Lookup(to)
	if !ok || ft.Kind != tt.Kind {
		return 0
	}
	switch ft.Kind {
	case types.KindInteger:
		d := math.Abs(ft.Low.Float64()-tt.Low.Float64()) + math.Abs(ft.High.Float64()-tt.High.Float64())
		if ft.Low.Neg != tt.Low.Neg {
			// sign change
			d = math.Nextafter(d, math.Inf(1))
		}
		return d
	case types.KindDecimal:
		d := float64(tt.Size) - float64(ft.Size)
		if d < 0 {
			return -d * 4
		}
		return d
	case types.KindEnum:
		return math.Abs(float64(tt.Size) - float64(ft.Size))
	}
	return 0
}
