package sema

import "fmt"

// EqualityType grades how well a value of one type fits a slot of another.
// The order is load-bearing: every comparison in overload ranking relies on it.
type EqualityType uint8

const (
	Incompatible EqualityType = iota
	ConvertLevel8
	ConvertLevel7
	ConvertLevel6
	ConvertLevel5
	ConvertLevel4
	ConvertLevel3
	ConvertLevel2
	ConvertLevel1
	Equal
	Exact
)

// convertLevel maps 1..8 onto the ladder; anything outside is Incompatible.
func convertLevel(n int) EqualityType {
	if n < 1 || n > 8 {
		return Incompatible
	}
	return Equal - EqualityType(n)
}

// Level returns n for ConvertLevelN and 0 for the other rungs.
func (e EqualityType) Level() int {
	if e >= ConvertLevel8 && e <= ConvertLevel1 {
		return int(Equal - e)
	}
	return 0
}

// IsOperator reports conversions that go through an operator (levels 7 and 8).
func (e EqualityType) IsOperator() bool {
	return e == ConvertLevel7 || e == ConvertLevel8
}

func (e EqualityType) String() string {
	switch e {
	case Incompatible:
		return "INCOMPATIBLE"
	case Equal:
		return "EQUAL"
	case Exact:
		return "EXACT"
	}
	if n := e.Level(); n > 0 {
		return fmt.Sprintf("CONVERT_LEVEL_%d", n)
	}
	return fmt.Sprintf("EqualityType(%d)", uint8(e))
}

func minLevel(a, b EqualityType) EqualityType {
	if a < b {
		return a
	}
	return b
}
