package ast

import "pasres/internal/source"

type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	// ExprName is a dotted name chain `A.B<T>.C`.
	ExprName
	// ExprPrimary is a head expression followed by call, index, member and deref parts.
	ExprPrimary
	ExprLiteral
	ExprBinary
	ExprUnary
	ExprParen
	ExprArrayCtor
	// ExprInherited is `inherited` with an optional method name.
	ExprInherited
	ExprStringKeyword
	ExprFileKeyword
)

func (k ExprKind) String() string {
	switch k {
	case ExprName:
		return "name"
	case ExprPrimary:
		return "primary"
	case ExprLiteral:
		return "literal"
	case ExprBinary:
		return "binary"
	case ExprUnary:
		return "unary"
	case ExprParen:
		return "paren"
	case ExprArrayCtor:
		return "array constructor"
	case ExprInherited:
		return "inherited"
	case ExprStringKeyword:
		return "string"
	case ExprFileKeyword:
		return "file"
	default:
		return "invalid"
	}
}

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

// NameRef is one fragment of a name chain, optionally with explicit generic arguments.
type NameRef struct {
	Name     source.StringID
	Span     source.Span
	TypeArgs []ExprID
}

type ExprNameData struct {
	Parts []NameRef
}

type PartKind uint8

const (
	PartMember PartKind = iota // .Name
	PartCall                   // (args)
	PartIndex                  // [args]
	PartDeref                  // ^
)

func (k PartKind) String() string {
	switch k {
	case PartMember:
		return "member"
	case PartCall:
		return "call"
	case PartIndex:
		return "index"
	case PartDeref:
		return "deref"
	default:
		return "invalid"
	}
}

type Part struct {
	Kind PartKind
	Span source.Span
	Name NameRef  // PartMember
	Args []ExprID // PartCall, PartIndex
}

type ExprPrimaryData struct {
	Head  ExprID
	Parts []Part
}

type LitKind uint8

const (
	LitInt LitKind = iota
	LitReal
	LitString
	LitNil
	LitTrue
	LitFalse
)

type ExprLiteralData struct {
	Kind LitKind
	// Value is the literal text; strings are stored unquoted.
	Value source.StringID
}

type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDivide // /
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpEq
	OpNeq
	OpLt
	OpGt
	OpLe
	OpGe
	OpIn
	OpIs
	OpAs
)

var binaryOpNames = [...]string{
	OpAdd:    "+",
	OpSub:    "-",
	OpMul:    "*",
	OpDivide: "/",
	OpDiv:    "div",
	OpMod:    "mod",
	OpAnd:    "and",
	OpOr:     "or",
	OpXor:    "xor",
	OpShl:    "shl",
	OpShr:    "shr",
	OpEq:     "=",
	OpNeq:    "<>",
	OpLt:     "<",
	OpGt:     ">",
	OpLe:     "<=",
	OpGe:     ">=",
	OpIn:     "in",
	OpIs:     "is",
	OpAs:     "as",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return "?"
}

// IsComparison reports whether op yields Boolean for built-in operands.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEq, OpNeq, OpLt, OpGt, OpLe, OpGe, OpIn, OpIs:
		return true
	default:
		return false
	}
}

type ExprBinaryData struct {
	Op    BinaryOp
	Left  ExprID
	Right ExprID
}

type UnaryOp uint8

const (
	OpNeg UnaryOp = iota
	OpPlus
	OpNot
	OpAddr // @
)

func (op UnaryOp) String() string {
	switch op {
	case OpNeg:
		return "-"
	case OpPlus:
		return "+"
	case OpNot:
		return "not"
	case OpAddr:
		return "@"
	default:
		return "?"
	}
}

type ExprUnaryData struct {
	Op      UnaryOp
	Operand ExprID
}

type ExprParenData struct {
	Inner ExprID
}

type ExprArrayCtorData struct {
	Elems []ExprID
}

type ExprInheritedData struct {
	// Name.Name is NoStringID for a bare `inherited`.
	Name NameRef
}
