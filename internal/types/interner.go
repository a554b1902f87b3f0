package types

import (
	"fmt"
	"sync"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"pasres/internal/source"
)

// Builtins stores TypeIDs for the predeclared types.
type Builtins struct {
	Invalid TypeID
	Unknown TypeID
	Untyped TypeID
	Nil     TypeID
	Void    TypeID

	Pointer    TypeID // untyped pointer
	Variant    TypeID
	OleVariant TypeID

	Boolean  TypeID
	ByteBool TypeID
	WordBool TypeID
	LongBool TypeID

	ShortInt TypeID
	SmallInt TypeID
	Integer  TypeID
	Int64    TypeID
	Byte     TypeID
	Word     TypeID
	Cardinal TypeID
	UInt64   TypeID

	Single   TypeID
	Real48   TypeID
	Double   TypeID
	Extended TypeID
	Comp     TypeID
	Currency TypeID

	AnsiChar TypeID
	WideChar TypeID

	ShortString   TypeID
	AnsiString    TypeID
	WideString    TypeID
	UnicodeString TypeID

	PAnsiChar TypeID
	PWideChar TypeID

	File TypeID // untyped file

	// Literal types: the untyped constants produced by the source text.
	IntLiteral    TypeID
	Int64Literal  TypeID
	UInt64Literal TypeID
	RealLiteral   TypeID
	CharLiteral   TypeID
	StringLiteral TypeID

	// Class references synthesized by the `string` and `file` keywords.
	StringClassRef TypeID
	FileClassRef   TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors. It is
// safe for concurrent use: specialization interns new types while several
// files are resolved in parallel.
type Interner struct {
	mu        sync.RWMutex
	strings   *source.Interner
	types     []Type
	index     map[Type]TypeID
	builtins  Builtins
	procs     []ProcInfo
	procIndex map[string]TypeID
	structs   []StructInfo
	specs     map[string]TypeID
	enums     []EnumInfo
	params    []TypeParamInfo
}

// NewInterner constructs an interner seeded with the predeclared types.
// Builtin names are interned into strs.
func NewInterner(strs *source.Interner) *Interner {
	if strs == nil {
		strs = source.NewInterner()
	}
	in := newEmpty(strs)
	in.seedBuiltins()
	return in
}

func newEmpty(strs *source.Interner) *Interner {
	in := &Interner{
		strings:   strs,
		index:     make(map[Type]TypeID, 128),
		procIndex: make(map[string]TypeID),
		specs:     make(map[string]TypeID),
	}
	// reserve 0 as invalid sentinel in every side table
	in.structs = append(in.structs, StructInfo{})
	in.procs = append(in.procs, ProcInfo{})
	in.enums = append(in.enums, EnumInfo{})
	in.params = append(in.params, TypeParamInfo{})
	in.types = append(in.types, Type{Kind: KindInvalid})
	return in
}

func (in *Interner) seedBuiltins() {
	b := &in.builtins
	named := func(name string, t Type) TypeID {
		t.Name = in.strings.Intern(name)
		return in.Intern(t)
	}
	integer := func(name string, low, high Bound, size uint8) TypeID {
		return named(name, MakeInteger(low, high, size))
	}
	decimal := func(name string, kind DecimalKind, size uint8) TypeID {
		return named(name, Type{Kind: KindDecimal, Sub: uint8(kind), Size: size})
	}
	b.Unknown = in.Intern(Type{Kind: KindUnknown})
	b.Untyped = in.Intern(Type{Kind: KindUntyped})
	b.Nil = in.Intern(Type{Kind: KindNil})
	b.Void = in.Intern(Type{Kind: KindVoid})

	b.Pointer = named("Pointer", MakePointer(NoTypeID, false))
	b.Variant = named("Variant", Type{Kind: KindVariant, Sub: uint8(VariantNormal), Size: 16})
	b.OleVariant = named("OleVariant", Type{Kind: KindVariant, Sub: uint8(VariantOle), Size: 16})

	b.Boolean = named("Boolean", Type{Kind: KindBoolean, Sub: uint8(BoolBoolean), Low: Zero, High: Uint(1), Size: 1})
	b.ByteBool = named("ByteBool", Type{Kind: KindBoolean, Sub: uint8(BoolByte), Low: Zero, High: MaxUint8, Size: 1})
	b.WordBool = named("WordBool", Type{Kind: KindBoolean, Sub: uint8(BoolWord), Low: Zero, High: MaxUint16, Size: 2})
	b.LongBool = named("LongBool", Type{Kind: KindBoolean, Sub: uint8(BoolLong), Low: Zero, High: MaxUint32, Size: 4})

	b.ShortInt = integer("ShortInt", MinInt8, MaxInt8, 1)
	b.SmallInt = integer("SmallInt", MinInt16, MaxInt16, 2)
	b.Integer = integer("Integer", MinInt32, MaxInt32, 4)
	b.Int64 = integer("Int64", MinInt64, MaxInt64, 8)
	b.Byte = integer("Byte", Zero, MaxUint8, 1)
	b.Word = integer("Word", Zero, MaxUint16, 2)
	b.Cardinal = integer("Cardinal", Zero, MaxUint32, 4)
	b.UInt64 = integer("UInt64", Zero, MaxUint64, 8)

	b.Single = decimal("Single", DecSingle, 4)
	b.Real48 = decimal("Real48", DecReal48, 6)
	b.Double = decimal("Double", DecDouble, 8)
	b.Extended = decimal("Extended", DecExtended, 10)
	b.Comp = decimal("Comp", DecComp, 8)
	b.Currency = decimal("Currency", DecCurrency, 8)

	b.AnsiChar = named("AnsiChar", Type{Kind: KindChar, Sub: uint8(CharAnsi), Low: Zero, High: MaxUint8, Size: 1})
	b.WideChar = named("WideChar", Type{Kind: KindChar, Sub: uint8(CharWide), Low: Zero, High: MaxUint16, Size: 2})

	b.ShortString = named("ShortString", Type{Kind: KindText, Sub: uint8(TextShort), Size: 255})
	b.AnsiString = named("AnsiString", Type{Kind: KindText, Sub: uint8(TextAnsi), Size: 8})
	b.WideString = named("WideString", Type{Kind: KindText, Sub: uint8(TextWide), Size: 8})
	b.UnicodeString = named("UnicodeString", Type{Kind: KindText, Sub: uint8(TextUnicode), Size: 8})

	b.PAnsiChar = named("PAnsiChar", MakePointer(b.AnsiChar, true))
	b.PWideChar = named("PWideChar", MakePointer(b.WideChar, true))

	b.File = in.Intern(MakeFile(NoTypeID))

	b.IntLiteral = in.Intern(Type{Kind: KindInteger, Low: MinInt32, High: MaxInt32, Size: 4, Flags: FlagLiteral})
	b.Int64Literal = in.Intern(Type{Kind: KindInteger, Low: MinInt64, High: MaxInt64, Size: 8, Flags: FlagLiteral})
	b.UInt64Literal = in.Intern(Type{Kind: KindInteger, Low: Zero, High: MaxUint64, Size: 8, Flags: FlagLiteral})
	b.RealLiteral = in.Intern(Type{Kind: KindDecimal, Sub: uint8(DecExtended), Size: 10, Flags: FlagLiteral})
	b.CharLiteral = in.Intern(Type{Kind: KindChar, Sub: uint8(CharWide), Low: Zero, High: MaxUint16, Size: 2, Flags: FlagLiteral})
	b.StringLiteral = in.Intern(Type{Kind: KindText, Sub: uint8(TextUnicode), Size: 8, Flags: FlagLiteral})

	b.StringClassRef = in.Intern(MakeClassRef(b.UnicodeString))
	b.FileClassRef = in.Intern(MakeClassRef(b.File))
}

// Builtins returns TypeIDs for the predeclared types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Strings returns the string interner used for type names.
func (in *Interner) Strings() *source.Interner {
	return in.strings
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	in.mu.RLock()
	id, ok := in.index[t]
	in.mu.RUnlock()
	if ok {
		return id
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRawLocked(t)
}

// internRawLocked adds the descriptor to the storage; nominal kinds are unique
// through their payload so the index never hides them.
func (in *Interner) internRawLocked(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Kind returns the kind of id, KindInvalid when unknown.
func (in *Interner) Kind(id TypeID) Kind {
	tt, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// IsUnknown reports whether id is missing or the unknown sentinel.
func (in *Interner) IsUnknown(id TypeID) bool {
	k := in.Kind(id)
	return k == KindInvalid || k == KindUnknown
}

// Len returns the number of interned types including the sentinel.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.types)
}

// Subrange interns an ordinal subrange of base.
func (in *Interner) Subrange(base TypeID, low, high Bound) TypeID {
	tt, ok := in.Lookup(base)
	if !ok || !tt.IsOrdinal() {
		return NoTypeID
	}
	if tt.Has(FlagSubrange) {
		base = tt.Elem
	}
	tt.Name = source.NoStringID
	tt.Elem = base
	tt.Low, tt.High = low, high
	tt.Flags |= FlagSubrange
	if tt.Kind == KindInteger {
		tt.Size = sizeForRange(low, high)
	}
	return in.Intern(tt)
}

func sizeForRange(low, high Bound) uint8 {
	switch {
	case Within(low, MinInt8, MaxInt8) && Within(high, MinInt8, MaxInt8),
		Within(low, Zero, MaxUint8) && Within(high, Zero, MaxUint8):
		return 1
	case Within(low, MinInt16, MaxInt16) && Within(high, MinInt16, MaxInt16),
		Within(low, Zero, MaxUint16) && Within(high, Zero, MaxUint16):
		return 2
	case Within(low, MinInt32, MaxInt32) && Within(high, MinInt32, MaxInt32),
		Within(low, Zero, MaxUint32) && Within(high, Zero, MaxUint32):
		return 4
	default:
		return 8
	}
}

// StrongAlias interns `type Name = type Base`: same shape, distinct identity.
func (in *Interner) StrongAlias(base TypeID, name source.StringID) TypeID {
	tt, ok := in.Lookup(base)
	if !ok {
		return NoTypeID
	}
	tt.Name = name
	return in.Intern(tt)
}

// Underlying strips subranges: for an ordinal subrange it returns the base.
func (in *Interner) Underlying(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if ok && tt.Has(FlagSubrange) && tt.Elem.IsValid() {
		return tt.Elem
	}
	return id
}

// Snapshot is the serialized form of an interner.
type snapshot struct {
	Types    []Type
	Builtins Builtins
	Procs    []ProcInfo
	Structs  []StructInfo
	Specs    map[string]TypeID
	Enums    []EnumInfo
	Params   []TypeParamInfo
}

var _ msgpack.CustomEncoder = (*Interner)(nil)
var _ msgpack.CustomDecoder = (*Interner)(nil)

// EncodeMsgpack writes the full table; names refer to the paired string interner.
func (in *Interner) EncodeMsgpack(enc *msgpack.Encoder) error {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return enc.Encode(snapshot{
		Types:    in.types,
		Builtins: in.builtins,
		Procs:    in.procs,
		Structs:  in.structs,
		Specs:    in.specs,
		Enums:    in.enums,
		Params:   in.params,
	})
}

// DecodeMsgpack restores a table written by EncodeMsgpack. Call AttachStrings
// afterwards to pair it with the decoded string interner.
func (in *Interner) DecodeMsgpack(dec *msgpack.Decoder) error {
	var snap snapshot
	if err := dec.Decode(&snap); err != nil {
		return fmt.Errorf("decode types: %w", err)
	}
	if len(snap.Types) == 0 || len(snap.Structs) == 0 || len(snap.Procs) == 0 ||
		len(snap.Enums) == 0 || len(snap.Params) == 0 {
		return fmt.Errorf("decode types: missing sentinel entries")
	}
	fresh := newEmpty(in.strings)
	fresh.types = snap.Types
	fresh.builtins = snap.Builtins
	fresh.procs = snap.Procs
	fresh.structs = snap.Structs
	fresh.enums = snap.Enums
	fresh.params = snap.Params
	if snap.Specs != nil {
		fresh.specs = snap.Specs
	}
	for i, t := range fresh.types {
		if i == 0 {
			continue
		}
		n, err := safecast.Conv[uint32](i)
		if err != nil {
			return fmt.Errorf("decode types: %w", err)
		}
		if _, dup := fresh.index[t]; !dup {
			fresh.index[t] = TypeID(n)
		}
		if t.Kind == KindProcedural && int(t.Payload) < len(fresh.procs) {
			fresh.procIndex[procKey(fresh.procs[t.Payload])] = TypeID(n)
		}
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.types = fresh.types
	in.index = fresh.index
	in.builtins = fresh.builtins
	in.procs = fresh.procs
	in.procIndex = fresh.procIndex
	in.structs = fresh.structs
	in.specs = fresh.specs
	in.enums = fresh.enums
	in.params = fresh.params
	return nil
}

// AttachStrings sets the string interner used to render names.
func (in *Interner) AttachStrings(strs *source.Interner) {
	in.mu.Lock()
	in.strings = strs
	in.mu.Unlock()
}
