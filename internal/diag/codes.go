package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Name binding and typing (3000-3099)
	ResInfo              Code = 3000
	ResUnresolvedName    Code = 3001
	ResAmbiguousName     Code = 3002
	ResAmbiguousOverload Code = 3003
	ResNoOverload        Code = 3004
	ResNotVisible        Code = 3005
	ResGenericArity      Code = 3006
	ResNoInherited       Code = 3007
	ResNotIndexable      Code = 3008
	ResInvalidOperands   Code = 3009
	ResLiteralRange      Code = 3010
	ResTypeExpected      Code = 3011

	// Declaration table (3100-3199)
	TblDuplicateSymbol   Code = 3100
	TblScopeMismatch     Code = 3101
	TblForwardCompleted  Code = 3102
	TblUnknownUnitImport Code = 3103
	TblUsesCycle         Code = 3104
	TblDependencyFailed  Code = 3105

	// I/O (4000-4099)
	IOLoadFileError   Code = 4000
	IOBundleDecode    Code = 4001
	IOIndexCacheError Code = 4002

	// Project (5000-5099)
	ProjInfo          Code = 5000
	ProjConfigInvalid Code = 5001
	ProjNoInputs      Code = 5002

	// Observability (6000-6099)
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:          "Unknown error",
		ResInfo:              "Resolution information",
		ResUnresolvedName:    "unresolved name",
		ResAmbiguousName:     "ambiguous name",
		ResAmbiguousOverload: "ambiguous overload",
		ResNoOverload:        "no matching overload",
		ResNotVisible:        "declaration is not visible here",
		ResGenericArity:      "wrong number of type arguments",
		ResNoInherited:       "no inherited implementation",
		ResNotIndexable:      "value is not indexable",
		ResInvalidOperands:   "invalid operands for operator",
		ResLiteralRange:      "literal out of range",
		ResTypeExpected:      "type name expected",
		TblDuplicateSymbol:   "duplicate declaration",
		TblScopeMismatch:     "scope stack mismatch",
		TblForwardCompleted:  "forward type parameter completed twice",
		TblUnknownUnitImport: "unknown unit in uses clause",
		TblUsesCycle:         "circular unit reference",
		TblDependencyFailed:  "used unit has errors",
		IOLoadFileError:      "I/O load file error",
		IOBundleDecode:       "bundle decode error",
		IOIndexCacheError:    "usage index cache error",
		ProjInfo:             "Project information",
		ProjConfigInvalid:    "invalid pasres.toml",
		ProjNoInputs:         "no input bundles",
		ObsInfo:              "Observability information",
		ObsTimings:           "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 3100:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 3100 && ic < 4000:
		return fmt.Sprintf("TBL%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
