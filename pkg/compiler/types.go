package compiler

import (
	"strings"

	"github.com/rhino1998/tern/pkg/compiler/kinds"
)

// Types are carried as source text: a name, a name followed by array
// dimensions such as i32[3][], or a space separated tuple of those.

const (
	typeVoid    = "void"
	typeNullptr = "nullptr"
	typeArray   = "[]"
)

func isTuple(typ string) bool {
	return strings.Contains(typ, " ")
}

func tupleElems(typ string) []string {
	return strings.Fields(typ)
}

func isArray(typ string) bool {
	return typ == typeArray || !isTuple(typ) && strings.HasSuffix(typ, "]")
}

// splitArray splits the outermost dimension off an array type. dim is empty
// for a dynamic dimension.
func splitArray(typ string) (elem string, dim string, ok bool) {
	if !isArray(typ) || typ == typeArray {
		return "", "", false
	}
	open := strings.LastIndexByte(typ, '[')
	return typ[:open], typ[open+1 : len(typ)-1], true
}

// baseType strips every array dimension.
func baseType(typ string) string {
	if i := strings.IndexByte(typ, '['); i >= 0 {
		return typ[:i]
	}
	return typ
}

func kindOf(typ string) kinds.Kind {
	return kinds.KindOf(typ)
}

func isNumeric(typ string) bool {
	return kindOf(typ).IsNumeric()
}

func isInteger(typ string) bool {
	return kindOf(typ).IsInteger()
}

func isPrimitive(typ string) bool {
	return kindOf(typ).IsPrimitive()
}

// targetType spells a type in the target language.
func targetType(typ string) string {
	if typ == "" {
		return typeVoid
	}
	if isTuple(typ) {
		elems := tupleElems(typ)
		for i, elem := range elems {
			elems[i] = targetType(elem)
		}
		return "std::tuple<" + strings.Join(elems, ", ") + ">"
	}
	if elem, dim, ok := splitArray(typ); ok {
		if dim == "" {
			return "std::vector<" + targetType(elem) + ">"
		}
		return "std::array<" + targetType(elem) + ", " + dim + ">"
	}
	if kinds.IsBuiltin(typ) {
		return kinds.Target(typ)
	}
	return identifier(typ)
}
