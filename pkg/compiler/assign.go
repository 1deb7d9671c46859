package compiler

import (
	"strconv"

	"github.com/rhino1998/tern/pkg/compiler/kinds"
)

// CanAssign reports whether a value of type source may be stored in target
// and whether doing so narrows it.
func (s Scope) CanAssign(target, source string) (ok bool, narrowing bool) {
	if target == source || target == "any" {
		return true, false
	}

	tp, tok := kinds.Lookup(target)
	sp, sok := kinds.Lookup(source)
	if tok && sok && tp.Kind.IsNumeric() && sp.Kind.IsNumeric() {
		return numericAssign(tp, sp)
	}

	if source == typeNullptr {
		return !tok && !isTuple(target), false
	}

	if source == typeArray {
		return isArray(target), false
	}

	if telem, tdim, ok := splitArray(target); ok {
		selem, sdim, ok := splitArray(source)
		if !ok || tdim != sdim {
			return false, false
		}
		return s.CanAssign(telem, selem)
	}

	for _, parent := range s.record().types[source] {
		if ok, narrowing := s.CanAssign(target, parent); ok {
			return true, narrowing
		}
	}

	if parent, ok := s.Parent(); ok {
		return parent.CanAssign(target, source)
	}

	return false, false
}

// numericAssign accepts every pair of numeric types except complex to real.
// Conversions that can lose range, precision or sign are reported as
// narrowing.
func numericAssign(target, source kinds.Primitive) (bool, bool) {
	switch {
	case source.Kind == kinds.Complex && target.Kind != kinds.Complex:
		return false, false
	case target.Kind == kinds.Complex:
		switch source.Kind {
		case kinds.Complex:
			return true, target.Bits < source.Bits
		case kinds.Float:
			return true, target.Bits/2 < source.Bits
		default:
			return true, false
		}
	case target.Kind == kinds.Float:
		if source.Kind == kinds.Float {
			return true, target.Bits < source.Bits
		}
		return true, false
	case source.Kind == kinds.Float:
		return true, true
	case target.Kind == source.Kind:
		return true, target.Bits < source.Bits
	case source.Kind == kinds.Unsigned:
		return true, target.Bits <= source.Bits
	default:
		// signed to unsigned
		return true, true
	}
}

// Accepts is CanAssign for an expression. Untyped literals take on the
// target type when their value fits and bare array literals are checked
// element by element.
func (s Scope) Accepts(target string, e Expression) (ok bool, narrowing bool) {
	if e.Type == typeArray && e.Elements != nil {
		elem, _, isArr := splitArray(target)
		if !isArr {
			return target == "any", false
		}
		for _, el := range e.Elements {
			ok, narrow := s.Accepts(elem, el)
			if !ok {
				return false, false
			}
			narrowing = narrowing || narrow
		}
		return true, narrowing
	}

	if e.Untyped {
		tp, ok := kinds.Lookup(target)
		if ok && tp.Kind.IsNumeric() {
			switch kindOf(e.Type) {
			case kinds.Signed:
				v, err := strconv.ParseInt(e.Value, 10, 64)
				return err == nil && tp.Fits(v), false
			case kinds.Float:
				return tp.Kind == kinds.Float || tp.Kind == kinds.Complex, false
			case kinds.Complex:
				return tp.Kind == kinds.Complex, false
			}
		}
	}

	return s.CanAssign(target, e.Type)
}
