package compiler

var reserved = map[string]struct{}{
	"alignas": {}, "alignof": {}, "and": {}, "and_eq": {}, "asm": {}, "auto": {},
	"bitand": {}, "bitor": {}, "case": {}, "catch": {}, "char16_t": {}, "char32_t": {},
	"class": {}, "compl": {}, "const_cast": {}, "constexpr": {}, "decltype": {},
	"default": {}, "delete": {}, "do": {}, "double": {}, "dynamic_cast": {}, "enum": {},
	"explicit": {}, "export": {}, "extern": {}, "float": {}, "friend": {}, "goto": {},
	"inline": {}, "int": {}, "long": {}, "mutable": {}, "namespace": {}, "new": {},
	"noexcept": {}, "not": {}, "not_eq": {}, "operator": {}, "or": {}, "or_eq": {},
	"private": {}, "protected": {}, "public": {}, "register": {}, "reinterpret_cast": {},
	"short": {}, "signed": {}, "sizeof": {}, "static": {}, "static_assert": {},
	"static_cast": {}, "switch": {}, "template": {}, "this": {}, "thread_local": {},
	"throw": {}, "try": {}, "typedef": {}, "typeid": {}, "typename": {}, "union": {},
	"unsigned": {}, "using": {}, "virtual": {}, "void": {}, "volatile": {}, "wchar_t": {},
	"xor": {}, "xor_eq": {}, "argv": {}, "std": {}, "tern": {},
}

// identifier spells a source name so it cannot collide with a keyword or
// namespace of the output.
func identifier(name string) string {
	if _, ok := reserved[name]; ok {
		return name + "_"
	}
	return name
}
