// Package ast holds the in-memory representation of a parsed .tl
// declaration, mirroring the grammar in spec §4.1: namespaced boxed/bare
// types, optional generic refs (!X), and flag-gated optional parameters.
package ast

import (
	"fmt"
	"strings"
)

// Type is a (possibly namespaced, possibly generic) TL type reference.
type Type struct {
	Namespace  []string
	Name       string
	Bare       bool // true iff Name's first rune is lower-case
	GenericRef bool // true for a `!X` generic-ref parameter type
	GenericArg *Type
}

// FullName returns "ns.ns.Name".
func (t Type) FullName() string {
	if len(t.Namespace) == 0 {
		return t.Name
	}
	return strings.Join(t.Namespace, ".") + "." + t.Name
}

func (t Type) String() string {
	var b strings.Builder
	for _, ns := range t.Namespace {
		b.WriteString(ns)
		b.WriteByte('.')
	}
	if t.GenericRef {
		b.WriteByte('!')
	}
	b.WriteString(t.Name)
	if t.GenericArg != nil {
		b.WriteByte('<')
		b.WriteString(t.GenericArg.String())
		b.WriteByte('>')
	}
	return b.String()
}

// FindGenericRefs collects every !X name reachable from this type,
// including through a Vector<!X> generic argument.
func (t Type) FindGenericRefs() []string {
	var out []string
	if t.GenericRef {
		out = append(out, t.Name)
	}
	if t.GenericArg != nil {
		out = append(out, t.GenericArg.FindGenericRefs()...)
	}
	return out
}

// IsVector reports whether this type is the built-in boxed Vector<T>.
func (t Type) IsVector() bool {
	return len(t.Namespace) == 0 && t.Name == "Vector" && t.GenericArg != nil
}

// ParseType parses a single type reference such as "int", "Vector<long>",
// "flags.0?string" is NOT handled here (see ParseParameter); this
// handles the bare `ty` component only.
func ParseType(s string) (*Type, error) {
	stripped := strings.TrimPrefix(s, "!")
	genericRef := stripped != s

	rest := stripped
	var genericArg *Type
	if pos := strings.IndexByte(rest, '<'); pos != -1 {
		if !strings.HasSuffix(rest, ">") {
			return nil, fmt.Errorf("ast: invalid generic %q", s)
		}
		inner, err := ParseType(rest[pos+1 : len(rest)-1])
		if err != nil {
			return nil, err
		}
		genericArg = inner
		rest = rest[:pos]
	}

	parts := strings.Split(rest, ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("ast: empty component in type %q", s)
		}
	}
	name := parts[len(parts)-1]
	namespace := parts[:len(parts)-1]
	if name == "" {
		return nil, fmt.Errorf("ast: empty type name in %q", s)
	}

	return &Type{
		Namespace:  namespace,
		Name:       name,
		Bare:       isLower(name[0]),
		GenericRef: genericRef,
		GenericArg: genericArg,
	}, nil
}

func isLower(b byte) bool { return b >= 'a' && b <= 'z' }

// Flag is the gating flag on an optional parameter: `flags.N?`.
type Flag struct {
	Name  string
	Index int
}

func (f Flag) String() string { return fmt.Sprintf("%s.%d", f.Name, f.Index) }

// ParseFlag parses "flags.3" into {Name: "flags", Index: 3}.
func ParseFlag(s string) (*Flag, error) {
	pos := strings.IndexByte(s, '.')
	if pos == -1 {
		return nil, fmt.Errorf("ast: invalid flag %q", s)
	}
	var idx int
	if _, err := fmt.Sscanf(s[pos+1:], "%d", &idx); err != nil {
		return nil, fmt.Errorf("ast: invalid flag index in %q: %w", s, err)
	}
	return &Flag{Name: s[:pos], Index: idx}, nil
}

// Parameter is one declared argument of a definition. IsFlags marks the
// bare `flags:#` counter field; otherwise Type is set and Flag is non-nil
// for a `flags.N?`-gated optional.
type Parameter struct {
	Name    string
	IsFlags bool
	Type    *Type
	Flag    *Flag
}

func (p Parameter) String() string {
	if p.IsFlags {
		return p.Name + ":#"
	}
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteByte(':')
	if p.Flag != nil {
		b.WriteString(p.Flag.String())
		b.WriteByte('?')
	}
	b.WriteString(p.Type.String())
	return b.String()
}

// ParseParameter parses "name:type", "name:flags.N?type", or "name:#".
// A `{X:Type}` generic type-def declaration is reported via isTypeDef with
// its captured name and is never itself a Parameter.
func ParseParameter(s string) (param *Parameter, isTypeDef bool, typeDefName string, err error) {
	if strings.HasPrefix(s, "{") {
		if strings.HasSuffix(s, ":Type}") {
			return nil, true, s[1:strings.IndexByte(s, ':')], nil
		}
		return nil, false, "", fmt.Errorf("ast: malformed generic def %q", s)
	}

	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return nil, false, "", fmt.Errorf("ast: parameter %q missing type", s)
	}
	name, tyStr := parts[0], parts[1]
	if name == "" {
		return nil, false, "", fmt.Errorf("ast: parameter %q missing name", s)
	}

	if tyStr == "#" {
		return &Parameter{Name: name, IsFlags: true}, false, "", nil
	}

	var flag *Flag
	rest := tyStr
	if pos := strings.IndexByte(tyStr, '?'); pos != -1 {
		flag, err = ParseFlag(tyStr[:pos])
		if err != nil {
			return nil, false, "", err
		}
		rest = tyStr[pos+1:]
	}
	ty, err := ParseType(rest)
	if err != nil {
		return nil, false, "", err
	}
	return &Parameter{Name: name, Type: ty, Flag: flag}, false, "", nil
}

// Definition is one fully parsed `name#id (params) = Type;` declaration.
type Definition struct {
	Namespace []string
	Name      string
	ID        uint32
	HasID     bool // false when #id was omitted and ID was CRC-inferred
	Params    []Parameter
	Type      Type
	IsFunc    bool // true if declared in a ---functions--- section
}

// FullName returns "ns.ns.Name".
func (d Definition) FullName() string {
	if len(d.Namespace) == 0 {
		return d.Name
	}
	return strings.Join(d.Namespace, ".") + "." + d.Name
}

func (d Definition) String() string {
	var b strings.Builder
	for _, ns := range d.Namespace {
		b.WriteString(ns)
		b.WriteByte('.')
	}
	fmt.Fprintf(&b, "%s#%x", d.Name, d.ID)

	seen := map[string]bool{}
	var defs []string
	for _, p := range d.Params {
		if p.Type == nil {
			continue
		}
		for _, ref := range p.Type.FindGenericRefs() {
			if !seen[ref] {
				seen[ref] = true
				defs = append(defs, ref)
			}
		}
	}
	for _, def := range defs {
		fmt.Fprintf(&b, " {%s:Type}", def)
	}
	for _, p := range d.Params {
		b.WriteByte(' ')
		b.WriteString(p.String())
	}
	b.WriteString(" = ")
	b.WriteString(d.Type.String())
	return b.String()
}
