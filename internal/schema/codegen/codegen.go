// Package codegen renders a compiled schema (internal/schema/parser.File)
// into Go source: one struct per definition, with Encode/Decode methods and
// a registry.Register call, matching the shape hand-authored in
// internal/schema/gen for the curated runtime subset. It is exercised by
// the "gen-schema" CLI subcommand against arbitrary .tl sources (layer
// updates, third-party schema extensions) so the curated set is never the
// only thing the compiler can produce.
package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/telemtp/mtproto-go/internal/schema/ast"
	"github.com/telemtp/mtproto-go/internal/schema/parser"
)

// Options controls the rendered package.
type Options struct {
	Package string // Go package name for the generated file, e.g. "gen"
}

// Generate renders f as a single Go source file. Definitions whose result
// type is abstract (more than one constructor is ever seen for it across
// Types) get a marker interface; a result type reached by exactly one
// constructor gets none.
func Generate(f *parser.File, opt Options) (string, error) {
	g := &generator{opt: opt, resultArity: map[string]int{}}
	for _, d := range f.Types {
		g.resultArity[d.Type.FullName()]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by internal/schema/codegen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", opt.Package)
	b.WriteString("import (\n")
	b.WriteString("\t\"fmt\"\n\n")
	b.WriteString("\t\"github.com/telemtp/mtproto-go/internal/schema/registry\"\n")
	b.WriteString("\t\"github.com/telemtp/mtproto-go/internal/tl\"\n")
	b.WriteString(")\n\n")

	// Stable order: group by result type so sibling constructors of an
	// abstract type land next to their marker interface.
	byResult := map[string][]ast.Definition{}
	var resultOrder []string
	for _, d := range f.Types {
		key := d.Type.FullName()
		if _, seen := byResult[key]; !seen {
			resultOrder = append(resultOrder, key)
		}
		byResult[key] = append(byResult[key], d)
	}
	sort.Strings(resultOrder)

	for _, result := range resultOrder {
		defs := byResult[result]
		if g.resultArity[result] > 1 {
			g.writeMarkerInterface(&b, defs[0].Type)
		}
		for _, d := range defs {
			if err := g.writeDefinition(&b, d); err != nil {
				return "", fmt.Errorf("codegen: %s: %w", d.FullName(), err)
			}
		}
	}

	for _, d := range f.Functions {
		if err := g.writeFunction(&b, d); err != nil {
			return "", fmt.Errorf("codegen: %s: %w", d.FullName(), err)
		}
	}

	return b.String(), nil
}

type generator struct {
	opt         Options
	resultArity map[string]int
}

func markerName(t ast.Type) string {
	return toClassName(t.Name)
}

func (g *generator) writeMarkerInterface(b *strings.Builder, t ast.Type) {
	name := markerName(t)
	fmt.Fprintf(b, "// %s is the abstract result of every %s constructor.\n", name, t.Name)
	fmt.Fprintf(b, "type %s interface {\n\tregistry.Object\n\tis%s()\n}\n\n", name, name)
}

func (g *generator) writeDefinition(b *strings.Builder, d ast.Definition) error {
	structName := toClassName(d.Name)
	abstract := g.resultArity[d.Type.FullName()] > 1

	fmt.Fprintf(b, "// %s is the %#x constructor.\n", structName, d.ID)
	fmt.Fprintf(b, "type %s struct {\n", structName)
	flagsFields := map[string]bool{}
	for _, p := range d.Params {
		if p.IsFlags {
			flagsFields[p.Name] = true
			fmt.Fprintf(b, "\t%s uint32\n", toFieldName(p.Name))
			continue
		}
		goType, err := scalarGoType(*p.Type)
		if err != nil {
			return err
		}
		if p.Flag != nil {
			if p.Type.Name == "true" {
				goType = "bool"
			} else if !strings.HasPrefix(goType, "[]") {
				goType = "*" + goType
			}
		}
		fmt.Fprintf(b, "\t%s %s\n", toFieldName(p.Name), goType)
	}
	b.WriteString("}\n\n")

	if abstract {
		fmt.Fprintf(b, "func (*%s) is%s() {}\n\n", structName, markerName(d.Type))
	}

	fmt.Fprintf(b, "func (*%s) ConstructorID() uint32 { return %#x }\n\n", structName, d.ID)

	b.WriteString("func (v *" + structName + ") Encode(w *tl.Writer) {\n")
	for _, p := range d.Params {
		if p.IsFlags {
			fmt.Fprintf(b, "\tw.UInt(v.%s)\n", toFieldName(p.Name))
			continue
		}
		writeEncodeField(b, p)
	}
	b.WriteString("}\n\n")

	fmt.Fprintf(b, "func decode%s(r *tl.Reader) (registry.Object, error) {\n", structName)
	fmt.Fprintf(b, "\tv := &%s{}\n", structName)
	for _, p := range d.Params {
		if p.IsFlags {
			fmt.Fprintf(b, "\tflagsVal, err := r.UInt()\n\tif err != nil {\n\t\treturn nil, err\n\t}\n\tv.%s = flagsVal\n", toFieldName(p.Name))
			continue
		}
		if err := writeDecodeField(b, p); err != nil {
			return err
		}
	}
	b.WriteString("\treturn v, nil\n}\n\n")

	fmt.Fprintf(b, "func init() { registry.Register(%#x, decode%s) }\n\n", d.ID, structName)
	return nil
}

func (g *generator) writeFunction(b *strings.Builder, d ast.Definition) error {
	structName := toClassName(d.Name) + "Request"
	fmt.Fprintf(b, "// %s invokes the %#x RPC method.\n", structName, d.ID)
	fmt.Fprintf(b, "type %s struct {\n", structName)
	for _, p := range d.Params {
		if p.IsFlags {
			fmt.Fprintf(b, "\t%s uint32\n", toFieldName(p.Name))
			continue
		}
		goType, err := scalarGoType(*p.Type)
		if err != nil {
			return err
		}
		if p.Flag != nil && !strings.HasPrefix(goType, "[]") && p.Type.Name != "true" {
			goType = "*" + goType
		}
		fmt.Fprintf(b, "\t%s %s\n", toFieldName(p.Name), goType)
	}
	b.WriteString("}\n\n")
	fmt.Fprintf(b, "func (*%s) ConstructorID() uint32 { return %#x }\n\n", structName, d.ID)
	b.WriteString("func (v *" + structName + ") Encode(w *tl.Writer) {\n")
	for _, p := range d.Params {
		if p.IsFlags {
			fmt.Fprintf(b, "\tw.UInt(v.%s)\n", toFieldName(p.Name))
			continue
		}
		writeEncodeField(b, p)
	}
	b.WriteString("}\n\n")
	return nil
}

func writeEncodeField(b *strings.Builder, p ast.Parameter) {
	field := "v." + toFieldName(p.Name)
	write := func(expr string) {
		if p.Flag != nil && p.Type.Name != "true" {
			fmt.Fprintf(b, "\tif %s != nil {\n\t\t%s\n\t}\n", field, strings.ReplaceAll(expr, "%F", "(*"+field+")"))
			return
		}
		fmt.Fprintf(b, "\t%s\n", strings.ReplaceAll(expr, "%F", field))
	}
	if p.Flag != nil && p.Type.Name == "true" {
		return // pure flag-bit field, no body to write
	}
	switch {
	case p.Type.IsVector():
		writeVectorEncode(b, p, field)
	case isRegistryObject(*p.Type):
		write("w.UInt(%F.ConstructorID()); %F.Encode(w)")
	default:
		write(scalarEncodeCall("%F", *p.Type))
	}
}

func writeVectorEncode(b *strings.Builder, p ast.Parameter, field string) {
	elem := *p.Type.GenericArg
	body := func(f string) string {
		if isRegistryObject(elem) {
			return fmt.Sprintf("w.UInt(%s.ConstructorID()); %s.Encode(w)", f, f)
		}
		return scalarEncodeCall(f, elem)
	}
	open := func() {
		fmt.Fprintf(b, "\tw.VectorHeader(len(%s)); for _, e := range %s {\n\t\t%s\n\t}\n", field, field, body("e"))
	}
	if p.Flag != nil {
		fmt.Fprintf(b, "\tif %s != nil {\n", field)
		open()
		b.WriteString("\t}\n")
		return
	}
	open()
}

func writeDecodeField(b *strings.Builder, p ast.Parameter) error {
	name := toFieldName(p.Name)
	gated := p.Flag != nil
	var bitExpr string
	if gated {
		bitExpr = fmt.Sprintf("v.%s&(1<<%d) != 0", flagsFieldName(p), p.Flag.Index)
	}

	assign := func(decodeStmt, varName string) {
		if gated {
			fmt.Fprintf(b, "\tif %s {\n\t\t%s\n", bitExpr, decodeStmt)
			if p.Type.Name == "true" {
				fmt.Fprintf(b, "\t\tv.%s = true\n\t}\n", name)
			} else if strings.HasPrefix(mustScalarGoType(*p.Type), "[]") {
				fmt.Fprintf(b, "\t\tv.%s = %s\n\t}\n", name, varName)
			} else {
				fmt.Fprintf(b, "\t\tv.%s = &%s\n\t}\n", name, varName)
			}
			return
		}
		fmt.Fprintf(b, "\t%s\n\tv.%s = %s\n", decodeStmt, name, varName)
	}

	if p.Type.Name == "true" {
		fmt.Fprintf(b, "\tv.%s = %s\n", name, bitExpr)
		return nil
	}

	switch {
	case p.Type.IsVector():
		return writeVectorDecode(b, p, assign)
	case isRegistryObject(*p.Type):
		assign("obj, err := registry.Decode(r)\n\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}", "obj")
		return nil
	default:
		call, err := scalarDecodeCall(*p.Type)
		if err != nil {
			return err
		}
		assign(fmt.Sprintf("tmp, err := %s\n\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}", call), "tmp")
		return nil
	}
}

func writeVectorDecode(b *strings.Builder, p ast.Parameter, assign func(string, string)) error {
	elem := *p.Type.GenericArg
	elemType, err := scalarGoType(elem)
	if err != nil && !isRegistryObject(elem) {
		return err
	}
	if isRegistryObject(elem) {
		stmt := "objs, err := registry.DecodeVector(r)\n\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}"
		assign(stmt, "objs")
		return nil
	}
	decodeCall, err := scalarDecodeCall(elem)
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf(
		"n, err := r.VectorHeader()\n\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}\n\t\tlist := make([]%s, 0, n)\n\t\tfor i := 0; i < n; i++ {\n\t\t\telem, err := %s\n\t\t\tif err != nil {\n\t\t\t\treturn nil, err\n\t\t\t}\n\t\t\tlist = append(list, elem)\n\t\t}",
		elemType, decodeCall)
	assign(stmt, "list")
	return nil
}

func flagsFieldName(p ast.Parameter) string {
	return toFieldName(p.Flag.Name)
}

func isRegistryObject(t ast.Type) bool {
	switch t.Name {
	case "int", "long", "double", "string", "bytes", "Bool", "true", "int128", "int256":
		return false
	}
	return !t.IsVector()
}

func scalarGoType(t ast.Type) (string, error) {
	if t.IsVector() {
		inner, err := scalarGoType(*t.GenericArg)
		if err != nil {
			if isRegistryObject(*t.GenericArg) {
				return "[]" + markerName(*t.GenericArg), nil
			}
			return "", err
		}
		return "[]" + inner, nil
	}
	switch t.Name {
	case "int":
		return "int32", nil
	case "long":
		return "int64", nil
	case "double":
		return "float64", nil
	case "string":
		return "string", nil
	case "bytes":
		return "[]byte", nil
	case "Bool", "true":
		return "bool", nil
	case "int128":
		return "[16]byte", nil
	case "int256":
		return "[32]byte", nil
	default:
		if isRegistryObject(t) {
			return markerName(t), nil
		}
		return "", fmt.Errorf("unsupported scalar type %q", t.String())
	}
}

func mustScalarGoType(t ast.Type) string {
	s, err := scalarGoType(t)
	if err != nil {
		return "interface{}"
	}
	return s
}

func scalarEncodeCall(field string, t ast.Type) string {
	switch t.Name {
	case "int":
		return "w.Int(" + field + ")"
	case "long":
		return "w.Long(" + field + ")"
	case "double":
		return "w.Double(" + field + ")"
	case "string":
		return "w.String(" + field + ")"
	case "bytes":
		return "w.WriteBytes(" + field + ")"
	case "Bool":
		return "w.Bool(" + field + ")"
	case "int128":
		return "w.Int128(" + field + ")"
	case "int256":
		return "w.Int256(" + field + ")"
	default:
		return "w.UInt(" + field + ".ConstructorID()); " + field + ".Encode(w)"
	}
}

func scalarDecodeCall(t ast.Type) (string, error) {
	switch t.Name {
	case "int":
		return "r.Int()", nil
	case "long":
		return "r.Long()", nil
	case "double":
		return "r.Double()", nil
	case "string":
		return "r.String()", nil
	case "bytes":
		return "r.Bytes()", nil
	case "Bool":
		return "r.Bool()", nil
	case "int128":
		return "r.Int128()", nil
	case "int256":
		return "r.Int256()", nil
	default:
		if isRegistryObject(t) {
			return "registry.Decode(r)", nil
		}
		return "", fmt.Errorf("unsupported scalar type %q", t.String())
	}
}
