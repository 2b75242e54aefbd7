// Package parser compiles a .tl file's text into a slice of ast.Definition,
// inferring constructor ids by CRC32 of the canonicalised declaration where
// the source omits an explicit #id (spec §4.1 "Id inference").
package parser

import (
	"fmt"
	"hash/crc32"
	"regexp"
	"strconv"
	"strings"

	"github.com/telemtp/mtproto-go/internal/schema/ast"
)

// idWhitelist lists definitions whose declared #id intentionally does not
// match the CRC32 of their canonical text — server-layer oddities predating
// the current canonicalisation rule. Keyed by "namespace.name#declaredid".
var idWhitelist = map[string]bool{
	// inputMediaInvoice and a handful of early layers kept a historical id
	// across a wire-incompatible field change; servers never resend the old
	// shape, so the mismatch is accepted rather than treated as a compiler
	// bug.
	"inputMediaInvoice#d9799874": true,
}

var commentRe = regexp.MustCompile(`//[^\n]*`)
var layerRe = regexp.MustCompile(`//\s*LAYER\s+(\d+)`)

// File is the result of compiling one .tl source file.
type File struct {
	Layer       int // 0 if no "// LAYER N" comment was present
	Types       []ast.Definition
	Functions   []ast.Definition
}

// Parse compiles raw into a File, splitting ---types--- / ---functions---
// sections and resolving every definition's constructor id.
func Parse(raw string) (*File, error) {
	f := &File{}
	if m := layerRe.FindStringSubmatch(raw); m != nil {
		n, _ := strconv.Atoi(m[1])
		f.Layer = n
	}

	stripped := commentRe.ReplaceAllString(raw, "")

	section := "types" // definitions before any marker default to types
	isFunc := false
	for _, rawLine := range strings.Split(stripped, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		switch {
		case strings.EqualFold(line, "---types---"):
			section, isFunc = "types", false
			continue
		case strings.EqualFold(line, "---functions---"):
			section, isFunc = "functions", true
			continue
		}
		_ = section

		if !strings.HasSuffix(line, ";") {
			return nil, fmt.Errorf("schema: malformed declaration (missing ';'): %q", line)
		}
		line = strings.TrimSuffix(line, ";")

		def, err := parseDefinition(line, isFunc)
		if err != nil {
			return nil, fmt.Errorf("schema: %w: %q", err, line)
		}
		if isFunc {
			f.Functions = append(f.Functions, *def)
		} else {
			f.Types = append(f.Types, *def)
		}
	}
	return f, nil
}

func parseDefinition(line string, isFunc bool) (*ast.Definition, error) {
	if line == "" || strings.TrimSpace(line) == "" {
		return nil, fmt.Errorf("empty")
	}

	eqIdx := strings.LastIndex(line, "=")
	if eqIdx == -1 {
		return nil, fmt.Errorf("missing type")
	}
	left := strings.TrimSpace(line[:eqIdx])
	tyStr := strings.TrimSpace(line[eqIdx+1:])
	if tyStr == "" {
		return nil, fmt.Errorf("missing type")
	}
	ty, err := ast.ParseType(tyStr)
	if err != nil {
		return nil, fmt.Errorf("result type: %w", err)
	}

	var name, middle string
	if pos := strings.IndexByte(left, ' '); pos != -1 {
		name, middle = left[:pos], strings.TrimSpace(left[pos:])
	} else {
		name = left
	}

	declaredID := -1
	var idStr string
	if pos := strings.IndexByte(name, '#'); pos != -1 {
		idStr = name[pos+1:]
		name = name[:pos]
	}

	namespace := strings.Split(name, ".")
	for _, p := range namespace {
		if p == "" {
			return nil, fmt.Errorf("missing name")
		}
	}
	bareName := namespace[len(namespace)-1]
	namespace = namespace[:len(namespace)-1]

	if idStr != "" {
		v, err := strconv.ParseUint(idStr, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", idStr)
		}
		declaredID = int(v)
	}

	var typeDefs []string
	var flagDefs []string
	var params []ast.Parameter
	for _, field := range strings.Fields(middle) {
		param, isTypeDef, typeDefName, err := ast.ParseParameter(field)
		if err != nil {
			return nil, err
		}
		if isTypeDef {
			typeDefs = append(typeDefs, typeDefName)
			continue
		}
		if param.IsFlags {
			flagDefs = append(flagDefs, param.Name)
		} else {
			if param.Type.GenericRef && !contains(typeDefs, param.Type.Name) {
				return nil, fmt.Errorf("missing def for generic ref %q", param.Type.Name)
			}
			if param.Flag != nil && !contains(flagDefs, param.Flag.Name) {
				return nil, fmt.Errorf("missing def for flags field %q", param.Flag.Name)
			}
		}
		params = append(params, *param)
	}

	if contains(typeDefs, ty.Name) {
		ty.GenericRef = true
	}

	def := &ast.Definition{
		Namespace: namespace,
		Name:      bareName,
		Params:    params,
		Type:      *ty,
		IsFunc:    isFunc,
	}

	text := line
	if idStr != "" {
		text = strings.Replace(line, "#"+idStr, "", 1)
	}
	canonical := canonicalize(text)
	inferred := crc32.ChecksumIEEE([]byte(canonical))

	if declaredID == -1 {
		def.ID = inferred
		def.HasID = false
		return def, nil
	}

	def.ID = uint32(declaredID)
	def.HasID = true
	if uint32(declaredID) != inferred {
		key := fmt.Sprintf("%s#%x", def.FullName(), declaredID)
		if !idWhitelist[key] {
			return nil, fmt.Errorf("declared id 0x%08X does not match inferred CRC32 0x%08X", declaredID, inferred)
		}
	}
	return def, nil
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// trueFlagFieldRe drops a `name:flags.N?true` argument from the
// canonicalised text: true-typed flags are encoded purely via the flag
// bit and never affect the id the way any other parameter would.
var trueFlagFieldRe = regexp.MustCompile(`\s\w+:flags\.\d+\?true`)

// bytesTypeRe matches a `:bytes` or `?bytes` type token without touching
// whatever follows it (whitespace, another field, end of string), so a
// `bytes`-typed argument canonicalises to exactly `string` in place rather
// than swallowing the next token's separator.
var bytesTypeRe = regexp.MustCompile(`([:?])bytes\b`)

// canonicalize reproduces spec §4.1's "canonicalised textual form": drop
// true-typed flag arguments, turn '<' into a space and drop '>', strip
// surrounding {} braces, and substitute `bytes` with `string`.
func canonicalize(def string) string {
	s := bytesTypeRe.ReplaceAllString(def, "${1}string")
	s = strings.ReplaceAll(s, "<", " ")
	s = strings.ReplaceAll(s, ">", "")
	s = strings.ReplaceAll(s, "{", "")
	s = strings.ReplaceAll(s, "}", "")
	s = trueFlagFieldRe.ReplaceAllString(s, "")
	return s
}

// InferID exposes the CRC32 canonicalisation rule directly, for tests that
// check spec §6's worked example (rpc_answer_dropped).
func InferID(def string) uint32 {
	return crc32.ChecksumIEEE([]byte(canonicalize(def)))
}
