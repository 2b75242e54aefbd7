package codegen

import (
	"regexp"
	"strings"
)

// wordRe splits a TL identifier into word runs the same way the reference
// generator's split_words does: runs of lowercase/digits, ALL-CAPS runs
// that end before a capital/underscore/end, and Capitalized runs.
var wordRe = regexp.MustCompile(`[a-z0-9]+|[A-Z][A-Z0-9]+(?:[A-Z]|_|$)|[A-Z][a-z0-9]*`)

func splitWords(name string) []string {
	name = strings.ReplaceAll(name, "_", " ")
	var out []string
	for _, field := range strings.Fields(name) {
		out = append(out, wordRe.FindAllString(field, -1)...)
	}
	return out
}

// toClassName renders a TL identifier as an exported Go type name, e.g.
// "p_q_inner_data" -> "PQInnerData", "resPQ" -> "ResPq".
func toClassName(name string) string {
	var b strings.Builder
	for _, w := range splitWords(name) {
		b.WriteString(strings.ToUpper(w[:1]))
		if len(w) > 1 {
			b.WriteString(strings.ToLower(w[1:]))
		}
	}
	return b.String()
}

// toFieldName renders a TL parameter name as an exported Go struct field.
func toFieldName(name string) string {
	cls := toClassName(name)
	// Keep conventional Go initialisms capitalised: ID, URL, etc.
	cls = strings.ReplaceAll(cls, "Id", "ID")
	cls = strings.ReplaceAll(cls, "Url", "URL")
	return cls
}
