// Package utils holds small string helpers shared by the CLI and the codec.
package utils

import (
	"strconv"
	"strings"
)

// SplitAndTrim splits s on sep, trims each part and drops the empty ones.
func SplitAndTrim(s, sep string) []string {
	out := []string{}
	for part := range strings.SplitSeq(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// JSONPointerToPath renders a JSON Pointer (RFC 6901) as a dotted path with
// bracketed array indices: "#/2/text" becomes "[2].text".
func JSONPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")

	var b strings.Builder
	for _, tok := range strings.Split(ptr, "/") {
		if tok == "" {
			continue
		}
		tok = pointerUnescaper.Replace(tok)
		if idx, err := strconv.Atoi(tok); err == nil {
			b.WriteString("[" + strconv.Itoa(idx) + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(tok)
	}
	return b.String()
}
