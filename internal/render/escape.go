package render

import "strings"

var xmlEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
	`'`, "&apos;",
)

// escape escapes the five XML special characters in s (§4.8: "XML special
// characters (& < > " ') are escaped in all text and attribute values").
func escape(s string) string {
	return xmlEscaper.Replace(s)
}
