package render

import "strings"

// Entity replacement tables for the two positions markup interpolates
// user data into. Attribute values additionally encode whitespace so
// multi-line values survive inside a double-quoted attribute.
var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
	)
)

// escapeHTML encodes s for a text position.
func escapeHTML(s string) string {
	if strings.IndexAny(s, `&<>"'`) < 0 {
		return s
	}
	return textEscaper.Replace(s)
}

// escapeAttr encodes s for a double-quoted attribute value.
func escapeAttr(s string) string {
	if strings.IndexAny(s, "&<>\"'\n\r\t") < 0 {
		return s
	}
	return attrEscaper.Replace(s)
}
