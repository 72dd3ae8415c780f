package contacts

import (
	"strings"
	"unicode/utf8"
)

// RenderMessage substitutes {name} and {Name} in template. Any other
// brace token is left as is.
func RenderMessage(template, name string) string {
	return strings.NewReplacer("{name}", name, "{Name}", name).Replace(template)
}

// Truncate shortens content to at most max bytes without splitting a UTF-8
// sequence, ending with "..." when there is room for it. A max of zero or
// less disables the limit.
func Truncate(content string, max int) (string, bool) {
	if max <= 0 || len(content) <= max {
		return content, false
	}

	const ellipsis = "..."
	suffix := ellipsis
	cut := max - len(ellipsis)
	if cut <= 0 {
		suffix = ""
		cut = max
	}
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}

	return content[:cut] + suffix, true
}
