// Package sanitize cleans free-text fields returned by Azure DevOps.
package sanitize

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// StripHTML removes every <...> markup sequence and trims surrounding whitespace.
// Entities such as &amp; are left as-is.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}
