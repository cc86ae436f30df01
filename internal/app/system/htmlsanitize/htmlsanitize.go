// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	ugc    *bluemonday.Policy
	strict *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	once.Do(func() {
		ugc = bluemonday.UGCPolicy()
		ugc.AllowAttrs("class").OnElements("table", "tr", "td", "th")
		strict = bluemonday.StrictPolicy()
	})
	return ugc, strict
}

// Sanitize cleans rich-text HTML such as a product description, keeping
// formatting, lists, links, and tables and removing scripts, styles,
// iframes, and event handlers.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	p, _ := policies()
	return strings.TrimSpace(p.Sanitize(s))
}

// StripTags removes all markup, leaving text only. Used for single-line
// fields like product names, sizes, and colors.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	_, p := policies()
	return strings.TrimSpace(p.Sanitize(s))
}

// IsPlainText reports whether s contains no HTML tags.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<") || !strings.Contains(s, ">")
}
