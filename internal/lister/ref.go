package lister

import (
	"regexp"
	"strings"
)

var blogIDRe = regexp.MustCompile(`^\d+$`)

// IsBlogID reports whether ref is already a numeric blog identifier.
func IsBlogID(ref string) bool {
	return blogIDRe.MatchString(ref)
}

// HasScheme reports whether ref starts with http:// or https://.
func HasScheme(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// NormalizeBlogRef trims ref and prefixes https:// when it is neither a URL
// with a scheme nor a numeric ID. prefixed reports whether the prefix was added.
func NormalizeBlogRef(ref string) (normalized string, prefixed bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || HasScheme(ref) || IsBlogID(ref) {
		return ref, false
	}
	return "https://" + ref, true
}
