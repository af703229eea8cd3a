// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

// policy allows basic formatting tags and safe links, nothing else.
// User-supplied group descriptions pass through here before persisting.
var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	return p
}()

var strict = bluemonday.StrictPolicy()

// Sanitize strips unsafe HTML, keeping common user-generated-content
// formatting.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}

// PlainText strips all HTML, returning text only. Used for group and user
// names where markup is never meaningful.
func PlainText(s string) string {
	return strict.Sanitize(s)
}
