/*
Package sanitize strips markup from user-supplied text.

Chat messages and profile biographies are rendered into HTML by clients, so
everything executable or structural must be removed server-side before
persistence. The implementation is bluemonday's strict policy, which keeps
text content and drops every tag.
*/
package sanitize

import "github.com/microcosm-cc/bluemonday"

// HTML removes all markup from user-supplied text, keeping text content only.
type HTML struct {
	policy *bluemonday.Policy
}

// NewHTML builds the sanitizer. The policy is immutable after construction
// and safe for concurrent use.
func NewHTML() *HTML {
	return &HTML{policy: bluemonday.StrictPolicy()}
}

// Sanitize returns text with every HTML element and attribute removed.
func (s *HTML) Sanitize(text string) string {
	return s.policy.Sanitize(text)
}
