package http

import (
	"html"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// sanitizeText strips markup from user-entered text. Entities produced by
// the policy are decoded again so "R&D" stays "R&D".
func sanitizeText(raw string) string {
	if raw == "" {
		return ""
	}
	return html.UnescapeString(textSanitizer().Sanitize(raw))
}

func sanitizePtr(v *string) *string {
	if v == nil {
		return nil
	}
	s := sanitizeText(*v)
	return &s
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
