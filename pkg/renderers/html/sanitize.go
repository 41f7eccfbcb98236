package html

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	descriptorPolicyOnce sync.Once
	descriptorPolicy     *bluemonday.Policy
)

// SanitizeDescriptor cleans panel descriptions and field help text. Catalog
// overrides may use inline formatting and links; everything else, scripts
// included, is removed. The result is safe to emit unescaped.
func SanitizeDescriptor(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(descriptorSanitizer().Sanitize(trimmed))
}

func descriptorSanitizer() *bluemonday.Policy {
	descriptorPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "code", "br")

		policy.AllowStandardURLs()
		policy.AllowAttrs("href").OnElements("a")
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)

		descriptorPolicy = policy
	})
	return descriptorPolicy
}
