// Package safety holds the pure validators applied to test targets before
// anything is executed: the URL validator for HTTP test configs and the
// injection guard for the script-based test representation.
package safety

import (
	"net/url"
	"regexp"
	"strings"
)

// Result is the outcome of a validation check. Validators never return Go
// errors; callers branch on Valid and surface Error to the user.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func ok() Result             { return Result{Valid: true} }
func fail(msg string) Result { return Result{Valid: false, Error: msg} }

// blockedHostPatterns match loopback and private-network hosts against the
// literal hostname string. No DNS resolution happens here, so a public name
// resolving to a private address is not caught; that limitation is accepted
// for a single-operator tool.
var blockedHostPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^localhost$`),
	regexp.MustCompile(`^127\.`),
	regexp.MustCompile(`^10\.`),
	regexp.MustCompile(`^192\.168\.`),
	regexp.MustCompile(`^172\.(1[6-9]|2[0-9]|3[01])\.`),
	regexp.MustCompile(`^0\.0\.0\.0$`),
	regexp.MustCompile(`^::1$`),
}

// ValidateTestURL checks that a test-target URL is safe to call: parseable,
// HTTPS, and not pointing at an internal or private network host. It is pure
// and synchronous and is re-run before every execution, never cached.
func ValidateTestURL(raw string) Result {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return fail("invalid URL format")
	}

	if parsed.Scheme != "https" {
		return fail("only HTTPS URLs are allowed")
	}

	host := strings.ToLower(parsed.Hostname())
	for _, pattern := range blockedHostPatterns {
		if pattern.MatchString(host) {
			return fail("URL targets an internal or private network address")
		}
	}

	return ok()
}
