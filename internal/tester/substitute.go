// Package tester builds and executes the HTTP request described by a test
// config. Substitution of the secret value happens here and nowhere else,
// immediately before the network call; the substituted request is never
// logged, stored or returned.
package tester

import (
	"strings"

	"credentialVaultAPI/internal/models"
)

// Substitute replaces every literal occurrence of the $VALUE token with the
// secret. No escaping or encoding is applied; the template author is
// responsible for producing a template that substitutes into a valid URL,
// header or body. A template without the token is returned unchanged.
func Substitute(template, secret string) string {
	return strings.ReplaceAll(template, models.Placeholder, secret)
}
