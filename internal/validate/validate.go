// Package validate holds the organizational email and password strength
// rules shared by registration, password change and password recovery.
package validate

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Validator checks emails against the organizational pattern:
// a single dot-separated local part with optional trailing digits,
// at the configured domain (e.g. ana.perez2@epn.edu.ec).
type Validator struct {
	emailRe *regexp.Regexp
}

// New builds a validator for the given organizational domain.
func New(orgDomain string) *Validator {
	pattern := fmt.Sprintf(`^[a-zA-Z]+\.[a-zA-Z]+[0-9]*@%s$`, regexp.QuoteMeta(orgDomain))
	return &Validator{emailRe: regexp.MustCompile(pattern)}
}

// OrganizationEmail reports whether email matches the organizational pattern.
func (v *Validator) OrganizationEmail(email string) bool {
	return v.emailRe.MatchString(email)
}

var (
	hasDigit     = regexp.MustCompile(`[0-9]`)
	hasSymbol    = regexp.MustCompile(`\W`)
	hasUppercase = regexp.MustCompile(`[A-Z]`)
	hasLowercase = regexp.MustCompile(`[a-z]`)
)

// StrongPassword reports whether the password meets the strength policy:
// 6-50 runes, (a digit or a non-word character), an uppercase letter and
// a lowercase letter.
func StrongPassword(password string) bool {
	if n := utf8.RuneCountInString(password); n < 6 || n > 50 {
		return false
	}
	if !hasDigit.MatchString(password) && !hasSymbol.MatchString(password) {
		return false
	}
	return hasUppercase.MatchString(password) && hasLowercase.MatchString(password)
}
