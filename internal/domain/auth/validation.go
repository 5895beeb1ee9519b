package auth

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Registration limits
const (
	MinUsernameLen = 3
	MaxUsernameLen = 20
	MinPasswordLen = 8

	// PasswordSymbols is the only set of non-alphanumerics a password may use
	PasswordSymbols = "@$!%*?&"
)

// Messages shown when a registration rule fails
const (
	MsgUsernameLength   = "Username must be 3-20 characters long"
	MsgInvalidEmail     = "Invalid email format"
	MsgPasswordPolicy   = "Password does not meet requirements"
	MsgPasswordMismatch = "Passwords do not match"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidationError is a failed registration rule
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks the form in a fixed order and returns the first failing
// rule, or nil.
func (r Registration) Validate() error {
	if n := utf8.RuneCountInString(r.Username); n < MinUsernameLen || n > MaxUsernameLen {
		return &ValidationError{Field: "username", Message: MsgUsernameLength}
	}
	if !ValidEmail(r.Email) {
		return &ValidationError{Field: "email", Message: MsgInvalidEmail}
	}
	if !ValidPassword(r.Password) {
		return &ValidationError{Field: "password", Message: MsgPasswordPolicy}
	}
	if r.Password != r.ConfirmPassword {
		return &ValidationError{Field: "confirm_password", Message: MsgPasswordMismatch}
	}
	return nil
}

// ValidEmail reports whether s looks like an email address
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidPassword reports whether s is at least MinPasswordLen long, uses only
// ASCII letters, digits and PasswordSymbols, and contains at least one of each.
func ValidPassword(s string) bool {
	if len(s) < MinPasswordLen {
		return false
	}

	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
			return false
		case 'a' <= r && r <= 'z':
			lower = true
		case 'A' <= r && r <= 'Z':
			upper = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return lower && upper && digit && symbol
}
