package security

import (
	"strings"
	"unicode"
)

const (
	MinPasswordLength  = 8
	passwordSpecialSet = "@$!%*?&"
)

// PasswordProblem returns why password is too weak, or "" when it is acceptable.
func PasswordProblem(password string) string {
	if password == "" {
		return "password is required"
	}
	if len(password) < MinPasswordLength {
		return "password must be at least 8 characters long"
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecialSet, r):
			special = true
		}
	}
	switch {
	case !lower:
		return "password must contain at least one lowercase letter"
	case !upper:
		return "password must contain at least one uppercase letter"
	case !digit:
		return "password must contain at least one number"
	case !special:
		return "password must contain at least one special character (@$!%*?&)"
	}
	return ""
}
