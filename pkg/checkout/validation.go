package checkout

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe      = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodeRe    = regexp.MustCompile(`^\d{6}$`)
	personNameRe = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	cvvRe        = regexp.MustCompile(`^\d{3,4}$`)
	upiRe        = regexp.MustCompile(`^[\w.-]+@[\w.-]+$`)
	nonDigitRe   = regexp.MustCompile(`\D`)
)

// Tag names registered on a validator by RegisterRules.
const (
	TagPhone      = "phone"
	TagPincode    = "pincode"
	TagPersonName = "personname"
	TagCardNumber = "cardnumber"
	TagCVV        = "cvv"
	TagExpiry     = "expiry"
	TagUPI        = "upi"
)

// RegisterRules adds the storefront field rules to v.
// now is consulted by the expiry rule; nil means time.Now.
func RegisterRules(v *validator.Validate, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	rules := map[string]func(string) bool{
		TagPhone:      ValidPhone,
		TagPincode:    ValidPincode,
		TagPersonName: ValidPersonName,
		TagCardNumber: ValidCardNumber,
		TagCVV:        ValidCVV,
		TagUPI:        ValidUPI,
		TagExpiry: func(s string) bool {
			return ValidExpiry(s, now())
		},
	}
	for tag, fn := range rules {
		fn := fn
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}

// Message returns the user facing text for a failed storefront rule, or "" for other tags.
func Message(tag string) string {
	switch tag {
	case TagPhone:
		return "must be a valid 10-digit phone number"
	case TagPincode:
		return "must be a valid 6-digit pincode"
	case TagPersonName:
		return "must contain only letters and spaces"
	case TagCardNumber:
		return "must be a valid card number"
	case TagCVV:
		return "must be 3 or 4 digits"
	case TagExpiry:
		return "must be a future MM/YY date"
	case TagUPI:
		return "must be a valid UPI id"
	}
	return ""
}

func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidPhone strips formatting before matching an Indian mobile number.
func ValidPhone(s string) bool {
	if s == "" {
		return false
	}
	return phoneRe.MatchString(nonDigitRe.ReplaceAllString(s, ""))
}

func ValidPincode(s string) bool {
	return pincodeRe.MatchString(s)
}

func ValidPersonName(s string) bool {
	return len(strings.TrimSpace(s)) >= 2 && personNameRe.MatchString(s)
}

// ValidCardNumber checks length (13-19 digits) and the Luhn checksum.
func ValidCardNumber(s string) bool {
	digits := nonDigitRe.ReplaceAllString(s, "")
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func ValidCVV(s string) bool {
	return cvvRe.MatchString(s)
}

// ValidExpiry accepts MM/YY for the current month or later.
func ValidExpiry(s string, now time.Time) bool {
	month, year, ok := strings.Cut(s, "/")
	if !ok || month == "" || year == "" {
		return false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return false
	}
	y, err := strconv.Atoi("20" + year)
	if err != nil {
		return false
	}
	switch {
	case y < now.Year():
		return false
	case y == now.Year() && m < int(now.Month()):
		return false
	}
	return true
}

func ValidUPI(s string) bool {
	return upiRe.MatchString(s)
}
