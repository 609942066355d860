package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports JSON field names and knows the storefront rules.
func NewValidator(now func() time.Time) *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "-" {
			return ""
		}
		if tag == "" {
			return f.Name
		}
		return tag
	})
	if err := RegisterRules(v, now); err != nil {
		panic(fmt.Sprintf("register storefront validation rules: %v", err))
	}
	return v
}

// FieldErrors flattens validator errors into field path -> message.
// The root struct name is dropped, so nested fields read "shipping_address.pincode".
func FieldErrors(err error) (map[string]string, bool) {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil, false
	}
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		key := fe.Namespace()
		if _, rest, ok := strings.Cut(key, "."); ok {
			key = rest
		}
		details[key] = FieldMessage(fe)
	}
	return details, true
}

func FieldMessage(fe validator.FieldError) string {
	if msg := Message(fe.Tag()); msg != "" {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	}
	return "is invalid"
}
