package validators

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	pkgcheckout "github.com/angelmondragon/shophub/pkg/checkout"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
)

const maxBodyBytes = 1 << 20

var validate = pkgcheckout.NewValidator(nil)

// DecodeJSONBody decodes the body into dest and runs struct validation.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dest any) error {
	if err := DecodeJSON(w, r, dest); err != nil {
		return err
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// DecodeJSON decodes without validating; the service owns validation for the target type.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() {
		io.Copy(io.Discard, body)
	}()
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerrors.New(pkgerrors.CodeValidation, "request body is required")
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if details, ok := pkgcheckout.FieldErrors(err); ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}
