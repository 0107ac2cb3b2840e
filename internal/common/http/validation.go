package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeAndValidate decodes the JSON body into v and runs the struct's
// `validate` tags. On failure it writes the error response itself and returns
// false; handlers should return immediately.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := DecodeJSON(r, v); err != nil {
		WriteErrorEnvelope(w, http.StatusBadRequest, CodeInvalidJSON, "invalid json", nil, "")
		return false
	}

	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]any, len(verrs))
			for _, fe := range verrs {
				details[strings.ToLower(fe.Field())] = fe.Tag()
			}
			WriteErrorEnvelope(w, http.StatusBadRequest, CodeValidationFailed, "validation failed", details, "")
			return false
		}
		WriteErrorEnvelope(w, http.StatusBadRequest, CodeValidationFailed, "validation failed", nil, "")
		return false
	}

	return true
}

func ValidateUUID(s string) error {
	if s == "" {
		return errors.New("uuid cannot be empty")
	}
	_, err := uuid.Parse(s)
	return err
}
