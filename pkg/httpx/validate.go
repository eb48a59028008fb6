package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared and concurrency-safe per the validator docs.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError carries per-field failure reasons back to the client.
// Unlike token errors, validation detail is safe to expose: the caller needs
// it to correct the request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, reason := range e.Fields {
		parts = append(parts, field+": "+reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// DecodeValid decodes the JSON request body into v and validates it against
// its struct tags. Malformed JSON yields a plain error; rule failures yield a
// *ValidationError.
func DecodeValid(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}

	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = reasonFor(fe)
		}
		return &ValidationError{Fields: fields}
	}

	return nil
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

// WriteInvalidPayload maps a decode/validation failure onto the response:
// 422 with field detail for rule failures, 400 for everything else.
func WriteInvalidPayload(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:            "validation_error",
			ErrorDescription: "request payload failed validation",
			Fields:           verr.Fields,
		})
		return
	}
	WriteError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
}
