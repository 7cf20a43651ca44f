package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/lorrc/service-desk-analytics/internal/core/errors"
)

// DefaultMaxBodyBytes bounds request bodies when the caller passes 0.
const DefaultMaxBodyBytes int64 = 10 << 20

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Struct runs the `validate` tags of s and converts failures into
// ValidationErrors keyed by JSON path.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewBadRequestError(err, "Invalid request")
	}

	out := apperrors.NewValidationErrors()
	for _, fe := range fieldErrs {
		out.Add(fieldPath(fe), message(fe))
	}
	return out
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "max":
		if fe.Kind() == reflect.String {
			return "Must be at most " + fe.Param() + " characters"
		}
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return "Must contain at most " + fe.Param() + " items"
		}
		return "Must be at most " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return "Must be at least " + fe.Param() + " characters"
		}
		return "Must be at least " + fe.Param()
	case "gte":
		return "Must be at least " + fe.Param()
	case "lte":
		return "Must be at most " + fe.Param()
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "uuid", "uuid4":
		return "Must be a valid UUID"
	default:
		return fmt.Sprintf("Failed the %q check", fe.Tag())
	}
}

// DecodeAndValidate decodes a JSON request body of at most maxBytes and
// validates it.
func DecodeAndValidate[T any](w http.ResponseWriter, r *http.Request, maxBytes int64) (*T, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	body := http.MaxBytesReader(w, r.Body, maxBytes)

	var req T
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, &apperrors.AppError{
				Err:        err,
				Message:    "Request body too large",
				Code:       "BODY_TOO_LARGE",
				StatusCode: http.StatusRequestEntityTooLarge,
			}
		case errors.Is(err, io.EOF):
			return nil, apperrors.NewBadRequestError(err, "Request body is required")
		default:
			return nil, apperrors.NewBadRequestError(err, "Invalid request body")
		}
	}

	if err := Struct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ParseTimeQueryParam parses an RFC 3339 or YYYY-MM-DD query parameter.
// Missing values return nil, nil.
func ParseTimeQueryParam(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	errs := apperrors.NewValidationErrors()
	errs.Add(key, "Must be an RFC 3339 timestamp or YYYY-MM-DD date")
	return nil, errs
}

// ParseStringQueryParam safely parses a string query parameter
func ParseStringQueryParam(r *http.Request, key string) *string {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil
	}
	return &value
}
