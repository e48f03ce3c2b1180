package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/task-manager-api/internal/domain"
)

// MaxJSONBodyBytes bounds JSON request bodies.
const MaxJSONBodyBytes = 64 << 10

// Global validator instance for reuse. Field names in errors use the json tag.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// DecodeJSON decodes the request body into v. Unknown fields are ignored.
// Malformed bodies, including anything after the first JSON value, are
// reported as validation errors.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxJSONBodyBytes))
	if err := dec.Decode(v); err != nil {
		return decodeError(err)
	}
	return expectEOF(dec)
}

// DecodeStrictJSON decodes a JSON object into the struct v. Every key must
// equal, case included, the json tag of one of v's fields, otherwise the
// whole body is rejected with domain.ErrDisallowedUpdate. An explicit null
// is a validation error for the field it names.
func DecodeStrictJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxJSONBodyBytes))

	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return decodeError(err)
	}
	if err := expectEOF(dec); err != nil {
		return err
	}
	if fields == nil {
		return domain.NewValidationError("body", "is not valid JSON", domain.ErrValidation)
	}

	allowed := jsonFieldNames(v)
	keys := make([]string, 0, len(fields))
	for key := range fields {
		if _, ok := allowed[key]; !ok {
			return domain.ErrDisallowedUpdate
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if bytes.Equal(bytes.TrimSpace(fields[key]), []byte("null")) {
			return domain.NewValidationError(key, "is required", domain.ErrValidation)
		}
	}

	// Keys now match the tags exactly, so the case-insensitive field
	// matching of encoding/json cannot widen the allow-set.
	normalized, err := json.Marshal(fields)
	if err != nil {
		return decodeError(err)
	}
	if err := json.Unmarshal(normalized, v); err != nil {
		return decodeError(err)
	}
	return nil
}

// expectEOF rejects a body that carries more than one JSON value.
func expectEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.NewValidationError("body", "is not valid JSON", domain.ErrValidation)
	}
	return nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return domain.NewValidationError(typeErr.Field, "has the wrong type", domain.ErrValidation)
	case errors.Is(err, io.EOF):
		return domain.NewValidationError("body", "is required", domain.ErrValidation)
	default:
		return domain.NewValidationError("body", "is not valid JSON", domain.ErrValidation)
	}
}

// jsonFieldNames returns the json names of the exported fields of the struct
// v points to.
func jsonFieldNames(v interface{}) map[string]struct{} {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	names := make(map[string]struct{})
	if t == nil || t.Kind() != reflect.Struct {
		return names
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		names[name] = struct{}{}
	}
	return names
}

// ValidateRequest validates v with its struct tags and returns the first
// failure as a *domain.ValidationError.
func ValidateRequest(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domain.NewValidationError(fe.Field(), getValidationTagMessage(fe.Tag()), domain.ErrValidation)
	}
	return domain.NewValidationError("body", "is invalid", domain.ErrValidation)
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "Email is invalid"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	default:
		return "is invalid"
	}
}
