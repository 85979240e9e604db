package apiserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"social-go/internal/apperrors"
)

const maxJSONBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误字段使用 JSON 名称
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("pastdate", validatePastDate); err != nil {
		panic(err)
	}
	return v
}

// validatePastDate accepts a YYYY-MM-DD date that is not in the future.
func validatePastDate(fl validator.FieldLevel) bool {
	date, err := time.Parse(time.DateOnly, fl.Field().String())
	if err != nil {
		return false
	}
	return !date.After(time.Now())
}

// decodeJSON reads a JSON body into dst and runs struct validation on it.
// Both malformed bodies and rule violations are validation errors (422).
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Validation("Request body is required")
		}
		return apperrors.Wrap(apperrors.KindValidation, "Invalid request body", err)
	}
	return validateStruct(dst)
}

func validateStruct(dst interface{}) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Wrap(apperrors.KindValidation, "Invalid request", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return apperrors.ValidationFields("Invalid request", fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be an email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	case "pastdate":
		return "must be a past date (YYYY-MM-DD)"
	}
	return "failed " + fe.Tag()
}
