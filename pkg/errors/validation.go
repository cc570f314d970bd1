package errors

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// validatorInstance returns the shared validator. Field names are reported
// using the json tag so messages match what users type in config files.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidateStruct checks v against its `validate` struct tags.
//
// The first failing field is returned as an *Error with the given code and
// the field's json name, e.g. "INVALID_PARAMETER: width: must be > 0".
func ValidateStruct(code Code, v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return Wrap(ErrCodeInternal, err, "validate %T", v)
	}

	fe := verrs[0]
	return Field(code, fe.Field(), "%s", describe(fe))
}

// describe renders a validator.FieldError as an expectation.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be > " + fe.Param() + ", got " + formatValue(fe.Value())
	case "gte", "min":
		return "must be >= " + fe.Param() + ", got " + formatValue(fe.Value())
	case "lt":
		return "must be < " + fe.Param() + ", got " + formatValue(fe.Value())
	case "lte", "max":
		return "must be <= " + fe.Param() + ", got " + formatValue(fe.Value())
	case "gtefield":
		return "must be >= " + strings.ToLower(fe.Param()) + ", got " + formatValue(fe.Value())
	case "oneof":
		return "must be one of [" + fe.Param() + "], got " + formatValue(fe.Value())
	}
	return "failed " + fe.Tag() + " check"
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprint(v)
}
