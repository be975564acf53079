package database

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// report stored field names, not Go names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// checkFields runs the presence and enumeration checks on an entity.
func checkFields(validate *validator.Validate, entity interface{}) error {
	err := validate.Struct(entity)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fe.Field()+": "+fe.Tag()+"="+fe.Param())
		} else {
			msgs = append(msgs, fe.Field()+": "+fe.Tag())
		}
	}
	return errors.Errorf("invalid fields: %s", strings.Join(msgs, ", "))
}
