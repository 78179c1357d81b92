package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator provides struct validation on `validate` tags.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New()}
}

func (val *Validator) Validate(obj interface{}) error {
	if err := val.v.Struct(obj); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("field %s failed on %s", e.Field(), e.Tag())
		}
		return err
	}
	return nil
}

// Var validates a single value against the given rules.
func (val *Validator) Var(value interface{}, rules string) error {
	return val.v.Var(value, rules)
}
