package types

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// entityValidator returns the shared validator. Field names are reported by
// their column (json) name.
func entityValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// Money compares by sign so no value is rounded through float64.
		_ = validate.RegisterValidation("dgte0", decimalSign(func(sign int) bool { return sign >= 0 }))
		_ = validate.RegisterValidation("dgt0", decimalSign(func(sign int) bool { return sign > 0 }))
	})
	return validate
}

func decimalSign(ok func(sign int) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, isDecimal := fl.Field().Interface().(decimal.Decimal)
		return isDecimal && ok(d.Sign())
	}
}

// ValidateEntity checks the field rules of an entity pointer and returns a
// ConstraintViolationError naming the first failing column.
func ValidateEntity(table string, entity any) error {
	err := entityValidator().Struct(entity)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return &ConstraintViolationError{
		Table: table,
		Field: fe.Field(),
		Rule:  ruleFor(fe.Tag()),
	}
}

func ruleFor(tag string) string {
	switch tag {
	case "required":
		return RuleRequired
	case "gte", "dgte0":
		return RuleNonNeg
	case "gt", "dgt0":
		return RulePositive
	case "email", "max":
		return RuleFormat
	default:
		return RuleCheck
	}
}
