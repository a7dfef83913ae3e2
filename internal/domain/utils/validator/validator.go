package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jooksuklubid/runclubs/internal/domain/common/errorz"
	"github.com/jooksuklubid/runclubs/internal/domain/dto"
	"github.com/jooksuklubid/runclubs/internal/domain/utils/clock"
)

// Validator checks request forms and reports failures keyed by their JSON field names.
type Validator struct {
	validate *validator.Validate
	clock    clock.Clock
}

func New(clk clock.Clock) *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		clock:    clk,
	}

	v.validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v.validate.RegisterValidation("isodate", IsoDate))
	mustRegister(v.validate.RegisterValidation("notpast", v.notPast))
	mustRegister(v.validate.RegisterValidation("clock", Clock))
	mustRegister(v.validate.RegisterValidation("weekday", Weekday))
	v.validate.RegisterStructValidation(EventEndAfterStart, dto.EventInput{})

	return v
}

func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}

// Struct validates s and returns *errorz.ValidationError when any field is rejected.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := fieldKey(fe.Namespace())
		if _, ok := fields[key]; ok {
			continue
		}
		fields[key] = message(fe)
	}
	return errorz.NewValidationError(fields)
}

// fieldKey turns "EventInput.socials.instagram" into "socials.instagram"
// and "ClubInput.runDays[2]" into "runDays".
func fieldKey(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		namespace = rest
	}
	if i := strings.IndexByte(namespace, '['); i >= 0 {
		namespace = namespace[:i]
	}
	return namespace
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "numeric":
		return "must contain digits only"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid id"
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	case "notpast":
		return "must not be in the past"
	case "clock":
		return "must be a time in HH:MM format"
	case "weekday":
		return "must be a weekday name"
	case "endafter":
		return "must be after startTime"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
