package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var weekdays = map[string]struct{}{
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {}, "friday": {}, "saturday": {}, "sunday": {},
	"mon": {}, "tue": {}, "wed": {}, "thu": {}, "fri": {}, "sat": {}, "sun": {},
}

// Weekday accepts English weekday names and their three-letter abbreviations in any case.
func Weekday(fl validator.FieldLevel) bool {
	_, ok := weekdays[strings.ToLower(strings.TrimSpace(fl.Field().String()))]
	return ok
}
