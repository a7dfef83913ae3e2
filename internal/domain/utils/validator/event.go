package validator

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jooksuklubid/runclubs/internal/domain/dto"
	"github.com/jooksuklubid/runclubs/internal/domain/entity"
	"github.com/jooksuklubid/runclubs/internal/domain/utils/clock"
)

// IsoDate accepts calendar days written as YYYY-MM-DD.
func IsoDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(entity.DateLayout, fl.Field().String())
	return err == nil
}

// Clock accepts times of day written as HH:MM.
func Clock(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) != len(entity.TimeLayout) {
		return false
	}
	_, err := time.Parse(entity.TimeLayout, value)
	return err == nil
}

// notPast rejects days before today. Unparseable values are left to isodate.
func (v *Validator) notPast(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if _, err := time.Parse(entity.DateLayout, value); err != nil {
		return true
	}
	return value >= clock.Today(v.clock)
}

// EventEndAfterStart rejects events ending at or before their start time.
func EventEndAfterStart(sl validator.StructLevel) {
	in := sl.Current().Interface().(dto.EventInput)
	if in.StartTime == "" || in.EndTime == "" {
		return
	}

	start, err := time.Parse(entity.TimeLayout, in.StartTime)
	if err != nil {
		return
	}
	end, err := time.Parse(entity.TimeLayout, in.EndTime)
	if err != nil {
		return
	}

	if !end.After(start) {
		sl.ReportError(in.EndTime, "endTime", "EndTime", "endafter", "")
	}
}
