package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"playverse/pkg/logger"
	"playverse/pkg/model"
	"playverse/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

// The messages below are shown to players as-is by the booking page.
var (
	ErrMissingFields   = errors.New("Name, phone number, and skill level are required")
	ErrInvalidQuantity = errors.New("Invalid quantity")
	ErrInvalidPhone    = errors.New("Phone number must be 10 digits")
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

// Validate checks a sanitized booking request. The first failing rule wins.
func (v *BookingValidator) Validate(req *model.BookingRequest) error {
	if req.Name == "" || req.Phone == "" || req.SkillLevel == "" {
		return ErrMissingFields
	}
	if req.Slots() < 1 {
		return ErrInvalidQuantity
	}
	if !sanitizer.IsLocalPhone(req.Phone) {
		return ErrInvalidPhone
	}

	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fe := validationErrs[0]
	v.logger.Debug("Booking request rejected", "field", fe.Field(), "tag", fe.Tag())
	switch fe.Tag() {
	case "email":
		return fmt.Errorf("%s must be a valid email address", fe.Field())
	case "url", "startswith":
		return fmt.Errorf("%s must be a valid http(s) URL", fe.Field())
	case "max":
		return fmt.Errorf("%s must be at most %s characters", fe.Field(), fe.Param())
	}
	return fmt.Errorf("%s is invalid", fe.Field())
}
