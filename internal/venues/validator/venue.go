package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"playverse/pkg/logger"
	"playverse/pkg/model"

	"github.com/go-playground/validator/v10"
)

// ErrMissingRequired matches the message clients already display.
var ErrMissingRequired = errors.New("Name, location, sport, and image URL are required")

type VenueValidator struct {
	validate *validator.Validate
}

func NewVenueValidator(log *logger.Logger) *VenueValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	log.Info("Venue validator initialized successfully")
	return &VenueValidator{validate: v}
}

func (v *VenueValidator) Validate(venue *model.Venue) error {
	if venue.Name == "" || venue.Location == "" || venue.Sport == "" || venue.ImageURL == "" {
		return ErrMissingRequired
	}
	return v.check(venue)
}

func (v *VenueValidator) ValidateUpdate(u *model.VenueUpdate) error {
	for _, p := range []*string{u.Name, u.Location, u.Sport, u.ImageURL} {
		if p != nil && *p == "" {
			return ErrMissingRequired
		}
	}
	return v.check(u)
}

func (v *VenueValidator) check(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		switch fe.Tag() {
		case "url":
			messages = append(messages, fmt.Sprintf("%s must be a valid URL", fe.Field()))
		case "min", "max":
			messages = append(messages, fmt.Sprintf("%s must be between 2 and 200 characters", fe.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return errors.New(strings.Join(messages, "; "))
}
