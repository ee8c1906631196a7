package app

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field name ("email", "rooms[1].maxcount") to its message.
type FieldErrors map[string]string

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// count is a non-negative integer that fits an int; amount is a finite number
	_ = v.RegisterValidation("count", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		n, err := strconv.Atoi(s)
		return err == nil && n >= 0 && s[0] != '+'
	})
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		f, err := strconv.ParseFloat(fl.Field().String(), 64)
		return err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
	})
	// report fields under their form names so errors line up with inputs
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var hotelMessages = map[string]string{
	"name":    "Please enter the hotel name",
	"address": "Please enter the address",
	"phone":   "Please enter the phone number",
	"email":   "Please enter the email",
	"rating":  "Please enter the rate",
	"image":   "Please enter the link of image",
}

var roomMessages = map[string]string{
	"name":        "Please enter the room name",
	"maxcount":    "Please enter the max count",
	"rentperday":  "Please enter the rent per day",
	"description": "Please enter the description",
	"image":       "Please enter the Image",
}

var formatMessages = map[string]string{
	"maxcount":   "Max count must be a whole number",
	"rentperday": "Rent per day must be a number",
}

// ValidateDraft checks every required field. An empty result means the draft may be submitted.
func ValidateDraft(d Draft) FieldErrors {
	out := FieldErrors{}
	err := validate.Struct(d)
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out[""] = err.Error()
		return out
	}
	for _, fe := range verrs {
		// Namespace is "Draft.rooms[0].name"; drop the type name
		_, key, _ := strings.Cut(fe.Namespace(), ".")
		out[key] = messageFor(fe, strings.HasPrefix(key, "rooms["))
	}
	return out
}

// formatMessage is the message for a value of the right presence but wrong shape.
func formatMessage(key string) string {
	field := key
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		field = key[i+1:]
	}
	if m, ok := formatMessages[field]; ok {
		return m
	}
	return "Please enter a valid " + field
}

func messageFor(fe validator.FieldError, inRoom bool) string {
	if fe.Tag() != "required" {
		return formatMessage(fe.Field())
	}
	msgs := hotelMessages
	if inRoom {
		msgs = roomMessages
	}
	if m, ok := msgs[fe.Field()]; ok {
		return m
	}
	return "Please enter the " + fe.Field()
}
