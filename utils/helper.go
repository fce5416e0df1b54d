package utils

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

func NewFalse() *bool {
	b := false
	return &b
}

func NewTrue() *bool {
	b := true
	return &b
}

func UniqueSlice[T comparable](inputSlice []T) []T {
	uniqueSlice := make([]T, 0, len(inputSlice))
	seen := make(map[T]bool, len(inputSlice))
	for _, element := range inputSlice {
		if !seen[element] {
			uniqueSlice = append(uniqueSlice, element)
			seen[element] = true
		}
	}
	return uniqueSlice
}

func IsValidEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

// accepts E.164 style input, defaults to MM numbering plan when
// no country code is given
func ValidatePhoneNumber(phone string) error {
	if phone == "" {
		return nil
	}
	region := "MM"
	if strings.HasPrefix(phone, "+") {
		region = ""
	}
	num, err := libphonenumber.Parse(phone, region)
	if err != nil {
		return errors.New("invalid phone number")
	}
	if !libphonenumber.IsValidNumber(num) {
		return errors.New("invalid phone number")
	}
	return nil
}

// flatten validator.v10 errors into one human readable message
func ProcessValidationErrors(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var msgs []string
	for _, fieldError := range validationErrors {
		switch fieldError.Tag() {
		case "required":
			msgs = append(msgs, strings.ToLower(fieldError.Field())+" is required")
		case "email":
			msgs = append(msgs, strings.ToLower(fieldError.Field())+" must be a valid email")
		case "oneof":
			msgs = append(msgs, strings.ToLower(fieldError.Field())+" must be one of "+fieldError.Param())
		case "gt", "gte", "min":
			msgs = append(msgs, strings.ToLower(fieldError.Field())+" is too small")
		case "lt", "lte", "max":
			msgs = append(msgs, strings.ToLower(fieldError.Field())+" is too large")
		default:
			msgs = append(msgs, strings.ToLower(fieldError.Field())+" is invalid")
		}
	}
	return errors.New(strings.Join(msgs, ", "))
}
