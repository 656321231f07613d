package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/kingfisher-trust/kingfisher-records/models"
)

var (
	ukPhonePattern = regexp.MustCompile(`^((0)|(\+44))(1|2|3|7)\d{8,9}$`)
	emailPattern   = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
)

// ValidationError represents input rejected before it reaches the database
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with the generic code
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Code: "VALIDATION_ERROR", Field: field, Message: message}
}

// IsValidationError reports whether err is, or wraps, a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidatePhone checks for a UK landline or mobile number
func ValidatePhone(phone string) bool {
	return ukPhonePattern.MatchString(phone)
}

// validateEmail checks for a ___@___.___ shaped address
func validateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateContact accepts either a phone number or an email address
func ValidateContact(contact string) bool {
	return ValidatePhone(contact) || validateEmail(contact)
}

// NormalizeContact strips the spaces people type into phone numbers
func NormalizeContact(contact string) string {
	return strings.ReplaceAll(strings.TrimSpace(contact), " ", "")
}

// ParseDate parses a DD/MM/YYYY date typed by the user
func ParseDate(field, raw string) (models.Date, error) {
	d, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, &ValidationError{
			Code:    "INVALID_DATE",
			Field:   field,
			Message: "Invalid date input, expected DD/MM/YYYY",
		}
	}
	return d, nil
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(models.Date); ok {
				return d.String()
			}
			return nil
		}, models.Date{})
		mustRegister("ukphone", func(fl validator.FieldLevel) bool {
			return ValidatePhone(fl.Field().String())
		})
		mustRegister("contact", func(fl validator.FieldLevel) bool {
			return ValidateContact(fl.Field().String())
		})
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// NormalizeContacts rewrites, in place, every string field of a struct pointer whose
// validate tag checks a phone number or contact
func NormalizeContacts(record interface{}) {
	v := reflect.ValueOf(record)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if field.Kind() != reflect.String || !field.CanSet() {
			continue
		}
		if isContactTag(v.Type().Field(i).Tag.Get("validate")) {
			field.SetString(NormalizeContact(field.String()))
		}
	}
}

func isContactTag(tag string) bool {
	for _, rule := range strings.Split(tag, ",") {
		if rule == "contact" || rule == "ukphone" {
			return true
		}
	}
	return false
}

// ValidateStruct normalises the contact fields of a record, then runs its validate
// tags and reports the first failure
func ValidateStruct(record interface{}) error {
	NormalizeContacts(record)
	err := getValidator().Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("failed to validate record: %w", err)
	}
	return fieldError(fieldErrs[0])
}

func fieldError(fe validator.FieldError) *ValidationError {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		return NewValidationError(field, "Please fill all fields: "+field+" is required")
	case "max":
		return NewValidationError(field, fmt.Sprintf("%s too long (%s)", field, fe.Param()))
	case "gte":
		return NewValidationError(field, fmt.Sprintf("%s must not be negative", field))
	case "ukphone":
		return NewValidationError(field, "Invalid phone number")
	case "contact":
		return NewValidationError(field, "Please enter a valid phone no. or email")
	case "oneof":
		return NewValidationError(field, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
	default:
		return NewValidationError(field, fmt.Sprintf("%s is invalid", field))
	}
}
