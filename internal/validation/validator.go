package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"finance-tracker/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// Struct validates s and returns validator.ValidationErrors on failure
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

var (
	instance *Validator
	once     sync.Once
)

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	once.Do(func() {
		instance = NewValidator()
	})
	return instance
}

var (
	hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9 ()-]{7,20}$`)
)

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("hex_color", validateHexColor)
	_ = v.RegisterValidation("entry_type", validateEntryType)
	_ = v.RegisterValidation("theme", validateTheme)
	_ = v.RegisterValidation("currency", validateCurrency)
	_ = v.RegisterValidation("username", validateUsername)
	_ = v.RegisterValidation("phone", validatePhone)
	_ = v.RegisterValidation("money", validateMoney)
	_ = v.RegisterValidation("signed_money", validateSignedMoney)
	_ = v.RegisterValidation("iso_date", validateISODate)
	_ = v.RegisterValidation("notification_type", validateNotificationType)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "" {
			tag = fld.Tag.Get("form")
		}
		if tag == "" {
			tag = fld.Tag.Get("query")
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateEntryType(fl validator.FieldLevel) bool {
	return models.IsValidEntryType(fl.Field().String())
}

func validateTheme(fl validator.FieldLevel) bool {
	return contains(models.ValidThemes, fl.Field().String())
}

func validateCurrency(fl validator.FieldLevel) bool {
	return contains(models.ValidCurrencies, fl.Field().String())
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernameRegex.MatchString(fl.Field().String())
}

func validatePhone(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

func validateNotificationType(fl validator.FieldLevel) bool {
	return models.IsValidNotificationType(fl.Field().String())
}

// validateMoney accepts a positive decimal string with at most 2 decimal places
func validateMoney(fl validator.FieldLevel) bool {
	amount, ok := parseDecimal(fl.Field())
	return ok && amount.IsPositive() && hasCents(amount)
}

// validateSignedMoney accepts any decimal, positive or negative, with at most 2 decimal places
func validateSignedMoney(fl validator.FieldLevel) bool {
	amount, ok := parseDecimal(fl.Field())
	return ok && hasCents(amount)
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := models.ParseDate(fl.Field().String())
	return err == nil
}

func parseDecimal(field reflect.Value) (decimal.Decimal, bool) {
	switch field.Kind() {
	case reflect.String:
		d, err := models.ParseMoney(field.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case reflect.Float32, reflect.Float64:
		d := decimal.NewFromFloat(field.Float())
		if !models.MoneyInRange(d) {
			return decimal.Zero, false
		}
		return d, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(field.Int()), true
	}

	if d, ok := field.Interface().(decimal.Decimal); ok {
		if !models.MoneyInRange(d) {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

// hasCents reports whether d has no more than 2 significant decimal places
func hasCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// FieldErrors flattens a validation failure into field -> messages. It
// understands validator.ValidationErrors and models.ValidationErrors and
// returns nil for anything else.
func FieldErrors(err error) map[string][]string {
	var validationErrs validator.ValidationErrors
	if stderrors.As(err, &validationErrs) {
		fields := make(map[string][]string, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fe.Field()] = append(fields[fe.Field()], Message(fe))
		}
		return fields
	}

	var modelErrs models.ValidationErrors
	if stderrors.As(err, &modelErrs) {
		fields := make(map[string][]string, len(modelErrs))
		for field, message := range modelErrs {
			fields[field] = []string{message}
		}
		return fields
	}

	return nil
}

// Message converts a validator.FieldError to a human-readable message
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "uuid", "uuid4":
		return "Must be a valid UUID."
	case "oneof":
		return fmt.Sprintf("\"%v\" is not a valid choice.", fe.Value())
	case "eqfield":
		return "The two password fields didn't match."
	case "hex_color":
		return "Enter a valid hex color, e.g. #1A2B3C."
	case "entry_type", "theme", "currency", "notification_type":
		return fmt.Sprintf("\"%v\" is not a valid choice.", fe.Value())
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "phone":
		return "Enter a valid phone number."
	case "money":
		return "Enter a positive amount with at most 2 decimal places."
	case "signed_money":
		return "A valid number with at most 2 decimal places is required."
	case "iso_date":
		return "Date has wrong format. Use YYYY-MM-DD."
	default:
		return fmt.Sprintf("Failed validation for '%s'.", fe.Tag())
	}
}
