package validators

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"holasmile/cmd/internal/utils"
)

// Register installs the project's custom tags and makes error messages use json field names.
func Register(validate *validator.Validate) {
	validate.RegisterTagNameFunc(jsonFieldName)
	_ = validate.RegisterValidation("notblank", NotBlank)
	_ = validate.RegisterValidation("isodate", IsIsoDate)
	_ = validate.RegisterValidation("notpast", NotPast)
}

// New returns a validator with Register already applied.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	Register(v)
	return v
}

func NotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}

func IsIsoDate(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	_, err := utils.ParseDate(field.String())
	return err == nil
}

// NotPast accepts dates from today (UTC) onward. Works on YYYY-MM-DD strings and time.Time.
// Unparseable strings pass here and are left to isodate.
func NotPast(fl validator.FieldLevel) bool {
	var day time.Time
	switch v := fl.Field().Interface().(type) {
	case string:
		parsed, err := utils.ParseDate(v)
		if err != nil {
			return true
		}
		day = parsed
	case time.Time:
		day = utils.TruncateDay(v)
	default:
		return false
	}
	return !day.Before(utils.Today())
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}
