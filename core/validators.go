package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts
	classTimeTag   = "classtime"
	classTimeText  = "time must be in the format HH:MM or HH:MM:SS (24-hour format)"
	classTimeRegex = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)(:[0-5]\d)?$`)

	classDateTag   = "classdate"
	classDateText  = "date must be in the format YYYY-MM-DD"
	classDateRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`)
)

// Instantiate the validator for use.
func init() {
	Validate = validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = Validate.RegisterValidation(classTimeTag, classTimeValidation)
	RegisterCustomTranslation(classTimeTag, classTimeText)
	_ = Validate.RegisterValidation(classDateTag, classDateValidation)
	RegisterCustomTranslation(classDateTag, classDateText)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// classTimeValidation allows 24-hour wall clock times, seconds optional.
func classTimeValidation(fl validator.FieldLevel) bool {
	return classTimeRegex.MatchString(fl.Field().String())
}

// classDateValidation allows ISO calendar dates.
func classDateValidation(fl validator.FieldLevel) bool {
	return classDateRegex.MatchString(fl.Field().String())
}

// ValidClassTime reports whether s is a valid HH:MM or HH:MM:SS time.
func ValidClassTime(s string) bool { return classTimeRegex.MatchString(s) }

// ValidClassDate reports whether s is a valid YYYY-MM-DD date.
func ValidClassDate(s string) bool { return classDateRegex.MatchString(s) }
