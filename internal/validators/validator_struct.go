package validators

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/internal/totp"
)

// tagTOTPSecret accepts any string that decodes to a non-empty base32 key
// after whitespace and padding are stripped.
const tagTOTPSecret = "totp_secret"

// tagOTPAuthURI accepts strings starting with the otpauth:// scheme in any
// letter case. The rest of the URI is checked when it is parsed.
const tagOTPAuthURI = "otpauth_uri"

const otpauthPrefix = "otpauth://"

// StructValidator implements [Validator] on top of go-playground/validator
// struct tags, with English messages keyed by the JSON field name.
type StructValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewStructValidator builds a [StructValidator] with the default English
// translations and the application's custom tags registered.
func NewStructValidator() (*StructValidator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorMissing
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	if err := registerCustomValidations(validate, enTrans); err != nil {
		return nil, err
	}

	return &StructValidator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

// Validate checks v against its struct tags. When fields are given only
// those struct fields are checked. Failures are returned as [ValidationError].
func (v *StructValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	if obj == nil {
		return ErrUnsupportedType
	}

	var err error
	if len(fields) > 0 {
		err = v.validate.StructPartialCtx(ctx, obj, fields...)
	} else {
		err = v.validate.StructCtx(ctx, obj)
	}
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return ErrUnsupportedType
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	result := make(ValidationError, len(validationErrs))
	for _, fe := range validationErrs {
		result[fe.Field()] = fe.Translate(v.translator)
	}

	logger.FromContext(ctx).Debug().
		Str("func", "*StructValidator.Validate").
		Interface("fields", map[string]string(result)).
		Msg("validation failed")

	return result
}

type customValidation struct {
	tag     string
	message string
	check   func(value string) bool
}

var customValidations = []customValidation{
	{
		tag:     tagTOTPSecret,
		message: "{0} must be a non-empty base32 key",
		check: func(value string) bool {
			_, err := totp.Normalize(value)
			return err == nil
		},
	},
	{
		tag:     tagOTPAuthURI,
		message: "{0} must be an otpauth:// URI",
		check: func(value string) bool {
			value = strings.TrimSpace(value)
			return len(value) >= len(otpauthPrefix) && strings.EqualFold(value[:len(otpauthPrefix)], otpauthPrefix)
		},
	},
}

func registerCustomValidations(validate *validator.Validate, enTrans ut.Translator) error {
	for _, cv := range customValidations {
		check := cv.check
		err := validate.RegisterValidation(cv.tag, func(fl validator.FieldLevel) bool {
			value, ok := fl.Field().Interface().(string)
			return ok && check(value)
		})
		if err != nil {
			return err
		}

		tag, message := cv.tag, cv.message
		err = validate.RegisterTranslation(cv.tag, enTrans,
			func(ut ut.Translator) error {
				return ut.Add(tag, message, false)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, err := ut.T(fe.Tag(), fe.Field())
				if err != nil {
					return fe.Error()
				}
				return t
			},
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// jsonFieldName reports fields by their JSON name so messages match the
// request body the client sent.
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}
	return name
}
