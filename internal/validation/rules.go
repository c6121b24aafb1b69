package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/enroll-admin-api/pkg/errors"
)

// Field-format rules of the enrollment domain, registered as custom
// validator tags. Uniqueness is never checked here; that is always the
// engine's cross-record responsibility.
var (
	// Letters (including accented Latin) and spaces only.
	instructorPattern = regexp.MustCompile(`^\p{L}+(?: \p{L}+)*$`)
	// Letters, apostrophes, hyphens and spaces, with no leading or
	// trailing separator.
	personNamePattern = regexp.MustCompile(`^\p{L}+(?:[ '-]\p{L}+)*$`)
	usernamePattern   = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	studentIDPattern  = regexp.MustCompile(`^SV[0-9]{6}$`)
)

const passwordSymbols = `!@#$%^&*()_+-=[]{};:'",.<>/?|~` + "`"

// New returns a validator with the domain rules registered.
func New() *validator.Validate {
	v := validator.New()
	mustRegister(v, "instructor_name", func(fl validator.FieldLevel) bool {
		return instructorPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "person_name", func(fl validator.FieldLevel) bool {
		return personNamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "username_chars", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "student_code", func(fl validator.FieldLevel) bool {
		return studentIDPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "strong_password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// StrongPassword requires at least six characters with one lowercase, one
// uppercase, one digit and one symbol from the defined punctuation set.
func StrongPassword(password string) bool {
	if len(password) < 6 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// reasons maps validator tags to stable violation reason codes.
var reasons = map[string]string{
	"required":        "must not be empty",
	"email":           "must be a valid email address",
	"min":             "below the allowed minimum",
	"max":             "above the allowed maximum",
	"instructor_name": "must contain letters and spaces only",
	"person_name":     "must contain letters, apostrophes, hyphens and spaces without leading or trailing separators",
	"username_chars":  "must contain only letters, digits, '.', '_' or '-'",
	"student_code":    "must match SV followed by exactly 6 digits",
	"strong_password": "must be at least 6 characters with a lowercase, an uppercase, a digit and a symbol",
	"oneof":           "is not an allowed value",
}

// Error converts a validator failure into the structured VALIDATION_ERROR
// carrying one reason per offending field.
func Error(err error) *appErrors.Error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		reason, ok := reasons[fe.Tag()]
		if !ok {
			reason = "is invalid"
		}
		details[fieldName(fe)] = reason
	}
	return appErrors.WithDetails(appErrors.ErrValidation, details)
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return "payload"
	}
	return strings.ToLower(name[:1]) + name[1:]
}
