package contact

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

var (
	lettersPattern = regexp.MustCompile(`^[a-zA-Z]+$`)
	digitsPattern  = regexp.MustCompile(`^[0-9]+$`)
	emailPattern   = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
)

const (
	msgRequired = "field required"
	msgTooLong  = "must be at most 100 characters"
	msgLetters  = "Invalid format. Only letters are allowed."
	msgDigits   = "Invalid format. Only digits are allowed."
	msgEmail    = "Invalid email format. Please provide a valid email address."
)

// ValidationError reports the first field that failed a format rule.
type ValidationError struct {
	Field   string // Form field name, e.g. "email"
	Message string // Human-readable rule that was violated
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

type fieldRule struct {
	field   string
	value   string
	pattern *regexp.Regexp
	message string
}

// Validate checks the raw form values and returns them as an Input.
// Fields are checked in form order; the first failure is returned as a
// *ValidationError. Validate has no side effects and does not consult storage.
func Validate(firstName, lastName, phoneNumber, email string) (Input, error) {
	rules := []fieldRule{
		{FieldFirstName, firstName, lettersPattern, msgLetters},
		{FieldLastName, lastName, lettersPattern, msgLetters},
		{FieldPhoneNumber, phoneNumber, digitsPattern, msgDigits},
		{FieldEmail, email, emailPattern, msgEmail},
	}

	for _, r := range rules {
		if err := r.check(); err != nil {
			return Input{}, err
		}
	}

	return Input{
		FirstName:   firstName,
		LastName:    lastName,
		PhoneNumber: phoneNumber,
		Email:       email,
	}, nil
}

// Validate re-checks an Input, e.g. one decoded from JSON.
func (in Input) Validate() error {
	_, err := Validate(in.FirstName, in.LastName, in.PhoneNumber, in.Email)
	return err
}

func (r fieldRule) check() error {
	if r.value == "" {
		return &ValidationError{Field: r.field, Message: msgRequired}
	}
	if utf8.RuneCountInString(r.value) > MaxFieldLength {
		return &ValidationError{Field: r.field, Message: msgTooLong}
	}
	if !r.pattern.MatchString(r.value) {
		return &ValidationError{Field: r.field, Message: r.message}
	}
	return nil
}
