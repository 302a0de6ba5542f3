package validation

import (
	"errors"
	"net/mail"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"golang.org/x/text/unicode/norm"
)

const (
	MinPasswordLength = 6
	// bcrypt silently truncates anything longer
	MaxPasswordBytes = 72
	MaxNameLength    = 100
	MaxEmailLength   = 254
)

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName trims a display name and puts it in Unicode NFC form.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ValidateSignup checks a normalized signup payload.
func ValidateSignup(fullName, email, password string) error {
	if validation.Validate(fullName, validation.Required) != nil ||
		validation.Validate(email, validation.Required) != nil ||
		validation.Validate(password, validation.Required) != nil {
		return ErrFieldsRequired
	}

	if err := ValidatePassword(password); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return ValidateName(fullName)
}

func ValidateEmail(email string) error {
	err := validation.Validate(email,
		validation.Required,
		validation.Length(3, MaxEmailLength),
		validation.By(rfc5322Address),
	)
	if err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func ValidatePassword(password string) error {
	if validation.Validate(password, validation.Length(MinPasswordLength, 0)) != nil {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

func ValidateName(name string) error {
	if validation.Validate(name, validation.Required) != nil {
		return ErrNameRequired
	}
	if validation.Validate(name, validation.Length(1, MaxNameLength)) != nil {
		return ErrNameTooLong
	}
	return nil
}

// rfc5322Address accepts a bare address only, no display name.
func rfc5322Address(value interface{}) error {
	s, _ := value.(string)
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return err
	}
	if addr.Address != s {
		return errors.New("must be a bare email address")
	}
	return nil
}
