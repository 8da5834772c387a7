package subscription

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/pkg/errors"
)

// containsAtAndDot is deliberately loose: an address only needs an "@" and
// a "." somewhere. It is not RFC 5322 validation.
var containsAtAndDot = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if !strings.Contains(s, "@") || !strings.Contains(s, ".") {
		return errors.New("must contain '@' and '.'")
	}
	return nil
})

// ValidateEmail trims raw and applies the two-token check
func ValidateEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)

	err := validation.Validate(email,
		validation.Required,
		validation.Length(3, 254),
		containsAtAndDot,
	)
	if err != nil {
		return "", InvalidEmailError{Input: email, Reason: err.Error()}
	}

	return email, nil
}
