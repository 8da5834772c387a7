package lookup

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

// BIN is a validated six digit Bank Identification Number.
type BIN string

var binPattern = regexp.MustCompile(`^\d{6}$`)

// ParseBIN checks raw against ^\d{6}$ as is; surrounding whitespace is
// rejected like any other character. No network access happens before this
// check passes.
func ParseBIN(raw string) (BIN, error) {
	err := validation.Validate(raw,
		validation.Required,
		validation.Match(binPattern).Error("must be exactly 6 digits"),
	)
	if err != nil {
		return "", InvalidIdentifierError{Input: raw, Reason: err.Error()}
	}

	return BIN(raw), nil
}

func (b BIN) String() string {
	return string(b)
}
