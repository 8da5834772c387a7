package subscription

import "fmt"

// InvalidEmailError is returned when the address fails the two-token check
type InvalidEmailError struct {
	Input  string
	Reason string
}

func (e InvalidEmailError) Error() string {
	return fmt.Sprintf("invalid email %q: %s", e.Input, e.Reason)
}

func (e InvalidEmailError) Code() string {
	return "INVALID_EMAIL"
}

func (e InvalidEmailError) Message() string {
	return "Email no válido."
}

func (e InvalidEmailError) Temporary() bool {
	return false
}

// UnknownNewsletterError is returned for a key missing from the catalog
type UnknownNewsletterError struct {
	Key string
}

func (e UnknownNewsletterError) Error() string {
	return fmt.Sprintf("unknown newsletter %q", e.Key)
}

func (e UnknownNewsletterError) Code() string {
	return "UNKNOWN_NEWSLETTER"
}

func (e UnknownNewsletterError) Message() string {
	return "Newsletter no disponible."
}

func (e UnknownNewsletterError) Temporary() bool {
	return false
}

// IsInvalidEmail reports whether err rejected the email format
func IsInvalidEmail(err error) bool {
	_, ok := err.(InvalidEmailError)
	return ok
}
