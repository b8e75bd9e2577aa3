package nmea

import (
	"errors"
	"fmt"
)

var (
	ErrMissingStart    = errors.New("nmea: missing '$'")
	ErrMissingChecksum = errors.New("nmea: missing checksum")
	ErrBadChecksum     = errors.New("nmea: bad checksum")
	ErrShortHeader     = errors.New("nmea: short header")

	// ErrSyntax is wrapped by every FieldError.
	ErrSyntax = errors.New("nmea: syntax error")
)

// WrongSentenceHeaderError reports a sentence routed to the wrong decoder.
type WrongSentenceHeaderError struct {
	Expected string
	Found    string
}

func (e *WrongSentenceHeaderError) Error() string {
	return fmt.Sprintf("nmea: wrong sentence header: expected %q, found %q", e.Expected, e.Found)
}

// FieldError reports the first field of a sentence body that failed to
// decode. Remaining is the unconsumed input starting at that field.
type FieldError struct {
	Sentence  string
	Field     string
	Remaining string
	Err       error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("nmea: %s %s: %v (at %q)", e.Sentence, e.Field, e.Err, e.Remaining)
}

func (e *FieldError) Unwrap() error { return e.Err }

func syntaxErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrSyntax}, args...)...)
}
