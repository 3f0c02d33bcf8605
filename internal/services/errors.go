package services

import (
	"errors"
	"fmt"
)

// ErrNoMissingMapsData is returned when a route has no missing points or no
// missing-maps routing context. Nothing is requested in that case.
var ErrNoMissingMapsData = errors.New("route has no missing maps data")

type ErrorKind string

const (
	KindSettings   ErrorKind = "settings"
	KindTransport  ErrorKind = "transport"
	KindParse      ErrorKind = "parse"
	KindCalculator ErrorKind = "calculator"
)

// ResolutionError reports which step of a resolution attempt failed.
type ResolutionError struct {
	Kind ErrorKind
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// ErrorMessage returns the message a listener should surface for err.
// ok is false when there is nothing to report, which is the case for a
// route without missing maps data.
func ErrorMessage(err error) (msg string, ok bool) {
	if err == nil || errors.Is(err, ErrNoMissingMapsData) {
		return "", false
	}
	return err.Error(), true
}

// Kind returns the failure kind of err, or "" when err is not a ResolutionError.
func Kind(err error) ErrorKind {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}
