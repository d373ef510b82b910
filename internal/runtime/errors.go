package runtime

// unavailableError signals a missing backend (e.g. binary built without
// llama support) so callers can distinguish it from a generation failure.
type unavailableError struct{ msg string }

func (e unavailableError) Error() string { return e.msg }

// ErrUnavailable constructs an unavailableError.
func ErrUnavailable(msg string) error { return unavailableError{msg: msg} }

// IsUnavailable reports whether err indicates a missing/failed runtime backend.
func IsUnavailable(err error) bool {
	_, ok := err.(unavailableError)
	return ok
}
