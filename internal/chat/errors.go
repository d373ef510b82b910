package chat

import "fmt"

// requestError marks malformed or incomplete client input for 400 mapping.
type requestError struct{ msg string }

func (e requestError) Error() string { return e.msg }

// ErrRequest constructs a requestError.
func ErrRequest(format string, a ...any) error {
	return requestError{msg: fmt.Sprintf(format, a...)}
}

// IsRequestError reports whether err indicates invalid client input.
func IsRequestError(err error) bool {
	_, ok := err.(requestError)
	return ok
}

// serverError marks a model load or inference failure for 500 mapping.
type serverError struct {
	msg string
	err error
}

func (e serverError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e serverError) Unwrap() error { return e.err }

// ErrServer wraps err as a serverError.
func ErrServer(msg string, err error) error { return serverError{msg: msg, err: err} }

// IsServerError reports whether err indicates an inference-side failure.
func IsServerError(err error) bool {
	_, ok := err.(serverError)
	return ok
}
