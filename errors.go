package sketchui

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request, policy or input failed validation.
	ErrValidation = errors.New("validation error")

	// ErrConfiguration indicates a collaborator was called without the
	// configuration it needs, typically a missing credential. Fatal.
	ErrConfiguration = errors.New("configuration error")

	// ErrGeneratorFailure indicates the Generator collaborator was unreachable
	// or returned no usable content. Fatal for the session.
	ErrGeneratorFailure = errors.New("generator failure")

	// ErrStreamNotReady indicates Message() was called before Next().
	ErrStreamNotReady = errors.New("stream not ready: call Next() first")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrPortInUse indicates the preview server address is already taken.
	ErrPortInUse = errors.New("port in use")
)
