package codec

import "errors"

var (
	// ErrCodecNotFound is returned when no codec is registered under the
	// requested name.
	ErrCodecNotFound = errors.New("codec not found")

	// ErrUnknownFormat is returned by Detect when no registered codec's
	// magic matches the data.
	ErrUnknownFormat = errors.New("unrecognized image format")

	// ErrInvalidParameters is returned for out-of-range encode parameters.
	ErrInvalidParameters = errors.New("invalid codec parameters")
)
