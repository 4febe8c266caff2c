package pipeline

import "errors"

var (
	ErrMalformedInput   = errors.New("malformed input")
	ErrUnsupportedInput = errors.New("unsupported input type")
)
