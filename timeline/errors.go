package timeline

import "errors"

var (
	ErrInvalidHandle    = errors.New("invalid account handle")
	ErrRemoteResolution = errors.New("remote actor could not be resolved")
)
