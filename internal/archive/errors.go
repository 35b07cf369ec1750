package archive

import "errors"

var (
	ErrAddressRequired   = errors.New("please enter the property address")
	ErrBuildFailed       = errors.New("failed to build output archive")
	ErrInvalidSkipPolicy = errors.New("invalid skip policy")
)
