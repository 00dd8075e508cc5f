package sandbox

import "errors"

var (
	ErrUnknownMode    = errors.New("unknown sandbox mode")
	ErrRuntime        = errors.New("sandbox runtime error")
	ErrEmptyArchive   = errors.New("sandbox image archive contains no images")
	ErrMultipleImages = errors.New("sandbox image archive contains more than one image")
	ErrHelperFailed   = errors.New("namespace sandbox helper failed")
)
