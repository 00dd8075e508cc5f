package layers

import "errors"

var (
	ErrDuplicateLayerName = errors.New("duplicate layer name")
	ErrUnknownScmKind     = errors.New("unknown layer scm kind")
)
