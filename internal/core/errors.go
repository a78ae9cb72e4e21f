package core

import "errors"

// Expected failure conditions. Sub-models return these directly; the
// coordinator surfaces them to the caller and never retries.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateID        = errors.New("duplicate id")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrInvalidPermutation = errors.New("invalid permutation")
	ErrChatDisabled       = errors.New("chat disabled")
)
