package skeleton

import "errors"

// Skeleton errors. Other packages wrap these so callers can branch with errors.Is.
var (
	ErrInvalidHandle     = errors.New("invalid handle")
	ErrMalformedTopology = errors.New("malformed skeleton topology")
	ErrAllocation        = errors.New("allocation failed")
	ErrDuplicateBone     = errors.New("duplicate bone name")
)
