package service

import "errors"

var (
	// ErrSchemaMismatch means the oracle's class ordering contains neither
	// the numeric class 0 nor the named class "Fail". It is a deployment
	// fault and is never answered with a default prediction.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrInferenceFailure means the oracle could not score the input.
	ErrInferenceFailure = errors.New("inference failure")
)
