package usecase

import (
	"errors"

	"go.opentelemetry.io/otel"
)

// ErrInvalidRequest marks client errors in a use case request.
var ErrInvalidRequest = errors.New("invalid request")

const (
	modeSingle = "single"
	modeBatch  = "batch"
)

var tracer = otel.Tracer("github.com/acadrisk/acadrisk/internal/application/usecase")
