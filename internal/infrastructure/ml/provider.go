package ml

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/acadrisk/acadrisk/internal/domain/port"
)

// Status describes the outcome of the one-time model load.
type Status struct {
	Location       string
	ArtifactExists bool
	LoadedAt       time.Time
	Err            error
}

// Provider loads the oracle once per process and memoizes it. When no
// artifact exists, or it cannot be decoded, the heuristic is used instead.
type Provider struct {
	source Source
	logger *slog.Logger

	once   sync.Once
	oracle port.Oracle
	status Status
}

// NewProvider creates a Provider over source.
func NewProvider(source Source, logger *slog.Logger) *Provider {
	return &Provider{source: source, logger: logger}
}

// Oracle returns the memoized oracle, loading it on first call.
func (p *Provider) Oracle(ctx context.Context) port.Oracle {
	p.once.Do(func() { p.load(ctx) })
	return p.oracle
}

// Status returns the load outcome. It triggers the load if needed.
func (p *Provider) Status(ctx context.Context) Status {
	p.Oracle(ctx)
	return p.status
}

func (p *Provider) load(ctx context.Context) {
	location := p.source.Location()
	p.status = Status{Location: location, LoadedAt: time.Now().UTC()}

	forest, err := p.loadForest(ctx)
	switch {
	case err == nil:
		p.oracle = forest
		p.logger.Info("model loaded",
			"source", location,
			"checksum", forest.Describe().Checksum,
			"trees", forest.Describe().Trees,
		)
		return
	case errors.Is(err, ErrArtifactNotFound):
		p.logger.Warn("model artifact not found, using heuristic fallback", "source", location)
	default:
		p.status.Err = err
		p.logger.Error("failed to load model, using heuristic fallback", "source", location, "error", err)
	}
	p.oracle = NewHeuristic(location)
}

func (p *Provider) loadForest(ctx context.Context) (*Forest, error) {
	data, err := p.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	p.status.ArtifactExists = true

	artifact, err := DecodeArtifact(data)
	if err != nil {
		return nil, err
	}
	return NewForest(artifact, p.source.Location(), Checksum(data))
}
