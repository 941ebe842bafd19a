package ml_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadrisk/acadrisk/internal/domain/service"
	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
	"github.com/acadrisk/acadrisk/internal/infrastructure/ml"
)

type countingSource struct {
	ml.Source
	fetches atomic.Int32
}

func (s *countingSource) Fetch(ctx context.Context) ([]byte, error) {
	s.fetches.Add(1)
	return s.Source.Fetch(ctx)
}

func TestProvider_LoadsForest(t *testing.T) {
	p := ml.NewProvider(ml.FileSource{Path: "testdata/model.json"}, discardLogger())

	oracle := p.Oracle(context.Background())
	require.IsType(t, &ml.Forest{}, oracle)
	assert.False(t, oracle.IsFallback())

	status := p.Status(context.Background())
	assert.True(t, status.ArtifactExists)
	assert.NoError(t, status.Err)
	assert.Equal(t, "testdata/model.json", status.Location)
	assert.False(t, status.LoadedAt.IsZero())
}

func TestProvider_MissingArtifactFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	p := ml.NewProvider(ml.FileSource{Path: path}, discardLogger())

	oracle := p.Oracle(context.Background())
	assert.True(t, oracle.IsFallback())
	assert.Equal(t, path, oracle.Describe().Source)

	status := p.Status(context.Background())
	assert.False(t, status.ArtifactExists)
	assert.NoError(t, status.Err)

	// The fallback must be fully usable through the shared predictor.
	predictor := service.NewPredictor(oracle, discardLogger())
	result, err := predictor.PredictSingle(context.Background(), map[string]any{
		"attendance":            5,
		"study_hours":           5,
		"assignments_submitted": 2,
	})
	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.InDelta(t, 0.9029, result.RiskScore, 1e-4)
	assert.Equal(t, valueobject.RiskCategoryHigh, result.Category)
	assert.Equal(t, valueobject.LabelAtRisk, result.Label)
}

func TestProvider_CorruptArtifactFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"format":"forest/v1","classes":[0]}`), 0o600))

	p := ml.NewProvider(ml.FileSource{Path: path}, discardLogger())

	assert.True(t, p.Oracle(context.Background()).IsFallback())
	status := p.Status(context.Background())
	assert.True(t, status.ArtifactExists)
	assert.ErrorIs(t, status.Err, ml.ErrInvalidArtifact)
}

func TestProvider_LoadsOnceUnderConcurrency(t *testing.T) {
	src := &countingSource{Source: ml.FileSource{Path: "testdata/model.json"}}
	p := ml.NewProvider(src, discardLogger())

	const callers = 32
	seen := make([]any, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seen[i] = p.Oracle(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.fetches.Load())
	for _, o := range seen {
		assert.Same(t, seen[0], o)
	}
}

type fakeObjectGetter struct {
	getFunc func(in *s3.GetObjectInput) (*s3.GetObjectOutput, error)
}

func (f *fakeObjectGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return f.getFunc(in)
}

func TestS3Source_Fetch(t *testing.T) {
	client := &fakeObjectGetter{getFunc: func(in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		assert.Equal(t, "models", *in.Bucket)
		assert.Equal(t, "student/model.json", *in.Key)
		return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(`{"ok":true}`))}, nil
	}}

	src := ml.NewS3Source(client, "models", "student/model.json")
	data, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))
	assert.Equal(t, "s3://models/student/model.json", src.Location())
}

func TestS3Source_MissingKey(t *testing.T) {
	client := &fakeObjectGetter{getFunc: func(*s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return nil, &types.NoSuchKey{}
	}}

	_, err := ml.NewS3Source(client, "models", "model.json").Fetch(context.Background())
	assert.ErrorIs(t, err, ml.ErrArtifactNotFound)

	p := ml.NewProvider(ml.NewS3Source(client, "models", "model.json"), discardLogger())
	assert.True(t, p.Oracle(context.Background()).IsFallback())
}

func TestS3Source_OtherError(t *testing.T) {
	client := &fakeObjectGetter{getFunc: func(*s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return nil, errors.New("connection reset")
	}}

	_, err := ml.NewS3Source(client, "models", "model.json").Fetch(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ml.ErrArtifactNotFound)
}

func TestOpenSource(t *testing.T) {
	src, err := ml.OpenSource(context.Background(), "./model.json", ml.S3Config{})
	require.NoError(t, err)
	assert.Equal(t, ml.FileSource{Path: "./model.json"}, src)

	_, err = ml.OpenSource(context.Background(), "s3://bucket-only", ml.S3Config{})
	assert.Error(t, err)
}
