package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEngine struct {
	terminated   int
	terminateErr error
}

func (e *recordingEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	return "text", nil
}

func (e *recordingEngine) Terminate() error {
	e.terminated++
	return e.terminateErr
}

func TestManagerAcquireTearsDownPreviousHandle(t *testing.T) {
	var built []*recordingEngine
	m := NewManager(func(ctx context.Context, cfg Config) (Engine, error) {
		e := &recordingEngine{}
		built = append(built, e)
		return e, nil
	})

	first, err := m.Acquire(context.Background(), Config{Language: "eng"})
	require.NoError(t, err)
	assert.True(t, m.Held())

	second, err := m.Acquire(context.Background(), Config{Language: "deu"})
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	require.Len(t, built, 2)
	assert.Equal(t, 1, built[0].terminated, "previous handle must be terminated before a new one is created")
	assert.Equal(t, 0, built[1].terminated)
}

func TestManagerAcquireSwallowsTerminationError(t *testing.T) {
	calls := 0
	m := NewManager(func(ctx context.Context, cfg Config) (Engine, error) {
		calls++
		return &recordingEngine{terminateErr: errors.New("stuck")}, nil
	})

	_, err := m.Acquire(context.Background(), Config{})
	require.NoError(t, err)

	// The held engine's Terminate fails; acquisition must still succeed.
	_, err = m.Acquire(context.Background(), Config{})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestManagerReleaseIsIdempotent(t *testing.T) {
	engine := &recordingEngine{}
	m := NewManager(func(ctx context.Context, cfg Config) (Engine, error) {
		return engine, nil
	})

	_, err := m.Acquire(context.Background(), Config{})
	require.NoError(t, err)

	m.Release()
	m.Release()
	m.Release()

	assert.Equal(t, 1, engine.terminated)
	assert.False(t, m.Held())
}

func TestManagerReleaseWithoutAcquire(t *testing.T) {
	m := NewManager(func(ctx context.Context, cfg Config) (Engine, error) {
		t.Fatal("factory must not be called")
		return nil, nil
	})
	m.Release()
	assert.False(t, m.Held())
}

func TestManagerAcquireSurfacesConstructionFailure(t *testing.T) {
	m := NewManager(func(ctx context.Context, cfg Config) (Engine, error) {
		return nil, WrapError("factory", ErrBadDataPath, "/nope")
	})

	_, err := m.Acquire(context.Background(), Config{DataDir: "/nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadDataPath), "bad asset paths must stay distinguishable")
	assert.False(t, m.Held())
}

func TestWrapErrorPreservesExistingWrap(t *testing.T) {
	inner := WrapError("inner", ErrRecognitionFailed, "detail")
	outer := WrapError("outer", inner, "ignored")
	assert.Same(t, inner, outer)

	assert.Nil(t, WrapError("op", nil, ""))
}

func TestFactoryFor(t *testing.T) {
	f, err := FactoryFor("tesseract")
	require.NoError(t, err)
	assert.NotNil(t, f)

	f, err = FactoryFor("")
	require.NoError(t, err)
	assert.NotNil(t, f)

	f, err = FactoryFor("vision")
	require.NoError(t, err)
	assert.NotNil(t, f)

	_, err = FactoryFor("abbyy")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownProvider))
}
