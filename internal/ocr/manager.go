package ocr

import (
	"context"

	"github.com/rs/zerolog"
	"notekit/internal/logger"
)

// Manager owns at most one live OCR engine. It creates the engine lazily,
// tears down any prior instance before creating a new one, and guarantees
// termination on release. The manager is scoped to the batch that owns it:
// Acquire is called at most once per batch and Release on every exit path.
type Manager struct {
	factory Factory
	engine  Engine
	log     zerolog.Logger
}

// NewManager creates a lifecycle manager around the given engine factory.
func NewManager(factory Factory) *Manager {
	return &Manager{
		factory: factory,
		log:     logger.WithComponent("ocr-manager"),
	}
}

// Acquire constructs a new engine for the given configuration and returns
// it. If a handle is already held it is terminated first; termination errors
// are logged and swallowed. Construction failure is fatal to the whole batch
// and is surfaced with enough detail to distinguish bad asset paths
// (ErrBadDataPath) from other causes.
func (m *Manager) Acquire(ctx context.Context, cfg Config) (Engine, error) {
	const op = "Acquire"

	if m.engine != nil {
		m.log.Warn().Msg("Engine handle still held at acquisition, terminating previous instance")
		if err := m.engine.Terminate(); err != nil {
			m.log.Warn().Err(err).Msg("Failed to terminate previous engine")
		}
		m.engine = nil
	}

	engine, err := m.factory(ctx, cfg)
	if err != nil {
		return nil, WrapError(op, err, "language "+cfg.Language)
	}

	m.engine = engine
	m.log.Debug().
		Str("language", cfg.Language).
		Str("data_dir", cfg.DataDir).
		Msg("OCR engine acquired")
	return engine, nil
}

// Release terminates the held engine if present and clears it. Idempotent;
// termination errors are logged and swallowed.
func (m *Manager) Release() {
	if m.engine == nil {
		return
	}
	if err := m.engine.Terminate(); err != nil {
		m.log.Warn().Err(err).Msg("Failed to terminate OCR engine")
	}
	m.engine = nil
	m.log.Debug().Msg("OCR engine released")
}

// Held reports whether a live engine handle is currently held.
func (m *Manager) Held() bool { return m.engine != nil }
