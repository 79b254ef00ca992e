package openadas

import (
	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-openadas/layering"
)

// ErrEmptyPath is returned by Trace when no path segments are supplied.
var ErrEmptyPath = errors.New("openadas: path must not be empty")

// ConfigStore holds an immutable configuration. Constructors and accessors
// deep copy, so nothing a caller holds aliases the stored tree. Entries are not
// validated on construction; a malformed or incomplete entry surfaces as a
// lookup failure.
type ConfigStore struct {
	cfg    Config
	opts   optionsConfig
	layers []layerSnapshot
}

// NewConfigStore wraps a deep copy of cfg. Evaluator options (WithEvaluator,
// WithProgramCache, WithFunctionRegistry, WithEvaluatorLogger, WithScope)
// configure Evaluate.
func NewConfigStore(cfg Config, opts ...Option) *ConfigStore {
	return &ConfigStore{
		cfg:  cfg.Clone(),
		opts: applyOptions(opts),
	}
}

// Config returns a deep copy of the stored configuration.
func (s *ConfigStore) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.cfg.Clone()
}

// Snapshot returns the configuration as nested maps keyed by document keys.
func (s *ConfigStore) Snapshot() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return s.cfg.Snapshot()
}

// Scopes lists the scopes merged into this store, strongest first. A store
// built directly from a Config has none.
func (s *ConfigStore) Scopes() []Scope {
	if s == nil || len(s.layers) == 0 {
		return nil
	}
	out := make([]Scope, len(s.layers))
	for i, layer := range s.layers {
		out[i] = layer.Scope.clone()
	}
	return out
}

// Trace resolves a document path such as ("bms", "H", "C", "6") and reports
// which layer supplied it. Stores without layers report one synthetic layer.
// Returned values are copies; editing them does not affect later traces.
func (s *ConfigStore) Trace(path ...string) (any, Trace, error) {
	if len(path) == 0 {
		return nil, Trace{}, ErrEmptyPath
	}
	joined := joinPath(path)
	trace := Trace{Path: joined}
	if s == nil {
		return nil, trace, nil
	}

	layers := s.layers
	if len(layers) == 0 {
		layers = []layerSnapshot{{Scope: s.opts.scope.clone(), Snapshot: s.cfg.Snapshot()}}
	}

	var (
		value any
		found bool
	)
	for _, layer := range layers {
		v, ok := lookupSnapshot(layer.Snapshot, path)
		trace.Layers = append(trace.Layers, Provenance{
			Scope:      layer.Scope.clone(),
			SnapshotID: layer.SnapshotID,
			Path:       joined,
			Value:      layering.Clone(v),
			Found:      ok,
		})
		if ok && !found {
			value, found = v, true
		}
	}
	if !found {
		return nil, trace, nil
	}
	// Maps merge across layers, so the effective value is read from the merged
	// tree rather than from the winning layer alone.
	merged, _ := lookupSnapshot(s.cfg.Snapshot(), path)
	if merged != nil {
		value = merged
	}
	return value, trace, nil
}
