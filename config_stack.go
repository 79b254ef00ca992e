package openadas

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-openadas/layering"
)

const (
	// Recommended priorities for configuration layers. Higher numbers win.
	ScopePriorityDefaults = 100
	ScopePrioritySite     = 200
	ScopePriorityUser     = 300
)

// Scope models a named precedence bucket for configuration layers (shipped
// defaults, a site-wide table, a user override). Higher priority values
// represent stronger layers.
type Scope struct {
	Name     string         `json:"name"`
	Label    string         `json:"label,omitempty"`
	Priority int            `json:"priority"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ScopeOption configures metadata on Scope creation.
type ScopeOption func(*scopeConfig)

type scopeConfig struct {
	label    string
	metadata map[string]any
}

// WithScopeLabel sets a human-friendly label on the scope.
func WithScopeLabel(label string) ScopeOption {
	return func(cfg *scopeConfig) {
		cfg.label = label
	}
}

// WithScopeMetadata attaches metadata to the scope. The map is copied.
func WithScopeMetadata(metadata map[string]any) ScopeOption {
	return func(cfg *scopeConfig) {
		if len(metadata) == 0 {
			return
		}
		cfg.metadata = copyMetadata(metadata)
	}
}

// NewScope builds a Scope. Validation is deferred to NewStack.
func NewScope(name string, priority int, opts ...ScopeOption) Scope {
	cfg := scopeConfig{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return Scope{
		Name:     name,
		Label:    cfg.label,
		Priority: priority,
		Metadata: copyMetadata(cfg.metadata),
	}
}

func (s Scope) clone() Scope {
	return Scope{
		Name:     s.Name,
		Label:    s.Label,
		Priority: s.Priority,
		Metadata: copyMetadata(s.Metadata),
	}
}

func (s Scope) isZero() bool {
	return s.Name == "" && s.Label == "" && s.Priority == 0 && len(s.Metadata) == 0
}

// Layer pairs a scope with the configuration captured for it.
type Layer struct {
	Scope      Scope
	Config     Config
	SnapshotID string
}

// LayerOption configures optional layer metadata.
type LayerOption func(*Layer)

// WithSnapshotID sets the snapshot identifier reported by traces.
func WithSnapshotID(id string) LayerOption {
	return func(layer *Layer) {
		layer.SnapshotID = id
	}
}

// NewLayer constructs a Layer holding deep copies of scope and config.
func NewLayer(scope Scope, cfg Config, opts ...LayerOption) Layer {
	layer := Layer{
		Scope:  scope.clone(),
		Config: cfg.Clone(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&layer)
	}
	return layer
}

var (
	// ErrScopeNameRequired indicates a missing scope name.
	ErrScopeNameRequired = errors.New("openadas: scope name must be provided")
	// ErrDuplicateScopeName indicates two layers share a scope name.
	ErrDuplicateScopeName = errors.New("openadas: scope names must be unique")
	// ErrPriorityOrder indicates duplicate scope priorities.
	ErrPriorityOrder = errors.New("openadas: scope priorities must be strictly ordered")
	// ErrEmptyStack is returned when merging a stack without layers.
	ErrEmptyStack = errors.New("openadas: stack must include at least one layer")
)

// Stack is an immutable set of configuration layers ordered from strongest to
// weakest.
type Stack struct {
	layers []Layer
}

// NewStack validates the layers and sorts them strongest first.
func NewStack(layers ...Layer) (*Stack, error) {
	if len(layers) == 0 {
		return &Stack{}, nil
	}

	seenNames := make(map[string]struct{}, len(layers))
	copied := make([]Layer, len(layers))
	for i, layer := range layers {
		layer := cloneLayer(layer)
		if layer.Scope.Name == "" {
			return nil, ErrScopeNameRequired
		}
		if _, ok := seenNames[layer.Scope.Name]; ok {
			return nil, errors.Wrap(ErrDuplicateScopeName, layer.Scope.Name)
		}
		seenNames[layer.Scope.Name] = struct{}{}
		copied[i] = layer
	}

	sort.Slice(copied, func(i, j int) bool {
		if copied[i].Scope.Priority == copied[j].Scope.Priority {
			return copied[i].Scope.Name < copied[j].Scope.Name
		}
		return copied[i].Scope.Priority > copied[j].Scope.Priority
	})

	for i := 1; i < len(copied); i++ {
		if copied[i-1].Scope.Priority <= copied[i].Scope.Priority {
			return nil, errors.Wrapf(ErrPriorityOrder, "%s and %s share priority %d",
				copied[i-1].Scope.Name, copied[i].Scope.Name, copied[i].Scope.Priority)
		}
	}

	return &Stack{layers: copied}, nil
}

// Layers returns a deep copy of the layers, strongest first.
func (s *Stack) Layers() []Layer {
	if s == nil || len(s.layers) == 0 {
		return nil
	}
	out := make([]Layer, len(s.layers))
	for i := range s.layers {
		out[i] = cloneLayer(s.layers[i])
	}
	return out
}

// Len returns the number of layers in the stack.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Merge folds the layers into a single ConfigStore. Tables merge key by key
// with the strongest layer winning; a charge exchange file list is replaced
// whole rather than concatenated. The store keeps each layer for Trace.
func (s *Stack) Merge(opts ...Option) (*ConfigStore, error) {
	if s == nil || len(s.layers) == 0 {
		return nil, ErrEmptyStack
	}
	configs := make([]Config, len(s.layers))
	meta := make([]layerSnapshot, len(s.layers))
	for i := range s.layers {
		configs[i] = s.layers[i].Config
		meta[i] = layerSnapshot{
			Scope:      s.layers[i].Scope.clone(),
			Snapshot:   s.layers[i].Config.Snapshot(),
			SnapshotID: s.layers[i].SnapshotID,
		}
	}
	store := NewConfigStore(layering.MergeLayers(configs...), opts...)
	store.layers = meta
	return store, nil
}

// DefaultsSiteUser merges the canonical three-layer stack. Empty layers are
// allowed and contribute nothing.
func DefaultsSiteUser(defaults, site, user Config, opts ...Option) (*ConfigStore, error) {
	stack, err := NewStack(
		NewLayer(NewScope("user", ScopePriorityUser, WithScopeLabel("User")), user),
		NewLayer(NewScope("site", ScopePrioritySite, WithScopeLabel("Site")), site),
		NewLayer(NewScope("defaults", ScopePriorityDefaults, WithScopeLabel("Defaults")), defaults),
	)
	if err != nil {
		return nil, err
	}
	return stack.Merge(opts...)
}

func cloneLayer(layer Layer) Layer {
	return Layer{
		Scope:      layer.Scope.clone(),
		Config:     layer.Config.Clone(),
		SnapshotID: layer.SnapshotID,
	}
}

type layerSnapshot struct {
	Scope      Scope
	Snapshot   map[string]any
	SnapshotID string
}

func copyMetadata(origin map[string]any) map[string]any {
	if len(origin) == 0 {
		return nil
	}
	out := make(map[string]any, len(origin))
	for key, value := range origin {
		out[key] = value
	}
	return out
}
