package state

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	openadas "github.com/goliatone/go-openadas"
	"github.com/goliatone/go-openadas/pkg/activity"
)

var (
	// ErrETagMismatch is returned by Mutate when the caller's ETag is stale.
	ErrETagMismatch = errors.New("state: etag mismatch")
	// ErrNoLayers is returned by Resolve when none of the scopes is stored.
	ErrNoLayers = errors.New("state: no layers found")
)

// Ref identifies one stored configuration layer.
type Ref struct {
	Name  string
	Scope openadas.Scope
}

// Meta is storage-owned metadata used for provenance and optimistic
// concurrency.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads and saves one configuration layer per Ref.
type Store interface {
	Load(ctx context.Context, ref Ref) (cfg openadas.Config, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, cfg openadas.Config, meta Meta) (Meta, error)
}

// Mutator edits a configuration in place.
type Mutator func(*openadas.Config) error

// Resolver merges stored layers into configuration stores.
type Resolver struct {
	Store Store
	// Options are passed to Stack.Merge, e.g. an evaluator for the result.
	Options []openadas.Option
	// Hooks receive a config.saved event after each successful Mutate.
	Hooks activity.Hooks
}

// Identifier returns the storage key for r:
//
//	defaults/<name>, site/<name>, user/<user_id>/<name>
//
// The user scope reads user_id from the scope metadata.
func (r Ref) Identifier() (string, error) {
	if r.Name == "" {
		return "", errors.New("state: name is required")
	}
	switch r.Scope.Name {
	case "defaults", "site":
		return fmt.Sprintf("%s/%s", r.Scope.Name, r.Name), nil
	case "user":
		id, _ := r.Scope.Metadata["user_id"].(string)
		if id == "" {
			return "", errors.Newf("state: missing metadata key %q for scope %q", "user_id", r.Scope.Name)
		}
		return fmt.Sprintf("user/%s/%s", id, r.Name), nil
	default:
		return "", errors.Newf("state: unsupported scope name %q", r.Scope.Name)
	}
}

// Resolve loads name for every scope and merges the layers that exist.
func (r Resolver) Resolve(ctx context.Context, name string, scopes ...openadas.Scope) (*openadas.ConfigStore, error) {
	if err := r.check(name); err != nil {
		return nil, err
	}
	if len(scopes) == 0 {
		return nil, errors.New("state: at least one scope is required")
	}
	layers, err := r.load(ctx, name, scopes)
	if err != nil {
		return nil, err
	}
	if len(layers) == 0 {
		return nil, errors.Wrapf(ErrNoLayers, "for %q", name)
	}
	return r.merge(layers)
}

// ResolveWithDefaults is Resolve with defaults as the weakest layer, under a
// scope named "defaults" whose priority is below every given scope.
func (r Resolver) ResolveWithDefaults(ctx context.Context, name string, defaults openadas.Config, scopes ...openadas.Scope) (*openadas.ConfigStore, error) {
	if err := r.check(name); err != nil {
		return nil, err
	}

	taken := make(map[int]struct{}, len(scopes))
	priority := openadas.ScopePriorityDefaults
	for _, scope := range scopes {
		if scope.Name == "defaults" {
			return nil, errors.Newf("state: scope name %q is reserved", "defaults")
		}
		taken[scope.Priority] = struct{}{}
		if scope.Priority <= priority {
			priority = scope.Priority - 1
		}
	}
	for {
		if _, ok := taken[priority]; !ok {
			break
		}
		priority--
	}

	layers, err := r.load(ctx, name, scopes)
	if err != nil {
		return nil, err
	}
	scope := openadas.NewScope("defaults", priority, openadas.WithScopeLabel("Defaults"))
	layers = append(layers, openadas.NewLayer(scope, defaults))
	return r.merge(layers)
}

// Mutate loads ref, applies fn, validates the result and saves it. A
// non-empty meta.ETag must match the stored one. The returned store holds the
// saved layer alone.
func (r Resolver) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator) (*openadas.ConfigStore, Meta, error) {
	if err := r.check(ref.Name); err != nil {
		return nil, Meta{}, err
	}
	if ref.Scope.Name == "" {
		return nil, Meta{}, errors.New("state: scope name is required")
	}
	if fn == nil {
		return nil, Meta{}, errors.New("state: mutator is required")
	}

	cfg, loaded, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, errors.Wrapf(err, "state: load %q for scope %q", ref.Name, ref.Scope.Name)
	}
	if !ok {
		cfg, loaded = openadas.Config{}, Meta{}
	}
	if meta.ETag != "" && loaded.ETag != "" && meta.ETag != loaded.ETag {
		return nil, loaded, errors.Wrapf(ErrETagMismatch, "expected %q, got %q", meta.ETag, loaded.ETag)
	}

	if err := fn(&cfg); err != nil {
		return nil, loaded, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, loaded, err
	}

	saved, err := r.Store.Save(ctx, ref, cfg, mergeMeta(loaded, meta))
	if err != nil {
		return nil, loaded, errors.Wrapf(err, "state: save %q for scope %q", ref.Name, ref.Scope.Name)
	}

	store, err := r.merge([]openadas.Layer{openadas.NewLayer(ref.Scope, cfg, openadas.WithSnapshotID(saved.SnapshotID))})
	if err != nil {
		return nil, loaded, err
	}
	r.notify(ctx, ref, saved, len(cfg.Entries()))
	return store, saved, nil
}

func (r Resolver) check(name string) error {
	if r.Store == nil {
		return errors.New("state: store is required")
	}
	if name == "" {
		return errors.New("state: name is required")
	}
	return nil
}

func (r Resolver) load(ctx context.Context, name string, scopes []openadas.Scope) ([]openadas.Layer, error) {
	layers := make([]openadas.Layer, 0, len(scopes)+1)
	for _, scope := range scopes {
		cfg, meta, ok, err := r.Store.Load(ctx, Ref{Name: name, Scope: scope})
		if err != nil {
			return nil, errors.Wrapf(err, "state: load %q for scope %q", name, scope.Name)
		}
		if !ok {
			continue
		}
		layers = append(layers, openadas.NewLayer(scope, cfg, openadas.WithSnapshotID(meta.SnapshotID)))
	}
	return layers, nil
}

func (r Resolver) merge(layers []openadas.Layer) (*openadas.ConfigStore, error) {
	stack, err := openadas.NewStack(layers...)
	if err != nil {
		return nil, errors.Wrap(err, "state: stack")
	}
	return stack.Merge(r.Options...)
}

func (r Resolver) notify(ctx context.Context, ref Ref, meta Meta, entries int) {
	if !r.Hooks.Enabled() {
		return
	}
	// Hook failures do not undo a completed save.
	_ = r.Hooks.Notify(ctx, activity.BuildConfigSavedEvent(activity.ConfigEventInput{
		Scope:      ref.Scope.Name,
		Priority:   ref.Scope.Priority,
		SnapshotID: meta.SnapshotID,
		Entries:    entries,
		Channel:    activity.DefaultChannel,
		OccurredAt: meta.UpdatedAt,
	}))
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
