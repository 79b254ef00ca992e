package state_test

import (
	"context"
	"errors"
	"testing"

	openadas "github.com/goliatone/go-openadas"
	"github.com/goliatone/go-openadas/pkg/activity"
	"github.com/goliatone/go-openadas/pkg/state"
)

var (
	siteScope = openadas.NewScope("site", openadas.ScopePrioritySite)
	userScope = openadas.NewScope("user", openadas.ScopePriorityUser,
		openadas.WithScopeMetadata(map[string]any{"user_id": "u42"}))
)

func siteConfig() openadas.Config {
	return openadas.Config{
		Wavelength:   openadas.WavelengthTable{"C": {5: {openadas.T(8, 7): 529.05}}},
		BeamStopping: openadas.BeamStoppingTable{"H": {"C": {6: "adf21/bms97#h/bms97#h_c6.dat"}}},
	}
}

func userConfig() openadas.Config {
	return openadas.Config{
		BeamStopping: openadas.BeamStoppingTable{"H": {"C": {6: "adf21/local/bms_c6.dat"}}},
	}
}

func seededStore(t *testing.T) *state.MemoryStore {
	t.Helper()
	store := state.NewMemoryStore()
	ctx := context.Background()
	if _, err := store.Save(ctx, state.Ref{Name: "jet", Scope: siteScope}, siteConfig(), state.Meta{SnapshotID: "site-1"}); err != nil {
		t.Fatalf("save site: %v", err)
	}
	if _, err := store.Save(ctx, state.Ref{Name: "jet", Scope: userScope}, userConfig(), state.Meta{SnapshotID: "user-7"}); err != nil {
		t.Fatalf("save user: %v", err)
	}
	return store
}

func TestResolveMergesStoredLayers(t *testing.T) {
	resolver := state.Resolver{Store: seededStore(t)}

	cs, err := resolver.Resolve(context.Background(), "jet", userScope, siteScope)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	cfg := cs.Config()
	file, ok := cfg.BeamStopping.Lookup("H", "C", 6)
	if !ok || file != "adf21/local/bms_c6.dat" {
		t.Fatalf("expected user override, got %q (found %v)", file, ok)
	}
	if _, ok := cfg.Wavelength.Lookup("C", 5, openadas.T(8, 7)); !ok {
		t.Fatalf("expected site wavelength to survive the merge")
	}

	_, trace, err := cs.Trace("bms", "H", "C", "6")
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	winner, ok := trace.Winner()
	if !ok || winner.Scope.Name != "user" || winner.SnapshotID != "user-7" {
		t.Fatalf("unexpected winner: %+v", winner)
	}
	if len(trace.Layers) != 2 || trace.Layers[1].SnapshotID != "site-1" {
		t.Fatalf("expected both layers in trace, got %+v", trace.Layers)
	}
}

func TestResolveSkipsMissingScopes(t *testing.T) {
	store := state.NewMemoryStore()
	if _, err := store.Save(context.Background(), state.Ref{Name: "jet", Scope: siteScope}, siteConfig(), state.Meta{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	resolver := state.Resolver{Store: store}

	cs, err := resolver.Resolve(context.Background(), "jet", userScope, siteScope)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if scopes := cs.Scopes(); len(scopes) != 1 || scopes[0].Name != "site" {
		t.Fatalf("expected only the site scope, got %+v", scopes)
	}

	_, err = resolver.Resolve(context.Background(), "other", siteScope)
	if !errors.Is(err, state.ErrNoLayers) {
		t.Fatalf("expected ErrNoLayers, got %v", err)
	}
}

func TestResolveValidatesArguments(t *testing.T) {
	if _, err := (state.Resolver{}).Resolve(context.Background(), "jet", siteScope); err == nil {
		t.Fatalf("expected error without store")
	}
	resolver := state.Resolver{Store: state.NewMemoryStore()}
	if _, err := resolver.Resolve(context.Background(), "", siteScope); err == nil {
		t.Fatalf("expected error without name")
	}
	if _, err := resolver.Resolve(context.Background(), "jet"); err == nil {
		t.Fatalf("expected error without scopes")
	}
}

func TestResolveWithDefaultsIsWeakest(t *testing.T) {
	resolver := state.Resolver{Store: seededStore(t)}
	defaults := openadas.Config{
		Wavelength:   openadas.WavelengthTable{"H": {0: {openadas.T(3, 2): 656.28}}},
		BeamStopping: openadas.BeamStoppingTable{"H": {"C": {6: "adf21/default.dat"}}},
	}

	cs, err := resolver.ResolveWithDefaults(context.Background(), "jet", defaults, userScope, siteScope)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	cfg := cs.Config()
	if file, _ := cfg.BeamStopping.Lookup("H", "C", 6); file != "adf21/local/bms_c6.dat" {
		t.Fatalf("defaults must not override stored layers, got %q", file)
	}
	if _, ok := cfg.Wavelength.Lookup("H", 0, openadas.T(3, 2)); !ok {
		t.Fatalf("expected defaults to fill gaps")
	}
	scopes := cs.Scopes()
	last := scopes[len(scopes)-1]
	if last.Name != "defaults" || last.Priority >= openadas.ScopePrioritySite {
		t.Fatalf("expected defaults as weakest scope, got %+v", last)
	}
}

func TestResolveWithDefaultsBelowLowScopes(t *testing.T) {
	store := state.NewMemoryStore()
	low := openadas.NewScope("site", 50)
	if _, err := store.Save(context.Background(), state.Ref{Name: "jet", Scope: low}, siteConfig(), state.Meta{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	resolver := state.Resolver{Store: store}

	cs, err := resolver.ResolveWithDefaults(context.Background(), "jet", openadas.Config{}, low)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	scopes := cs.Scopes()
	if scopes[len(scopes)-1].Priority != 49 {
		t.Fatalf("expected defaults priority 49, got %d", scopes[len(scopes)-1].Priority)
	}

	_, err = resolver.ResolveWithDefaults(context.Background(), "jet", openadas.Config{}, openadas.NewScope("defaults", 10))
	if err == nil {
		t.Fatalf("expected reserved scope name to be rejected")
	}
}

func TestMutateSavesAndEmits(t *testing.T) {
	store := seededStore(t)
	capture := &activity.CaptureHook{}
	resolver := state.Resolver{Store: store, Hooks: activity.Hooks{capture}}
	ref := state.Ref{Name: "jet", Scope: siteScope}

	cs, meta, err := resolver.Mutate(context.Background(), ref, state.Meta{SnapshotID: "site-2"}, func(cfg *openadas.Config) error {
		cfg.BeamStopping["H"]["Ne"] = map[int]openadas.FileRef{10: "adf21/bms97#h/bms97#h_ne10.dat"}
		return nil
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if meta.SnapshotID != "site-2" {
		t.Fatalf("expected new snapshot id, got %q", meta.SnapshotID)
	}
	if _, ok := cs.Config().BeamStopping.Lookup("H", "Ne", 10); !ok {
		t.Fatalf("expected mutation in returned store")
	}

	stored, _, ok, err := store.Load(context.Background(), ref)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if _, ok := stored.BeamStopping.Lookup("H", "Ne", 10); !ok {
		t.Fatalf("expected mutation persisted")
	}

	events := capture.Events()
	if len(events) != 1 || events[0].Verb != activity.VerbConfigSaved || events[0].ObjectID != "site-2" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestMutateRejectsInvalidConfiguration(t *testing.T) {
	store := seededStore(t)
	resolver := state.Resolver{Store: store}
	ref := state.Ref{Name: "jet", Scope: siteScope}

	_, _, err := resolver.Mutate(context.Background(), ref, state.Meta{}, func(cfg *openadas.Config) error {
		cfg.BeamStopping["H"]["C"][6] = ""
		return nil
	})
	if !errors.Is(err, openadas.ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
	stored, _, _, _ := store.Load(context.Background(), ref)
	if file, _ := stored.BeamStopping.Lookup("H", "C", 6); file != "adf21/bms97#h/bms97#h_c6.dat" {
		t.Fatalf("invalid mutation must not be saved, got %q", file)
	}
}

func TestMutateETagMismatch(t *testing.T) {
	store := state.NewMemoryStore()
	ref := state.Ref{Name: "jet", Scope: siteScope}
	if _, err := store.Save(context.Background(), ref, siteConfig(), state.Meta{ETag: "v2"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	resolver := state.Resolver{Store: store}

	_, loaded, err := resolver.Mutate(context.Background(), ref, state.Meta{ETag: "v1"}, func(*openadas.Config) error { return nil })
	if !errors.Is(err, state.ErrETagMismatch) {
		t.Fatalf("expected ErrETagMismatch, got %v", err)
	}
	if loaded.ETag != "v2" {
		t.Fatalf("expected stored meta returned, got %+v", loaded)
	}
}

func TestMutateStartsFromEmptyWhenMissing(t *testing.T) {
	resolver := state.Resolver{Store: state.NewMemoryStore()}
	ref := state.Ref{Name: "fresh", Scope: userScope}

	cs, _, err := resolver.Mutate(context.Background(), ref, state.Meta{}, func(cfg *openadas.Config) error {
		cfg.Wavelength = openadas.WavelengthTable{"Ne": {9: {openadas.T(11, 10): 524.9}}}
		return nil
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if _, ok := cs.Config().Wavelength.Lookup("Ne", 9, openadas.T(11, 10)); !ok {
		t.Fatalf("expected new entry")
	}
}

func TestMutatorErrorAborts(t *testing.T) {
	resolver := state.Resolver{Store: seededStore(t)}
	boom := errors.New("boom")
	_, _, err := resolver.Mutate(context.Background(), state.Ref{Name: "jet", Scope: siteScope}, state.Meta{}, func(*openadas.Config) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutator error, got %v", err)
	}
}

func TestMemoryStoreCopiesConfiguration(t *testing.T) {
	store := state.NewMemoryStore()
	ref := state.Ref{Name: "jet", Scope: siteScope}
	cfg := siteConfig()
	if _, err := store.Save(context.Background(), ref, cfg, state.Meta{Extra: map[string]string{"k": "v"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	cfg.BeamStopping["H"]["C"][6] = "changed"

	loaded, meta, ok, err := store.Load(context.Background(), ref)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if file, _ := loaded.BeamStopping.Lookup("H", "C", 6); file != "adf21/bms97#h/bms97#h_c6.dat" {
		t.Fatalf("store aliased the caller's config: %q", file)
	}
	meta.Extra["k"] = "changed"
	_, again, _, _ := store.Load(context.Background(), ref)
	if again.Extra["k"] != "v" {
		t.Fatalf("store aliased meta extra")
	}
}
