// Package state persists configuration layers and merges them back into a
// resolver's configuration store.
//
// A Store loads and saves one openadas.Config per Ref. Resolver loads the
// layers for a list of scopes and merges them with openadas.NewStack, so the
// resulting ConfigStore reports which stored layer supplied each entry:
//
//	Store -> Resolver -> openadas.NewStack(...).Merge(...) -> *openadas.ConfigStore
//
// Meta.SnapshotID becomes the layer's snapshot ID and is visible through
// ConfigStore.Trace. Ref.Identifier gives the canonical storage key; the
// memory and SQL stores both use it.
package state
