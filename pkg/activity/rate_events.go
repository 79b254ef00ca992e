package activity

import (
	"strings"
	"time"
)

// Verbs and object type of resolver events.
const (
	VerbRateResolved    = "rate.resolved"
	VerbRateUnavailable = "rate.unavailable"
	VerbConfigSaved     = "config.saved"

	ObjectTypeRate   = "openadas.rate"
	ObjectTypeConfig = "openadas.config"
)

// RateEventInput describes one resolver query.
type RateEventInput struct {
	QueryID  string
	Quantity string
	// Path is the configuration key that was consulted, e.g. "bms.H.C.6".
	Path    string
	Species []string
	Stage   int
	Files   []string
	Reason  string

	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildRateResolvedEvent describes a query that produced rate objects.
func BuildRateResolvedEvent(input RateEventInput) Event {
	return buildRateEvent(VerbRateResolved, input)
}

// BuildRateUnavailableEvent describes a query with no configuration entry.
func BuildRateUnavailableEvent(input RateEventInput) Event {
	return buildRateEvent(VerbRateUnavailable, input)
}

func buildRateEvent(verb string, input RateEventInput) Event {
	metadata := ensureMetadata(cloneMap(input.Metadata))
	metadata["quantity"] = input.Quantity
	metadata["stage"] = input.Stage
	if input.Path != "" {
		metadata["path"] = input.Path
	}
	if len(input.Species) > 0 {
		metadata["species"] = append([]string(nil), input.Species...)
	}
	if len(input.Files) > 0 {
		metadata["files"] = append([]string(nil), input.Files...)
	}
	if input.Reason != "" {
		metadata["reason"] = input.Reason
	}

	objectID := strings.TrimSpace(input.QueryID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Path)
	}
	if objectID == "" {
		objectID = ObjectTypeRate
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeRate,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// ConfigEventInput describes a configuration document written to a store.
type ConfigEventInput struct {
	Scope      string
	Priority   int
	SnapshotID string
	Entries    int

	ActorID    string
	Channel    string
	OccurredAt time.Time
}

// BuildConfigSavedEvent describes a saved configuration layer.
func BuildConfigSavedEvent(input ConfigEventInput) Event {
	metadata := map[string]any{
		"scope":    input.Scope,
		"priority": input.Priority,
		"entries":  input.Entries,
	}
	objectID := strings.TrimSpace(input.SnapshotID)
	if objectID != "" {
		metadata["snapshot_id"] = objectID
	} else {
		objectID = strings.TrimSpace(input.Scope)
	}
	return Event{
		Verb:       VerbConfigSaved,
		ActorID:    strings.TrimSpace(input.ActorID),
		ObjectType: ObjectTypeConfig,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
