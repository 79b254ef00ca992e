// Package hydrate turns loosely typed configuration documents into typed
// structs through JSON, with hooks before and after decoding.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-openadas/layering"
)

// Context identifies the document being decoded.
type Context struct {
	Source string
	Scope  string
}

// PreHook mutates or normalises the payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook adjusts or validates the decoded value.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces the default JSON decoding when provided.
type CustomDecoder[T any] func(Context, map[string]any) (T, error)

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts documents into T.
type Decoder[T any] struct {
	preHooks     []PreHook
	postHooks    []PostHook[T]
	configureDec []func(*json.Decoder)
	custom       CustomDecoder[T]
}

// WithPreHook applies hook prior to decoding. Hooks run in registration order.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithUseNumber enables json.Decoder.UseNumber during decoding.
func WithUseNumber[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.UseNumber()
		})
	}
}

// WithDisallowUnknownFields rejects documents with keys T does not declare.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.DisallowUnknownFields()
		})
	}
}

// WithCustomDecoder replaces the default JSON decoding path.
func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.custom = decoder
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into T. The payload is deep copied before any hook
// runs, so hooks may mutate it freely. Payloads may contain non-string map
// keys (YAML integer keys); a pre-hook such as StringKeys must normalise them
// before the default JSON path runs.
func (d *Decoder[T]) Decode(ctx Context, payload map[string]any) (T, error) {
	var zero T

	if payload == nil {
		return zero, errors.Newf("hydrate: payload is nil for %s", ctx.label())
	}

	current := layering.Clone(payload)
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, errors.Wrapf(err, "hydrate: pre-hook for %s", ctx.label())
		}
		if next != nil {
			current = next
		}
	}

	var result T
	if d.custom != nil {
		decoded, err := d.custom(ctx, current)
		if err != nil {
			return zero, errors.Wrapf(err, "hydrate: custom decoder for %s", ctx.label())
		}
		result = decoded
	} else {
		buffer, err := json.Marshal(current)
		if err != nil {
			return zero, errors.Wrapf(err, "hydrate: marshal %s", ctx.label())
		}
		decoder := json.NewDecoder(bytes.NewReader(buffer))
		for _, configure := range d.configureDec {
			if configure != nil {
				configure(decoder)
			}
		}
		if err := decoder.Decode(&result); err != nil {
			return zero, errors.Wrapf(err, "hydrate: decode %s", ctx.label())
		}
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, errors.Wrapf(err, "hydrate: post-hook for %s", ctx.label())
		}
	}

	return result, nil
}

// StringKeys is a PreHook that rewrites every nested map to map[string]any,
// formatting non-string keys with fmt.Sprint.
func StringKeys(_ Context, payload map[string]any) (map[string]any, error) {
	out, ok := stringKeys(payload).(map[string]any)
	if !ok {
		return nil, errors.New("hydrate: payload is not a mapping")
	}
	return out, nil
}

func stringKeys(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = stringKeys(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = stringKeys(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = stringKeys(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = stringKeys(item)
		}
		return out
	default:
		return value
	}
}

func (c Context) label() string {
	if c.Scope == "" {
		return fmt.Sprintf("%q", c.Source)
	}
	return fmt.Sprintf("%q (scope %s)", c.Source, c.Scope)
}
