package openadas

import (
	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-openadas/internal/hydrate"
)

// ErrUnknownCategory is returned when a configuration document has a top-level
// key that is not a known quantity.
var ErrUnknownCategory = errors.New("openadas: unknown configuration category")

var configDecoder = hydrate.NewDecoder[Config](
	hydrate.WithPreHook[Config](hydrate.StringKeys),
	hydrate.WithPreHook[Config](rejectUnknownCategories),
	hydrate.WithDisallowUnknownFields[Config](),
)

// DecodeConfig converts a loosely typed document (as produced by a JSON, YAML
// or TOML parser) into a Config. Stage and metastable keys may be integers or
// numeric strings; transition keys use the "8-7" or "(8, 7)" forms.
func DecodeConfig(source string, document map[string]any) (Config, error) {
	return configDecoder.Decode(hydrate.Context{Source: source}, document)
}

func rejectUnknownCategories(ctx hydrate.Context, payload map[string]any) (map[string]any, error) {
	known := make(map[string]struct{}, len(Quantities()))
	for _, q := range Quantities() {
		known[string(q)] = struct{}{}
	}
	for key := range payload {
		if _, ok := known[key]; !ok {
			return nil, errors.WithHintf(errors.Wrapf(ErrUnknownCategory, "%q in %s", key, ctx.Source),
				"valid categories are %v", Quantities())
		}
	}
	return payload, nil
}
