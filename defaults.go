package openadas

import (
	_ "embed"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

//go:embed config/default.yaml
var defaultConfigYAML []byte

// DefaultConfig returns the configuration shipped with the package. Each call
// decodes a fresh copy.
func DefaultConfig() (Config, error) {
	var document map[string]any
	if err := yaml.Unmarshal(defaultConfigYAML, &document); err != nil {
		return Config{}, errors.Wrap(err, "openadas: parse default configuration")
	}
	return DecodeConfig("default.yaml", document)
}
