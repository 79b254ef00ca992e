// Package configfile reads OpenADAS configuration tables from TOML, YAML or
// JSON documents.
package configfile

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	openadas "github.com/goliatone/go-openadas"
)

// Format names a document syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for an unsupported extension or format name.
var ErrUnknownFormat = errors.New("configfile: unknown format")

// FormatFor infers the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.WithHint(errors.Wrapf(ErrUnknownFormat, "%s", path),
		"use a .toml, .yaml, .yml or .json file")
}

// Load reads the configuration file at path.
func Load(path string) (openadas.Config, error) {
	format, err := FormatFor(path)
	if err != nil {
		return openadas.Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return openadas.Config{}, errors.Wrapf(err, "configfile: read %s", path)
	}
	return decode(path, format, data)
}

// Read decodes a document of the given format from r.
func Read(r io.Reader, format Format) (openadas.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return openadas.Config{}, errors.Wrap(err, "configfile: read")
	}
	return decode(string(format), format, data)
}

// LoadStack reads each file as one scope of a layered configuration. The
// first file is the weakest layer; see LoadLayers for scope naming.
func LoadStack(paths []string, opts ...openadas.Option) (*openadas.ConfigStore, error) {
	if len(paths) == 0 {
		return nil, openadas.ErrEmptyStack
	}
	layers, err := LoadLayers(paths, openadas.ScopePriorityDefaults)
	if err != nil {
		return nil, err
	}
	stack, err := openadas.NewStack(layers...)
	if err != nil {
		return nil, err
	}
	return stack.Merge(opts...)
}

// LoadLayers reads each file into a layer. Scopes are named after the file
// base name and given priorities base, base+100, ... in path order, so later
// files win.
func LoadLayers(paths []string, base int) ([]openadas.Layer, error) {
	layers := make([]openadas.Layer, 0, len(paths))
	for i, path := range paths {
		cfg, err := Load(path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		scope := openadas.NewScope(name, base+i*100,
			openadas.WithScopeMetadata(map[string]any{"file": path}))
		layers = append(layers, openadas.NewLayer(scope, cfg, openadas.WithSnapshotID(path)))
	}
	return layers, nil
}

func decode(source string, format Format, data []byte) (openadas.Config, error) {
	document := map[string]any{}
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.Decode(string(data), &document)
	case FormatYAML:
		err = yaml.Unmarshal(data, &document)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&document)
	default:
		return openadas.Config{}, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	if err != nil {
		return openadas.Config{}, errors.Wrapf(err, "configfile: parse %s", source)
	}
	return openadas.DecodeConfig(source, document)
}
