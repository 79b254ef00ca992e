// Package adf connects the resolver to OpenADAS data files. Reader opens
// files from a corpus source and hands the stream to format decoders.
package adf

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	openadas "github.com/goliatone/go-openadas"
	"github.com/goliatone/go-openadas/tabulated"
)

// ErrDecoderMissing is returned when no decoder is registered for a format.
var ErrDecoderMissing = errors.New("adf: no decoder for format")

// Source opens data files by slash separated name. Corpus stores satisfy it.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Decoders parse one file format each. A nil decoder makes the matching read
// fail with ErrDecoderMissing.
type Decoders struct {
	// ChargeExchange decodes the rate of one transition from an ADF12 file.
	ChargeExchange func(r io.Reader, transition openadas.Transition) (tabulated.Curve, error)
	// Block decodes one block of an ADF15 file.
	Block func(r io.Reader, block int) (tabulated.Surface, error)
	// BeamStopping decodes an ADF21 file.
	BeamStopping func(r io.Reader) (tabulated.Surface, error)
	// BeamPopulation decodes an ADF22 file.
	BeamPopulation func(r io.Reader) (tabulated.Surface, error)
}

// Reader implements openadas.FormatReader over a Source.
type Reader struct {
	source   Source
	root     string
	decoders Decoders
}

var _ openadas.FormatReader = (*Reader)(nil)

// NewReader returns a reader that strips root from the paths the resolver
// passes before opening them from source. Pass the resolver's data root.
func NewReader(source Source, root string, decoders Decoders) *Reader {
	return &Reader{source: source, root: root, decoders: decoders}
}

// Name maps a resolver path to a source name.
func (r *Reader) Name(path string) (string, error) {
	if r.root == "" {
		return filepath.ToSlash(path), nil
	}
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return "", errors.Wrapf(err, "adf: %s is not below %s", path, r.root)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Newf("adf: %s is not below %s", path, r.root)
	}
	return filepath.ToSlash(rel), nil
}

// ReadChargeExchange decodes the curve for transition from the ADF12 file at
// path.
func (r *Reader) ReadChargeExchange(ctx context.Context, path string, transition openadas.Transition) (tabulated.Curve, error) {
	if r.decoders.ChargeExchange == nil {
		return tabulated.Curve{}, errors.Wrap(ErrDecoderMissing, "adf12")
	}
	return decode(ctx, r, path, func(rd io.Reader) (tabulated.Curve, error) {
		return r.decoders.ChargeExchange(rd, transition)
	})
}

// ReadBlock decodes one block of the ADF15 file at path.
func (r *Reader) ReadBlock(ctx context.Context, path string, block int) (tabulated.Surface, error) {
	if r.decoders.Block == nil {
		return tabulated.Surface{}, errors.Wrap(ErrDecoderMissing, "adf15")
	}
	return decode(ctx, r, path, func(rd io.Reader) (tabulated.Surface, error) {
		return r.decoders.Block(rd, block)
	})
}

// ReadBeamStopping decodes the ADF21 surface at path.
func (r *Reader) ReadBeamStopping(ctx context.Context, path string) (tabulated.Surface, error) {
	if r.decoders.BeamStopping == nil {
		return tabulated.Surface{}, errors.Wrap(ErrDecoderMissing, "adf21")
	}
	return decode(ctx, r, path, r.decoders.BeamStopping)
}

// ReadBeamPopulation decodes the ADF22 surface at path. Beam emission files
// share the format and are read through this method.
func (r *Reader) ReadBeamPopulation(ctx context.Context, path string) (tabulated.Surface, error) {
	if r.decoders.BeamPopulation == nil {
		return tabulated.Surface{}, errors.Wrap(ErrDecoderMissing, "adf22")
	}
	return decode(ctx, r, path, r.decoders.BeamPopulation)
}

func decode[T any](ctx context.Context, r *Reader, path string, fn func(io.Reader) (T, error)) (T, error) {
	var zero T
	name, err := r.Name(path)
	if err != nil {
		return zero, err
	}
	rc, err := r.source.Open(ctx, name)
	if err != nil {
		return zero, err
	}
	defer rc.Close()
	out, err := fn(rc)
	if err != nil {
		return zero, errors.Wrapf(err, "adf: decode %s", name)
	}
	return out, nil
}
