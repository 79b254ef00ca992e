package adf

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"

	openadas "github.com/goliatone/go-openadas"
	"github.com/goliatone/go-openadas/tabulated"
)

// ErrEntryMissing is returned by the JSON decoders when a file has no table
// for the requested transition or block.
var ErrEntryMissing = errors.New("adf: entry not in file")

// JSONDecoders read tables that were converted ahead of time to JSON:
//
//	adf12: {"8-7": Curve, ...}
//	adf15: {"1": Surface, ...}
//	adf21, adf22: Surface
func JSONDecoders() Decoders {
	return Decoders{
		ChargeExchange: func(r io.Reader, transition openadas.Transition) (tabulated.Curve, error) {
			var doc map[string]tabulated.Curve
			if err := json.NewDecoder(r).Decode(&doc); err != nil {
				return tabulated.Curve{}, err
			}
			curve, ok := doc[transition.String()]
			if !ok {
				return tabulated.Curve{}, errors.Wrapf(ErrEntryMissing, "transition %s", transition)
			}
			return curve, nil
		},
		Block: func(r io.Reader, block int) (tabulated.Surface, error) {
			var doc map[string]tabulated.Surface
			if err := json.NewDecoder(r).Decode(&doc); err != nil {
				return tabulated.Surface{}, err
			}
			surface, ok := doc[strconv.Itoa(block)]
			if !ok {
				return tabulated.Surface{}, errors.Wrapf(ErrEntryMissing, "block %d", block)
			}
			return surface, nil
		},
		BeamStopping:   decodeSurface,
		BeamPopulation: decodeSurface,
	}
}

func decodeSurface(r io.Reader) (tabulated.Surface, error) {
	var surface tabulated.Surface
	if err := json.NewDecoder(r).Decode(&surface); err != nil {
		return tabulated.Surface{}, err
	}
	return surface, nil
}
