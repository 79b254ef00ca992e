package openadas

import (
	"context"
	"time"

	"github.com/goliatone/go-openadas/tabulated"
)

// FormatReader loads tabulated data from OpenADAS files. Paths are absolute,
// the data root joined with the configured file reference. Implementations
// decide whether concurrent calls are safe.
type FormatReader interface {
	// ReadChargeExchange reads the rate for one transition from an ADF12 file.
	ReadChargeExchange(ctx context.Context, path string, transition Transition) (tabulated.Curve, error)
	// ReadBlock reads one block of an ADF15 photon emissivity file.
	ReadBlock(ctx context.Context, path string, block int) (tabulated.Surface, error)
	// ReadBeamStopping reads an ADF21 file.
	ReadBeamStopping(ctx context.Context, path string) (tabulated.Surface, error)
	// ReadBeamPopulation reads an ADF22 file. Beam population and beam
	// emission data share the format.
	ReadBeamPopulation(ctx context.Context, path string) (tabulated.Surface, error)
}

type missingReader struct{}

func (missingReader) ReadChargeExchange(context.Context, string, Transition) (tabulated.Curve, error) {
	return tabulated.Curve{}, ErrNoFormatReader
}

func (missingReader) ReadBlock(context.Context, string, int) (tabulated.Surface, error) {
	return tabulated.Surface{}, ErrNoFormatReader
}

func (missingReader) ReadBeamStopping(context.Context, string) (tabulated.Surface, error) {
	return tabulated.Surface{}, ErrNoFormatReader
}

func (missingReader) ReadBeamPopulation(context.Context, string) (tabulated.Surface, error) {
	return tabulated.Surface{}, ErrNoFormatReader
}

// LookupOutcome classifies a configuration lookup.
type LookupOutcome string

const (
	LookupHit  LookupOutcome = "hit"
	LookupMiss LookupOutcome = "miss"
)

// Observer receives resolution measurements. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveLookup(quantity Quantity, outcome LookupOutcome)
	// ObserveFallback records a wavelength served by the parent element of
	// an isotope. quantity is the operation that asked for the wavelength.
	ObserveFallback(quantity Quantity)
	ObserveRead(quantity Quantity, duration time.Duration, err error)
}

type noopObserver struct{}

func (noopObserver) ObserveLookup(Quantity, LookupOutcome)      {}
func (noopObserver) ObserveFallback(Quantity)                   {}
func (noopObserver) ObserveRead(Quantity, time.Duration, error) {}
