// Package rates provides the rate objects returned by the resolver. Each rate
// wraps tabulated data loaded from one file together with the extrapolation
// policy that applied when it was built. Rates are plain values: they hold no
// reference to the resolver or the data corpus.
package rates

import (
	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-openadas/tabulated"
)

// BeamCXRate is an effective charge exchange emission rate for one donor
// metastable level, tabulated against beam energy.
type BeamCXRate struct {
	DonorMetastable int
	Wavelength      float64
	Data            tabulated.Curve
	Extrapolate     bool
}

// NewBeamCXRate validates data and builds the rate.
func NewBeamCXRate(donorMetastable int, wavelength float64, data tabulated.Curve, extrapolate bool) (*BeamCXRate, error) {
	if err := data.Validate(); err != nil {
		return nil, errors.Wrapf(err, "rates: beam cx (metastable %d)", donorMetastable)
	}
	return &BeamCXRate{
		DonorMetastable: donorMetastable,
		Wavelength:      wavelength,
		Data:            data,
		Extrapolate:     extrapolate,
	}, nil
}

// Evaluate returns the rate at the given beam energy.
func (r *BeamCXRate) Evaluate(energy float64) (float64, error) {
	return r.Data.Evaluate(energy, r.Extrapolate)
}

// BeamStoppingRate is a beam stopping coefficient tabulated against beam
// energy and plasma density.
type BeamStoppingRate struct {
	Data        tabulated.Surface
	Extrapolate bool
}

// NewBeamStoppingRate validates data and builds the rate.
func NewBeamStoppingRate(data tabulated.Surface, extrapolate bool) (*BeamStoppingRate, error) {
	if err := data.Validate(); err != nil {
		return nil, errors.Wrap(err, "rates: beam stopping")
	}
	return &BeamStoppingRate{Data: data, Extrapolate: extrapolate}, nil
}

// Evaluate returns the rate at (energy, density).
func (r *BeamStoppingRate) Evaluate(energy, density float64) (float64, error) {
	return r.Data.Evaluate(energy, density, r.Extrapolate)
}

// BeamPopulationRate is the relative population of one beam metastable level.
type BeamPopulationRate struct {
	Data        tabulated.Surface
	Extrapolate bool
}

// NewBeamPopulationRate validates data and builds the rate.
func NewBeamPopulationRate(data tabulated.Surface, extrapolate bool) (*BeamPopulationRate, error) {
	if err := data.Validate(); err != nil {
		return nil, errors.Wrap(err, "rates: beam population")
	}
	return &BeamPopulationRate{Data: data, Extrapolate: extrapolate}, nil
}

// Evaluate returns the rate at (energy, density).
func (r *BeamPopulationRate) Evaluate(energy, density float64) (float64, error) {
	return r.Data.Evaluate(energy, density, r.Extrapolate)
}

// BeamEmissionRate is a beam emission coefficient for one line.
type BeamEmissionRate struct {
	Wavelength  float64
	Data        tabulated.Surface
	Extrapolate bool
}

// NewBeamEmissionRate validates data and builds the rate.
func NewBeamEmissionRate(wavelength float64, data tabulated.Surface, extrapolate bool) (*BeamEmissionRate, error) {
	if err := data.Validate(); err != nil {
		return nil, errors.Wrap(err, "rates: beam emission")
	}
	return &BeamEmissionRate{Wavelength: wavelength, Data: data, Extrapolate: extrapolate}, nil
}

// Evaluate returns the rate at (energy, density).
func (r *BeamEmissionRate) Evaluate(energy, density float64) (float64, error) {
	return r.Data.Evaluate(energy, density, r.Extrapolate)
}

// ImpactExcitationRate is an electron impact excitation photon emissivity
// coefficient tabulated against electron density and temperature.
type ImpactExcitationRate struct {
	Wavelength  float64
	Data        tabulated.Surface
	Extrapolate bool
}

// NewImpactExcitationRate validates data and builds the rate.
func NewImpactExcitationRate(wavelength float64, data tabulated.Surface, extrapolate bool) (*ImpactExcitationRate, error) {
	if err := data.Validate(); err != nil {
		return nil, errors.Wrap(err, "rates: impact excitation")
	}
	return &ImpactExcitationRate{Wavelength: wavelength, Data: data, Extrapolate: extrapolate}, nil
}

// Evaluate returns the rate at (density, temperature).
func (r *ImpactExcitationRate) Evaluate(density, temperature float64) (float64, error) {
	return r.Data.Evaluate(density, temperature, r.Extrapolate)
}

// RecombinationRate is a recombination photon emissivity coefficient
// tabulated against electron density and temperature.
type RecombinationRate struct {
	Wavelength  float64
	Data        tabulated.Surface
	Extrapolate bool
}

// NewRecombinationRate validates data and builds the rate.
func NewRecombinationRate(wavelength float64, data tabulated.Surface, extrapolate bool) (*RecombinationRate, error) {
	if err := data.Validate(); err != nil {
		return nil, errors.Wrap(err, "rates: recombination")
	}
	return &RecombinationRate{Wavelength: wavelength, Data: data, Extrapolate: extrapolate}, nil
}

// Evaluate returns the rate at (density, temperature).
func (r *RecombinationRate) Evaluate(density, temperature float64) (float64, error) {
	return r.Data.Evaluate(density, temperature, r.Extrapolate)
}
