package openadas

import (
	"math"

	"github.com/cockroachdb/errors"
)

// ErrInvalidEntry is wrapped by every problem Validate reports.
var ErrInvalidEntry = errors.New("openadas: invalid configuration entry")

// Validate checks every terminal entry: file references must be non-empty,
// block and metastable indices start at 1 and wavelengths are positive.
// All problems are reported together. Resolution never calls Validate; it is
// for tooling that writes configuration.
func (c Config) Validate() error {
	var errs []error
	for _, entry := range c.Entries() {
		if problem := entry.problem(); problem != "" {
			errs = append(errs, errors.Wrapf(ErrInvalidEntry, "%s: %s", entry.Key(), problem))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

func (e Entry) problem() string {
	if e.Category == QuantityWavelength {
		if e.Wavelength == nil || math.IsNaN(*e.Wavelength) || math.IsInf(*e.Wavelength, 0) || *e.Wavelength <= 0 {
			return "wavelength must be a positive number"
		}
		return ""
	}
	switch {
	case e.File == "":
		return "file is empty"
	case e.Block != nil && *e.Block < 1:
		return "block must be 1 or greater"
	case e.Metastable != nil && *e.Metastable < 1:
		return "metastable must be 1 or greater"
	}
	return ""
}
