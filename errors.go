package openadas

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrDataNotAvailable matches every *DataNotAvailableError via errors.Is.
var ErrDataNotAvailable = errors.New("openadas: data not available")

// ErrNoFormatReader is returned by rate queries on a resolver built without a
// FormatReader.
var ErrNoFormatReader = errors.New("openadas: no format reader configured")

// QueryParam is one species argument of a query, labelled with its role.
type QueryParam struct {
	Role    string
	Species Species
}

// DataNotAvailableError reports a query whose configuration path does not
// resolve to a file or block reference.
type DataNotAvailableError struct {
	Quantity   Quantity
	Species    []QueryParam
	Stage      int
	Transition *Transition
	Metastable *int
	// Path is the configuration path that missed, with species already
	// normalised where the category requires it.
	Path []string
}

func (e *DataNotAvailableError) Error() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, 0, len(e.Species)+3)
	for _, param := range e.Species {
		parts = append(parts, fmt.Sprintf("%s: %s", param.Role, symbolOf(param.Species)))
	}
	if e.Metastable != nil {
		parts = append(parts, "metastable: "+strconv.Itoa(*e.Metastable))
	}
	parts = append(parts, "ionisation: "+strconv.Itoa(e.Stage))
	if e.Transition != nil {
		parts = append(parts, "transition: "+e.Transition.String())
	}
	return fmt.Sprintf("openadas: the requested %s data does not have an entry in the configuration (%s)",
		e.Quantity.label(), strings.Join(parts, ", "))
}

// Is reports whether target is ErrDataNotAvailable.
func (e *DataNotAvailableError) Is(target error) bool {
	return target == ErrDataNotAvailable
}

// ErrorHint names the configuration entry an operator would need to add.
func (e *DataNotAvailableError) ErrorHint() string {
	if e == nil || len(e.Path) == 0 {
		return ""
	}
	return fmt.Sprintf("add an entry at %s to the configuration", joinPath(e.Path))
}

// Symbols returns the queried species symbols in argument order.
func (e *DataNotAvailableError) Symbols() []string {
	if e == nil {
		return nil
	}
	out := make([]string, len(e.Species))
	for i, param := range e.Species {
		out[i] = symbolOf(param.Species)
	}
	return out
}

func symbolOf(s Species) string {
	if s == nil {
		return "<nil>"
	}
	return s.Symbol()
}

func intPtr(v int) *int {
	return &v
}

func transitionPtr(t Transition) *Transition {
	return &t
}
