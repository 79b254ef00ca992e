// Package tabulated holds the gridded data produced by the ADF format readers
// and evaluates it by piecewise linear interpolation.
package tabulated

import (
	"fmt"
	"math"
	"sort"

	"github.com/cockroachdb/errors"
)

// ErrShape indicates tabulated data whose axes and values disagree.
var ErrShape = errors.New("tabulated: inconsistent shape")

// OutOfRangeError reports an evaluation outside the tabulated domain while
// extrapolation is not permitted, or at NaN.
type OutOfRangeError struct {
	Axis  string
	Value float64
	Min   float64
	Max   float64
}

func (e *OutOfRangeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if math.IsNaN(e.Value) {
		return fmt.Sprintf("tabulated: %s is NaN", e.Axis)
	}
	return fmt.Sprintf("tabulated: %s=%g outside [%g, %g] and extrapolation is disabled", e.Axis, e.Value, e.Min, e.Max)
}

// Curve is a function sampled on a strictly increasing axis.
type Curve struct {
	Axis   string    `json:"axis,omitempty"`
	X      []float64 `json:"x"`
	Values []float64 `json:"values"`
}

// Validate checks the curve is non-empty and its axis strictly increasing.
func (c Curve) Validate() error {
	if len(c.X) == 0 {
		return errors.Wrap(ErrShape, "curve has no samples")
	}
	if len(c.X) != len(c.Values) {
		return errors.Wrapf(ErrShape, "curve has %d abscissae and %d values", len(c.X), len(c.Values))
	}
	return increasing(c.axisName(), c.X)
}

// Evaluate interpolates the curve at x. Outside the sampled range the end
// segments are extended when extrapolate is true.
func (c Curve) Evaluate(x float64, extrapolate bool) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	i, t, err := locate(c.axisName(), c.X, x, extrapolate)
	if err != nil {
		return 0, err
	}
	if len(c.X) == 1 {
		return c.Values[0], nil
	}
	return lerp(c.Values[i], c.Values[i+1], t), nil
}

func (c Curve) axisName() string {
	if c.Axis == "" {
		return "x"
	}
	return c.Axis
}

// Surface is a function sampled on a rectilinear grid. Values[i][j] is the
// sample at (X[i], Y[j]).
type Surface struct {
	XAxis  string      `json:"x_axis,omitempty"`
	YAxis  string      `json:"y_axis,omitempty"`
	X      []float64   `json:"x"`
	Y      []float64   `json:"y"`
	Values [][]float64 `json:"values"`
}

// Validate checks the grid dimensions and axis ordering.
func (s Surface) Validate() error {
	if len(s.X) == 0 || len(s.Y) == 0 {
		return errors.Wrap(ErrShape, "surface has an empty axis")
	}
	if len(s.Values) != len(s.X) {
		return errors.Wrapf(ErrShape, "surface has %d rows for %d %s samples", len(s.Values), len(s.X), s.xName())
	}
	for i, row := range s.Values {
		if len(row) != len(s.Y) {
			return errors.Wrapf(ErrShape, "surface row %d has %d values for %d %s samples", i, len(row), len(s.Y), s.yName())
		}
	}
	if err := increasing(s.xName(), s.X); err != nil {
		return err
	}
	return increasing(s.yName(), s.Y)
}

// Evaluate interpolates the surface bilinearly at (x, y).
func (s Surface) Evaluate(x, y float64, extrapolate bool) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	i, tx, err := locate(s.xName(), s.X, x, extrapolate)
	if err != nil {
		return 0, err
	}
	j, ty, err := locate(s.yName(), s.Y, y, extrapolate)
	if err != nil {
		return 0, err
	}
	i1, j1 := i+1, j+1
	if len(s.X) == 1 {
		i1 = i
	}
	if len(s.Y) == 1 {
		j1 = j
	}
	low := lerp(s.Values[i][j], s.Values[i][j1], ty)
	high := lerp(s.Values[i1][j], s.Values[i1][j1], ty)
	return lerp(low, high, tx), nil
}

func (s Surface) xName() string {
	if s.XAxis == "" {
		return "x"
	}
	return s.XAxis
}

func (s Surface) yName() string {
	if s.YAxis == "" {
		return "y"
	}
	return s.YAxis
}

func increasing(axis string, xs []float64) error {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return errors.Wrapf(ErrShape, "%s axis is not strictly increasing at index %d", axis, i)
		}
	}
	return nil
}

// locate returns the lower index of the segment containing x and the
// fractional position inside it. The fraction leaves [0, 1] only when
// extrapolating. NaN is outside every domain.
func locate(axis string, xs []float64, x float64, extrapolate bool) (int, float64, error) {
	lo, hi := xs[0], xs[len(xs)-1]
	if math.IsNaN(x) {
		return 0, 0, &OutOfRangeError{Axis: axis, Value: x, Min: lo, Max: hi}
	}
	if (x < lo || x > hi) && !extrapolate {
		return 0, 0, &OutOfRangeError{Axis: axis, Value: x, Min: lo, Max: hi}
	}
	if len(xs) == 1 {
		return 0, 0, nil
	}
	i := sort.SearchFloat64s(xs, x) - 1
	if i < 0 {
		i = 0
	}
	if i > len(xs)-2 {
		i = len(xs) - 2
	}
	return i, (x - xs[i]) / (xs[i+1] - xs[i]), nil
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
