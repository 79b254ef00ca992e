package openadas

import (
	"encoding/json"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-openadas/layering"
)

// Quantity names a top-level configuration category.
type Quantity string

const (
	QuantityWavelength     Quantity = "wavelength"
	QuantityChargeExchange Quantity = "cxs"
	QuantityBeamStopping   Quantity = "bms"
	QuantityBeamPopulation Quantity = "bmp"
	QuantityBeamEmission   Quantity = "bme"
	QuantityExcitation     Quantity = "excitation"
	QuantityRecombination  Quantity = "recombination"
)

// Quantities lists every configuration category in document order.
func Quantities() []Quantity {
	return []Quantity{
		QuantityWavelength,
		QuantityChargeExchange,
		QuantityBeamStopping,
		QuantityBeamPopulation,
		QuantityBeamEmission,
		QuantityExcitation,
		QuantityRecombination,
	}
}

func (q Quantity) label() string {
	switch q {
	case QuantityWavelength:
		return "wavelength"
	case QuantityChargeExchange:
		return "beam cx rate"
	case QuantityBeamStopping:
		return "beam stopping rate"
	case QuantityBeamPopulation:
		return "beam population rate"
	case QuantityBeamEmission:
		return "beam emission rate"
	case QuantityExcitation:
		return "impact excitation rate"
	case QuantityRecombination:
		return "recombination rate"
	default:
		return string(q)
	}
}

// FileRef is a data file path relative to the data root.
type FileRef string

// MetastableFile pairs a donor metastable level with its charge exchange file.
type MetastableFile struct {
	Metastable int     `json:"metastable" yaml:"metastable" toml:"metastable"`
	File       FileRef `json:"file" yaml:"file" toml:"file"`
}

// BlockRef locates one block inside a block-structured (ADF15) file.
type BlockRef struct {
	File  FileRef `json:"file" yaml:"file" toml:"file"`
	Block int     `json:"block" yaml:"block" toml:"block"`
}

// UnmarshalJSON accepts {"metastable": 1, "file": "..."} or the pair form
// [1, "..."].
func (m *MetastableFile) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return errors.Newf("openadas: metastable file pair needs 2 elements, got %d", len(pair))
		}
		if err := json.Unmarshal(pair[0], &m.Metastable); err != nil {
			return errors.Wrap(err, "openadas: metastable level")
		}
		return errors.Wrap(json.Unmarshal(pair[1], &m.File), "openadas: metastable file")
	}
	type plain MetastableFile
	return json.Unmarshal(data, (*plain)(m))
}

// UnmarshalJSON accepts {"file": "...", "block": 1} or the pair form
// ["...", 1].
func (b *BlockRef) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return errors.Newf("openadas: block reference pair needs 2 elements, got %d", len(pair))
		}
		if err := json.Unmarshal(pair[0], &b.File); err != nil {
			return errors.Wrap(err, "openadas: block file")
		}
		return errors.Wrap(json.Unmarshal(pair[1], &b.Block), "openadas: block number")
	}
	type plain BlockRef
	return json.Unmarshal(data, (*plain)(b))
}

// WavelengthTable maps species -> ionisation stage -> transition -> nm.
type WavelengthTable map[string]map[int]map[Transition]float64

// ChargeExchangeTable maps donor -> receiver -> receiver stage -> files, one
// per donor metastable level in configuration order.
type ChargeExchangeTable map[string]map[string]map[int][]MetastableFile

// BeamStoppingTable maps beam -> plasma -> stage -> file.
type BeamStoppingTable map[string]map[string]map[int]FileRef

// BeamPopulationTable maps beam -> metastable -> plasma -> stage -> file.
type BeamPopulationTable map[string]map[int]map[string]map[int]FileRef

// BeamEmissionTable maps beam -> plasma -> stage -> transition -> file.
type BeamEmissionTable map[string]map[string]map[int]map[Transition]FileRef

// BlockTable maps species -> stage -> transition -> (file, block). Used by
// the excitation and recombination categories.
type BlockTable map[string]map[int]map[Transition]BlockRef

// Config is the typed configuration tree. Element-scoped categories are keyed
// by element symbols; the wavelength category may also carry isotope
// symbols.
type Config struct {
	Wavelength     WavelengthTable     `json:"wavelength,omitempty"`
	ChargeExchange ChargeExchangeTable `json:"cxs,omitempty"`
	BeamStopping   BeamStoppingTable   `json:"bms,omitempty"`
	BeamPopulation BeamPopulationTable `json:"bmp,omitempty"`
	BeamEmission   BeamEmissionTable   `json:"bme,omitempty"`
	Excitation     BlockTable          `json:"excitation,omitempty"`
	Recombination  BlockTable          `json:"recombination,omitempty"`
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	return layering.Clone(c)
}

// Snapshot renders the configuration as nested map[string]any keyed by the
// document keys ("bms", "H", "6", "8-7"). Expression evaluators and traces
// walk this form.
func (c Config) Snapshot() map[string]any {
	raw, err := json.Marshal(c)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}

// Lookup returns the wavelength for the exact species symbol.
func (t WavelengthTable) Lookup(symbol string, stage int, transition Transition) (float64, bool) {
	v, ok := t[symbol][stage][transition]
	return v, ok
}

// Lookup returns the charge exchange files for the triple. A present but
// empty list counts as found.
func (t ChargeExchangeTable) Lookup(donor, receiver string, stage int) ([]MetastableFile, bool) {
	files, ok := t[donor][receiver][stage]
	if !ok {
		return nil, false
	}
	return append([]MetastableFile(nil), files...), true
}

// Lookup returns the beam stopping file for the triple.
func (t BeamStoppingTable) Lookup(beam, plasma string, stage int) (FileRef, bool) {
	f, ok := t[beam][plasma][stage]
	return f, ok && f != ""
}

// Lookup returns the beam population file.
func (t BeamPopulationTable) Lookup(beam string, metastable int, plasma string, stage int) (FileRef, bool) {
	f, ok := t[beam][metastable][plasma][stage]
	return f, ok && f != ""
}

// Lookup returns the beam emission file.
func (t BeamEmissionTable) Lookup(beam, plasma string, stage int, transition Transition) (FileRef, bool) {
	f, ok := t[beam][plasma][stage][transition]
	return f, ok && f != ""
}

// Lookup returns the block reference for the species, stage and transition.
func (t BlockTable) Lookup(symbol string, stage int, transition Transition) (BlockRef, bool) {
	ref, ok := t[symbol][stage][transition]
	return ref, ok && ref.File != ""
}

func configPath(q Quantity, segments ...any) []string {
	out := make([]string, 0, len(segments)+1)
	out = append(out, string(q))
	for _, segment := range segments {
		switch v := segment.(type) {
		case string:
			out = append(out, v)
		case int:
			out = append(out, strconv.Itoa(v))
		case Transition:
			out = append(out, v.String())
		default:
			b, _ := json.Marshal(v)
			out = append(out, string(b))
		}
	}
	return out
}
