package openadas

import (
	"cmp"
	"slices"
	"strconv"
)

// Entry is one terminal configuration entry. Path holds the document keys
// below the category, e.g. ["D", "C", "6"] for bms.D.C.6.
type Entry struct {
	Category   Quantity `json:"category"`
	Path       []string `json:"path"`
	File       FileRef  `json:"file,omitempty"`
	Block      *int     `json:"block,omitempty"`
	Metastable *int     `json:"metastable,omitempty"`
	Wavelength *float64 `json:"wavelength,omitempty"`
}

// Key renders the full document path of the entry.
func (e Entry) Key() string {
	return joinPath(append([]string{string(e.Category)}, e.Path...))
}

// Entries flattens the configuration into its terminal entries, ordered by
// category then key. Charge exchange lists yield one entry per metastable.
func (s *ConfigStore) Entries() []Entry {
	if s == nil {
		return nil
	}
	return s.cfg.Entries()
}

// Entries flattens c. See ConfigStore.Entries.
func (c Config) Entries() []Entry {
	var out []Entry

	for _, symbol := range sortedKeys(c.Wavelength) {
		for _, stage := range sortedKeys(c.Wavelength[symbol]) {
			for _, tr := range sortedTransitions(c.Wavelength[symbol][stage]) {
				value := c.Wavelength[symbol][stage][tr]
				out = append(out, Entry{
					Category:   QuantityWavelength,
					Path:       []string{symbol, strconv.Itoa(stage), tr.String()},
					Wavelength: &value,
				})
			}
		}
	}

	for _, donor := range sortedKeys(c.ChargeExchange) {
		for _, receiver := range sortedKeys(c.ChargeExchange[donor]) {
			for _, stage := range sortedKeys(c.ChargeExchange[donor][receiver]) {
				for _, file := range c.ChargeExchange[donor][receiver][stage] {
					out = append(out, Entry{
						Category:   QuantityChargeExchange,
						Path:       []string{donor, receiver, strconv.Itoa(stage)},
						File:       file.File,
						Metastable: intPtr(file.Metastable),
					})
				}
			}
		}
	}

	for _, beam := range sortedKeys(c.BeamStopping) {
		for _, plasma := range sortedKeys(c.BeamStopping[beam]) {
			for _, stage := range sortedKeys(c.BeamStopping[beam][plasma]) {
				out = append(out, Entry{
					Category: QuantityBeamStopping,
					Path:     []string{beam, plasma, strconv.Itoa(stage)},
					File:     c.BeamStopping[beam][plasma][stage],
				})
			}
		}
	}

	for _, beam := range sortedKeys(c.BeamPopulation) {
		for _, meta := range sortedKeys(c.BeamPopulation[beam]) {
			for _, plasma := range sortedKeys(c.BeamPopulation[beam][meta]) {
				for _, stage := range sortedKeys(c.BeamPopulation[beam][meta][plasma]) {
					out = append(out, Entry{
						Category:   QuantityBeamPopulation,
						Path:       []string{beam, strconv.Itoa(meta), plasma, strconv.Itoa(stage)},
						File:       c.BeamPopulation[beam][meta][plasma][stage],
						Metastable: intPtr(meta),
					})
				}
			}
		}
	}

	for _, beam := range sortedKeys(c.BeamEmission) {
		for _, plasma := range sortedKeys(c.BeamEmission[beam]) {
			for _, stage := range sortedKeys(c.BeamEmission[beam][plasma]) {
				for _, tr := range sortedTransitions(c.BeamEmission[beam][plasma][stage]) {
					out = append(out, Entry{
						Category: QuantityBeamEmission,
						Path:     []string{beam, plasma, strconv.Itoa(stage), tr.String()},
						File:     c.BeamEmission[beam][plasma][stage][tr],
					})
				}
			}
		}
	}

	out = append(out, blockEntries(QuantityExcitation, c.Excitation)...)
	out = append(out, blockEntries(QuantityRecombination, c.Recombination)...)
	return out
}

func blockEntries(q Quantity, table BlockTable) []Entry {
	var out []Entry
	for _, symbol := range sortedKeys(table) {
		for _, stage := range sortedKeys(table[symbol]) {
			for _, tr := range sortedTransitions(table[symbol][stage]) {
				ref := table[symbol][stage][tr]
				out = append(out, Entry{
					Category: q,
					Path:     []string{symbol, strconv.Itoa(stage), tr.String()},
					File:     ref.File,
					Block:    intPtr(ref.Block),
				})
			}
		}
	}
	return out
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func sortedTransitions[V any](m map[Transition]V) []Transition {
	keys := make([]Transition, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b Transition) int {
		return cmp.Compare(a.String(), b.String())
	})
	return keys
}
