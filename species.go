package openadas

import (
	"fmt"
	"sort"
	"strings"
)

// Species identifies an atomic species used as a configuration key. Element
// normalises the species to its chemical element: an Element returns itself
// and an Isotope returns its parent.
type Species interface {
	Name() string
	Symbol() string
	Element() Element
}

// Element is a chemical element.
type Element struct {
	name         string
	symbol       string
	atomicNumber int
	atomicWeight float64
}

// NewElement builds an element. The symbol is the configuration key.
func NewElement(name, symbol string, atomicNumber int, atomicWeight float64) Element {
	return Element{name: name, symbol: symbol, atomicNumber: atomicNumber, atomicWeight: atomicWeight}
}

func (e Element) Name() string          { return e.name }
func (e Element) Symbol() string        { return e.symbol }
func (e Element) Element() Element      { return e }
func (e Element) AtomicNumber() int     { return e.atomicNumber }
func (e Element) AtomicWeight() float64 { return e.atomicWeight }

func (e Element) String() string {
	return fmt.Sprintf("<Element: %s>", e.name)
}

// Isotope is an element with a fixed mass number.
type Isotope struct {
	name         string
	symbol       string
	element      Element
	massNumber   int
	atomicWeight float64
}

// NewIsotope builds an isotope of element.
func NewIsotope(name, symbol string, element Element, massNumber int, atomicWeight float64) Isotope {
	return Isotope{name: name, symbol: symbol, element: element, massNumber: massNumber, atomicWeight: atomicWeight}
}

func (i Isotope) Name() string          { return i.name }
func (i Isotope) Symbol() string        { return i.symbol }
func (i Isotope) Element() Element      { return i.element }
func (i Isotope) MassNumber() int       { return i.massNumber }
func (i Isotope) AtomicWeight() float64 { return i.atomicWeight }

func (i Isotope) String() string {
	return fmt.Sprintf("<Isotope: %s>", i.name)
}

// Elements commonly found in fusion plasmas.
var (
	Hydrogen  = NewElement("hydrogen", "H", 1, 1.00784)
	Helium    = NewElement("helium", "He", 2, 4.002602)
	Lithium   = NewElement("lithium", "Li", 3, 6.938)
	Beryllium = NewElement("beryllium", "Be", 4, 9.0121831)
	Boron     = NewElement("boron", "B", 5, 10.806)
	Carbon    = NewElement("carbon", "C", 6, 12.0096)
	Nitrogen  = NewElement("nitrogen", "N", 7, 14.00643)
	Oxygen    = NewElement("oxygen", "O", 8, 15.99903)
	Fluorine  = NewElement("fluorine", "F", 9, 18.998403163)
	Neon      = NewElement("neon", "Ne", 10, 20.1797)
	Argon     = NewElement("argon", "Ar", 18, 39.948)
	Krypton   = NewElement("krypton", "Kr", 36, 83.798)
	Xenon     = NewElement("xenon", "Xe", 54, 131.293)
	Tungsten  = NewElement("tungsten", "W", 74, 183.84)
)

// Isotopes of hydrogen and helium.
var (
	Protium   = NewIsotope("protium", "H", Hydrogen, 1, 1.00782503207)
	Deuterium = NewIsotope("deuterium", "D", Hydrogen, 2, 2.0141017778)
	Tritium   = NewIsotope("tritium", "T", Hydrogen, 3, 3.0160492777)
	Helium3   = NewIsotope("helium3", "He3", Helium, 3, 3.0160293191)
	Helium4   = NewIsotope("helium4", "He4", Helium, 4, 4.00260325415)
	Carbon12  = NewIsotope("carbon12", "C12", Carbon, 12, 12.0)
	Carbon13  = NewIsotope("carbon13", "C13", Carbon, 13, 13.0033548378)
)

var speciesBySymbol = func() map[string]Species {
	known := []Species{
		Hydrogen, Helium, Lithium, Beryllium, Boron, Carbon, Nitrogen, Oxygen,
		Fluorine, Neon, Argon, Krypton, Xenon, Tungsten,
		Deuterium, Tritium, Helium3, Helium4, Carbon12, Carbon13,
	}
	out := make(map[string]Species, len(known))
	for _, s := range known {
		out[strings.ToLower(s.Symbol())] = s
	}
	return out
}()

// LookupSpecies returns the known species for symbol, case-insensitively.
// "H" resolves to the element hydrogen; protium is only reachable by value.
func LookupSpecies(symbol string) (Species, bool) {
	s, ok := speciesBySymbol[strings.ToLower(strings.TrimSpace(symbol))]
	return s, ok
}

// KnownSymbols returns every symbol LookupSpecies understands, sorted.
func KnownSymbols() []string {
	out := make([]string, 0, len(speciesBySymbol))
	for _, s := range speciesBySymbol {
		out = append(out, s.Symbol())
	}
	sort.Strings(out)
	return out
}
