package openadas

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestDecodeConfigAcceptsDocumentForms(t *testing.T) {
	doc := map[string]any{
		"wavelength": map[string]any{
			"C": map[string]any{"5": map[string]any{"8-7": 529.05, "(10, 9)": 1218.4}},
		},
		"cxs": map[string]any{
			"H": map[string]any{"C": map[string]any{
				"6": []any{
					[]any{1, "adf12/a.dat"},
					map[string]any{"metastable": 2, "file": "adf12/b.dat"},
				},
			}},
		},
		"bmp": map[string]any{
			"H": map[any]any{2: map[string]any{"C": map[string]any{"6": "adf22/bmp.dat"}}},
		},
		"excitation": map[string]any{
			"C": map[string]any{"5": map[string]any{"8,7": []any{"adf15/pec.dat", 20}}},
		},
	}

	cfg, err := DecodeConfig("site.yaml", doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v, ok := cfg.Wavelength.Lookup("C", 5, T(10, 9)); !ok || v != 1218.4 {
		t.Fatalf("expected tuple transition key, got %v %v", v, ok)
	}
	files, ok := cfg.ChargeExchange.Lookup("H", "C", 6)
	want := []MetastableFile{{Metastable: 1, File: "adf12/a.dat"}, {Metastable: 2, File: "adf12/b.dat"}}
	if !ok || !reflect.DeepEqual(files, want) {
		t.Fatalf("unexpected cx files %+v", files)
	}
	if file, ok := cfg.BeamPopulation.Lookup("H", 2, "C", 6); !ok || file != "adf22/bmp.dat" {
		t.Fatalf("expected integer metastable key, got %q", file)
	}
	if ref, ok := cfg.Excitation.Lookup("C", 5, T(8, 7)); !ok || ref.Block != 20 {
		t.Fatalf("expected block pair, got %+v", ref)
	}
}

func TestDecodeConfigRejectsUnknownCategory(t *testing.T) {
	_, err := DecodeConfig("site.yaml", map[string]any{"adf11": map[string]any{}})
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if !strings.Contains(err.Error(), `"adf11" in site.yaml`) {
		t.Fatalf("expected key and source in message, got %q", err.Error())
	}
}

func TestDecodeConfigRejectsMalformedEntries(t *testing.T) {
	cases := map[string]map[string]any{
		"stage":      {"bms": map[string]any{"H": map[string]any{"C": map[string]any{"six": "f.dat"}}}},
		"transition": {"wavelength": map[string]any{"C": map[string]any{"5": map[string]any{"87": 1.0}}}},
		"pair":       {"cxs": map[string]any{"H": map[string]any{"C": map[string]any{"6": []any{[]any{1}}}}}},
	}
	for name, doc := range cases {
		if _, err := DecodeConfig(name, doc); err == nil {
			t.Fatalf("%s: expected decode error", name)
		}
	}
}

func TestConfigCloneIsDeep(t *testing.T) {
	cfg := testConfig()
	clone := cfg.Clone()

	clone.ChargeExchange["H"]["C"][6][0].File = "changed"
	clone.Excitation["C"][5][T(8, 7)] = BlockRef{File: "changed", Block: 1}
	clone.BeamPopulation["H"][2]["C"][6] = "changed"

	if !reflect.DeepEqual(cfg, testConfig()) {
		t.Fatalf("mutating the clone changed the original")
	}
}

func TestConfigStoreAccessorsCopy(t *testing.T) {
	store := NewConfigStore(testConfig())
	snapshot := store.Snapshot()
	bms := snapshot["bms"].(map[string]any)
	delete(bms, "H")

	if _, ok := store.Config().BeamStopping.Lookup("H", "C", 6); !ok {
		t.Fatalf("mutating the snapshot changed the store")
	}
	var nilStore *ConfigStore
	if len(nilStore.Snapshot()) != 0 || nilStore.Entries() != nil || nilStore.Scopes() != nil {
		t.Fatalf("nil store accessors must be empty")
	}
}

func TestEntriesFlattenInOrder(t *testing.T) {
	entries := testConfig().Entries()

	var keys []string
	for _, entry := range entries {
		keys = append(keys, entry.Key())
	}
	want := []string{
		"wavelength.C.5.8-7",
		"wavelength.H.0.3-2",
		"wavelength.Ne.9.11-10",
		"cxs.H.C.6",
		"cxs.H.C.6",
		"bms.H.C.6",
		"bmp.H.2.C.6",
		"bme.H.C.6.3-2",
		"excitation.C.5.8-7",
		"recombination.C.5.8-7",
	}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("unexpected entry order:\n got %v\nwant %v", keys, want)
	}
	if *entries[4].Metastable != 2 || entries[4].File != "file_b.dat" {
		t.Fatalf("expected second cx entry for metastable 2, got %+v", entries[4])
	}
	if *entries[9].Block != 65 {
		t.Fatalf("expected recombination block 65, got %d", *entries[9].Block)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	if err := testConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cfg := testConfig()
	cfg.Wavelength["C"][5][T(8, 7)] = -1
	cfg.BeamStopping["H"]["C"][6] = ""
	cfg.Excitation["C"][5][T(8, 7)] = BlockRef{File: "pec.dat", Block: 0}
	cfg.ChargeExchange["H"]["C"][6][1].Metastable = 0

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{
		"wavelength.C.5.8-7: wavelength must be a positive number",
		"bms.H.C.6: file is empty",
		"excitation.C.5.8-7: block must be 1 or greater",
		"cxs.H.C.6: metastable must be 1 or greater",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("embedded defaults invalid: %v", err)
	}
	if v, ok := cfg.Wavelength.Lookup("H", 0, T(3, 2)); !ok || v != 656.28 {
		t.Fatalf("expected Balmer alpha, got %v", v)
	}
	files, ok := cfg.ChargeExchange.Lookup("H", "H", 1)
	if !ok || len(files) == 0 || files[0].Metastable != 1 {
		t.Fatalf("expected hydrogen cx entries, got %+v", files)
	}
}

func TestParseTransitionForms(t *testing.T) {
	cases := map[string]Transition{
		"8-7":          T(8, 7),
		" (8, 7) ":     T(8, 7),
		"8,7":          T(8, 7),
		"('2s', '2p')": {Initial: "2s", Final: "2p"},
	}
	for input, want := range cases {
		got, err := ParseTransition(input)
		if err != nil {
			t.Fatalf("%q: %v", input, err)
		}
		if got != want {
			t.Fatalf("%q: expected %+v, got %+v", input, want, got)
		}
	}
	for _, bad := range []string{"", "87", "8-", "(,7)"} {
		if _, err := ParseTransition(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
	if got := (Transition{Initial: "1s-2", Final: "2p"}).String(); got != "(1s-2, 2p)" {
		t.Fatalf("unexpected tuple rendering %q", got)
	}
}

func TestTransitionTextRoundTrips(t *testing.T) {
	cases := []Transition{
		T(8, 7),
		{Initial: "1s-2", Final: "2p"},
		{Initial: "a,b", Final: "c"},
		{Initial: "a", Final: "b-c"},
		{Initial: "a", Final: "b,c"},
		{Initial: "2s'", Final: "x,y"},
		{Initial: "a,b", Final: "c'"},
		{Initial: "'x-1", Final: "y"},
	}
	seen := map[string]Transition{}
	for _, want := range cases {
		text, err := want.MarshalText()
		if err != nil {
			t.Fatalf("%+v: marshal: %v", want, err)
		}
		var got Transition
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("%q: unmarshal: %v", text, err)
		}
		if got != want {
			t.Fatalf("%q: expected %+v, got %+v", text, want, got)
		}
		if other, dup := seen[string(text)]; dup {
			t.Fatalf("%+v and %+v share the key %q", other, want, text)
		}
		seen[string(text)] = want
	}
}

func TestSpeciesLookup(t *testing.T) {
	s, ok := LookupSpecies("d")
	if !ok || s != Species(Deuterium) {
		t.Fatalf("expected deuterium, got %v", s)
	}
	if s.Element() != Hydrogen {
		t.Fatalf("expected hydrogen parent, got %v", s.Element())
	}
	if h, _ := LookupSpecies("H"); h != Species(Hydrogen) {
		t.Fatalf("H must resolve to the element, got %v", h)
	}
	if _, ok := LookupSpecies("Xx"); ok {
		t.Fatalf("unexpected species for Xx")
	}
}
