package hydrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDecoderFromFixtures(t *testing.T) {
	fx := loadFixture(t, "hydrate_tables.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			decoder := NewDecoder[lineTable](buildOptions(tc)...)

			result, err := decoder.Decode(Context{Source: tc.Source, Scope: tc.Scope}, tc.Input)

			if tc.ExpectErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tc.ExpectErr)
				}
				if !strings.Contains(err.Error(), tc.ExpectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.ExpectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if !reflect.DeepEqual(tc.Expect, result) {
				t.Fatalf("decoded table mismatch:\nwant: %#v\n got: %#v", tc.Expect, result)
			}
		})
	}
}

func TestStringKeysNormalisesYAMLMaps(t *testing.T) {
	payload := map[string]any{
		"wavelength": map[any]any{
			"C": map[any]any{
				5: map[any]any{"8-7": 529.1},
			},
		},
		"files": []any{map[any]any{1: "a.dat"}},
	}

	out, err := StringKeys(Context{}, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stage, ok := out["wavelength"].(map[string]any)["C"].(map[string]any)["5"]
	if !ok {
		t.Fatalf("expected integer key rewritten to \"5\", got %#v", out["wavelength"])
	}
	if stage.(map[string]any)["8-7"] != 529.1 {
		t.Fatalf("unexpected leaf: %#v", stage)
	}
	if _, ok := out["files"].([]any)[0].(map[string]any)["1"]; !ok {
		t.Fatalf("expected maps inside lists rewritten, got %#v", out["files"])
	}
}

func TestDecodeDoesNotMutatePayload(t *testing.T) {
	payload := map[string]any{"lines": map[string]any{"C": map[string]any{"5": 1.0}}}
	decoder := NewDecoder[lineTable](WithPreHook[lineTable](func(_ Context, p map[string]any) (map[string]any, error) {
		p["lines"].(map[string]any)["C"] = map[string]any{"5": 2.0}
		return p, nil
	}))

	got, err := decoder.Decode(Context{Source: "inline"}, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Lines["C"][5] != 2.0 {
		t.Fatalf("expected hook value, got %v", got.Lines)
	}
	if payload["lines"].(map[string]any)["C"].(map[string]any)["5"] != 1.0 {
		t.Fatalf("caller payload mutated: %#v", payload)
	}
}

func TestDecodeNilPayload(t *testing.T) {
	_, err := NewDecoder[lineTable]().Decode(Context{Source: "missing.yaml"}, nil)
	if err == nil || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected nil payload error naming the source, got %v", err)
	}
}

func buildOptions(tc fixtureCase) []DecoderOption[lineTable] {
	options := []DecoderOption[lineTable]{}
	for _, optName := range tc.Options {
		switch optName {
		case "use_number":
			options = append(options, WithUseNumber[lineTable]())
		case "disallow_unknown":
			options = append(options, WithDisallowUnknownFields[lineTable]())
		}
	}
	for _, hookName := range tc.PreHooks {
		switch hookName {
		case "string_keys":
			options = append(options, WithPreHook[lineTable](StringKeys))
		case "uppercase_symbols":
			options = append(options, WithPreHook[lineTable](uppercaseSymbols))
		}
	}
	for _, hookName := range tc.PostHooks {
		switch hookName {
		case "require_lines":
			options = append(options, WithPostHook[lineTable](requireLines))
		}
	}
	if tc.CustomDecoder == "embedded_document" {
		options = append(options, WithCustomDecoder[lineTable](embeddedDocument))
	}
	return options
}

func uppercaseSymbols(_ Context, payload map[string]any) (map[string]any, error) {
	lines, ok := payload["lines"].(map[string]any)
	if !ok {
		return payload, nil
	}
	out := make(map[string]any, len(lines))
	for symbol, stages := range lines {
		out[strings.ToUpper(symbol)] = stages
	}
	payload["lines"] = out
	return payload, nil
}

func requireLines(ctx Context, table *lineTable) error {
	if table == nil {
		return errors.New("table is nil")
	}
	if len(table.Lines) == 0 {
		return fmt.Errorf("%s defines no lines", ctx.Source)
	}
	return nil
}

func embeddedDocument(ctx Context, payload map[string]any) (lineTable, error) {
	var zero lineTable
	raw, ok := payload["document"].(string)
	if !ok || raw == "" {
		return zero, fmt.Errorf("missing document string in %q", ctx.Source)
	}
	var out lineTable
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return zero, err
	}
	return out, nil
}

type fixture struct {
	Description string        `json:"description"`
	Cases       []fixtureCase `json:"cases"`
}

type fixtureCase struct {
	Name          string         `json:"name"`
	Source        string         `json:"source"`
	Scope         string         `json:"scope"`
	Input         map[string]any `json:"input"`
	Expect        lineTable      `json:"expect"`
	ExpectErr     string         `json:"expectErr"`
	PreHooks      []string       `json:"preHooks"`
	PostHooks     []string       `json:"postHooks"`
	Options       []string       `json:"options"`
	CustomDecoder string         `json:"customDecoder"`
}

type lineTable struct {
	Lines map[string]map[int]float64 `json:"lines"`
	Note  string                     `json:"note,omitempty"`
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()
	path := filepath.Join("..", "..", "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read hydrate fixture %q: %v", name, err)
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal hydrate fixture %q: %v", name, err)
	}
	return fx
}
