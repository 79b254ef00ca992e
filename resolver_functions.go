package openadas

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
)

// Functions the resolver registers for expressions, on top of any registry
// supplied with WithFunctionRegistry.
const (
	FunctionResolveWavelength = "resolve_wavelength"
	FunctionElement           = "element"
)

func (r *Resolver) builtinFunctions(base *FunctionRegistry) (*FunctionRegistry, error) {
	registry := base.Clone()
	if registry == nil {
		registry = NewFunctionRegistry()
	}
	// resolve_wavelength("D", 0, "3-2") applies the isotope fallback, unlike a
	// direct read of wavelength.D["0"]["3-2"].
	err := registry.Register(FunctionResolveWavelength, func(args ...any) (any, error) {
		species, err := speciesArg(args, 0)
		if err != nil {
			return nil, err
		}
		stage, err := argInt(args, 1)
		if err != nil {
			return nil, err
		}
		raw, err := argString(args, 2)
		if err != nil {
			return nil, err
		}
		transition, err := ParseTransition(raw)
		if err != nil {
			return nil, err
		}
		return r.Wavelength(species, stage, transition)
	})
	if err != nil {
		return nil, err
	}
	err = registry.Register(FunctionElement, func(args ...any) (any, error) {
		species, err := speciesArg(args, 0)
		if err != nil {
			return nil, err
		}
		return species.Element().Symbol(), nil
	})
	if err != nil {
		return nil, err
	}
	return registry, nil
}

func speciesArg(args []any, i int) (Species, error) {
	symbol, err := argString(args, i)
	if err != nil {
		return nil, err
	}
	species, ok := LookupSpecies(symbol)
	if !ok {
		return nil, errors.Newf("openadas: unknown species %q", symbol)
	}
	return species, nil
}

// FunctionRegistry returns a copy of the functions available to Evaluate.
func (r *Resolver) FunctionRegistry() *FunctionRegistry {
	return r.functions.Clone()
}

// Evaluate runs expr against the configuration snapshot with the resolver's
// functions available. A custom evaluator set with WithEvaluator is used as
// is and only sees the functions it was built with.
func (r *Resolver) Evaluate(expr string) (Response[any], error) {
	cfg := r.cfg
	cfg.functions = r.functions
	evaluator, err := cfg.resolveEvaluator()
	if err != nil {
		return Response[any]{}, err
	}
	return evaluate(evaluator, cfg, RuleContext{Snapshot: r.store.cfg.Snapshot()}, expr)
}

// Corpus reports whether data files exist. internal/corpus stores satisfy it.
type Corpus interface {
	Exists(ctx context.Context, name string) (bool, error)
}

// AuditResult lists configured files absent from the corpus.
type AuditResult struct {
	Checked int
	Missing []Entry
}

// Audit checks that every file referenced by the configuration exists in
// corpus. File contents are not inspected. Names are relative to the data
// root; each distinct file is checked once.
func (r *Resolver) Audit(ctx context.Context, corpus Corpus) (AuditResult, error) {
	if corpus == nil {
		return AuditResult{}, errors.New("openadas: audit requires a corpus")
	}
	entries := r.store.Entries()
	exists := map[FileRef]bool{}
	var result AuditResult
	for _, entry := range entries {
		if entry.File == "" {
			continue
		}
		present, seen := exists[entry.File]
		if !seen {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			ok, err := corpus.Exists(ctx, string(entry.File))
			if err != nil {
				return result, errors.Wrapf(err, "openadas: audit %s", entry.File)
			}
			exists[entry.File] = ok
			present = ok
			result.Checked++
		}
		if !present {
			result.Missing = append(result.Missing, entry)
		}
	}
	sort.SliceStable(result.Missing, func(i, j int) bool {
		return result.Missing[i].File < result.Missing[j].File
	})
	return result, nil
}
