package openadas

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// Function is a callable exposed to expression evaluators.
type Function func(args ...any) (any, error)

// FunctionRegistry stores functions keyed by case-insensitive name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register stores fn under name. Names may only be registered once.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return errors.Newf("openadas: function %q is nil", name)
	}
	if name == "" {
		return errors.New("openadas: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return errors.Newf("openadas: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, errors.New("openadas: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, errors.Newf("openadas: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithFunctionRegistry makes the functions in registry callable from
// expressions.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *optionsConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers a single function.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *optionsConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// argString and argInt coerce evaluator arguments. Engines disagree on
// numeric types: expr passes int, CEL int64 or float64, goja int64.
func argString(args []any, i int) (string, error) {
	if i >= len(args) {
		return "", errors.Newf("openadas: missing argument %d", i+1)
	}
	switch v := args[i].(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", errors.Newf("openadas: argument %d must be a string, got %T", i+1, args[i])
	}
}

func argInt(args []any, i int) (int, error) {
	if i >= len(args) {
		return 0, errors.Newf("openadas: missing argument %d", i+1)
	}
	switch v := args[i].(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, errors.Newf("openadas: argument %d must be an integer, got %v", i+1, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, errors.Wrapf(err, "openadas: argument %d", i+1)
		}
		return n, nil
	default:
		return 0, errors.Newf("openadas: argument %d must be an integer, got %T", i+1, args[i])
	}
}
