package openadas

// jsEvaluatorHint is attached to ErrNoEvaluator when the js engine is asked
// for in a build without goja.
const jsEvaluatorHint = "rebuild with -tags js_eval to enable the js engine"

type jsEvaluatorConfig struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// JSEvaluatorOption configures NewJSEvaluator.
type JSEvaluatorOption func(*jsEvaluatorConfig)

// JSWithProgramCache shares compiled goja programs through cache, keyed by
// expression.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) { cfg.cache = cache }
}

// JSWithFunctionRegistry exposes a copy of registry to scripts, both by name
// and through call("name", ...). Resolver functions such as
// resolve_wavelength arrive this way.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		if registry != nil {
			cfg.functions = registry.Clone()
		}
	}
}

func newJSEvaluatorConfig(opts []JSEvaluatorOption) jsEvaluatorConfig {
	var cfg jsEvaluatorConfig
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}
