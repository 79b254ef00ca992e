package openadas

import (
	"go.uber.org/zap"
)

// WithDataRoot sets the directory data file references are relative to. An
// explicit root is used as given; only the default root is created on demand.
func WithDataRoot(root string) Option {
	return func(cfg *optionsConfig) {
		cfg.dataRoot = root
	}
}

// WithConfig supplies the configuration table. The value is deep copied.
func WithConfig(config Config) Option {
	clone := config.Clone()
	return func(cfg *optionsConfig) {
		cfg.config = &clone
		cfg.store = nil
	}
}

// WithConfigStore supplies an already built store, usually the result of
// merging a Stack. It takes precedence over WithConfig.
func WithConfigStore(store *ConfigStore) Option {
	return func(cfg *optionsConfig) {
		cfg.store = store
	}
}

// WithExtrapolation sets the extrapolation flag passed to every rate object.
func WithExtrapolation(allow bool) Option {
	return func(cfg *optionsConfig) {
		cfg.extrapolation = allow
	}
}

// WithFormatReader sets the collaborator that loads tabulated data files.
func WithFormatReader(reader FormatReader) Option {
	return func(cfg *optionsConfig) {
		cfg.reader = reader
	}
}

// WithLogger attaches a zap logger. Resolutions are logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *optionsConfig) {
		cfg.logger = logger
	}
}

// WithObserver attaches a resolution observer, typically metrics.
func WithObserver(observer Observer) Option {
	return func(cfg *optionsConfig) {
		cfg.observer = observer
	}
}

// WithEvaluator configures the expression evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *optionsConfig) {
		cfg.evaluator = e
	}
}

// WithEngine selects the evaluator engine by name (expr, cel or js) when no
// evaluator is set with WithEvaluator. Unlike WithEvaluator, the engine sees
// the resolver's functions.
func WithEngine(engine string) Option {
	return func(cfg *optionsConfig) {
		cfg.engine = engine
	}
}

// WithScope sets the scope reported to evaluators and in evaluation errors.
func WithScope(scope Scope) Option {
	return func(cfg *optionsConfig) {
		cfg.scope = scope.clone()
	}
}

func (cfg optionsConfig) zapLogger() *zap.Logger {
	if cfg.logger != nil {
		return cfg.logger
	}
	return zap.NewNop()
}

func (cfg optionsConfig) evaluatorLogger() EvaluatorLogger {
	if cfg.evalLogger != nil {
		return cfg.evalLogger
	}
	if cfg.logger != nil {
		return zapEvaluatorLogger{logger: cfg.logger}
	}
	return noopEvaluatorLogger{}
}

func (cfg optionsConfig) observerOrNoop() Observer {
	if cfg.observer != nil {
		return cfg.observer
	}
	return noopObserver{}
}
