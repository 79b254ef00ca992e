package openadas

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNoEvaluator is returned when no evaluator could be configured.
	ErrNoEvaluator = errors.New("openadas: evaluator not configured")
	// ErrUnknownEngine is returned by NewEvaluator for unrecognised engines.
	ErrUnknownEngine = errors.New("openadas: unknown evaluator engine")
)

// Engine names accepted by NewEvaluator.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// NewEvaluator builds the named engine with an optional cache and registry.
// The js engine needs the js_eval build tag.
func NewEvaluator(engine string, cache ProgramCache, registry *FunctionRegistry) (Evaluator, error) {
	var evaluator Evaluator
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineExpr:
		evaluator = NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry))
	case EngineCEL:
		evaluator = NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry))
	case EngineJS:
		if !jsEvaluatorAvailable() {
			return nil, errors.WithHint(errors.Wrap(ErrNoEvaluator, engine), jsEvaluatorHint)
		}
		evaluator = NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry))
	default:
		return nil, errors.Wrap(ErrUnknownEngine, engine)
	}
	if evaluator == nil {
		return nil, errors.Wrap(ErrNoEvaluator, engine)
	}
	return evaluator, nil
}

// Evaluate runs expr against the configuration snapshot. Categories are
// bound as top-level variables, so `size(cxs.D.C)` or `bms.H.C["6"]` work
// depending on the engine.
func (s *ConfigStore) Evaluate(expr string) (Response[any], error) {
	return s.EvaluateWith(RuleContext{}, expr)
}

// EvaluateWith runs expr using ctx, falling back to the stored configuration
// when ctx.Snapshot is nil.
func (s *ConfigStore) EvaluateWith(ctx RuleContext, expr string) (Response[any], error) {
	if s == nil {
		return Response[any]{}, errors.New("openadas: config store is nil")
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = s.cfg.Snapshot()
	}
	evaluator, err := s.opts.resolveEvaluator()
	if err != nil {
		return Response[any]{}, err
	}
	return evaluate(evaluator, s.opts, ctx, expr)
}

func evaluate(evaluator Evaluator, cfg optionsConfig, ctx RuleContext, expr string) (Response[any], error) {
	if expr == "" {
		return Response[any]{}, errEmptyExpression
	}
	ctx = ctx.withDefaults().withDefaultScope(cfg.scope)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	evalErr = wrapEvaluationError(evaluatorEngineName(evaluator), expr, ctx.scopeLabel(), evalErr)
	cfg.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
		Engine:   evaluatorEngineName(evaluator),
		Expr:     expr,
		Scope:    ctx.scopeLabel(),
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return Response[any]{}, evalErr
	}
	return Response[any]{Value: value}, nil
}

// resolveEvaluator returns the configured evaluator or a fresh one for the
// configured engine (expr by default) over the configured cache and registry.
func (cfg optionsConfig) resolveEvaluator() (Evaluator, error) {
	if cfg.evaluator != nil {
		return cfg.evaluator, nil
	}
	return NewEvaluator(cfg.engine, cfg.programCache, cfg.functions)
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return EngineExpr
	case *celEvaluator:
		return EngineCEL
	default:
		if name, ok := e.(interface{ EngineName() string }); ok {
			return name.EngineName()
		}
		return "custom"
	}
}
