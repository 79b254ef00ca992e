//go:build !js_eval

package openadas

// NewJSEvaluator returns nil in builds without the js_eval tag; NewEvaluator
// turns that into ErrNoEvaluator for the js engine.
func NewJSEvaluator(...JSEvaluatorOption) Evaluator { return nil }

func jsEvaluatorAvailable() bool { return false }
