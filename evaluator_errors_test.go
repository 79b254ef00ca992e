package openadas

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapEvaluationErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapEvaluationError("expr", `len(cxs.H.C["6"]) > 1`, "site", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" {
		t.Fatalf("expected engine expr, got %q", evalErr.Engine)
	}
	if evalErr.Expr != `len(cxs.H.C["6"]) > 1` {
		t.Fatalf("expected expression metadata, got %q", evalErr.Expr)
	}
	if evalErr.Scope != "site" {
		t.Fatalf("expected scope metadata, got %q", evalErr.Scope)
	}
	if !errors.Is(evalErr.Err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
	if !strings.Contains(err.Error(), "scope=site") {
		t.Fatalf("expected scope in message, got %q", err.Error())
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{
		Engine: "expr",
		Err:    base,
	}

	err := wrapEvaluationError("cel", "size(bms)", "user", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "size(bms)" {
		t.Fatalf("expression should be filled, got %q", existing.Expr)
	}
	if existing.Scope != "user" {
		t.Fatalf("scope should be filled, got %q", existing.Scope)
	}
}

func TestWrapEvaluatorErrorPrefixesOnce(t *testing.T) {
	if wrapEvaluatorError("cel", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	err := wrapEvaluatorError("cel", errors.New("no such key: W"))
	if err.Error() != "openadas: cel evaluator: no such key: W" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if again := wrapEvaluatorError("cel", err); again.Error() != err.Error() {
		t.Fatalf("already prefixed errors must pass through, got %q", again.Error())
	}
}
