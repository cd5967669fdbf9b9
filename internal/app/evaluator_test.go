package app_test

import (
	"errors"
	"testing"

	"mathquiz-service/internal/app"
	"mathquiz-service/internal/domain"
)

func TestEvaluateValidExpressions(t *testing.T) {
	ev := app.NewEvaluator(nil)

	cases := map[string]int64{
		"1+1":   2,
		"10-1":  9,
		"7*8":   56,
		"99+99": 198,
		"10-99": -89,
		"2*2":   4,
		"3*-4":  -12,
		"-5+3":  -2,
	}
	for expr, want := range cases {
		got, err := ev.Evaluate(expr)
		if err != nil {
			t.Fatalf("evaluate %q: %v", expr, err)
		}
		if got != want {
			t.Fatalf("evaluate %q: got %d, want %d", expr, got, want)
		}
	}
}

func TestEvaluateMalformed(t *testing.T) {
	ev := app.NewEvaluator(nil)

	for _, expr := range []string{"", "abc", "1+", "+1", "1++2", "3*+4", "1-+2", "1+2+3", "1.5+2", "1 + 2", "2/2", "seven*8"} {
		if _, err := ev.Evaluate(expr); !errors.Is(err, domain.ErrMalformedExpression) {
			t.Fatalf("evaluate %q: expected malformed expression, got %v", expr, err)
		}
	}
}

func TestEvaluateOverflow(t *testing.T) {
	ev := app.NewEvaluator(nil)

	for _, expr := range []string{
		"9223372036854775807*2",
		"9223372036854775807+1",
		"-9223372036854775808-1",
		"0--9223372036854775808",
	} {
		if _, err := ev.Evaluate(expr); !errors.Is(err, domain.ErrNonIntegerResult) {
			t.Fatalf("evaluate %q: expected non-integer result, got %v", expr, err)
		}
	}
}

func TestTryEvaluateNeverFails(t *testing.T) {
	ev := app.NewEvaluator(nil)

	if _, ok := ev.TryEvaluate("not an expression"); ok {
		t.Fatalf("expected best-effort miss for garbage input")
	}
	got, ok := ev.TryEvaluate("6*7")
	if !ok || got != 42 {
		t.Fatalf("expected 42, got %d ok=%v", got, ok)
	}
}
