package app

import (
	"log"
	"strconv"
	"strings"

	"mathquiz-service/internal/domain"
)

// Evaluator computes the value of a two-operand arithmetic expression string
// of the form <int><op><int> with op in {+, -, *}.
type Evaluator struct {
	logger *log.Logger
}

func NewEvaluator(logger *log.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// Evaluate parses and computes the expression, propagating failures.
func (e *Evaluator) Evaluate(expression string) (int64, error) {
	left, op, right, err := splitExpression(expression)
	if err != nil {
		return 0, err
	}

	a, err := strconv.ParseInt(left, 10, 64)
	if err != nil {
		return 0, domain.ErrMalformedExpression
	}
	b, err := strconv.ParseInt(right, 10, 64)
	if err != nil {
		return 0, domain.ErrMalformedExpression
	}

	switch op {
	case '+':
		return checkedAdd(a, b)
	case '-':
		return checkedSub(a, b)
	case '*':
		return checkedMul(a, b)
	}
	return 0, domain.ErrMalformedExpression
}

// TryEvaluate is the best-effort mode: failures are logged and reported as
// absence instead of an error. Used during generation, where a bad candidate
// is discarded and resampled.
func (e *Evaluator) TryEvaluate(expression string) (int64, bool) {
	result, err := e.Evaluate(expression)
	if err != nil {
		if e.logger != nil {
			e.logger.Printf("discarding unevaluable expression %q: %v", expression, err)
		}
		return 0, false
	}
	return result, true
}

// splitExpression locates the operator and returns both operand substrings.
// The operator is searched from index 1 so a leading sign on the first operand
// is not mistaken for it.
func splitExpression(expression string) (string, byte, string, error) {
	if expression == "" {
		return "", 0, "", domain.ErrMalformedExpression
	}
	idx := -1
	for i := 1; i < len(expression); i++ {
		if c := expression[i]; c == '+' || c == '-' || c == '*' {
			// A minus directly after the operator is the second operand's sign;
			// anything else there is a chained operator and rejected below.
			if idx >= 0 && i == idx+1 && c == '-' {
				continue
			}
			if idx >= 0 {
				return "", 0, "", domain.ErrMalformedExpression
			}
			idx = i
		}
	}
	if idx < 0 {
		return "", 0, "", domain.ErrMalformedExpression
	}
	left := expression[:idx]
	right := expression[idx+1:]
	if strings.TrimSpace(left) != left || strings.TrimSpace(right) != right {
		return "", 0, "", domain.ErrMalformedExpression
	}
	return left, expression[idx], right, nil
}

func checkedAdd(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, domain.ErrNonIntegerResult
	}
	return sum, nil
}

func checkedSub(a, b int64) (int64, error) {
	diff := a - b
	if (b < 0 && diff < a) || (b > 0 && diff > a) {
		return 0, domain.ErrNonIntegerResult
	}
	return diff, nil
}

func checkedMul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/a != b {
		return 0, domain.ErrNonIntegerResult
	}
	return product, nil
}
