package domain

import "errors"

var (
	// ErrMalformedExpression is returned when a string is not <int><op><int>.
	ErrMalformedExpression = errors.New("malformed expression")
	// ErrNonIntegerResult is returned when an expression's value cannot be
	// represented as an integer.
	ErrNonIntegerResult = errors.New("expression result is not an integer")
	// ErrInvalidCount is returned for non-positive question counts.
	ErrInvalidCount = errors.New("question count must be positive")
	// ErrUnsupportedCount is returned for counts above the generation ceiling.
	ErrUnsupportedCount = errors.New("question count above supported maximum")
	// ErrGenerationExhausted is returned when sampling cannot find a fresh question.
	ErrGenerationExhausted = errors.New("question sampling exhausted")
	// ErrValidation is returned for structurally invalid input.
	ErrValidation = errors.New("validation failed")
	// ErrScoring is returned when a stored question cannot be re-evaluated.
	ErrScoring = errors.New("scoring failed")
	// ErrInvariant signals a computed score violating its own bounds; a bug, not user error.
	ErrInvariant = errors.New("internal invariant violated")
	// ErrPersistence is returned when the storage collaborator fails.
	ErrPersistence = errors.New("persistence failed")
	// ErrQuizNotFound indicates the quiz does not exist (or no longer exists).
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrUnauthenticated is returned when no requester identity is present.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when the requester is not the quiz owner.
	ErrForbidden = errors.New("forbidden")
)

// Kind names the error class a caller should react to. Kinds map one-to-one
// onto transport severities (bad-input, unauthenticated, forbidden, not-found,
// internal).
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrMalformedExpression),
		errors.Is(err, ErrNonIntegerResult),
		errors.Is(err, ErrInvalidCount),
		errors.Is(err, ErrUnsupportedCount),
		errors.Is(err, ErrValidation):
		return "bad-input"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrQuizNotFound):
		return "not-found"
	default:
		return "internal"
	}
}
