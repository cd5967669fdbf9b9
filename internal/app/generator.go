package app

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"mathquiz-service/internal/domain"
)

const (
	// MaxQuestionCount is the policy ceiling for one generation call.
	MaxQuestionCount = 30

	// maxAttemptsPerSlot bounds resampling so uniqueness pressure cannot spin
	// forever. Unreachable in practice for counts within the ceiling.
	maxAttemptsPerSlot = 10000
)

var operators = []byte{'+', '-', '*'}

// Generator produces unique, evaluable expression strings. Operand ranges are
// operator-specific so subtraction stays non-trivial and products stay small.
type Generator struct {
	evaluator *Evaluator
	rnd       *rand.Rand
}

func NewGenerator(evaluator *Evaluator) *Generator {
	return &Generator{
		evaluator: evaluator,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewGeneratorWithSeed is test-only for deterministic sampling.
func NewGeneratorWithSeed(evaluator *Evaluator, seed int64) *Generator {
	return &Generator{
		evaluator: evaluator,
		rnd:       rand.New(rand.NewSource(seed)),
	}
}

// Generate returns exactly count unique expressions, each verified evaluable
// in best-effort mode before being accepted.
func (g *Generator) Generate(count int) ([]string, error) {
	if count <= 0 {
		return nil, domain.ErrInvalidCount
	}
	if count > MaxQuestionCount {
		return nil, domain.ErrUnsupportedCount
	}

	questions := make([]string, 0, count)
	seen := make(map[string]struct{}, count)
	for len(questions) < count {
		accepted := false
		for attempt := 0; attempt < maxAttemptsPerSlot; attempt++ {
			candidate := g.sample()
			if _, dup := seen[candidate]; dup {
				continue
			}
			if _, ok := g.evaluator.TryEvaluate(candidate); !ok {
				continue
			}
			seen[candidate] = struct{}{}
			questions = append(questions, candidate)
			accepted = true
			break
		}
		if !accepted {
			return nil, fmt.Errorf("%w after %d attempts", domain.ErrGenerationExhausted, maxAttemptsPerSlot)
		}
	}
	return questions, nil
}

func (g *Generator) sample() string {
	op := operators[g.rnd.Intn(len(operators))]
	var a, b int
	switch op {
	case '+':
		a = g.intn(1, 100)
		b = g.intn(1, 100)
	case '-':
		a = g.intn(10, 100)
		b = g.intn(1, 99)
	case '*':
		a = g.intn(2, 10)
		b = g.intn(2, 20)
	}
	return strconv.Itoa(a) + string(op) + strconv.Itoa(b)
}

// intn samples uniformly from [low, high).
func (g *Generator) intn(low, high int) int {
	return low + g.rnd.Intn(high-low)
}
