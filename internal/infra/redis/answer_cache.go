package redis

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"mathquiz-service/internal/app"
)

// AnswerCache caches computed answer keys in Redis (hash per quiz) and falls
// back to an AnswerSource on cache miss. Questions are immutable after quiz
// creation, so a cached key never goes stale; TTL just bounds memory.
// Keys are stored as: HSET quiz:{quizID}:answers {questionIndex} {answer}
type AnswerCache struct {
	client *redis.Client
	source app.AnswerSource
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

var _ app.AnswerSource = (*AnswerCache)(nil)

func NewAnswerCache(client *redis.Client, source app.AnswerSource, ttl time.Duration) *AnswerCache {
	return &AnswerCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AnswerCache) CorrectAnswers(ctx context.Context, quizID int64) ([]int64, error) {
	key := c.answersKey(quizID)

	cached, err := c.client.HGetAll(ctx, key).Result()
	if err == nil && len(cached) > 0 {
		if answers, ok := answersFromHash(cached); ok {
			return answers, nil
		}
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		cached, err := c.client.HGetAll(ctx, key).Result()
		if err == nil && len(cached) > 0 {
			if answers, ok := answersFromHash(cached); ok {
				return answers, nil
			}
		}

		answers, err := c.source.CorrectAnswers(ctx, quizID)
		if err != nil {
			return nil, err
		}

		pipe := c.client.Pipeline()
		for i, answer := range answers {
			pipe.HSet(ctx, key, strconv.Itoa(i), answer)
		}
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return answers, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]int64), nil
}

func (c *AnswerCache) answersKey(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10) + ":answers"
}

// answersFromHash rebuilds the ordered key from index->answer hash fields.
func answersFromHash(hash map[string]string) ([]int64, bool) {
	answers := make([]int64, len(hash))
	for field, value := range hash {
		idx, err := strconv.Atoi(field)
		if err != nil || idx < 0 || idx >= len(answers) {
			return nil, false
		}
		answer, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, false
		}
		answers[idx] = answer
	}
	return answers, true
}

func (c *AnswerCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
