package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/quiz"
)

// QuizCache is a read-through cache of quiz documents in front of a backing store.
// Documents are stored as: SET quiz:{key}:doc {json}
type QuizCache struct {
	client  *redis.Client
	backing app.QuizStore
	ttl     time.Duration
	sf      singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizCache(client *redis.Client, backing app.QuizStore, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client:  client,
		backing: backing,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) LoadQuiz(ctx context.Context, key quiz.Key) (*quiz.Quiz, error) {
	if q, ok := c.cached(ctx, key); ok {
		return q, nil
	}

	result, err, _ := c.sf.Do(string(key), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if q, ok := c.cached(ctx, key); ok {
			return q, nil
		}
		q, err := c.backing.LoadQuiz(ctx, key)
		if err != nil {
			return nil, err
		}
		if err := c.fill(ctx, q); err != nil {
			return nil, err
		}
		return q, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*quiz.Quiz), nil
}

func (c *QuizCache) SaveQuiz(ctx context.Context, q *quiz.Quiz) error {
	if err := c.backing.SaveQuiz(ctx, q); err != nil {
		return err
	}
	return c.fill(ctx, q)
}

func (c *QuizCache) DeleteQuiz(ctx context.Context, key quiz.Key) error {
	if err := c.backing.DeleteQuiz(ctx, key); err != nil {
		return err
	}
	if err := c.client.Del(ctx, c.docKey(key)).Err(); err != nil {
		return fmt.Errorf("evict quiz %s: %w", key, err)
	}
	return nil
}

func (c *QuizCache) ListQuizzes(ctx context.Context, owner domain.Participant) ([]*quiz.Quiz, error) {
	return c.backing.ListQuizzes(ctx, owner)
}

// cached treats any Redis failure as a miss so the backing store stays authoritative.
func (c *QuizCache) cached(ctx context.Context, key quiz.Key) (*quiz.Quiz, bool) {
	raw, err := c.client.Get(ctx, c.docKey(key)).Bytes()
	if err != nil {
		return nil, false
	}
	q, err := quiz.Decode(raw)
	if err != nil {
		return nil, false
	}
	return q, true
}

func (c *QuizCache) fill(ctx context.Context, q *quiz.Quiz) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.docKey(q.Key()), data, c.ttlWithJitter()).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("cache quiz %s: %w", q.Key(), err)
	}
	return nil
}

func (c *QuizCache) docKey(key quiz.Key) string {
	return "quiz:" + string(key) + ":doc"
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
