package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/quiz"
)

// AnswerMirror copies live answers into one hash per item so every instance can read them:
// HSET live:{quizKey}:{position} {participantKey} {json tokens}
type AnswerMirror struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAnswerMirror(client *redis.Client, ttl time.Duration) *AnswerMirror {
	return &AnswerMirror{client: client, ttl: ttl}
}

func (m *AnswerMirror) MirrorAnswer(ctx context.Context, key quiz.Key, position int, p domain.Participant, tokens []string) error {
	data, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	hash := m.itemKey(key, position)
	pipe := m.client.TxPipeline()
	pipe.HSet(ctx, hash, p.Key(), data)
	if m.ttl > 0 {
		pipe.Expire(ctx, hash, m.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mirror answer for %s: %w", hash, err)
	}
	return nil
}

// Answers reads the mirrored tally of one item.
func (m *AnswerMirror) Answers(ctx context.Context, key quiz.Key, position int) (map[string][]string, error) {
	raw, err := m.client.HGetAll(ctx, m.itemKey(key, position)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(raw))
	for participant, data := range raw {
		var tokens []string
		if err := json.Unmarshal([]byte(data), &tokens); err != nil {
			return nil, fmt.Errorf("decode mirrored answer of %s: %w", participant, err)
		}
		out[participant] = tokens
	}
	return out, nil
}

func (m *AnswerMirror) DropItem(ctx context.Context, key quiz.Key, position int) error {
	return m.client.Del(ctx, m.itemKey(key, position)).Err()
}

func (m *AnswerMirror) DropQuiz(ctx context.Context, key quiz.Key, positions []int) error {
	if len(positions) == 0 {
		return nil
	}
	keys := make([]string, 0, len(positions))
	for _, p := range positions {
		keys = append(keys, m.itemKey(key, p))
	}
	return m.client.Del(ctx, keys...).Err()
}

func (m *AnswerMirror) itemKey(key quiz.Key, position int) string {
	return "live:" + string(key) + ":" + strconv.Itoa(position)
}
