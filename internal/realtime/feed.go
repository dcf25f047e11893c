// Package realtime carries the live result feed. Every change to a quiz's
// result collection is published as the full current list, never a diff;
// consumers replace their working set wholesale on each delivery and re-run
// the aggregation engine. Last received wins.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BIJODEV/BibleQZ/internal/models"
)

const (
	channelPrefix = "bibleqz:results:"
	publishTTL    = 5 * time.Second
)

// feedPayload is the message published to Redis for cross-instance broadcast.
type feedPayload struct {
	QuizID  string          `json:"quizId"`
	Results []models.Result `json:"results"`
	At      int64           `json:"at"`
}

// Feed bridges result updates across server instances over Redis pub/sub.
type Feed struct {
	client *redis.Client
	logger *zap.Logger
}

func NewFeed(client *redis.Client, logger *zap.Logger) *Feed {
	return &Feed{client: client, logger: logger}
}

// Publish pushes the quiz's full current result collection to its channel.
func (f *Feed) Publish(ctx context.Context, quizID string, results []models.Result) error {
	body, err := json.Marshal(feedPayload{QuizID: quizID, Results: results, At: time.Now().Unix()})
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTTL)
	defer cancel()

	if err := f.client.Publish(pubCtx, channelPrefix+quizID, body).Err(); err != nil {
		f.logger.Warn("failed to publish result feed update",
			zap.String("quiz_id", quizID), zap.Error(err))
		return err
	}
	return nil
}

// Subscribe listens on a quiz's channel and calls handler with the full
// result list on every delivery. The returned cancel function must be invoked
// when the consuming view goes away, or the subscription goroutine leaks.
func (f *Feed) Subscribe(quizID string, handler func(results []models.Result)) (cancel func(), err error) {
	channel := channelPrefix + quizID
	ctx, cancelCtx := context.WithCancel(context.Background())

	pubsub := f.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		cancelCtx()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var p feedPayload
				if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
					f.logger.Warn("dropping malformed feed payload",
						zap.String("quiz_id", quizID), zap.Error(err))
					continue
				}
				handler(p.Results)
			}
		}
	}()

	return func() { cancelCtx() }, nil
}
