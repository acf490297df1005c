// Package eventbus provides a Kafka-backed event bus with delayed retry
// topics and a dead letter queue per base topic.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RetryDelays lists the fixed backoff per retry attempt (1-based).
var RetryDelays = []time.Duration{
	10 * time.Second,
	30 * time.Second,
	1 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

// Topic manages the base, retry and DLQ topic names for one logical topic.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// DLQ returns the dead letter topic name (e.g. my_topic.dlq).
func (t Topic) DLQ() string {
	return t.base + ".dlq"
}

// GetRetryTopics returns the names of all retry topics.
func (t Topic) GetRetryTopics() []string {
	topics := make([]string, len(RetryDelays))
	for i, delay := range RetryDelays {
		// name format: base.retry.10s
		topics[i] = fmt.Sprintf("%s.retry.%s", t.base, delay.String())
	}
	return topics
}

// GetRetryTopic returns the retry topic for the next attempt (1-based).
func (t Topic) GetRetryTopic(retryCount int) (string, error) {
	if retryCount <= 0 || retryCount > len(RetryDelays) {
		return "", ErrMaxRetryExceeded
	}
	delay := RetryDelays[retryCount-1]
	return fmt.Sprintf("%s.retry.%s", t.base, delay.String()), nil
}

// Event is the payload envelope carried in every Kafka message.
type Event struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	Retry     int             `json:"retry"` // current retry count, starts at 0
	MaxRetry  int             `json:"max_retry"`
	LastError string          `json:"last_error,omitempty"`
}

// EventHandler is the signature of an event processing function.
type EventHandler func(ctx context.Context, event Event) error

// EventBus abstracts publishing and subscribing.
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	// Subscribe consumes the base topic and runs the main handler.
	Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error
	// StartRetryReinjector consumes all retry topics and republishes events
	// to the base topic once their delay has elapsed.
	StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error
	Close()
}

// ErrMaxRetryExceeded is returned when the retry budget is exhausted.
var ErrMaxRetryExceeded = errors.New("maximum retry count exceeded")

// ErrRetryScheduleFailed is returned when a retry or DLQ publish fails.
var ErrRetryScheduleFailed = errors.New("retry or DLQ publish failed")
