package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"tube-brief/logger"
)

// KafkaEventBus implements EventBus on confluent-kafka-go.
type KafkaEventBus struct {
	Producer *kafka.Producer
	Brokers  string
}

// NewKafkaEventBus initializes the Kafka producer.
func NewKafkaEventBus(brokers string) (*KafkaEventBus, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"retries":           5,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka producer creation failed: %w", err)
	}

	// drain delivery reports
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					logger.Log.Errorf("message delivery failed %v: %v", ev.TopicPartition, ev.TopicPartition.Error)
				}
			case kafka.Error:
				logger.Log.Errorf("kafka error: %v", ev)
			}
		}
	}()

	return &KafkaEventBus{
		Producer: p,
		Brokers:  brokers,
	}, nil
}

// Close flushes outstanding messages and shuts the producer down.
func (k *KafkaEventBus) Close() {
	if k.Producer != nil {
		if remaining := k.Producer.Flush(5000); remaining > 0 {
			logger.Log.Warnf("%d messages still unflushed after close", remaining)
		}
		k.Producer.Close()
		logger.Log.Info("Kafka producer closed.")
	}
}

// Publish sends an event to the given topic and waits for the delivery
// report.
func (k *KafkaEventBus) Publish(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("event marshal failed: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	defer close(deliveryChan)

	err = k.Producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(event.ID),
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("message publish failed: %w", err)
	}

	select {
	case ev := <-deliveryChan:
		m := ev.(*kafka.Message)
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("message delivery failed: %w", m.TopicPartition.Error)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// Subscribe consumes the base topic and runs the business handler. Handler
// failures are scheduled onto the next retry topic, or the DLQ once the
// retry budget is exhausted. Offsets are committed manually only after the
// handler or the retry/DLQ publish succeeded.
func (k *KafkaEventBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":             k.Brokers,
		"group.id":                      groupID,
		"auto.offset.reset":             "earliest",
		"enable.auto.commit":            false,
		"partition.assignment.strategy": "range",
	})
	if err != nil {
		return fmt.Errorf("kafka consumer creation failed: %w", err)
	}
	defer c.Close()

	topicsToSubscribe := []string{topic.Base()}
	if err := c.SubscribeTopics(topicsToSubscribe, nil); err != nil {
		return fmt.Errorf("topic subscribe failed %v: %w", topicsToSubscribe, err)
	}

	logger.Log.Infof("main consumer (%s) started. topics: %s", groupID, strings.Join(topicsToSubscribe, ", "))

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("main consumer shutting down.")
			return ctx.Err()
		default:
			msg, err := c.ReadMessage(100 * time.Millisecond)
			if err != nil {
				if kerr, ok := err.(kafka.Error); ok && kerr.Code() == kafka.ErrTimedOut {
					continue
				}
				continue
			}

			var evt Event
			if err := json.Unmarshal(msg.Value, &evt); err != nil {
				logger.Log.Errorf("bad event payload on topic %s: %v. skipping and committing.", *msg.TopicPartition.Topic, err)
				c.CommitMessage(msg)
				continue
			}

			if evt.MaxRetry <= 0 || evt.MaxRetry > len(RetryDelays) {
				evt.MaxRetry = len(RetryDelays)
			}

			if evt.Retry > 0 {
				logger.Log.Infof("processing event %s (retry %d/%d) - topic: %s", evt.ID, evt.Retry, evt.MaxRetry, *msg.TopicPartition.Topic)
			} else {
				logger.Log.Debugf("processing event %s - topic: %s", evt.ID, *msg.TopicPartition.Topic)
			}
			err = handler(ctx, evt)

			if err != nil {
				evt.LastError = err.Error()
				nextRetryCount := evt.Retry + 1
				nextRetryTopic, getTopicErr := topic.GetRetryTopic(nextRetryCount)

				if getTopicErr == ErrMaxRetryExceeded {
					logger.Log.Errorf("event %s exhausted retries. sending to DLQ %s. final error: %s", evt.ID, topic.DLQ(), err.Error())
					publishErr := k.Publish(ctx, topic.DLQ(), evt)
					if publishErr != nil {
						logger.Log.Errorf("DLQ %s publish failed: %v. not committing offset.", topic.DLQ(), publishErr)
						continue
					}
				} else if getTopicErr != nil {
					logger.Log.Errorf("unexpected error resolving retry topic: %v. not committing offset.", getTopicErr)
					continue
				} else {
					evt.Retry = nextRetryCount
					logger.Log.Warnf("event %s failed. scheduling retry %d/%d on topic %s.",
						evt.ID, evt.Retry, evt.MaxRetry, nextRetryTopic)
					publishErr := k.Publish(ctx, nextRetryTopic, evt)
					if publishErr != nil {
						logger.Log.Errorf("retry publish to topic %s failed: %v. not committing offset.", nextRetryTopic, publishErr)
						continue
					}
				}
			}

			if _, err := c.CommitMessage(msg); err != nil {
				logger.Log.Errorf("offset commit error: %v", err)
			}
		}
	}
}

// StartRetryReinjector consumes all retry topics and republishes messages
// to the base topic once their delay has elapsed. Messages that are not
// ready yet are redelivered without committing.
func (k *KafkaEventBus) StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":             k.Brokers,
		"group.id":                      groupID,
		"auto.offset.reset":             "earliest",
		"enable.auto.commit":            false,
		"partition.assignment.strategy": "range",
	})
	if err != nil {
		return fmt.Errorf("kafka retry reinjector creation failed: %w", err)
	}
	defer c.Close()

	retryTopics := topic.GetRetryTopics()
	if err := c.SubscribeTopics(retryTopics, nil); err != nil {
		return fmt.Errorf("retry topic subscribe failed %v: %w", retryTopics, err)
	}

	logger.Log.Infof("retry reinjector consumer (%s) started. topics: %s", groupID, strings.Join(retryTopics, ", "))

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("retry reinjector consumer shutting down.")
			return ctx.Err()
		default:
			msg, err := c.ReadMessage(100 * time.Millisecond)
			if err != nil {
				if kerr, ok := err.(kafka.Error); ok {
					if kerr.Code() == kafka.ErrTimedOut {
						continue
					}
					if kerr.IsFatal() {
						return fmt.Errorf("retry reinjector fatal error: %w", err)
					}
				}
				logger.Log.Errorf("retry reinjector ReadMessage error: %v", err)
				time.Sleep(500 * time.Millisecond)
				continue
			}

			topicName := *msg.TopicPartition.Topic
			delayDur, ok := ParseRetryDelayFromTopicName(topicName)
			if !ok {
				logger.Log.Errorf("could not parse retry topic name: %s. skipping and committing.", topicName)
				c.CommitMessage(msg)
				continue
			}

			readyAt := msg.Timestamp.Add(delayDur)
			now := time.Now()
			if now.Before(readyAt) {
				remaining := readyAt.Sub(now)
				// sleep in small slices so the consumer loop stays responsive
				sleepDur := remaining
				if sleepDur > 500*time.Millisecond {
					sleepDur = 500 * time.Millisecond
				} else if sleepDur < 50*time.Millisecond {
					sleepDur = 50 * time.Millisecond
				}
				time.Sleep(sleepDur)
				// no commit: the message will be redelivered
				continue
			}

			var evt Event
			if err := json.Unmarshal(msg.Value, &evt); err != nil {
				logger.Log.Errorf("bad event payload on retry topic %s: %v. skipping and committing.", *msg.TopicPartition.Topic, err)
				c.CommitMessage(msg)
				continue
			}

			logger.Log.Infof("reinjecting event %s from %s to %s. (retry: %d)",
				evt.ID, *msg.TopicPartition.Topic, topic.Base(), evt.Retry)

			if err := k.Publish(ctx, topic.Base(), evt); err != nil {
				logger.Log.Errorf("reinjection of event %s failed: %v. not committing offset.", evt.ID, err)
				continue
			}

			if _, err := c.CommitMessage(msg); err != nil {
				logger.Log.Errorf("commit after reinjection failed: %v", err)
			}
		}
	}
}
