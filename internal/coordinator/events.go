package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"SharedBoard/internal/state"
)

const (
	EventJoined = "JOINED"
	EventLeft   = "LEFT"
	EventAction = "ACTION"
	EventUndo   = "UNDO"
	EventRedo   = "REDO"
)

// RoomEvent is what downstream consumers learn about a room. Action
// payloads are not included; the snapshot endpoint serves those.
type RoomEvent struct {
	Type     string     `json:"eventType"`
	Room     string     `json:"room"`
	Client   string     `json:"client"`
	ActionID string     `json:"actionId,omitempty"`
	Tool     state.Tool `json:"tool,omitempty"`
	At       time.Time  `json:"at"`
}

var ErrDispatcherClosed = errors.New("event dispatcher closed")

type Publisher interface {
	Publish(ctx context.Context, evt RoomEvent) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, RoomEvent) error { return nil }

type DispatcherOptions struct {
	QueueSize   int
	Workers     int
	MaxRetry    int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// KafkaDispatcher streams room events to a topic without blocking the
// relay: Publish only enqueues and a worker pool sends with bounded retry.
// When the queue stays full past the caller's deadline the event is dropped.
type KafkaDispatcher struct {
	producer sarama.SyncProducer
	topic    string
	queue    chan RoomEvent
	logger   *slog.Logger

	workers     int
	maxRetry    int
	baseBackoff time.Duration
	maxBackoff  time.Duration

	// mu guards closed against a concurrent close of queue.
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewKafkaDispatcher(producer sarama.SyncProducer, topic string, opt DispatcherOptions, logger *slog.Logger) *KafkaDispatcher {
	if opt.QueueSize <= 0 {
		opt.QueueSize = 1024
	}
	if opt.Workers <= 0 {
		opt.Workers = 1
	}
	if opt.BaseBackoff <= 0 {
		opt.BaseBackoff = 50 * time.Millisecond
	}
	if opt.MaxBackoff <= 0 {
		opt.MaxBackoff = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &KafkaDispatcher{
		producer:    producer,
		topic:       topic,
		queue:       make(chan RoomEvent, opt.QueueSize),
		logger:      logger.With("component", "kafka"),
		workers:     opt.Workers,
		maxRetry:    opt.MaxRetry,
		baseBackoff: opt.BaseBackoff,
		maxBackoff:  opt.MaxBackoff,
	}
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.workerLoop(i)
	}
	return d
}

// Publish queues evt. After Close it returns ErrDispatcherClosed, since
// websocket handlers can outlive the HTTP server shutdown.
func (d *KafkaDispatcher) Publish(ctx context.Context, evt RoomEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains the queue and waits for the workers.
func (d *KafkaDispatcher) Close() error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
	return d.producer.Close()
}

func (d *KafkaDispatcher) workerLoop(workerID int) {
	defer d.wg.Done()
	for evt := range d.queue {
		d.sendWithRetry(workerID, evt)
	}
}

func (d *KafkaDispatcher) sendWithRetry(workerID int, evt RoomEvent) {
	for attempt := 0; attempt <= d.maxRetry; attempt++ {
		err := d.sendOnce(evt)
		if err == nil {
			return
		}
		if attempt == d.maxRetry {
			d.logger.Warn("kafka send failed, dropping event",
				"room", evt.Room, "type", evt.Type, "worker", workerID, "err", err)
			return
		}
		backoff := d.baseBackoff * time.Duration(1<<attempt)
		if backoff > d.maxBackoff {
			backoff = d.maxBackoff
		}
		time.Sleep(backoff)
	}
}

func (d *KafkaDispatcher) sendOnce(evt RoomEvent) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, _, err = d.producer.SendMessage(&sarama.ProducerMessage{
		Topic: d.topic,
		Key:   sarama.StringEncoder(evt.Room),
		Value: sarama.ByteEncoder(b),
	})
	return err
}

// NewSyncProducer builds the producer the dispatcher needs.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	// required by SyncProducer
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	return sarama.NewSyncProducer(brokers, cfg)
}
