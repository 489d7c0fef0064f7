package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telecare/internal/core/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventType represents the type of event
type EventType string

const (
	EventRoomCreated      EventType = "room.created"
	EventRoomDeleted      EventType = "room.deleted"
	EventUserJoined       EventType = "user.joined"
	EventUserDisconnected EventType = "user.disconnected"
)

// Event is a room lifecycle notification published for external consumers
// (for example, an admin dashboard watching active calls).
type Event struct {
	Type       EventType     `json:"type"`
	InstanceID string        `json:"instance_id"`
	Timestamp  time.Time     `json:"timestamp"`
	RoomID     domain.RoomID `json:"room_id,omitempty"`
	UserID     domain.UserID `json:"user_id,omitempty"`
}

// Publisher publishes room lifecycle events. Implementations must not block
// the caller on slow consumers.
type Publisher interface {
	Publish(event *Event)
	Close() error
}

// NoopPublisher discards all events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(*Event) {}
func (NoopPublisher) Close() error   { return nil }

// EventBus publishes events over a Redis channel.
type EventBus struct {
	client     *redis.Client
	instanceID string
	channel    string
	logger     *zap.SugaredLogger

	queue chan *Event
	done  chan struct{}
}

// NewEventBus creates a new event bus. Publishing is asynchronous: events are
// queued and written to Redis by a background goroutine so that room
// operations never wait on Redis.
func NewEventBus(client *redis.Client, instanceID, channel string, logger *zap.SugaredLogger) *EventBus {
	eb := &EventBus{
		client:     client,
		instanceID: instanceID,
		channel:    channel,
		logger:     logger,
		queue:      make(chan *Event, 256),
		done:       make(chan struct{}),
	}
	go eb.run()
	return eb
}

// Publish enqueues an event. If the queue is full the event is discarded.
func (eb *EventBus) Publish(event *Event) {
	event.InstanceID = eb.instanceID
	event.Timestamp = time.Now()

	select {
	case eb.queue <- event:
	default:
		eb.logger.Warnw("event queue full, discarding event", "type", event.Type)
	}
}

func (eb *EventBus) run() {
	for {
		select {
		case <-eb.done:
			return
		case event := <-eb.queue:
			data, err := json.Marshal(event)
			if err != nil {
				eb.logger.Warnw("failed to marshal event", "type", event.Type, "error", err)
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err = eb.client.Publish(ctx, eb.channel, data).Err()
			cancel()
			if err != nil {
				eb.logger.Warnw("failed to publish event", "type", event.Type, "error", err)
				continue
			}

			eb.logger.Debugw("published event",
				"type", event.Type,
				"room_id", event.RoomID,
				"user_id", event.UserID,
			)
		}
	}
}

// Subscribe subscribes to events and calls handler for each event published
// by other instances.
func (eb *EventBus) Subscribe(ctx context.Context, handler func(*Event) error) error {
	pubsub := eb.client.Subscribe(ctx, eb.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-ch:
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				eb.logger.Warnw("failed to unmarshal event", "error", err)
				continue
			}

			if event.InstanceID == eb.instanceID {
				continue
			}

			if err := handler(&event); err != nil {
				eb.logger.Warnw("error handling event", "type", event.Type, "error", err)
			}
		}
	}
}

// Close stops the publishing goroutine.
func (eb *EventBus) Close() error {
	select {
	case <-eb.done:
		return fmt.Errorf("already closed")
	default:
	}
	close(eb.done)
	return nil
}
