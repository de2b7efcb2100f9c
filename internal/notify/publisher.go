package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"railbook/internal/domain/models"
	"railbook/internal/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const TicketBookedType = "ticket.booked"

// Envelope wraps every event pushed to a notification queue.
type Envelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Queue     string          `json:"queue"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// RedisPublisher appends events to a Redis list consumed by the mailer.
type RedisPublisher struct {
	Client *redis.Client
	Prefix string
	Queue  string
}

func NewRedisPublisher(client *redis.Client, prefix, queue string) RedisPublisher {
	return RedisPublisher{Client: client, Prefix: prefix, Queue: queue}
}

// QueueKey is the Redis list the publisher writes to.
func (p RedisPublisher) QueueKey() string {
	return p.Prefix + "queues:" + p.Queue
}

func (p RedisPublisher) PublishTicketBooked(ctx context.Context, evt models.TicketBookedEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	env := Envelope{
		ID:        uuid.NewString(),
		Type:      TicketBookedType,
		Queue:     p.Queue,
		RequestID: utils.RequestIDFrom(ctx),
		Payload:   body,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if err := p.Client.RPush(ctx, p.QueueKey(), data).Err(); err != nil {
		return fmt.Errorf("push %s: %w", p.QueueKey(), err)
	}
	utils.LogCtx(ctx, "notify", "push", fmt.Sprintf("queue=%s id=%s ticket_number=%s", p.Queue, env.ID, evt.TicketNumber))
	return nil
}

// LogPublisher only logs events. It is used when Redis is not configured.
type LogPublisher struct{}

func (LogPublisher) PublishTicketBooked(ctx context.Context, evt models.TicketBookedEvent) error {
	utils.LogCtx(ctx, "notify", "log_only", fmt.Sprintf("ticket_number=%s email=%s seats=%d", evt.TicketNumber, evt.Email, evt.NoOfSeats))
	return nil
}
