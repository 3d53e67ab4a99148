package service

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog/log"

    q "github.com/iliyamo/todo-api/internal/queue"
)

// EventPublisher delivers domain events to downstream consumers.
type EventPublisher interface {
    Publish(ctx context.Context, ev q.TodoEvent) error
}

// RabbitPublisher publishes events to the todo.events queue.  Each call
// dials the broker, declares the durable queue (idempotent) and publishes
// one persistent message, so no connection state is shared between
// requests.
type RabbitPublisher struct {
    URL string
}

// NewRabbitPublisher returns nil when url is empty, which disables events.
func NewRabbitPublisher(url string) *RabbitPublisher {
    if url == "" {
        return nil
    }
    return &RabbitPublisher{URL: url}
}

// publishTimeout bounds one background publish, dial included.
const publishTimeout = 5 * time.Second

// maxInflightPublishes caps the background publishes running at once.
// Events past the cap are dropped with a warning.
const maxInflightPublishes = 32

var publishSlots = make(chan struct{}, maxInflightPublishes)

// Publish sends ev as JSON. Errors are returned to the caller, which
// treats delivery as best effort.  Dialing and the AMQP handshake end at
// ctx's deadline, or after publishTimeout when ctx has none.
func (p *RabbitPublisher) Publish(ctx context.Context, ev q.TodoEvent) error {
    if p == nil {
        return nil
    }
    if err := ctx.Err(); err != nil {
        return err
    }
    conn, err := amqp.DialConfig(p.URL, amqp.Config{
        Locale: "en_US",
        Dial:   amqp.DefaultDial(dialTimeout(ctx)),
    })
    if err != nil {
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(
        q.EventsQueue, // name
        true,          // durable
        false,         // autoDelete
        false,         // exclusive
        false,         // noWait
        nil,           // args
    ); err != nil {
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }

    return ch.PublishWithContext(ctx,
        "",            // default exchange
        q.EventsQueue, // routing key = queue name
        false,         // mandatory
        false,         // immediate
        amqp.Publishing{
            ContentType:  "application/json",
            DeliveryMode: amqp.Persistent,
            Timestamp:    time.Now().UTC(),
            Type:         ev.Type,
            Body:         body,
        },
    )
}

func dialTimeout(ctx context.Context) time.Duration {
    if dl, ok := ctx.Deadline(); ok {
        if d := time.Until(dl); d > 0 {
            return d
        }
        return time.Millisecond
    }
    return publishTimeout
}

// emit publishes ev in the background so a slow or absent broker never
// delays the response.  A nil publisher drops the event, and so does a
// full set of publish slots.
func emit(p EventPublisher, ev q.TodoEvent) {
    if p == nil {
        return
    }
    if ev.OccurredAt == "" {
        ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
    }
    select {
    case publishSlots <- struct{}{}:
    default:
        log.Warn().Str("event", ev.Type).Uint64("user_id", ev.UserID).Msg("event dropped: too many publishes in flight")
        return
    }
    go func() {
        defer func() { <-publishSlots }()
        ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
        defer cancel()
        if err := p.Publish(ctx, ev); err != nil {
            log.Warn().Err(err).Str("event", ev.Type).Uint64("user_id", ev.UserID).Msg("event publish failed")
        }
    }()
}
