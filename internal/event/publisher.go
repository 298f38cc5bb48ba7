package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const defaultExchange = "problem.events"

// Publisher sends problem events to a durable topic exchange.
// A Publisher built without a URL is disabled and drops events.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	enabled  bool
	logger   zerolog.Logger
}

// NewPublisher dials RabbitMQ and declares the exchange.
func NewPublisher(url, exchange string, logger zerolog.Logger) (*Publisher, error) {
	if exchange == "" {
		exchange = defaultExchange
	}
	logger = logger.With().Str("component", "event_publisher").Str("exchange", exchange).Logger()

	if url == "" {
		logger.Warn().Msg("AMQP_URL is empty, event publishing is disabled")
		return &Publisher{exchange: exchange, logger: logger}, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	logger.Info().Msg("event publisher initialized")

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		enabled:  true,
		logger:   logger,
	}, nil
}

// Enabled reports whether events actually leave the process.
func (p *Publisher) Enabled() bool {
	return p != nil && p.enabled
}

// Publish sends evt with its type as routing key. amqp channels are not safe
// for concurrent publishing, so calls are serialised.
func (p *Publisher) Publish(ctx context.Context, evt ProblemEvent) error {
	if !p.Enabled() {
		if p != nil {
			p.logger.Debug().Str("event_type", string(evt.Type)).Msg("event publishing disabled, skipping")
		}
		return nil
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		p.exchange,       // exchange
		string(evt.Type), // routing key
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    evt.ID,
			Timestamp:    evt.OccurredAt,
			Body:         body,
			Headers: amqp.Table{
				"event_type": string(evt.Type),
				"problem_id": strconv.FormatInt(evt.ProblemID, 10),
			},
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}

	p.logger.Debug().Str("event_type", string(evt.Type)).Int64("problem_id", evt.ProblemID).Msg("event published")
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Warn().Err(err).Msg("close channel")
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("close connection: %w", err)
		}
	}
	return nil
}
