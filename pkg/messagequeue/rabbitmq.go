package messagequeue

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/streadway/amqp"
)

// ErrClosed is returned when a consumer's delivery channel is closed by the broker.
var ErrClosed = errors.New("message queue: delivery channel closed")

// RabbitMQService implements the MessageQueue interface using RabbitMQ.
type RabbitMQService struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	// amqp channels are not safe for concurrent publishing
	mu       sync.Mutex
	declared map[string]bool
}

// NewRabbitMQServiceConfig contains options for creating a new RabbitMQService.
type NewRabbitMQServiceConfig struct {
	URL string
}

// NewRabbitMQService creates a new instance of RabbitMQService.
func NewRabbitMQService(cfg NewRabbitMQServiceConfig) (*RabbitMQService, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		log.Printf("Failed to connect to RabbitMQ: %v", err)
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("Failed to open a channel: %v", err)
		conn.Close()
		return nil, err
	}

	log.Println("Successfully connected to RabbitMQ and opened a channel")
	return &RabbitMQService{conn: conn, channel: ch, declared: make(map[string]bool)}, nil
}

func (s *RabbitMQService) declare(queueName string) error {
	if s.declared[queueName] {
		return nil
	}
	_, err := s.channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		log.Printf("Failed to declare a queue %s: %v", queueName, err)
		return err
	}
	s.declared[queueName] = true
	return nil
}

// Publish sends a JSON message to a RabbitMQ queue.
func (s *RabbitMQService) Publish(ctx context.Context, queueName string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.declare(queueName); err != nil {
		return err
	}
	err := s.channel.Publish(
		"",        // exchange
		queueName, // routing key (queue name)
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		})
	if err != nil {
		log.Printf("Failed to publish a message to queue %s: %v", queueName, err)
		return err
	}
	return nil
}

// Consume starts consuming messages from a RabbitMQ queue with manual acks.
// A handler error nacks the delivery with requeue.
func (s *RabbitMQService) Consume(ctx context.Context, queueName string, handler Handler) error {
	s.mu.Lock()
	err := s.declare(queueName)
	var msgs <-chan amqp.Delivery
	if err == nil {
		msgs, err = s.channel.Consume(
			queueName, // queue
			"",        // consumer
			false,     // auto-ack
			false,     // exclusive
			false,     // no-local
			false,     // no-wait
			nil,       // args
		)
	}
	s.mu.Unlock()
	if err != nil {
		log.Printf("Failed to register a consumer for queue %s: %v", queueName, err)
		return err
	}

	log.Printf("Waiting for messages on queue %s", queueName)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return ErrClosed
			}
			if err := handler(ctx, d.Body); err != nil {
				log.Printf("Handler failed for message on queue %s: %v", queueName, err)
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Close closes the RabbitMQ channel and connection.
func (s *RabbitMQService) Close() error {
	var lastErr error
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			log.Printf("Error closing RabbitMQ channel: %v", err)
			lastErr = err
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			log.Printf("Error closing RabbitMQ connection: %v", err)
			lastErr = err
		}
	}
	if lastErr == nil {
		log.Println("RabbitMQ channel and connection closed successfully.")
	}
	return lastErr
}
