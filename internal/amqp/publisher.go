package amqp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "openclaw/internal/log"
	"openclaw/internal/runner"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures        = 5
	openTimeout        = 30 * time.Second
	maxPublishAttempts = 3
	publishTimeout     = 5 * time.Second
)

// channel is the subset of *amqp091.Channel used by the client.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("amqp publisher closed")

type dialFunc func(url string) (channel, io.Closer, error)

// Publisher publishes runner results to a durable direct exchange.
type Publisher struct {
	url          string
	exchangeName string
	routingKey   string
	logger       *applog.Logger

	mu      sync.Mutex
	closed  bool
	conn    io.Closer
	channel channel
	dial    dialFunc
	backoff func(attempt int) time.Duration

	state        int32
	failureCount int64
	lastFailure  time.Time
}

var _ runner.Publisher = (*Publisher)(nil)

// NewPublisher dials the broker and declares the exchange plus a durable queue
// bound to routingKey so results are kept until someone consumes them.
func NewPublisher(url, exchangeName, routingKey string, logger *applog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	c := &Publisher{
		url:          url,
		exchangeName: exchangeName,
		routingKey:   routingKey,
		logger:       logger.WithComponent(applog.ComponentAMQP),
		dial:         dialBroker,
		backoff:      exponentialBackoff,
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func dialBroker(url string) (channel, io.Closer, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	return ch, conn, nil
}

func (c *Publisher) connect() error {
	ch, conn, err := c.dial(c.url)
	if err != nil {
		return err
	}
	if err := setup(ch, c.exchangeName, c.routingKey); err != nil {
		ch.Close()
		if conn != nil {
			conn.Close()
		}
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		ch.Close()
		if conn != nil {
			conn.Close()
		}
		return ErrPublisherClosed
	}
	if c.channel != nil && c.channel != ch {
		c.channel.Close()
	}
	if c.conn != nil && c.conn != conn {
		c.conn.Close()
	}
	c.channel, c.conn = ch, conn
	return nil
}

func setup(ch channel, exchangeName, routingKey string) error {
	// Declare exchange
	err := ch.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// Declare queue named after the routing key
	_, err = ch.QueueDeclare(
		routingKey, // name
		true,       // durable
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = ch.QueueBind(
		routingKey,   // queue name
		routingKey,   // routing key
		exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish implements runner.Publisher. Connection errors trigger a reconnect
// and a bounded number of retries; repeated failures open the circuit breaker.
func (c *Publisher) Publish(ctx context.Context, r runner.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrPublisherClosed
	}
	if c.isCircuitOpen() {
		return errors.New("publish result: circuit breaker is open")
	}

	msg, err := NewResultPublishing(r)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < maxPublishAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				c.recordFailure()
				return ctx.Err()
			case <-time.After(c.backoff(attempt - 1)):
			}
			if rerr := c.connect(); rerr != nil {
				if errors.Is(rerr, ErrPublisherClosed) {
					return rerr
				}
				err = rerr
				continue
			}
		}

		err = c.publishOnce(ctx, msg)
		if err == nil {
			c.recordSuccess()
			c.logger.InfoContext(ctx, "Published task result",
				applog.FieldTaskID, r.TaskID,
				applog.FieldExchange, c.exchangeName,
				applog.FieldRoutingKey, c.routingKey)
			return nil
		}
		if !isConnectionError(err) {
			break
		}
		c.logger.WarnContext(ctx, "AMQP connection problem, retrying",
			applog.FieldTaskID, r.TaskID,
			"attempt", attempt+1,
			applog.FieldError, err)
	}

	c.recordFailure()
	return fmt.Errorf("publish result: %w", err)
}

func (c *Publisher) publishOnce(ctx context.Context, msg amqp091.Publishing) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return amqp091.ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return ch.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.routingKey,   // routing key
		false,          // mandatory
		false,          // immediate
		msg,
	)
}

func (c *Publisher) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateOpen:
		c.mu.Lock()
		last := c.lastFailure
		c.mu.Unlock()
		if time.Since(last) > openTimeout {
			atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
}

func (c *Publisher) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Publisher) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// exponentialBackoff returns 1s, 2s, 4s... capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return 30 * time.Second
	}
	d := time.Second << uint(attempt)
	if d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) || errors.Is(err, io.EOF) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "closed network"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Publisher) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
