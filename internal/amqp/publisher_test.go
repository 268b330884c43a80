package amqp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "openclaw/internal/log"
	"openclaw/internal/runner"
)

type fakeChannel struct {
	exchanges []string
	queues    []string
	bindings  []string
	published []amqp091.Publishing
	keys      []string
	// publishErrs is consumed one per PublishWithContext call
	publishErrs []error
	closed      bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	f.exchanges = append(f.exchanges, fmt.Sprintf("%s/%s/%t", name, kind, durable))
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error) {
	f.queues = append(f.queues, fmt.Sprintf("%s/%t", name, durable))
	return amqp091.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error {
	f.bindings = append(f.bindings, name+"<-"+exchange+":"+key)
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if len(f.publishErrs) > 0 {
		err := f.publishErrs[0]
		f.publishErrs = f.publishErrs[1:]
		if err != nil {
			return err
		}
	}
	f.keys = append(f.keys, exchange+":"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func newTestPublisher(ch *fakeChannel, dials *int32) *Publisher {
	c := &Publisher{
		exchangeName: "openclaw",
		routingKey:   "runner.results",
		logger:       applog.Discard(),
		backoff:      func(int) time.Duration { return 0 },
		dial: func(string) (channel, io.Closer, error) {
			if dials != nil {
				atomic.AddInt32(dials, 1)
			}
			return ch, nil, nil
		},
	}
	if err := c.connect(); err != nil {
		panic(err)
	}
	return c
}

func sampleResult() runner.Result {
	return runner.Result{
		TaskID: "task-42",
		Model:  "llama3.1",
		Status: runner.StatusSuccess,
		Output: "Task task-42 completed (stub)",
	}
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
		{-1, 1 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"connection closed", errors.New("connection closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed network", errors.New("use of closed network connection"), true},
		{"amqp closed", fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{"io EOF", io.EOF, true},
		{"other", errors.New("precondition failed"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestSetupDeclaresTopology(t *testing.T) {
	ch := &fakeChannel{}
	newTestPublisher(ch, nil)

	if len(ch.exchanges) != 1 || ch.exchanges[0] != "openclaw/direct/true" {
		t.Errorf("exchanges = %v", ch.exchanges)
	}
	if len(ch.queues) != 1 || ch.queues[0] != "runner.results/true" {
		t.Errorf("queues = %v", ch.queues)
	}
	if len(ch.bindings) != 1 || ch.bindings[0] != "runner.results<-openclaw:runner.results" {
		t.Errorf("bindings = %v", ch.bindings)
	}
}

func TestPublish(t *testing.T) {
	ch := &fakeChannel{}
	c := newTestPublisher(ch, nil)

	if err := c.Publish(context.Background(), sampleResult()); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(ch.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(ch.published))
	}
	if ch.keys[0] != "openclaw:runner.results" {
		t.Errorf("published to %q", ch.keys[0])
	}

	msg := ch.published[0]
	if msg.CorrelationId != "task-42" {
		t.Errorf("CorrelationId = %q, want task-42", msg.CorrelationId)
	}
	if msg.DeliveryMode != amqp091.Persistent {
		t.Errorf("DeliveryMode = %d, want persistent", msg.DeliveryMode)
	}
	if msg.ContentType != "application/json" {
		t.Errorf("ContentType = %q", msg.ContentType)
	}
	if msg.MessageId == "" {
		t.Error("MessageId should be set")
	}

	got, err := ResultFromDelivery(amqp091.Delivery{Type: msg.Type, Body: msg.Body})
	if err != nil {
		t.Fatalf("ResultFromDelivery() error = %v", err)
	}
	if got != sampleResult() {
		t.Errorf("decoded %+v, want %+v", got, sampleResult())
	}
}

func TestPublishRetriesConnectionErrors(t *testing.T) {
	var dials int32
	ch := &fakeChannel{publishErrs: []error{errors.New("connection closed")}}
	c := newTestPublisher(ch, &dials)

	if err := c.Publish(context.Background(), sampleResult()); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(ch.published) != 1 {
		t.Errorf("published %d messages, want 1", len(ch.published))
	}
	// initial connect plus one reconnect
	if atomic.LoadInt32(&dials) != 2 {
		t.Errorf("dials = %d, want 2", dials)
	}
}

func TestPublishDoesNotRetryOtherErrors(t *testing.T) {
	var dials int32
	ch := &fakeChannel{publishErrs: []error{errors.New("precondition failed")}}
	c := newTestPublisher(ch, &dials)

	if err := c.Publish(context.Background(), sampleResult()); err == nil {
		t.Fatal("Publish() expected error")
	}
	if atomic.LoadInt32(&dials) != 1 {
		t.Errorf("dials = %d, want 1", dials)
	}
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	errs := make([]error, maxFailures)
	for i := range errs {
		errs[i] = errors.New("precondition failed")
	}
	ch := &fakeChannel{publishErrs: errs}
	c := newTestPublisher(ch, nil)

	for i := 0; i < maxFailures; i++ {
		if err := c.Publish(context.Background(), sampleResult()); err == nil {
			t.Fatalf("attempt %d: expected error", i)
		}
	}
	if atomic.LoadInt32(&c.state) != StateOpen {
		t.Fatalf("state = %d, want open", c.state)
	}

	if err := c.Publish(context.Background(), sampleResult()); err == nil {
		t.Error("Publish() should fail fast while the circuit is open")
	}
	if len(ch.published) != 0 {
		t.Errorf("published %d messages while open", len(ch.published))
	}

	// Half-open after the timeout; a success closes the circuit
	c.mu.Lock()
	c.lastFailure = time.Now().Add(-2 * openTimeout)
	c.mu.Unlock()
	if err := c.Publish(context.Background(), sampleResult()); err != nil {
		t.Fatalf("Publish() after timeout error = %v", err)
	}
	if atomic.LoadInt32(&c.state) != StateClosed {
		t.Errorf("state = %d, want closed", c.state)
	}
}

func TestPublishCanceledContext(t *testing.T) {
	ch := &fakeChannel{}
	c := newTestPublisher(ch, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Publish(ctx, sampleResult()); !errors.Is(err, context.Canceled) {
		t.Errorf("Publish() error = %v, want context.Canceled", err)
	}
}

func TestClose(t *testing.T) {
	ch := &fakeChannel{}
	c := newTestPublisher(ch, nil)

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !ch.closed {
		t.Error("channel should be closed")
	}
	if err := c.Publish(context.Background(), sampleResult()); !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("Publish() after Close error = %v, want ErrPublisherClosed", err)
	}
}

func TestResultFromDeliveryRejectsOtherTypes(t *testing.T) {
	if _, err := ResultFromDelivery(amqp091.Delivery{Type: "report.ready", Body: []byte(`{}`)}); err == nil {
		t.Error("expected error for foreign message type")
	}
}
