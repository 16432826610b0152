package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/keighl/postmark"
	"github.com/segmentio/kafka-go"
)

// Sink receives finalized orders. Delivery is best effort from the dispatcher's point of view.
type Sink interface {
	Deliver(ctx context.Context, o Order) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, o Order) error

// Deliver calls f.
func (f SinkFunc) Deliver(ctx context.Context, o Order) error { return f(ctx, o) }

// MultiSink delivers to every sink and joins their errors.
type MultiSink []Sink

// Deliver implements Sink. A failing sink does not stop the others.
func (m MultiSink) Deliver(ctx context.Context, o Order) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Deliver(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Notifier sends a text message to a chat.
type Notifier interface {
	Notify(ctx context.Context, recipient int64, text string) error
}

// ChatSink sends the operator a plain-text summary through a Notifier.
type ChatSink struct {
	Notifier   Notifier
	OperatorID int64
	Currency   string
}

// Deliver implements Sink.
func (s ChatSink) Deliver(ctx context.Context, o Order) error {
	if s.Notifier == nil || s.OperatorID == 0 {
		return errors.New("order: chat sink not configured")
	}
	if err := s.Notifier.Notify(ctx, s.OperatorID, OperatorText(o, s.Currency)); err != nil {
		return fmt.Errorf("order: chat notify: %w", err)
	}
	return nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Event is the JSON record published for each order.
type Event struct {
	Type  string `json:"type"`
	Order Order  `json:"order"`
}

// EventPlaced is the Event.Type of a finalized order.
const EventPlaced = "order.placed"

// KafkaSink appends every order to a topic, keyed by order id.
type KafkaSink struct {
	w messageWriter
}

// NewKafkaSink returns a sink writing to topic on brokers.
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  3,
			WriteTimeout: 5 * time.Second,
			ReadTimeout:  5 * time.Second,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Deliver implements Sink.
func (s *KafkaSink) Deliver(ctx context.Context, o Order) error {
	b, err := json.Marshal(Event{Type: EventPlaced, Order: o})
	if err != nil {
		return fmt.Errorf("order: encode event: %w", err)
	}
	if err := s.w.WriteMessages(ctx, kafka.Message{Key: []byte(o.ID), Value: b}); err != nil {
		return fmt.Errorf("order: kafka publish: %w", err)
	}
	return nil
}

// Close releases the writer.
func (s *KafkaSink) Close() error { return s.w.Close() }

type emailSender interface {
	SendEmail(email postmark.Email) (postmark.EmailResponse, error)
}

// EmailSink mails the operator summary through Postmark.
type EmailSink struct {
	client   emailSender
	from     string
	to       string
	currency string
}

// emailTimeout bounds one Postmark request.
const emailTimeout = 10 * time.Second

// NewEmailSink returns a Postmark-backed sink.
func NewEmailSink(serverToken, from, to, currency string) *EmailSink {
	return &EmailSink{
		client:   newPostmarkClient(serverToken, "", emailTimeout),
		from:     from,
		to:       to,
		currency: currency,
	}
}

// newPostmarkClient swaps the library's default http.Client, which has no
// timeout, for one that does. An empty baseURL keeps the Postmark API.
func newPostmarkClient(serverToken, baseURL string, timeout time.Duration) *postmark.Client {
	c := postmark.NewClient(serverToken, "")
	c.HTTPClient = &http.Client{Timeout: timeout}
	if baseURL != "" {
		c.BaseURL = baseURL
	}
	return c
}

// Deliver implements Sink. The Postmark client takes no context, so Deliver
// returns ctx.Err() as soon as ctx is done; the request itself ends at the
// client timeout.
func (s *EmailSink) Deliver(ctx context.Context, o Order) error {
	email := postmark.Email{
		From:     s.from,
		To:       s.to,
		Subject:  "New order #" + o.ShortID(),
		TextBody: OperatorText(o, s.currency),
		Tag:      strings.ReplaceAll(EventPlaced, ".", "-"),
	}
	done := make(chan error, 1)
	go func() {
		_, err := s.client.SendEmail(email)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("order: send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("order: send email: %w", ctx.Err())
	}
}
