package events

import (
	"context"
	"log/slog"

	"certreg/pkg/requestcontext"
)

// Store persists notifications. Implementations must be append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
}

// Sink receives a copy of every notification after it has been stored.
// Sinks are best-effort: a sink failure is logged but does not fail the
// originating operation, which has already committed.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher captures structured notifications. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store  Store
	sinks  []Sink
	logger *slog.Logger
}

type Option func(*Publisher)

// WithSink adds a fan-out sink (e.g. the kafka sink).
func WithSink(sink Sink) Option {
	return func(p *Publisher) {
		p.sinks = append(p.sinks, sink)
	}
}

// WithLogger sets the logger used to report sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stamps the event with request-scoped metadata and appends it to the
// store. A store failure is returned to the caller; sink failures are logged
// and swallowed because the originating state change is already durable.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, event); err != nil && p.logger != nil {
			p.logger.ErrorContext(ctx, "notification sink failed",
				"type", string(event.Type),
				"error", err,
			)
		}
	}
	return nil
}

// List returns all stored notifications, oldest first.
func (p *Publisher) List(ctx context.Context) ([]Event, error) {
	return p.store.List(ctx)
}
