package events

import (
	"context"
	"log/slog"
)

// ChannelSink hands notifications to a background worker through a buffered
// channel so slow downstream transports never block the issuing request.
// When the buffer is full the notification is dropped and counted against the
// logger; the in-process store already holds the durable copy.
type ChannelSink struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewChannelSink(inbox chan<- Event, logger *slog.Logger) *ChannelSink {
	return &ChannelSink{inbox: inbox, logger: logger}
}

func (s *ChannelSink) Publish(ctx context.Context, event Event) error {
	select {
	case s.inbox <- event:
		return nil
	default:
		if s.logger != nil {
			s.logger.WarnContext(ctx, "notification inbox full, dropping",
				"type", string(event.Type),
			)
		}
		return nil
	}
}

// Worker drains notifications from a channel into a downstream sink. It keeps
// background delivery testable without wiring queue implementations.
type Worker struct {
	sink  Sink
	inbox <-chan Event
}

func NewWorker(sink Sink, inbox <-chan Event) *Worker {
	return &Worker{sink: sink, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Publish(ctx, event); err != nil {
				return err
			}
		}
	}
}
