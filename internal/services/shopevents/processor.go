package shopevents

import (
	"context"
	"time"

	"github.com/DIMO-Network/shop-notifier/internal/events"
	"github.com/DIMO-Network/shop-notifier/internal/metrics"
	"github.com/DIMO-Network/shop-notifier/internal/notification"
	"github.com/rs/zerolog"
)

type Classifier interface {
	Classify(ev events.RawEvent) events.Kind
}

type Resolver interface {
	Resolve(ev events.RawEvent) events.ResolvedIdentity
}

type Sender interface {
	Enabled() bool
	Send(ctx context.Context, content *notification.Content) error
}

type Filter interface {
	ShouldNotify(kind events.Kind, identity events.ResolvedIdentity) (bool, error)
}

// Outcome describes what happened to one event.
type Outcome struct {
	Kind     events.Kind
	Identity events.ResolvedIdentity
	Content  *notification.Content
	// Status is one of the metrics.Status* values.
	Status string
	// Err is the dispatch error, if any. It is informational only.
	Err error
}

// Notified reports whether a notification was delivered.
func (o Outcome) Notified() bool {
	return o.Status == metrics.StatusSent
}

// Processor runs the classify, resolve, format and dispatch pipeline for single events.
// It is safe for concurrent use; only the identity store behind the Resolver is shared.
type Processor struct {
	classifier Classifier
	resolver   Resolver
	sender     Sender
	filter     Filter
}

// NewProcessor creates a Processor. filter may be nil.
func NewProcessor(classifier Classifier, resolver Resolver, sender Sender, filter Filter) *Processor {
	return &Processor{
		classifier: classifier,
		resolver:   resolver,
		sender:     sender,
		filter:     filter,
	}
}

// Process handles one event. It never fails: dispatch errors are logged and reported in the Outcome.
func (p *Processor) Process(ctx context.Context, ev events.RawEvent) Outcome {
	kind := p.classifier.Classify(ev)
	identity := p.resolver.Resolve(ev)
	metrics.EventsReceived.WithLabelValues(kind.Name()).Inc()

	logger := zerolog.Ctx(ctx).With().
		Str("kind", kind.Name()).
		Str("repair_order", identity.RepairOrderNumber).
		Logger()
	out := Outcome{Kind: kind, Identity: identity}

	content, ok := notification.Format(kind, identity)
	if !ok {
		logger.Debug().Str("tag", ev.Tag).Msg("Ignoring unrecognized event")
		return finish(out, metrics.StatusIgnored)
	}
	out.Content = content

	if p.filter != nil {
		notify, err := p.filter.ShouldNotify(kind, identity)
		if err != nil {
			logger.Warn().Err(err).Msg("Notification condition failed, notifying anyway")
		} else if !notify {
			logger.Debug().Msg("Notification filtered by condition")
			return finish(out, metrics.StatusFiltered)
		}
	}

	if !p.sender.Enabled() {
		logger.Warn().Str("title", content.Title).Msg("No chat webhook configured, skipping notification")
		return finish(out, metrics.StatusSkipped)
	}

	start := time.Now()
	err := p.sender.Send(ctx, content)
	metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Error().Err(err).Str("title", content.Title).Msg("Failed to dispatch notification")
		out.Err = err
		return finish(out, metrics.StatusFailed)
	}

	logger.Info().Str("title", content.Title).Msg("Notification sent")
	return finish(out, metrics.StatusSent)
}

func finish(out Outcome, status string) Outcome {
	metrics.Notifications.WithLabelValues(status).Inc()
	out.Status = status
	return out
}
