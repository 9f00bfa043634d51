package eventlistener

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DIMO-Network/cloudevent"
	"github.com/DIMO-Network/shop-notifier/internal/events"
	"github.com/DIMO-Network/shop-notifier/internal/payload"
	"github.com/DIMO-Network/shop-notifier/internal/services/shopevents"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type EventProcessor interface {
	Process(ctx context.Context, ev events.RawEvent) shopevents.Outcome
}

// DefaultMaxInFlight bounds concurrent event processing when no limit is configured.
const DefaultMaxInFlight = 100

// EventListener feeds shop events republished on Kafka through the same pipeline as webhook deliveries.
// Each message is a CloudEvent whose data is the webhook body.
type EventListener struct {
	processor   EventProcessor
	maxInFlight int
}

// NewEventListener creates a new EventListener that processes up to maxInFlight events at once.
func NewEventListener(processor EventProcessor, maxInFlight int) *EventListener {
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}
	return &EventListener{processor: processor, maxInFlight: maxInFlight}
}

// ProcessMessages consumes messages until ctx is done or the channel closes, then waits for
// in-flight events to finish.
func (e *EventListener) ProcessMessages(ctx context.Context, messages <-chan *message.Message) error {
	logger := zerolog.Ctx(ctx)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.maxInFlight)
	for {
		select {
		case <-ctx.Done():
			_ = group.Wait()
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				// channel is closed
				return group.Wait()
			}
			if ctx.Err() != nil {
				// check context since select is not deterministic when multiple cases are ready
				_ = group.Wait()
				return ctx.Err()
			}
			ce, err := decodeMessage(msg)
			// the subscriber withholds the next message until this one is acked
			msg.Ack()
			if err != nil {
				logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("error processing shop event message")
				continue
			}
			group.Go(func() error {
				eventLogger := logger.With().Str("event_id", ce.ID).Str("source", ce.Source).Logger()
				e.processor.Process(eventLogger.WithContext(groupCtx), EventFromCloudEvent(ce))
				return nil
			})
		}
	}
}

func decodeMessage(msg *message.Message) (*cloudevent.CloudEvent[payload.Object], error) {
	var ce cloudevent.CloudEvent[payload.Object]
	if err := json.Unmarshal(msg.Payload, &ce); err != nil {
		return nil, fmt.Errorf("failed to parse shop event cloudevent: %w", err)
	}
	return &ce, nil
}

// EventFromCloudEvent extracts the raw event. The CloudEvent type stands in for a missing tag.
func EventFromCloudEvent(ce *cloudevent.CloudEvent[payload.Object]) events.RawEvent {
	ev := events.FromBody(ce.Data)
	if ev.Tag == "" {
		ev.Tag = ce.Type
	}
	return ev
}
