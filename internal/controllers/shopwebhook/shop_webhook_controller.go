package shopwebhook

import (
	"context"
	"encoding/json"

	"github.com/DIMO-Network/server-garage/pkg/richerrors"
	"github.com/DIMO-Network/shop-notifier/internal/events"
	"github.com/DIMO-Network/shop-notifier/internal/metrics"
	"github.com/DIMO-Network/shop-notifier/internal/payload"
	"github.com/DIMO-Network/shop-notifier/internal/services/shopevents"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type EventProcessor interface {
	Process(ctx context.Context, ev events.RawEvent) shopevents.Outcome
}

// ShopWebhookController receives webhook deliveries from the shop management system.
type ShopWebhookController struct {
	processor EventProcessor
}

// NewShopWebhookController creates a new ShopWebhookController.
func NewShopWebhookController(processor EventProcessor) *ShopWebhookController {
	return &ShopWebhookController{processor: processor}
}

// ReceiveEvent handles one webhook delivery.
// Anything that decodes as a JSON object is accepted and answered with 200, including
// events that are ignored or whose notification could not be delivered, so that the
// emitter does not redeliver.
func (s *ShopWebhookController) ReceiveEvent(c *fiber.Ctx) error {
	var body payload.Object
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return richerrors.Error{
			ExternalMsg: "Invalid request payload",
			Err:         err,
			Code:        fiber.StatusBadRequest,
		}
	}

	eventID := uuid.New().String()
	logger := zerolog.Ctx(c.UserContext()).With().Str("event_id", eventID).Logger()
	ctx := logger.WithContext(c.UserContext())

	ev := events.FromBody(body)
	logger.Debug().Str("tag", ev.Tag).Msg("Received shop event")

	out := s.processor.Process(ctx, ev)
	c.Set("X-Event-Id", eventID)
	switch out.Status {
	case metrics.StatusIgnored, metrics.StatusFiltered:
		return c.Status(fiber.StatusOK).SendString("Ignored")
	default:
		return c.Status(fiber.StatusOK).SendString("OK")
	}
}
