package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/DIMO-Network/server-garage/pkg/fibercommon"
	"github.com/DIMO-Network/shop-notifier/internal/celcondition"
	"github.com/DIMO-Network/shop-notifier/internal/classifier"
	"github.com/DIMO-Network/shop-notifier/internal/config"
	"github.com/DIMO-Network/shop-notifier/internal/controllers/eventlistener"
	"github.com/DIMO-Network/shop-notifier/internal/controllers/shopwebhook"
	"github.com/DIMO-Network/shop-notifier/internal/identity"
	"github.com/DIMO-Network/shop-notifier/internal/kafka"
	"github.com/DIMO-Network/shop-notifier/internal/services/discordsender"
	"github.com/DIMO-Network/shop-notifier/internal/services/shopevents"
	"github.com/IBM/sarama"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const defaultGroupID = "shop-notifier"

func CreateServers(ctx context.Context, settings *config.Settings, logger zerolog.Logger) (*fiber.App, error) {
	store := identity.NewStore()

	processor, err := NewProcessor(ctx, settings, store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event processor: %w", err)
	}

	if settings.KafkaEnabled() {
		if err := startShopEventsConsumer(ctx, logger, settings, processor); err != nil {
			return nil, fmt.Errorf("failed to start shop events consumer: %w", err)
		}
	}

	return CreateFiberApp(logger, processor, store), nil
}

// NewProcessor wires the classifier, resolver, filter and Discord sender into a Processor.
// When an alias file is configured it is watched until ctx is done.
func NewProcessor(ctx context.Context, settings *config.Settings, store *identity.Store, logger zerolog.Logger) (*shopevents.Processor, error) {
	cls := classifier.NewDefault()
	if settings.TagAliasFile != "" {
		loader, err := classifier.NewAliasLoader(settings.TagAliasFile, cls, &logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load tag aliases: %w", err)
		}
		stop, err := loader.Watch()
		if err != nil {
			return nil, fmt.Errorf("failed to watch tag aliases: %w", err)
		}
		go func() {
			<-ctx.Done()
			stop()
		}()
	}

	filter, err := celcondition.NewFilter(settings.NotifyCondition)
	if err != nil {
		return nil, fmt.Errorf("failed to compile notify condition: %w", err)
	}

	sender := discordsender.NewDiscordSender(
		&http.Client{Timeout: settings.DispatchTimeoutDuration()},
		discordsender.Config{
			WebhookURL: settings.DiscordWebhookURL,
			Format:     settings.DiscordMessageFormat,
			Username:   settings.DiscordUsername,
		},
	)
	if !sender.Enabled() {
		logger.Warn().Msg("DISCORD_WEBHOOK_URL is not set, notifications will be skipped")
	}

	return shopevents.NewProcessor(cls, identity.NewResolver(store), sender, filter), nil
}

// CreateFiberApp sets up the API routes.
func CreateFiberApp(logger zerolog.Logger, processor shopwebhook.EventProcessor, store *identity.Store) *fiber.App {
	logger.Info().Msg("Starting Shop Notifier...")

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return fibercommon.ErrorHandler(c, err)
		},
		DisableStartupMessage: true,
	})
	app.Use(fibercommon.ContextLoggerMiddleware)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Welcome to the Shop Notifier!")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		customers, ids := store.Stats()
		return c.JSON(fiber.Map{
			"data":           "Server is up and running",
			"knownCustomers": customers,
			"knownRepairIds": ids,
		})
	})

	webhookController := shopwebhook.NewShopWebhookController(processor)
	app.Post("/webhook", webhookController.ReceiveEvent)

	return app
}

// startShopEventsConsumer sets up and starts the Kafka consumer for the shop events topic.
func startShopEventsConsumer(ctx context.Context, logger zerolog.Logger, settings *config.Settings, processor eventlistener.EventProcessor) error {
	clusterConfig := sarama.NewConfig()
	clusterConfig.Version = sarama.V2_8_1_0
	clusterConfig.Consumer.Offsets.Initial = sarama.OffsetOldest

	groupID := settings.KafkaGroupID
	if groupID == "" {
		groupID = defaultGroupID
	}
	consumerConfig := &kafka.Config{
		ClusterConfig:   clusterConfig,
		BrokerAddresses: strings.Split(settings.KafkaBrokers, ","),
		Topic:           settings.ShopEventsTopic,
		GroupID:         groupID,
		MaxInFlight:     settings.KafkaMaxInFlight,
	}

	consumer, err := kafka.NewConsumer(consumerConfig, &logger)
	if err != nil {
		return fmt.Errorf("failed to create shop events consumer: %w", err)
	}

	listener := eventlistener.NewEventListener(processor, consumer.MaxInFlight())
	if err := consumer.Start(logger.WithContext(ctx), listener.ProcessMessages); err != nil {
		return fmt.Errorf("failed to start shop events consumer: %w", err)
	}
	go func() {
		<-ctx.Done()
		if err := consumer.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close shop events consumer")
		}
	}()

	logger.Info().Msgf("Shop events consumer started on topic: %s", settings.ShopEventsTopic)
	return nil
}
