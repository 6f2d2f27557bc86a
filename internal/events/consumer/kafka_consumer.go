package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/atriumhq/service-reservation/internal/application"
	"github.com/atriumhq/service-reservation/internal/events"
	"github.com/atriumhq/service-reservation/pkg/kafka"
)

// SpaceEventConsumer listens to space catalog events and cascades them
// into the booking lifecycle.
type SpaceEventConsumer struct {
	consumer *kafka.Consumer
	service  *application.BookingService
	logger   *zap.Logger
}

// NewSpaceEventConsumer creates a new SpaceEventConsumer.
func NewSpaceEventConsumer(
	brokers []string,
	groupID string,
	service *application.BookingService,
	logger *zap.Logger,
) *SpaceEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicSpaceEvents, logger)
	return &SpaceEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming space events. This blocks until the context is cancelled.
func (c *SpaceEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *SpaceEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *SpaceEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from space topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.SpaceDeactivated:
		return c.handleSpaceDeactivated(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled space event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *SpaceEventConsumer) handleSpaceDeactivated(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.SpaceDeactivatedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse SpaceDeactivatedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing space deactivated event",
		zap.String("space_id", evt.SpaceID.String()),
	)

	cancelled, err := c.service.CancelActiveForSpace(ctx, evt.SpaceID, "space deactivated")
	if err != nil {
		c.logger.Error("failed to cancel bookings for deactivated space",
			zap.String("space_id", evt.SpaceID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("cancelled bookings for deactivated space",
		zap.String("space_id", evt.SpaceID.String()),
		zap.Int("cancelled", cancelled),
	)
	return nil
}
