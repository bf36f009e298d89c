package service

import (
	"context"
	"errors"

	"granaflow/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationSource is the device notification capability: a subscription
// delivering captured banking-app notifications. Permission handling lives on
// the device side; by the time an event arrives here it is already granted.
type NotificationSource interface {
	Events() <-chan models.NotificationEvent
}

// ListenerWorker drains a NotificationSource through the pipeline on behalf
// of the signed-in user. There is no interactive caller on this path, so
// failures are logged and the event is dropped; the classified-but-unsaved
// transaction is lost on persistence failure.
type ListenerWorker struct {
	source   NotificationSource
	pipeline *Pipeline
	ownerID  uuid.UUID
	logger   *zap.Logger
}

func NewListenerWorker(source NotificationSource, pipeline *Pipeline, ownerID uuid.UUID, logger *zap.Logger) *ListenerWorker {
	return &ListenerWorker{
		source:   source,
		pipeline: pipeline,
		ownerID:  ownerID,
		logger:   logger,
	}
}

// Run consumes events until the context is canceled or the source channel
// closes.
func (w *ListenerWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Notification listener stopping", zap.Error(ctx.Err()))
			return
		case event, ok := <-w.source.Events():
			if !ok {
				w.logger.Info("Notification source closed")
				return
			}
			w.handle(ctx, event)
		}
	}
}

func (w *ListenerWorker) handle(ctx context.Context, event models.NotificationEvent) {
	outcome, err := w.pipeline.ProcessNotification(ctx, event, w.ownerID)
	if err != nil {
		switch {
		case errors.Is(err, ErrPersistence):
			w.logger.Error("Failed to persist classified notification",
				zap.String("source_app", event.SourceAppID),
				zap.Error(err),
			)
		case errors.Is(err, ErrClassification):
			w.logger.Error("Failed to classify notification",
				zap.String("source_app", event.SourceAppID),
				zap.Error(err),
			)
		default:
			w.logger.Error("Notification processing failed",
				zap.String("source_app", event.SourceAppID),
				zap.Error(err),
			)
		}
		return
	}

	w.logger.Debug("Notification processed",
		zap.String("source_app", event.SourceAppID),
		zap.String("status", string(outcome.Status)),
	)
}
