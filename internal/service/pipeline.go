package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"granaflow/internal/models"
	"granaflow/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutcomeStatus is the terminal state of one processed notification event.
type OutcomeStatus string

const (
	// OutcomeRejected: the local filter decided the text cannot be financial.
	OutcomeRejected OutcomeStatus = "rejected"
	// OutcomeDuplicate: the dedup guard suppressed a repeated delivery.
	OutcomeDuplicate OutcomeStatus = "duplicate"
	// OutcomeInvalid: the classifier decided this is not a real transaction.
	OutcomeInvalid OutcomeStatus = "invalid"
	// OutcomeIgnored: a real financial event that must not be recorded.
	OutcomeIgnored OutcomeStatus = "ignored"
	// OutcomeCreated: a ledger entry was persisted.
	OutcomeCreated OutcomeStatus = "created"
)

// Outcome is the result of running one event through the pipeline.
// Result is only meaningful once the classifier ran; Entry only for
// OutcomeCreated.
type Outcome struct {
	Status OutcomeStatus
	Result models.ClassificationResult
	Entry  *models.LedgerEntry
}

// LedgerListener is notified after every successfully created entry. The
// application-state layer subscribes here instead of the pipeline mutating
// any state container directly.
type LedgerListener func(entry models.LedgerEntry)

// Pipeline sequences filter, classifier and reconciler for each inbound
// event. Both entry points share the downstream logic; the device-listener
// path additionally runs the filter gate. Events are processed independently,
// synchronously and exactly once; no ordering is imposed across events.
type Pipeline struct {
	filter     *NotificationFilter
	classifier *Classifier
	reconciler *Reconciler
	deduper    *Deduper
	retry      bool
	logger     *zap.Logger

	mu        sync.RWMutex
	listeners []LedgerListener
}

func NewPipeline(filter *NotificationFilter, classifier *Classifier, reconciler *Reconciler, cfg config.PipelineConfig, logger *zap.Logger) *Pipeline {
	p := &Pipeline{
		filter:     filter,
		classifier: classifier,
		reconciler: reconciler,
		retry:      cfg.RetryTransient,
		logger:     logger,
	}
	if cfg.DedupEnabled {
		p.deduper = NewDeduper(cfg.DedupWindow)
	}
	return p
}

// Subscribe registers a listener for created ledger entries.
func (p *Pipeline) Subscribe(listener LedgerListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, listener)
}

// ProcessNotification is the device-listener path: the combined notification
// text passes the filter gate before anything costs money.
func (p *Pipeline) ProcessNotification(ctx context.Context, event models.NotificationEvent, ownerID uuid.UUID) (*Outcome, error) {
	fullText := event.FullText()

	if !p.filter.ShouldProcess(event.SourceAppID, fullText) {
		p.logger.Debug("Notification rejected by filter",
			zap.String("source_app", event.SourceAppID),
		)
		return &Outcome{Status: OutcomeRejected}, nil
	}

	return p.process(ctx, event.SourceAppID, fullText, event.Timestamp, ownerID)
}

// ProcessRaw is the webhook path: the caller is a trusted integration that
// already decided the text is bank-related, so no filter gate applies.
func (p *Pipeline) ProcessRaw(ctx context.Context, rawText string, timestamp time.Time, ownerID uuid.UUID) (*Outcome, error) {
	return p.process(ctx, "webhook", rawText, timestamp, ownerID)
}

func (p *Pipeline) process(ctx context.Context, source, text string, timestamp time.Time, ownerID uuid.UUID) (*Outcome, error) {
	// Broken UTF-8 from device captures would poison both the prompt and the
	// eventual Postgres write.
	text = sanitizeUTF8(text)

	var fp string
	if p.deduper != nil {
		fp = Fingerprint(source, text, timestamp, p.deduper.Window())
		if p.deduper.Seen(fp) {
			p.logger.Info("Duplicate notification suppressed",
				zap.String("source", source),
				zap.String("fingerprint", fp[:12]),
			)
			return &Outcome{Status: OutcomeDuplicate}, nil
		}
	}

	result, err := p.classify(ctx, text, timestamp)
	if err != nil {
		return nil, err
	}

	if !result.Recordable() {
		status := OutcomeInvalid
		if result.IsValid && result.Kind == models.KindIgnore {
			status = OutcomeIgnored
		}
		p.markProcessed(fp)
		return &Outcome{Status: status, Result: result}, nil
	}

	entry, err := p.reconciler.Reconcile(ctx, result, ownerID, timestamp)
	if err != nil {
		return nil, err
	}

	// The fingerprint is recorded only on terminal outcomes; an event that
	// failed classification or persistence stays eligible for redelivery.
	p.markProcessed(fp)
	p.publish(*entry)

	return &Outcome{Status: OutcomeCreated, Result: result, Entry: entry}, nil
}

// classify runs the classifier, with at most one extra attempt on transient
// model failure when retry is enabled. Parse failures are never retried.
func (p *Pipeline) classify(ctx context.Context, text string, timestamp time.Time) (models.ClassificationResult, error) {
	result, err := p.classifier.Classify(ctx, text, timestamp)
	if err != nil && p.retry && errors.Is(err, ErrModelCall) && ctx.Err() == nil {
		p.logger.Warn("Transient classifier failure, retrying once", zap.Error(err))
		result, err = p.classifier.Classify(ctx, text, timestamp)
	}
	return result, err
}

func (p *Pipeline) markProcessed(fp string) {
	if p.deduper != nil && fp != "" {
		p.deduper.Record(fp)
	}
}

func (p *Pipeline) publish(entry models.LedgerEntry) {
	p.mu.RLock()
	listeners := make([]LedgerListener, len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.RUnlock()

	for _, listener := range listeners {
		listener(entry)
	}
}
