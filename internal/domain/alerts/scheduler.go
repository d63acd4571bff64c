// Package alerts runs the recurring credit-expiry alert scan.
// Delivery is at-least-once: an entry is marked alerted only after its
// notification succeeds, so a failed send is retried on the next run.
package alerts

import (
	"context"
	"fmt"
	"sync"
	"time"

	appctx "wareflow/internal/core/context"
	"wareflow/internal/domain/documents/entry"
	"wareflow/pkg/logger"
)

// LookaheadDays is how far before credit expiry an alert fires.
const LookaheadDays = 3

// Notifier delivers one alert to a recipient address.
type Notifier interface {
	Notify(ctx context.Context, recipient string, e *entry.PurchaseEntry) error
}

// RecipientSource resolves the alert recipient address at run time.
// Implemented by the auth repository (admin account email).
type RecipientSource interface {
	AlertRecipient(ctx context.Context) (string, error)
}

// Scheduler scans for entries whose credit window expires within
// LookaheadDays and notifies the configured recipient once per entry.
type Scheduler struct {
	entries    entry.Repository
	notifier   Notifier
	recipients RecipientSource

	// Interval between scans (default 24h)
	Interval time.Duration

	// SendTimeout bounds one outbound notification (default 30s)
	SendTimeout time.Duration

	// now is injectable for tests
	now func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler creates an alert scheduler.
func NewScheduler(entries entry.Repository, notifier Notifier, recipients RecipientSource) *Scheduler {
	return &Scheduler{
		entries:     entries,
		notifier:    notifier,
		recipients:  recipients,
		Interval:    24 * time.Hour,
		SendTimeout: 30 * time.Second,
		now:         func() time.Time { return time.Now().UTC() },
		stop:        make(chan struct{}),
	}
}

// WithClock overrides the time source. Test hook.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Start begins recurring scans in a background goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.Interval)
	s.wg.Add(1)
	go s.run(ctx)

	logger.Info(ctx, "alert scheduler started", "interval", s.Interval.String())
}

// Stop halts the scheduler and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.ticker == nil {
		s.mu.Unlock()
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-s.ticker.C:
			// each scan gets its own trace so log lines correlate
			runCtx := appctx.WithTrace(ctx, appctx.NewTrace())
			if err := s.RunOnce(runCtx); err != nil {
				logger.Error(runCtx, "alert run failed", "error", err)
			}
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce performs a single scan.
// A missing recipient aborts the whole run before any entry is touched.
// A failed send leaves that entry unmarked and continues with the rest.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	recipient, err := s.recipients.AlertRecipient(ctx)
	if err != nil {
		return fmt.Errorf("resolve alert recipient: %w", err)
	}
	if recipient == "" {
		return fmt.Errorf("no alert recipient configured")
	}

	now := s.now()
	// Select entries whose credit window expires within the lookahead
	deadline := now.AddDate(0, 0, LookaheadDays)

	due, err := s.entries.ListDueForAlert(ctx, deadline)
	if err != nil {
		return fmt.Errorf("list due entries: %w", err)
	}

	var notified, failed int
	for _, e := range due {
		if err := s.notifyOne(ctx, recipient, e); err != nil {
			logger.Warn(ctx, "alert notification failed",
				"entryNo", e.EntryNo, "error", err)
			failed++
			continue
		}
		notified++
	}

	if notified > 0 || failed > 0 {
		logger.Info(ctx, "alert run finished",
			"due", len(due), "notified", notified, "failed", failed)
	}
	return nil
}

// notifyOne sends the alert and marks the entry on success.
// The mark is persisted immediately so a concurrent or subsequent run
// does not re-notify.
func (s *Scheduler) notifyOne(ctx context.Context, recipient string, e *entry.PurchaseEntry) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.SendTimeout)
	defer cancel()

	if err := s.notifier.Notify(sendCtx, recipient, e); err != nil {
		return err
	}

	changed, err := s.entries.MarkAlertTriggered(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("mark alert triggered: %w", err)
	}
	if !changed {
		// Another run won the race after our send; duplicate delivery is
		// acceptable under at-least-once semantics
		logger.Debug(ctx, "alert already marked", "entryNo", e.EntryNo)
	}
	return nil
}
