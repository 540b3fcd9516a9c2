package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cronlib "github.com/robfig/cron/v3"
)

var scheduleParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// Retention is how long a record is kept after its ResetAt. Daily windows
// are spaced against the previous record, so it must outlive the window.
const Retention = 24 * time.Hour

// Purger periodically deletes quota records whose window has ended.
type Purger struct {
	store Store
	cron  *cronlib.Cron
	now   func() time.Time
	log   *slog.Logger
}

// NewPurger schedules a purge of store using a five-field cron expression or
// a descriptor such as "@every 1h".
func NewPurger(store Store, schedule string, log *slog.Logger) (*Purger, error) {
	if _, err := scheduleParser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("parse purge schedule %q: %w", schedule, err)
	}

	p := &Purger{
		store: store,
		cron:  cronlib.New(cronlib.WithParser(scheduleParser)),
		now:   time.Now,
		log:   log.With("service", "quota_purger"),
	}

	if _, err := p.cron.AddFunc(schedule, p.run); err != nil {
		return nil, fmt.Errorf("schedule purge: %w", err)
	}
	return p, nil
}

// Start runs the schedule in the background.
func (p *Purger) Start() { p.cron.Start() }

// Stop halts the schedule and waits for a running purge to finish or ctx to expire.
func (p *Purger) Stop(ctx context.Context) {
	done := p.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce deletes every record whose ResetAt is more than Retention ago.
func (p *Purger) RunOnce(ctx context.Context) (int, error) {
	n, err := p.store.DeleteStale(ctx, p.now().Add(-Retention))
	if err != nil {
		return 0, fmt.Errorf("delete stale quota records: %w", err)
	}
	return n, nil
}

func (p *Purger) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := p.RunOnce(ctx)
	if err != nil {
		p.log.Error("quota purge failed", slog.String("error", err.Error()))
		return
	}
	attrs := []any{slog.Int("deleted", n)}
	if c, ok := p.store.(interface{ Len() int }); ok {
		attrs = append(attrs, slog.Int("retained", c.Len()))
	}
	p.log.Info("quota purge completed", attrs...)
}
