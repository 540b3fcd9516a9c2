package quota

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

// DailyTracker counts questions per anonymous device per local calendar day.
// A window opens at the first question and ends at the next midnight in the
// caller's timezone at that moment. The stored ResetAt, not the zone of later
// requests, decides when the count rolls over.
type DailyTracker struct {
	store Store
	keys  *ScopeHasher
	limit int
	locks keyedMutex
	now   func() time.Time
	log   *slog.Logger

	resMu    sync.Mutex
	reserved map[string]int
}

// NewDailyTracker creates a tracker allowing limit questions per day.
func NewDailyTracker(store Store, keys *ScopeHasher, limit int, log *slog.Logger) *DailyTracker {
	return &DailyTracker{
		store:    store,
		keys:     keys,
		limit:    limit,
		now:      time.Now,
		log:      log.With("service", "daily_tracker"),
		reserved: make(map[string]int),
	}
}

// Limit returns the configured daily limit.
func (t *DailyTracker) Limit() int { return t.limit }

// Allowed reports whether the device still has quota today.
func (t *DailyTracker) Allowed(ctx context.Context, deviceID string, _ *time.Location) (bool, error) {
	count, err := t.count(ctx, t.keys.Key("device", deviceID))
	if err != nil {
		return false, err
	}
	return count < t.limit, nil
}

// Remaining returns the questions left in the device's window, never
// negative, and when that window ends. With no open window the end is where
// a window opened now in loc would end.
func (t *DailyTracker) Remaining(ctx context.Context, deviceID string, loc *time.Location) (int, time.Time, error) {
	key := t.keys.Key("device", deviceID)
	rec, err := t.store.Get(ctx, key)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("get daily record: %w", err)
	}

	now := t.now()
	if expired(rec, now) {
		return t.limit, openWindow(rec, key, now, loc).ResetAt, nil
	}
	return max(0, t.limit-rec.Count), rec.ResetAt, nil
}

// IncrementIfAllowed consumes one unit and reports whether quota remains
// afterwards. The counter is incremented unconditionally.
func (t *DailyTracker) IncrementIfAllowed(ctx context.Context, deviceID string, loc *time.Location) (bool, error) {
	key := t.keys.Key("device", deviceID)
	unlock := t.locks.Lock(key)
	defer unlock()

	count, err := t.increment(ctx, key, loc)
	if err != nil {
		return false, err
	}
	return count < t.limit, nil
}

// Reserve admits one question if the stored count plus in-flight
// reservations is below the limit. The caller must Commit or Release the
// reservation exactly once.
func (t *DailyTracker) Reserve(ctx context.Context, deviceID string, loc *time.Location) (*Reservation, bool, error) {
	key := t.keys.Key("device", deviceID)
	unlock := t.locks.Lock(key)
	defer unlock()

	count, err := t.count(ctx, key)
	if err != nil {
		return nil, false, err
	}

	t.resMu.Lock()
	defer t.resMu.Unlock()

	if count+t.reserved[key] >= t.limit {
		return nil, false, nil
	}
	t.reserved[key]++

	return &Reservation{tracker: t, key: key, loc: loc, remaining: t.limit - count - 1}, true, nil
}

func (t *DailyTracker) count(ctx context.Context, key string) (int, error) {
	rec, err := t.store.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("get daily record: %w", err)
	}
	if expired(rec, t.now()) {
		return 0, nil
	}
	return rec.Count, nil
}

// increment must be called with the scope lock held.
func (t *DailyTracker) increment(ctx context.Context, key string, loc *time.Location) (int, error) {
	now := t.now()

	rec, err := t.store.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("get daily record: %w", err)
	}
	if expired(rec, now) {
		rec = openWindow(rec, key, now, loc)
	}
	rec.Count++
	rec.UpdatedAt = now

	if err := t.store.Set(ctx, *rec); err != nil {
		return 0, fmt.Errorf("set daily record: %w", err)
	}
	return rec.Count, nil
}

func expired(rec *domain.QuotaRecord, now time.Time) bool {
	return rec == nil || !now.Before(rec.ResetAt)
}

// minWindowSpacing keeps consecutive windows of one device about a day
// apart, whatever zone the next request claims. 23h tolerates DST days.
const minWindowSpacing = 23 * time.Hour

// openWindow starts a new daily window after prev (nil when there is none).
func openWindow(prev *domain.QuotaRecord, key string, now time.Time, loc *time.Location) *domain.QuotaRecord {
	resetAt := NextDayStart(now, loc)
	if prev != nil {
		if floor := prev.ResetAt.Add(minWindowSpacing); resetAt.Before(floor) {
			resetAt = floor
		}
	}
	return &domain.QuotaRecord{ScopeKey: key, WindowDate: DayKey(now, loc), ResetAt: resetAt}
}

func (t *DailyTracker) unreserve(key string) {
	t.resMu.Lock()
	defer t.resMu.Unlock()

	t.reserved[key]--
	if t.reserved[key] <= 0 {
		delete(t.reserved, key)
	}
}

// Reservation is an admitted, not yet counted, question.
type Reservation struct {
	tracker   *DailyTracker
	key       string
	loc       *time.Location
	remaining int
	once      sync.Once
}

// Remaining is the quota left once this reservation is committed.
func (r *Reservation) Remaining() int { return max(0, r.remaining) }

// Commit counts the question. It returns the remaining quota as stored.
// Calling Commit or Release again is a no-op.
func (r *Reservation) Commit(ctx context.Context) (int, error) {
	var (
		remaining = r.Remaining()
		err       error
	)
	r.once.Do(func() {
		t := r.tracker
		unlock := t.locks.Lock(r.key)
		defer unlock()
		defer t.unreserve(r.key)

		var count int
		count, err = t.increment(ctx, r.key, r.loc)
		if err == nil {
			remaining = max(0, t.limit-count)
		}
	})
	return remaining, err
}

// Release drops the reservation without counting it.
func (r *Reservation) Release() {
	r.once.Do(func() {
		r.tracker.unreserve(r.key)
	})
}
