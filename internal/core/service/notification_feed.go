package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/ports"
	"github.com/jobhub/jobboard/internal/metrics"
)

// DefaultPollInterval is how often the feed re-fetches the unread counter.
const DefaultPollInterval = 60 * time.Second

// FeedState is a point-in-time copy of the feed.
type FeedState struct {
	Items   []domain.Notification
	Unread  int
	Loading bool
	Err     error
}

// NotificationFeed owns one user's notification list and unread counter.
// Mutations are applied locally first and reverted when the backend rejects
// them, unless a reconciliation has replaced the state in the meantime.
type NotificationFeed struct {
	api      ports.NotificationAPI
	alerter  ports.Alerter
	userID   string
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time

	mu      sync.Mutex
	items   []domain.Notification
	unread  int
	loading bool
	lastErr error
	// pending counts in-flight read mutations per record.
	pending map[string]int
	// listSeq and countSeq stamp fetches; only the latest may apply.
	listSeq  uint64
	countSeq uint64
	// listGen and countGen advance on every reconciliation.
	listGen  uint64
	countGen uint64

	listeners map[int]func(FeedState)
	nextID    int
}

func NewNotificationFeed(api ports.NotificationAPI, alerter ports.Alerter, userID string, interval time.Duration, log zerolog.Logger) *NotificationFeed {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &NotificationFeed{
		api:       api,
		alerter:   alerter,
		userID:    userID,
		interval:  interval,
		log:       log.With().Str("user_id", userID).Logger(),
		now:       time.Now,
		pending:   make(map[string]int),
		listeners: make(map[int]func(FeedState)),
	}
}

// WithClock replaces the time source. Intended for tests.
func (f *NotificationFeed) WithClock(now func() time.Time) *NotificationFeed {
	f.now = now
	return f
}

// Snapshot returns a copy of the current state.
func (f *NotificationFeed) Snapshot() FeedState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Subscribe registers fn for state changes and returns its cancel func.
func (f *NotificationFeed) Subscribe(fn func(FeedState)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

// Refresh replaces the list with the backend's. Records with an in-flight
// read mutation stay read. A response overtaken by a newer Refresh is
// dropped with domain.ErrStaleResponse.
func (f *NotificationFeed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	f.listSeq++
	seq := f.listSeq
	f.loading = true
	f.mu.Unlock()
	f.publish()

	items, err := f.api.List(ctx, f.userID)

	f.mu.Lock()
	if seq != f.listSeq {
		f.mu.Unlock()
		metrics.StaleResponsesTotal.WithLabelValues("list").Inc()
		return domain.ErrStaleResponse
	}
	f.loading = false
	if err != nil {
		f.lastErr = err
		f.mu.Unlock()
		f.publish()
		return fmt.Errorf("refresh notifications: %w", err)
	}

	fresh := make([]domain.Notification, len(items))
	copy(fresh, items)
	unread := 0
	for i := range fresh {
		if f.pending[fresh[i].ID] > 0 {
			fresh[i].Read = true
		}
		if !fresh[i].Read {
			unread++
		}
	}
	if drift := f.unread - unread; drift != 0 {
		f.log.Debug().Int("drift", drift).Msg("unread counter reconciled from list")
	}
	f.items = fresh
	f.unread = unread
	f.lastErr = nil
	f.listGen++
	f.countGen++
	f.mu.Unlock()

	f.publish()
	return nil
}

// SyncUnreadCount replaces the counter with the backend's count.
func (f *NotificationFeed) SyncUnreadCount(ctx context.Context) error {
	f.mu.Lock()
	f.countSeq++
	seq := f.countSeq
	f.mu.Unlock()

	n, err := f.api.UnreadCount(ctx, f.userID)

	f.mu.Lock()
	if seq != f.countSeq {
		f.mu.Unlock()
		metrics.StaleResponsesTotal.WithLabelValues("unread_count").Inc()
		return domain.ErrStaleResponse
	}
	if err != nil {
		f.mu.Unlock()
		return fmt.Errorf("sync unread count: %w", err)
	}
	if n < 0 {
		n = 0
	}
	if drift := f.unread - n; drift != 0 {
		f.log.Debug().Int("drift", drift).Msg("unread counter reconciled")
	}
	f.unread = n
	f.countGen++
	f.mu.Unlock()

	f.publish()
	return nil
}

// MarkAsRead flips one record to read. Records already read are left
// alone and no call is made.
func (f *NotificationFeed) MarkAsRead(ctx context.Context, id string) error {
	f.mu.Lock()
	idx := f.indexLocked(id)
	if idx >= 0 && f.items[idx].Read {
		f.mu.Unlock()
		return nil
	}
	m := f.beginLocked()
	if idx >= 0 {
		f.flipLocked(m, idx)
	}
	f.mu.Unlock()
	f.publish()

	err := f.api.MarkRead(ctx, id)
	f.finish(m, err, "mark_read")
	return err
}

// MarkManyAsRead flips every unread record in ids.
func (f *NotificationFeed) MarkManyAsRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	f.mu.Lock()
	m := f.beginLocked()
	for _, id := range ids {
		if idx := f.indexLocked(id); idx >= 0 && !f.items[idx].Read {
			f.flipLocked(m, idx)
		}
	}
	f.mu.Unlock()
	f.publish()

	err := f.api.MarkManyRead(ctx, ids)
	f.finish(m, err, "mark_many_read")
	return err
}

// MarkAllAsRead flips every record and zeroes the counter.
func (f *NotificationFeed) MarkAllAsRead(ctx context.Context) error {
	f.mu.Lock()
	m := f.beginLocked()
	for i := range f.items {
		if !f.items[i].Read {
			f.flipLocked(m, i)
		}
	}
	// The counter may exceed the loaded page.
	m.decremented += f.unread
	f.unread = 0
	f.mu.Unlock()
	f.publish()

	err := f.api.MarkAllRead(ctx, f.userID)
	f.finish(m, err, "mark_all_read")
	return err
}

// Delete removes a record. The counter drops only when it was unread.
func (f *NotificationFeed) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	idx := f.indexLocked(id)
	var removed domain.Notification
	listGen, countGen := f.listGen, f.countGen
	if idx >= 0 {
		removed = f.items[idx]
		f.items = append(f.items[:idx:idx], f.items[idx+1:]...)
		if !removed.Read {
			f.decrementLocked(1)
		}
	}
	f.mu.Unlock()
	f.publish()

	err := f.api.Delete(ctx, id)
	if err == nil || idx < 0 {
		return err
	}

	f.mu.Lock()
	if f.listGen == listGen && f.indexLocked(id) < 0 {
		at := idx
		if at > len(f.items) {
			at = len(f.items)
		}
		f.items = append(f.items[:at], append([]domain.Notification{removed}, f.items[at:]...)...)
		if !removed.Read && f.countGen == countGen {
			f.unread++
		}
		metrics.FeedRollbacksTotal.WithLabelValues("delete").Inc()
	}
	f.mu.Unlock()
	f.publish()
	return err
}

// OnPushEvent prepends a record synthesized from ev, bumps the counter and
// raises an alert when permitted. Events repeating a known id are ignored.
func (f *NotificationFeed) OnPushEvent(ctx context.Context, ev domain.PushEvent) {
	n := domain.NotificationFromPush(ev, f.now())
	n.UserID = f.userID
	if n.ID == "" {
		n.ID = "local-" + uuid.NewString()
	}
	metrics.PushEventsTotal.WithLabelValues(string(n.Type)).Inc()

	f.mu.Lock()
	if f.indexLocked(n.ID) >= 0 {
		f.mu.Unlock()
		return
	}
	f.items = append([]domain.Notification{n}, f.items...)
	f.unread++
	f.mu.Unlock()
	f.publish()

	if f.alerter != nil && f.alerter.Permitted() {
		f.alerter.Alert(ctx, n)
	}
}

// Run loads the list, then re-fetches the unread counter every interval
// until ctx ends.
func (f *NotificationFeed) Run(ctx context.Context) {
	if err := f.Refresh(ctx); err != nil && ctx.Err() == nil {
		f.log.Warn().Err(err).Msg("initial notification load failed")
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.SyncUnreadCount(ctx); err != nil && ctx.Err() == nil {
				f.log.Warn().Err(err).Msg("unread count poll failed")
			}
		}
	}
}

// Listen feeds push events into the feed until ctx ends or the channel
// gives up. Failures are logged only; polling continues regardless.
func (f *NotificationFeed) Listen(ctx context.Context, ch ports.PushChannel) {
	err := ch.Listen(ctx, f.userID, func(ev domain.PushEvent) {
		f.OnPushEvent(ctx, ev)
	})
	if err != nil && ctx.Err() == nil {
		f.log.Warn().Err(err).Msg("push channel stopped, continuing with polling")
	}
}

// mutation records what an optimistic operation changed locally.
type mutation struct {
	flipped     []string
	decremented int
	listGen     uint64
	countGen    uint64
}

func (f *NotificationFeed) beginLocked() *mutation {
	return &mutation{listGen: f.listGen, countGen: f.countGen}
}

func (f *NotificationFeed) flipLocked(m *mutation, idx int) {
	id := f.items[idx].ID
	f.items[idx].Read = true
	f.pending[id]++
	m.flipped = append(m.flipped, id)
	m.decremented += f.decrementLocked(1)
}

// decrementLocked lowers the counter by at most n, never below zero, and
// returns how much it actually removed.
func (f *NotificationFeed) decrementLocked(n int) int {
	if n > f.unread {
		n = f.unread
	}
	f.unread -= n
	return n
}

// finish settles an optimistic mutation. On failure local changes are
// reverted unless a reconciliation superseded them.
func (f *NotificationFeed) finish(m *mutation, err error, op string) {
	f.mu.Lock()
	for _, id := range m.flipped {
		if f.pending[id]--; f.pending[id] <= 0 {
			delete(f.pending, id)
		}
	}
	if err == nil {
		f.mu.Unlock()
		return
	}

	reverted := false
	if f.listGen == m.listGen {
		for _, id := range m.flipped {
			if idx := f.indexLocked(id); idx >= 0 && f.pending[id] == 0 {
				f.items[idx].Read = false
				reverted = true
			}
		}
		if f.countGen == m.countGen && m.decremented > 0 {
			f.unread += m.decremented
			reverted = true
		}
	}
	f.mu.Unlock()

	f.log.Warn().Err(err).Str("op", op).Bool("reverted", reverted).Msg("notification update rejected")
	if reverted {
		metrics.FeedRollbacksTotal.WithLabelValues(op).Inc()
		f.publish()
	}
}

func (f *NotificationFeed) indexLocked(id string) int {
	for i := range f.items {
		if f.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (f *NotificationFeed) snapshotLocked() FeedState {
	items := make([]domain.Notification, len(f.items))
	copy(items, f.items)
	return FeedState{Items: items, Unread: f.unread, Loading: f.loading, Err: f.lastErr}
}

func (f *NotificationFeed) publish() {
	f.mu.Lock()
	state := f.snapshotLocked()
	fns := make([]func(FeedState), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	metrics.FeedUnread.Set(float64(state.Unread))
	for _, fn := range fns {
		fn(state)
	}
}
